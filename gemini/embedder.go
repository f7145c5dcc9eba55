package gemini

import (
	"context"

	"github.com/govseek/govseek"
	"google.golang.org/genai"
)

const embeddingModel = "gemini-embedding-001"

// Ensure Embedder implements govseek.Embedder at compile time.
var _ govseek.Embedder = (*Embedder)(nil)

// Embedder implements govseek.Embedder using Google Gemini.
type Embedder struct {
	client *genai.Client
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(client *genai.Client) *Embedder {
	return &Embedder{client: client}
}

// Embed converts text to a fixed-length vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, govseek.Errorf(govseek.EINVALID, "text required")
	}

	result, err := e.client.Models.EmbedContent(ctx, embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, govseek.Errorf(govseek.EINTERNAL, "gemini returned no embeddings")
	}

	return result.Embeddings[0].Values, nil
}
