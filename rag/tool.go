// Package rag provides retrieval-augmented generation orchestration: the
// retrieval tool and the per-turn state machine that decides whether to
// retrieve, grounds the prompt in retrieved context, and tracks
// per-conversation state.
package rag

import (
	"context"
	"strings"

	"github.com/govseek/govseek"
)

// DefaultTopK is the number of documents retrieved per tool call.
const DefaultTopK = 2

// ToolName is the capability name offered to the completion service.
const ToolName = "retrieve"

// unknownSource is serialized when a hit has no source URL; it is excluded
// from attributed source lists.
const unknownSource = "Unknown"

// Tool retrieves documents for a query from the similarity-search service
// and serializes them for the completion service. It does no re-ranking,
// caching, or retries; search failures propagate to the orchestration
// graph as turn-level failures.
type Tool struct {
	Search govseek.SearchService
	K      int
}

// Definition describes the tool to the completion service.
func (t *Tool) Definition() govseek.ToolDefinition {
	return govseek.ToolDefinition{
		Name:        ToolName,
		Description: "Retrieve information related to a query.",
	}
}

// Retrieve calls the search service and returns the serialized text block
// together with the retrieved documents, in the order the service ranked
// them.
func (t *Tool) Retrieve(ctx context.Context, query string) (string, []govseek.RetrievedDocument, error) {
	k := t.K
	if k <= 0 {
		k = DefaultTopK
	}

	docs, err := t.Search.Search(ctx, query, k)
	if err != nil {
		return "", nil, err
	}

	return SerializeDocuments(docs), docs, nil
}

// SerializeDocuments renders retrieved documents as "Source:"/"Content:"
// blocks joined by blank lines, preserving the given order.
func SerializeDocuments(docs []govseek.RetrievedDocument) string {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		source := doc.Source
		if source == "" {
			source = unknownSource
		}
		blocks = append(blocks, "Source: "+source+"\nContent: "+doc.Text)
	}
	return strings.Join(blocks, "\n\n")
}
