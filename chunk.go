package govseek

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Default chunking parameters, measured in characters. These are
// configuration defaults; the CLI exposes them as flags.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Chunk is a bounded slice of normalized page text, the unit later embedded
// and indexed. ID is generated once at write time and doubles as the point
// id in the external vector store.
type Chunk struct {
	ID   string `json:"id"`
	Link string `json:"link"`
	Text string `json:"text"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk ID required")
	}
	if c.Link == "" {
		return Errorf(EINVALID, "chunk link required")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	return nil
}

// ChunkWriter appends chunks durably to a crawl session's content store.
// Each Append must be a single atomic write so that interruption between
// appends loses at most the record in flight.
type ChunkWriter interface {
	Append(ctx context.Context, chunk *Chunk) error

	// Finalize completes the on-disk format and releases the store.
	// Append must not be called after Finalize.
	Finalize() error
}

// ChunkStoreOpener opens a content store for one crawl session.
// Each session owns its store exclusively for the session's lifetime.
type ChunkStoreOpener interface {
	OpenStore(domain string, start time.Time) (ChunkWriter, error)
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace (including newlines and tabs)
// into single spaces and trims the result.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// SplitText splits text into chunks of at most size characters with overlap
// characters shared between consecutive chunks. Splitting is deterministic:
// the same input always yields the same chunks in the same order.
// An overlap outside [0, size) is treated as 0.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
