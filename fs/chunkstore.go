// Package fs provides file-based content storage for crawl sessions.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/govseek/govseek"
)

var (
	_ govseek.ChunkWriter      = (*ChunkStore)(nil)
	_ govseek.ChunkStoreOpener = (*Opener)(nil)
)

// ChunkStore persists chunks as an incrementally built JSON array, one file
// per crawl session. The file is opened lazily on the first append. Every
// append is a single write call, so interruption between appends loses at
// most the record in flight and never leaves a partial record.
//
// On-disk format: "[\n" before the first record, ",\n" between records, and
// "\n]" written by Finalize.
type ChunkStore struct {
	path string

	mu        sync.Mutex
	file      *os.File
	wrote     bool
	finalized bool
}

// NewChunkStore creates a ChunkStore for one session. The file name is
// derived deterministically from the allowed domain and the session start
// time: <domain-slug>_<timestamp>.json under dir.
func NewChunkStore(dir, domain string, start time.Time) *ChunkStore {
	name := fmt.Sprintf("%s_%s.json", Slugify(domain), start.Format("20060102_150405"))
	return &ChunkStore{path: filepath.Join(dir, name)}
}

// Path returns the store's file path.
func (s *ChunkStore) Path() string {
	return s.path
}

// Append writes one chunk record durably. The opening bracket is written
// together with the first record in a single call.
func (s *ChunkStore) Append(ctx context.Context, chunk *govseek.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chunk.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return govseek.Errorf(govseek.ECONFLICT, "append to finalized store %s", s.path)
	}

	if s.file == nil {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return govseek.Errorf(govseek.EINTERNAL, "create store directory: %v", err)
		}
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return govseek.Errorf(govseek.EINTERNAL, "open store %s: %v", s.path, err)
		}
		s.file = f
	}

	record, err := json.Marshal(chunk)
	if err != nil {
		return govseek.Errorf(govseek.EINTERNAL, "marshal chunk %s: %v", chunk.ID, err)
	}

	var buf []byte
	if !s.wrote {
		buf = append([]byte("[\n"), record...)
	} else {
		buf = append([]byte(",\n"), record...)
	}

	if _, err := s.file.Write(buf); err != nil {
		return govseek.Errorf(govseek.EINTERNAL, "append to store %s: %v", s.path, err)
	}
	s.wrote = true
	return nil
}

// Finalize closes the JSON array and releases the file handle. A store that
// never received an append creates no file. Finalize is idempotent.
func (s *ChunkStore) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized || s.file == nil {
		s.finalized = true
		return nil
	}
	s.finalized = true

	if _, err := s.file.Write([]byte("\n]")); err != nil {
		s.file.Close()
		return govseek.Errorf(govseek.EINTERNAL, "finalize store %s: %v", s.path, err)
	}
	return s.file.Close()
}

// Slugify replaces every non-alphanumeric character with an underscore,
// matching the naming scheme of the existing corpus files.
func Slugify(s string) string {
	out := []rune(s)
	for i, r := range out {
		if !isAlnum(r) {
			out[i] = '_'
		}
	}
	return string(out)
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Opener opens one ChunkStore per crawl session under a base directory.
type Opener struct {
	Dir string
}

// OpenStore implements govseek.ChunkStoreOpener.
func (o *Opener) OpenStore(domain string, start time.Time) (govseek.ChunkWriter, error) {
	return NewChunkStore(o.Dir, domain, start), nil
}
