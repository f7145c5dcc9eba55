// Package memory provides in-process implementations backed by Go maps,
// suitable for single-run CLI invocations and tests.
package memory

import (
	"context"
	"sync"

	"github.com/govseek/govseek"
)

var _ govseek.ThreadStore = (*ThreadStore)(nil)

// ThreadStore keeps conversation threads in a map. Load returns a deep
// copy, so an aborted turn leaves the stored thread untouched until the
// next Save.
type ThreadStore struct {
	mu      sync.Mutex
	threads map[string]*govseek.Thread
}

// NewThreadStore returns an empty store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{threads: make(map[string]*govseek.Thread)}
}

func (s *ThreadStore) Load(ctx context.Context, threadID string) (*govseek.Thread, error) {
	if threadID == "" {
		return nil, govseek.Errorf(govseek.EINVALID, "thread ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[threadID]
	if !ok {
		return &govseek.Thread{ID: threadID}, nil
	}
	return copyThread(thread), nil
}

func (s *ThreadStore) Save(ctx context.Context, thread *govseek.Thread) error {
	if thread == nil || thread.ID == "" {
		return govseek.Errorf(govseek.EINVALID, "thread ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[thread.ID] = copyThread(thread)
	return nil
}

func copyThread(thread *govseek.Thread) *govseek.Thread {
	out := &govseek.Thread{
		ID:          thread.ID,
		Messages:    make([]govseek.Message, len(thread.Messages)),
		LastSources: append([]string(nil), thread.LastSources...),
	}
	for i, msg := range thread.Messages {
		out.Messages[i] = govseek.Message{
			Role:      msg.Role,
			Content:   msg.Content,
			ToolCalls: append([]govseek.ToolCall(nil), msg.ToolCalls...),
			Sources:   append([]string(nil), msg.Sources...),
		}
	}
	return out
}
