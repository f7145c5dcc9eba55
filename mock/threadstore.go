package mock

import (
	"context"

	"github.com/govseek/govseek"
)

var _ govseek.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is a mock implementation of govseek.ThreadStore.
type ThreadStore struct {
	LoadFn func(ctx context.Context, threadID string) (*govseek.Thread, error)
	SaveFn func(ctx context.Context, thread *govseek.Thread) error
}

func (s *ThreadStore) Load(ctx context.Context, threadID string) (*govseek.Thread, error) {
	return s.LoadFn(ctx, threadID)
}

func (s *ThreadStore) Save(ctx context.Context, thread *govseek.Thread) error {
	return s.SaveFn(ctx, thread)
}
