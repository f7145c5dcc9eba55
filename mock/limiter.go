package mock

import (
	"context"

	"github.com/govseek/govseek"
)

var _ govseek.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of govseek.Limiter. With no WaitFn it
// returns immediately.
type Limiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx)
}
