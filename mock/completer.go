package mock

import (
	"context"

	"github.com/govseek/govseek"
)

var _ govseek.Completer = (*Completer)(nil)

// Completer is a mock implementation of govseek.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, messages []govseek.Message, tools []govseek.ToolDefinition) (*govseek.Completion, error)
}

func (c *Completer) Complete(ctx context.Context, messages []govseek.Message, tools []govseek.ToolDefinition) (*govseek.Completion, error) {
	return c.CompleteFn(ctx, messages, tools)
}
