package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/govseek/govseek"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	threadID := c.Thread
	if threadID == "" {
		threadID = uuid.NewString()
	}

	answer, err := deps.Pipeline.Run(deps.Ctx, c.Question, threadID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", govseek.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	printSources(deps, answer.Sources)
	return nil
}

func printSources(deps *Dependencies, sources []string) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(deps.Stdout, "\nSources:")
	for _, source := range sources {
		fmt.Fprintf(deps.Stdout, "  - %s\n", source)
	}
}
