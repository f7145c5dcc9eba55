package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/govseek/govseek"
)

// Run executes the chat command. Each line read from stdin is one turn on
// the same thread; "exit" or EOF ends the session.
func (c *ChatCmd) Run(deps *Dependencies) error {
	threadID := c.Thread
	if threadID == "" {
		threadID = uuid.NewString()
	}
	fmt.Fprintf(deps.Stdout, "Thread %s. Type a question, or \"exit\" to quit.\n", threadID)

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		answer, err := deps.Pipeline.Run(deps.Ctx, line, threadID)
		if err != nil {
			// A failed turn does not end the session.
			fmt.Fprintf(deps.Stderr, "error: %s\n", govseek.ErrorMessage(err))
			continue
		}

		fmt.Fprintln(deps.Stdout, answer.Text)
		printSources(deps, answer.Sources)
	}

	return scanner.Err()
}
