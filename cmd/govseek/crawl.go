package main

import (
	"fmt"

	"github.com/govseek/govseek"
	"github.com/govseek/govseek/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	seeds := append([]string(nil), c.Seed...)

	if c.Index != "" {
		discovered, err := deps.Seeds.Discover(deps.Ctx, c.Index)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", govseek.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Discovered %d seed URLs from %s\n", len(discovered), c.Index)
		seeds = append(seeds, discovered...)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no seed URLs. Pass --index or --seed.")
		return govseek.Errorf(govseek.EINVALID, "no seed URLs")
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Crawling %s\n", event.URL)
		case crawl.ProgressVisited:
			fmt.Fprintf(deps.Stdout, "  visited %s (depth %d)\n", event.URL, event.Depth)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stdout, "  failed %s: %s\n", event.URL, govseek.ErrorMessage(event.Error))
		}
	}

	result, err := deps.Runner.CrawlAll(deps.Ctx, seeds, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", govseek.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Done: %d pages visited, %d chunks stored, %d skipped, %d failed\n",
		result.Visited, result.Chunks, result.Skipped, result.Failed)
	return nil
}
