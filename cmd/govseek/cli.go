package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/govseek/govseek"
	"github.com/govseek/govseek/crawl"
	"github.com/govseek/govseek/rag"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Seeds    govseek.SeedSource
	Runner   *crawl.Runner
	Pipeline *rag.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl CrawlCmd `cmd:"" help:"Crawl trusted sites and store page chunks"`
	Ask   AskCmd   `cmd:"" help:"Ask a one-shot question"`
	Chat  ChatCmd  `cmd:"" help:"Start an interactive multi-turn conversation"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Index       string        `help:"Index page whose table links are the seed URLs"`
	Seed        []string      `short:"s" help:"Seed URL to crawl (repeatable)"`
	MaxDepth    int           `default:"2" help:"Maximum link depth from each seed"`
	MaxPages    int           `default:"10" help:"Maximum pages fetched per seed"`
	MinDelay    time.Duration `default:"1s" help:"Minimum delay before each fetch"`
	MaxDelay    time.Duration `default:"3s" help:"Maximum delay before each fetch"`
	ChunkSize   int           `default:"1000" help:"Chunk size in characters"`
	Overlap     int           `default:"100" help:"Chunk overlap in characters"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent session limit"`
	RPS         float64       `default:"1" help:"Per-domain request rate limit"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask"`
	Thread   string `short:"t" help:"Thread id to continue (default: a new thread)"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Thread string `short:"t" help:"Thread id to continue (default: a new thread)"`
}
