package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/govseek/govseek"
	"github.com/govseek/govseek/crawl"
	"github.com/govseek/govseek/memory"
	"github.com/govseek/govseek/mock"
	"github.com/govseek/govseek/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_requires_a_command(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	m := NewMain()

	err := m.Run(context.Background(), nil, strings.NewReader(""), &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_help_succeeds(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	m := NewMain()

	err := m.Run(context.Background(), []string{"--help"}, strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "crawl")
	assert.Contains(t, stdout.String(), "ask")
	assert.Contains(t, stdout.String(), "chat")
}

func testDeps(stdin string) (*Dependencies, *bytes.Buffer) {
	var stdout bytes.Buffer
	return &Dependencies{
		Ctx:    context.Background(),
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	}, &stdout
}

func TestCrawlCmd_crawls_discovered_and_explicit_seeds(t *testing.T) {
	t.Parallel()

	deps, stdout := testDeps("")
	deps.Seeds = &mock.SeedSource{
		DiscoverFn: func(ctx context.Context, indexURL string) ([]string, error) {
			return []string{"https://www.one.gov.sg/"}, nil
		},
	}
	deps.Runner = &crawl.Runner{
		Crawler: &crawl.Crawler{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (string, error) {
					return "<html><body><p>agency content</p></body></html>", nil
				},
			},
			Stores: &mock.ChunkStoreOpener{
				OpenStoreFn: func(domain string, start time.Time) (govseek.ChunkWriter, error) {
					return &mock.ChunkWriter{}, nil
				},
			},
		},
		MaxDepth: 1,
		MaxPages: 5,
	}

	cmd := &CrawlCmd{Index: "https://www.gov.sg/trusted-sites", Seed: []string{"https://www.two.gov.sg/"}}
	require.NoError(t, cmd.Run(deps))

	out := stdout.String()
	assert.Contains(t, out, "Discovered 1 seed URLs")
	assert.Contains(t, out, "2 pages visited")
}

func TestCrawlCmd_fails_without_seeds(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps("")

	err := (&CrawlCmd{}).Run(deps)
	assert.Equal(t, govseek.EINVALID, govseek.ErrorCode(err))
}

func TestAskCmd_prints_answer_and_sources(t *testing.T) {
	t.Parallel()

	deps, stdout := testDeps("")
	deps.Pipeline = testPipeline("Renew online.", []govseek.RetrievedDocument{
		{Text: "renew online", Source: "https://www.ica.gov.sg/renew"},
	})

	require.NoError(t, (&AskCmd{Question: "how do I renew my passport?"}).Run(deps))

	out := stdout.String()
	assert.Contains(t, out, "Renew online.")
	assert.Contains(t, out, "https://www.ica.gov.sg/renew")
}

func TestChatCmd_runs_turns_until_exit(t *testing.T) {
	t.Parallel()

	deps, stdout := testDeps("first question\nsecond question\nexit\n")
	deps.Pipeline = testPipeline("an answer", nil)

	require.NoError(t, (&ChatCmd{Thread: "chat-thread"}).Run(deps))

	assert.Equal(t, 2, strings.Count(stdout.String(), "an answer"))
}

// testPipeline wires a Pipeline whose first completion requests retrieval
// when docs are given, answering with text either way.
func testPipeline(text string, docs []govseek.RetrievedDocument) *rag.Pipeline {
	return &rag.Pipeline{
		LLM: &mock.Completer{
			CompleteFn: func(ctx context.Context, messages []govseek.Message, tools []govseek.ToolDefinition) (*govseek.Completion, error) {
				if len(tools) > 0 && len(docs) > 0 {
					return &govseek.Completion{ToolCalls: []govseek.ToolCall{{ID: "c1", Name: rag.ToolName, Query: "q"}}}, nil
				}
				return &govseek.Completion{Text: text}, nil
			},
		},
		Tool: &rag.Tool{Search: &mock.SearchService{
			SearchFn: func(ctx context.Context, query string, k int) ([]govseek.RetrievedDocument, error) {
				return docs, nil
			},
		}},
		Threads: memory.NewThreadStore(),
	}
}
