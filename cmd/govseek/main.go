package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/govseek/govseek/crawl"
	"github.com/govseek/govseek/fs"
	"github.com/govseek/govseek/gemini"
	"github.com/govseek/govseek/goquery"
	ghttp "github.com/govseek/govseek/http"
	"github.com/govseek/govseek/pgvector"
	"github.com/govseek/govseek/rag"
	gslog "github.com/govseek/govseek/slog"
	"github.com/govseek/govseek/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Thread database path. Set before calling Run().
	DBPath string

	// Directory where crawl sessions write their chunk files.
	DataDir string

	// SQLite database used by the thread store.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:  defaultDBPath(),
		DataDir: defaultDataDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("govseek"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'govseek --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cmd == "crawl" {
		jitter := crawl.NewJitter(cli.Crawl.MinDelay, cli.Crawl.MaxDelay)
		fetcher := gslog.NewLoggingFetcher(ghttp.NewFetcher(ghttp.WithLimiter(jitter)), logger)
		defer fetcher.Close()

		deps.Seeds = goquery.NewSeedSource(fetcher, logger)
		deps.Runner = &crawl.Runner{
			Crawler: &crawl.Crawler{
				Fetcher:      fetcher,
				Stores:       &fs.Opener{Dir: m.DataDir},
				Domains:      crawl.NewDomainLimiter(cli.Crawl.RPS),
				Logger:       logger,
				ChunkSize:    cli.Crawl.ChunkSize,
				ChunkOverlap: cli.Crawl.Overlap,
			},
			Logger:      logger,
			MaxDepth:    cli.Crawl.MaxDepth,
			MaxPages:    cli.Crawl.MaxPages,
			Concurrency: cli.Crawl.Concurrency,
		}
	}

	if cmd == "ask" || cmd == "chat" {
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL not set")
		}

		pool, err := pgvector.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()

		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set GOVSEEK_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		search := gslog.NewLoggingSearchService(
			pgvector.NewSearchService(pool, gemini.NewEmbedder(client)),
			logger,
		)

		deps.Pipeline = &rag.Pipeline{
			LLM:     gemini.NewCompleter(client),
			Tool:    &rag.Tool{Search: search},
			Threads: sqlite.NewThreadStore(m.DB),
			Logger:  logger,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("GOVSEEK_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "govseek.db"
	}
	dir := filepath.Join(home, ".govseek")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "govseek.db")
}

func defaultDataDir() string {
	if dir := os.Getenv("GOVSEEK_DATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".govseek", "data")
}
