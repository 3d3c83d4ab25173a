package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/hub"
	scslog "github.com/fwojciec/seedcorpus/slog"
	"github.com/fwojciec/seedcorpus/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing. Left nil, Run wires the real
	// implementations.
	Runs      seedcorpus.RunService
	Publisher seedcorpus.Publisher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
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
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("seedcorpus"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'seedcorpus --help' to see available commands")
	}
	if first := args[0]; first == "help" || first == "--help" || first == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	// Open database
	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SEEDCORPUS_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	if m.Runs == nil {
		m.Runs = sqlite.NewRunService(m.DB)
	}
	deps.DB = m.DB
	deps.Runs = m.Runs

	if cli.Verbose {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, nil))
		deps.Runs = scslog.NewLoggingRunService(deps.Runs, deps.Logger)
	}

	// Wire the publisher only when a command will push; its credential is
	// required before any work starts.
	if (cmd == "build" && cli.Build.Push) || (cmd == "batch" && cli.Batch.Push) {
		if m.Publisher == nil {
			token := cli.Build.Token
			if cmd == "batch" {
				token = cli.Batch.Token
			}
			if token == "" {
				token = os.Getenv("SEEDCORPUS_TOKEN")
			}
			if token == "" {
				fmt.Fprintln(stderr, "SEEDCORPUS_TOKEN environment variable not set. Create a write token in your hub account settings or pass --token")
				return fmt.Errorf("SEEDCORPUS_TOKEN not set")
			}
			m.Publisher = hub.NewClient(token, hub.WithRateLimit(1))
		}
		deps.Publisher = m.Publisher
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("SEEDCORPUS_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "seedcorpus.db"
	}
	dir := filepath.Join(home, ".seedcorpus")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "seedcorpus.db")
}
