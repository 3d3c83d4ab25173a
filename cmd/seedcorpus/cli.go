package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	DB        *sqlite.DB
	Runs      seedcorpus.RunService
	Publisher seedcorpus.Publisher

	// Logger is set when --verbose is given; commands wrap their services
	// with logging decorators when it is present.
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Log service calls to stderr"`
	DB      string `help:"Run ledger database path (default $SEEDCORPUS_DB or ~/.seedcorpus/seedcorpus.db)"`

	Build  BuildCmd  `cmd:"" help:"Build a deduplicated corpus artifact for one seed"`
	Batch  BatchCmd  `cmd:"" help:"Build corpus artifacts for every seed in a manifest"`
	Detect DetectCmd `cmd:"" help:"Show the boilerplate lines a seed's sample would suppress"`
	Runs   RunsCmd   `cmd:"" help:"List recorded corpus builds"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	SeedID   int64  `arg:"" name:"seed-id" help:"Seed identifier"`
	Language string `arg:"" help:"Seed language code"`
	Name     string `arg:"" help:"Seed name"`

	Archive   string `default:"pseudo_crawl" help:"Archive root directory"`
	Out       string `short:"o" default:"." help:"Directory the artifact is written to"`
	Schema    string `help:"JSON seed description overriding the built-in one"`
	MinChars  int    `default:"128" help:"Minimum page length in characters"`
	SampleCap int    `default:"10000" help:"Pages sampled for boilerplate detection"`
	Workers   int    `default:"1" help:"Concurrent line-counting workers"`
	Gzip      bool   `help:"Compress the artifact"`
	Push      bool   `help:"Publish the artifact after a successful build"`
	Token     string `help:"Hub access token (default $SEEDCORPUS_TOKEN)"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Manifest string `arg:"" help:"YAML manifest listing the seeds to build"`

	Archive   string `default:"pseudo_crawl" help:"Archive root directory"`
	Out       string `short:"o" default:"." help:"Directory the artifacts are written to"`
	Schema    string `help:"JSON seed description overriding the built-in one"`
	MinChars  int    `default:"128" help:"Minimum page length in characters"`
	SampleCap int    `default:"10000" help:"Pages sampled for boilerplate detection"`
	Workers   int    `default:"1" help:"Concurrent line-counting workers"`
	Gzip      bool   `help:"Compress the artifacts"`
	Push      bool   `help:"Publish each artifact after a successful build"`
	Token     string `help:"Hub access token (default $SEEDCORPUS_TOKEN)"`
}

// DetectCmd is the "detect" subcommand.
type DetectCmd struct {
	SeedID int64 `arg:"" name:"seed-id" help:"Seed identifier"`

	Archive   string `default:"pseudo_crawl" help:"Archive root directory"`
	Schema    string `help:"JSON seed description overriding the built-in one"`
	SampleCap int    `default:"10000" help:"Pages sampled for boilerplate detection"`
	Workers   int    `default:"1" help:"Concurrent line-counting workers"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Seed  *int64 `help:"Only show builds for this seed"`
	Limit int    `default:"20" help:"Maximum number of builds to show"`
}
