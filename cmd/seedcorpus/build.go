package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/archive"
	"github.com/fwojciec/seedcorpus/pipeline"
	"github.com/fwojciec/seedcorpus/schema"
	scslog "github.com/fwojciec/seedcorpus/slog"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	node, err := seedDescription(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}

	run, err := buildSeed(deps, buildParams{
		SeedID:    c.SeedID,
		Language:  c.Language,
		Name:      c.Name,
		Node:      node,
		Archive:   c.Archive,
		Out:       c.Out,
		MinChars:  c.MinChars,
		SampleCap: c.SampleCap,
		Workers:   c.Workers,
		Gzip:      c.Gzip,
		Push:      c.Push,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}

	printRunSummary(deps, run)
	return nil
}

// buildParams collects everything one seed's build needs. The batch command
// reuses it for each manifest entry.
type buildParams struct {
	SeedID    int64
	Language  string
	Name      string
	Node      *schema.Node
	Archive   string
	Out       string
	MinChars  int
	SampleCap int
	Workers   int
	Gzip      bool
	Push      bool
}

// buildSeed runs the corpus pipeline for one seed, reporting phase progress
// on stdout.
func buildSeed(deps *Dependencies, p buildParams) (*seedcorpus.Run, error) {
	var source seedcorpus.RecordSource = archive.NewSource(p.Archive, p.SeedID, p.Node)
	publisher := deps.Publisher
	if deps.Logger != nil {
		source = scslog.NewLoggingRecordSource(source, deps.Logger)
		if publisher != nil {
			publisher = scslog.NewLoggingPublisher(publisher, deps.Logger)
		}
	}

	b := &pipeline.Builder{
		Source:    source,
		Runs:      deps.Runs,
		Publisher: publisher,
		SeedID:    p.SeedID,
		Language:  p.Language,
		Name:      p.Name,
		OutDir:    p.Out,
		SampleCap: p.SampleCap,
		Workers:   p.Workers,
		MinChars:  p.MinChars,
		Gzip:      p.Gzip,
		Push:      p.Push,
	}

	progress := func(ev pipeline.Event) {
		if !ev.Done {
			return
		}
		switch ev.Phase {
		case pipeline.PhaseDetect:
			fmt.Fprintf(deps.Stdout, "  Sampled %d pages\n", ev.Count)
		case pipeline.PhaseWrite:
			fmt.Fprintf(deps.Stdout, "  Processed %d records\n", ev.Count)
		case pipeline.PhasePublish:
			fmt.Fprintln(deps.Stdout, "  Published")
		}
	}
	return b.Run(deps.Ctx, progress)
}

func printRunSummary(deps *Dependencies, run *seedcorpus.Run) {
	fmt.Fprintf(deps.Stdout, "Built %s: %d written, %d short, %d duplicate (threshold %d over %d unique pages)\n",
		run.Repository, run.RecordsWritten, run.DroppedShort, run.DroppedDuplicate, run.Threshold, run.UniquePages)
	fmt.Fprintf(deps.Stdout, "  %s\n", run.ArtifactPath)
}

// seedDescription resolves the schema used to vet archive records. An empty
// path selects the built-in pseudo-crawl description.
func seedDescription(path string) (*schema.Node, error) {
	if path == "" {
		return schema.DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, seedcorpus.Errorf(seedcorpus.EINVALID, "read seed description: %v", err)
	}
	var desc any
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, seedcorpus.Errorf(seedcorpus.ESCHEMA, "parse seed description: %v", err)
	}
	return schema.Resolve(desc)
}
