package main

import (
	"fmt"
	"sort"

	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/archive"
	"github.com/fwojciec/seedcorpus/boilerplate"
	scslog "github.com/fwojciec/seedcorpus/slog"
)

// Run executes the detect command.
func (c *DetectCmd) Run(deps *Dependencies) error {
	node, err := seedDescription(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}

	var source seedcorpus.RecordSource = archive.NewSource(c.Archive, c.SeedID, node)
	if deps.Logger != nil {
		source = scslog.NewLoggingRecordSource(source, deps.Logger)
	}

	it, err := source.Records(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}
	defer it.Close()

	detector := &boilerplate.Detector{SampleCap: c.SampleCap, Workers: c.Workers}
	table, unique, err := detector.Count(deps.Ctx, it)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}

	threshold := boilerplate.Threshold(unique)
	type entry struct {
		line  string
		count int
	}
	var suppressed []entry
	table.Each(func(line string, count int) {
		if count > threshold {
			suppressed = append(suppressed, entry{line: line, count: count})
		}
	})
	sort.Slice(suppressed, func(i, j int) bool {
		if suppressed[i].count != suppressed[j].count {
			return suppressed[i].count > suppressed[j].count
		}
		return suppressed[i].line < suppressed[j].line
	})

	if len(suppressed) == 0 {
		fmt.Fprintf(deps.Stdout, "No boilerplate detected (threshold %d over %d unique pages)\n", threshold, unique)
		return nil
	}
	for _, e := range suppressed {
		fmt.Fprintf(deps.Stdout, "%7d  %q\n", e.count, e.line)
	}
	fmt.Fprintf(deps.Stdout, "%d lines suppressed (threshold %d over %d unique pages)\n", len(suppressed), threshold, unique)
	return nil
}
