package main

import (
	"fmt"

	"github.com/fwojciec/seedcorpus"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, seedcorpus.RunFilter{SeedID: c.Seed, Limit: c.Limit})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'seedcorpus build' to create one.")
		return nil
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  seed=%d  written=%d/%d", r.ID, r.Repository, r.SeedID, r.RecordsWritten, r.RecordsRead)
		if r.Published {
			line += "  published"
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	return nil
}
