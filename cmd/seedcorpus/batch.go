package main

import (
	"fmt"

	"github.com/fwojciec/seedcorpus"
)

// Run executes the batch command. Seeds build independently: one failure is
// reported and the rest still build.
func (c *BatchCmd) Run(deps *Dependencies) error {
	manifest, err := loadManifest(c.Manifest)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}
	node, err := seedDescription(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", seedcorpus.ErrorMessage(err))
		return err
	}

	failed := 0
	for _, seed := range manifest.Seeds {
		fmt.Fprintf(deps.Stdout, "Building %s (seed %d)\n", seedcorpus.RepositoryName(seed.Language, seed.Name), seed.SeedID)

		run, err := buildSeed(deps, buildParams{
			SeedID:    seed.SeedID,
			Language:  seed.Language,
			Name:      seed.Name,
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
			failed++
			continue
		}
		printRunSummary(deps, run)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d builds failed", failed, len(manifest.Seeds))
	}
	return nil
}
