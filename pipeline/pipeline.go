// Package pipeline orchestrates one seed's corpus build: boilerplate
// detection over a sampled prefix, page processing, artifact writing, an
// optional ledger record, and optional publication.
//
// The build takes two passes over the seed's record source. The first pass
// samples pages and derives the skip set; the second streams every page
// through the processor into the corpus writer. Sources are required to
// yield records in the same order on both passes, which makes the artifact
// reproducible for a fixed archive.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/boilerplate"
	"github.com/fwojciec/seedcorpus/corpus"
)

// DefaultMinChars is the production minimum-content threshold: only pages
// with some substance are worth training on. The corpus package's own
// default is lower; builds run through the pipeline use this one.
const DefaultMinChars = 128

// Phase identifies the pipeline stage a progress event belongs to.
type Phase string

const (
	PhaseDetect  Phase = "detect"
	PhaseWrite   Phase = "write"
	PhasePublish Phase = "publish"
)

// Event reports build progress. Count is the number of records handled so
// far within the phase; Done marks the phase's final event.
type Event struct {
	Phase Phase
	Count int
	Done  bool
}

// ProgressFunc receives progress events as the build proceeds. It is called
// synchronously from the build goroutine.
type ProgressFunc func(Event)

// Builder runs corpus builds for one seed.
type Builder struct {
	// Source streams the seed's records. Required.
	Source seedcorpus.RecordSource

	// Runs records completed builds. Optional; nil disables the ledger.
	Runs seedcorpus.RunService

	// Publisher pushes the finished artifact. Required when Push is set.
	Publisher seedcorpus.Publisher

	// Seed identity, used to derive the repository and artifact names.
	SeedID   int64
	Language string
	Name     string

	// OutDir is the directory the artifact is written to. Empty means the
	// current directory.
	OutDir string

	// SampleCap and Workers configure boilerplate detection. Zero values
	// use the detector defaults.
	SampleCap int
	Workers   int

	// MinChars is the minimum-content threshold. Zero means DefaultMinChars.
	MinChars int

	// Gzip compresses the artifact; Push publishes it after a successful
	// build.
	Gzip bool
	Push bool
}

// Run executes the build and returns the completed run. The returned run is
// recorded in the ledger when one is configured. On failure no artifact is
// left at the final path.
func (b *Builder) Run(ctx context.Context, progress ProgressFunc) (*seedcorpus.Run, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	repo := seedcorpus.RepositoryName(b.Language, b.Name)
	run := &seedcorpus.Run{
		SeedID:     b.SeedID,
		Language:   b.Language,
		Name:       b.Name,
		Repository: repo,
		StartedAt:  time.Now().UTC(),
	}

	skip, unique, err := b.detect(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("detect boilerplate: %w", err)
	}
	run.UniquePages = unique
	run.SkipLines = skip.Len()
	run.Threshold = boilerplate.Threshold(unique)

	stats, path, read, err := b.write(ctx, repo, skip, progress)
	if err != nil {
		return nil, err
	}
	run.ArtifactPath = path
	run.ArtifactHash = stats.Hash
	run.RecordsRead = read
	run.RecordsWritten = stats.Written
	run.DroppedShort = stats.DroppedShort
	run.DroppedDuplicate = stats.DroppedDuplicate
	run.FinishedAt = time.Now().UTC()

	if b.Runs != nil {
		if err := b.Runs.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
	}

	if b.Push {
		if err := b.publish(ctx, run, progress); err != nil {
			return nil, err
		}
	}
	return run, nil
}

func (b *Builder) validate() error {
	if b.Source == nil {
		return seedcorpus.Errorf(seedcorpus.EINVALID, "record source required")
	}
	if b.Language == "" {
		return seedcorpus.Errorf(seedcorpus.EINVALID, "language required")
	}
	if b.Name == "" {
		return seedcorpus.Errorf(seedcorpus.EINVALID, "name required")
	}
	if b.Push && b.Publisher == nil {
		return seedcorpus.Errorf(seedcorpus.EINVALID, "publisher required to push")
	}
	return nil
}

// detect runs the sampling pass and derives the skip set.
func (b *Builder) detect(ctx context.Context, progress ProgressFunc) (seedcorpus.SkipSet, int, error) {
	it, err := b.Source.Records(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer it.Close()

	counted := &progressIterator{next: it, fn: progress, phase: PhaseDetect}
	detector := &boilerplate.Detector{SampleCap: b.SampleCap, Workers: b.Workers}
	skip, unique, err := detector.Detect(ctx, counted)
	if err != nil {
		return nil, 0, err
	}

	if progress != nil {
		progress(Event{Phase: PhaseDetect, Count: counted.count, Done: true})
	}
	return skip, unique, nil
}

// write runs the full pass, streaming every processed record into the
// artifact writer.
func (b *Builder) write(ctx context.Context, repo string, skip seedcorpus.SkipSet, progress ProgressFunc) (corpus.Stats, string, int, error) {
	outDir := b.OutDir
	if outDir == "" {
		outDir = "."
	}
	path := filepath.Join(outDir, seedcorpus.ArtifactFileName(repo, b.Gzip))

	it, err := b.Source.Records(ctx)
	if err != nil {
		return corpus.Stats{}, "", 0, fmt.Errorf("read archive: %w", err)
	}
	defer it.Close()

	minChars := b.MinChars
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	w, err := corpus.NewWriter(path, corpus.WithGzip(b.Gzip), corpus.WithMinChars(minChars))
	if err != nil {
		return corpus.Stats{}, "", 0, fmt.Errorf("write corpus: %w", err)
	}
	defer w.Abort()

	read := 0
	for {
		if err := ctx.Err(); err != nil {
			return corpus.Stats{}, "", 0, fmt.Errorf("read archive: %w", err)
		}
		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return corpus.Stats{}, "", 0, fmt.Errorf("read archive: %w", err)
		}
		read++
		if _, err := w.Write(corpus.Process(rec, skip)); err != nil {
			return corpus.Stats{}, "", 0, fmt.Errorf("write corpus: %w", err)
		}
		if progress != nil {
			progress(Event{Phase: PhaseWrite, Count: read})
		}
	}
	if err := w.Commit(); err != nil {
		return corpus.Stats{}, "", 0, fmt.Errorf("write corpus: %w", err)
	}
	if progress != nil {
		progress(Event{Phase: PhaseWrite, Count: read, Done: true})
	}
	return w.Stats(), path, read, nil
}

// publish pushes the committed artifact and flags the ledger row.
func (b *Builder) publish(ctx context.Context, run *seedcorpus.Run, progress ProgressFunc) error {
	if progress != nil {
		progress(Event{Phase: PhasePublish})
	}
	if err := b.Publisher.Publish(ctx, run.ArtifactPath, run.Repository); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	run.Published = true
	if b.Runs != nil {
		if err := b.Runs.MarkPublished(ctx, run.ID); err != nil {
			return fmt.Errorf("record publish: %w", err)
		}
	}
	if progress != nil {
		progress(Event{Phase: PhasePublish, Count: 1, Done: true})
	}
	return nil
}

// progressIterator forwards Next calls and reports a progress event per
// record delivered.
type progressIterator struct {
	next  seedcorpus.RecordIterator
	fn    ProgressFunc
	phase Phase
	count int
}

func (p *progressIterator) Next() (*seedcorpus.PageRecord, error) {
	rec, err := p.next.Next()
	if err == nil {
		p.count++
		if p.fn != nil {
			p.fn(Event{Phase: p.phase, Count: p.count})
		}
	}
	return rec, err
}

func (p *progressIterator) Close() error {
	return p.next.Close()
}
