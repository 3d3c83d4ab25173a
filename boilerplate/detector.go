package boilerplate

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/seedcorpus"
	"golang.org/x/sync/errgroup"
)

// DefaultSampleCap bounds how many leading records are scanned per seed.
// Counting line frequencies over the whole of a large seed buys little over
// a sample this size.
const DefaultSampleCap = 10000

// shardBuffer is the per-shard channel depth used by the parallel pass.
const shardBuffer = 128

// Detector derives a seed's skip set from a bounded sample of its pages.
//
// The zero value samples up to DefaultSampleCap records on a single
// goroutine. Setting Workers above one shards the counting by page text
// hash, which splits the line splitting and counting work while keeping
// per-page dedup exact: identical texts always land on the same shard.
type Detector struct {
	// SampleCap bounds how many leading records are read. Streams shorter
	// than the cap are simply sampled in full. Zero means DefaultSampleCap.
	SampleCap int

	// Workers is the number of counting shards. Values below two select
	// the sequential pass.
	Workers int
}

// Detect samples records from it and returns the set of lines to suppress —
// every stripped line that occurred strictly more than
// Threshold(uniquePages) times across the sample's distinct pages — along
// with the number of distinct pages sampled.
func (d *Detector) Detect(ctx context.Context, it seedcorpus.RecordIterator) (seedcorpus.SkipSet, int, error) {
	table, unique, err := d.Count(ctx, it)
	if err != nil {
		return nil, 0, err
	}

	threshold := Threshold(unique)
	skip := make(seedcorpus.SkipSet)
	table.Each(func(line string, count int) {
		if count > threshold {
			skip[line] = true
		}
	})
	return skip, unique, nil
}

// Count samples up to SampleCap records from it and accumulates stripped
// line frequencies across the sample's distinct page texts. A page whose
// raw text duplicates an earlier sampled page contributes nothing. Returns
// the table and the number of distinct pages seen.
func (d *Detector) Count(ctx context.Context, it seedcorpus.RecordIterator) (*FrequencyTable, int, error) {
	limit := d.SampleCap
	if limit <= 0 {
		limit = DefaultSampleCap
	}
	if d.Workers > 1 {
		return d.countSharded(ctx, it, limit)
	}

	table := NewFrequencyTable()
	seen := make(map[string]struct{})
	for n := 0; n < limit; n++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if _, ok := seen[rec.Text]; ok {
			continue
		}
		seen[rec.Text] = struct{}{}
		countLines(table, rec.Text)
	}
	return table, len(seen), nil
}

// countSharded routes sampled page texts to Workers counting goroutines by
// text hash. Each shard dedups and counts its own pages; the merged result
// is identical to the sequential pass because no text spans two shards.
func (d *Detector) countSharded(ctx context.Context, it seedcorpus.RecordIterator, limit int) (*FrequencyTable, int, error) {
	shards := make([]chan string, d.Workers)
	tables := make([]*FrequencyTable, d.Workers)
	uniques := make([]int, d.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := range shards {
		i := i
		shards[i] = make(chan string, shardBuffer)
		tables[i] = NewFrequencyTable()
		g.Go(func() error {
			seen := make(map[string]struct{})
			for text := range shards[i] {
				if _, ok := seen[text]; ok {
					continue
				}
				seen[text] = struct{}{}
				countLines(tables[i], text)
			}
			uniques[i] = len(seen)
			return nil
		})
	}

	var readErr error
	for n := 0; n < limit && readErr == nil; n++ {
		rec, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		shard := int(xxhash.Sum64String(rec.Text) % uint64(d.Workers))
		select {
		case shards[shard] <- rec.Text:
		case <-gctx.Done():
			readErr = gctx.Err()
		}
	}
	for _, ch := range shards {
		close(ch)
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if readErr != nil {
		return nil, 0, readErr
	}

	table := NewFrequencyTable()
	unique := 0
	for i := range tables {
		table.merge(tables[i])
		unique += uniques[i]
	}
	return table, unique, nil
}

// countLines splits a page into lines, strips each one, and counts every
// occurrence. Blank lines normalize to "" and are counted like any other
// line; on most seeds "" crosses the threshold and is suppressed, which is
// what collapses excess vertical whitespace downstream.
func countLines(table *FrequencyTable, text string) {
	for _, line := range strings.Split(text, "\n") {
		table.Add(strings.TrimSpace(line))
	}
}
