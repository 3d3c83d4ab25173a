// Package archive reads pseudo-crawl seed shards from an on-disk archive.
//
// The crawl tooling divides each seed into gzipped JSONL shards laid out as
//
//	{root}/seed_id={id}/text__html/{shard}.jsonl.gz
//
// and this package exposes one seed's shards as a seedcorpus.RecordSource.
package archive

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fwojciec/seedcorpus"
	"github.com/fwojciec/seedcorpus/schema"
)

// Compile-time interface verification.
var (
	_ seedcorpus.RecordSource   = (*Source)(nil)
	_ seedcorpus.RecordIterator = (*iterator)(nil)
)

// Source reads one seed's page records from an archive root.
type Source struct {
	root   string
	seedID int64
	node   *schema.Node
}

// NewSource creates a Source for one seed. When node is non-nil, every
// decoded record is validated against it before projection.
func NewSource(root string, seedID int64, node *schema.Node) *Source {
	return &Source{root: root, seedID: seedID, node: node}
}

// Dir returns the directory holding the seed's shards.
func (s *Source) Dir() string {
	return filepath.Join(s.root, fmt.Sprintf("seed_id=%d", s.seedID), "text__html")
}

// Records returns an iterator over the seed's records in lexicographic
// shard order. The order is stable across calls, which lets the pipeline
// sample and write over two separate passes.
func (s *Source) Records(ctx context.Context) (seedcorpus.RecordIterator, error) {
	shards, err := filepath.Glob(filepath.Join(s.Dir(), "*.jsonl.gz"))
	if err != nil {
		return nil, fmt.Errorf("list shards: %w", err)
	}
	if len(shards) == 0 {
		return nil, seedcorpus.Errorf(seedcorpus.ENOTFOUND, "no shards for seed %d under %s", s.seedID, s.Dir())
	}
	sort.Strings(shards)
	return &iterator{ctx: ctx, node: s.node, shards: shards}, nil
}

// iterator walks a fixed list of shards, streaming one decoded record at a
// time so arbitrarily large shards never load whole.
type iterator struct {
	ctx    context.Context
	node   *schema.Node
	shards []string
	index  int // next shard to open

	file *os.File
	gz   *gzip.Reader
	dec  *json.Decoder
}

func (it *iterator) Next() (*seedcorpus.PageRecord, error) {
	for {
		if err := it.ctx.Err(); err != nil {
			return nil, err
		}
		if it.dec == nil {
			if it.index >= len(it.shards) {
				return nil, io.EOF
			}
			if err := it.open(it.shards[it.index]); err != nil {
				return nil, err
			}
			it.index++
		}

		var raw map[string]any
		if err := it.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				if err := it.closeShard(); err != nil {
					return nil, fmt.Errorf("close shard %s: %w", it.shards[it.index-1], err)
				}
				continue
			}
			return nil, fmt.Errorf("decode shard %s: %w", it.shards[it.index-1], err)
		}
		return it.project(raw)
	}
}

func (it *iterator) Close() error {
	return it.closeShard()
}

func (it *iterator) open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open shard: %w", err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("open shard %s: %w", path, err)
	}
	dec := json.NewDecoder(gz)
	dec.UseNumber()
	it.file, it.gz, it.dec = f, gz, dec
	return nil
}

func (it *iterator) closeShard() error {
	if it.file == nil {
		return nil
	}
	gzErr := it.gz.Close()
	fileErr := it.file.Close()
	it.file, it.gz, it.dec = nil, nil, nil
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// project validates a decoded record and keeps the four fields the pipeline
// interprets. The fields must be present with non-null values whether or
// not schema validation is enabled.
func (it *iterator) project(raw map[string]any) (*seedcorpus.PageRecord, error) {
	if it.node != nil {
		if err := it.node.ValidateRecord(raw); err != nil {
			return nil, err
		}
	}

	rec := &seedcorpus.PageRecord{}
	var err error
	if rec.URL, err = stringField(raw, "url"); err != nil {
		return nil, err
	}
	if rec.ContentLanguages, err = stringField(raw, "content_languages"); err != nil {
		return nil, err
	}
	if rec.Text, err = stringField(raw, "text"); err != nil {
		return nil, err
	}
	if rec.SeedID, err = intField(raw, "seed_id"); err != nil {
		return nil, err
	}
	return rec, nil
}

func stringField(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", seedcorpus.Errorf(seedcorpus.ERECORD, "record missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not a string", key)
	}
	return s, nil
}

func intField(raw map[string]any, key string) (int64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, seedcorpus.Errorf(seedcorpus.ERECORD, "record missing required field %q", key)
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not an integer", key)
	}
	i, err := num.Int64()
	if err != nil {
		return 0, seedcorpus.Errorf(seedcorpus.ERECORD, "record field %q is not an integer", key)
	}
	return i, nil
}
