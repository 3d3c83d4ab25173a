package corpus

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/seedcorpus"
)

// DefaultMinChars is the library default for the minimum-content filter.
// Production builds typically raise it; the CLI defaults to 128.
const DefaultMinChars = 32

// Stats summarizes one artifact's construction.
type Stats struct {
	Written          int
	DroppedShort     int
	DroppedDuplicate int

	// Bytes and Hash cover the serialized records before compression, so
	// they are comparable across gzipped and plain artifacts. Hash is only
	// set after a successful Commit.
	Bytes int64
	Hash  string
}

// Writer streams processed records into a corpus artifact with exact
// duplicate suppression and a minimum-content filter.
//
// Records are written to a temporary file next to the final path; Commit
// makes the artifact visible atomically and Abort discards it, so a partial
// artifact is never left at the final path. A Writer is single-use and not
// safe for concurrent use.
type Writer struct {
	path     string
	minChars int
	gzipped  bool

	file    *os.File
	buf     *bufio.Writer
	gz      *gzip.Writer
	out     io.Writer
	hash    *xxhash.Digest
	emitted *EmittedSet
	stats   Stats
	done    bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithGzip wraps the artifact stream in gzip compression. The record format
// is unchanged; compression is transport-level wrapping only.
func WithGzip(gzipped bool) Option {
	return func(w *Writer) { w.gzipped = gzipped }
}

// WithMinChars sets the minimum number of characters (code points, not
// bytes) a record's text must exceed to be written. Defaults to
// DefaultMinChars.
func WithMinChars(n int) Option {
	return func(w *Writer) { w.minChars = n }
}

// NewWriter creates the temporary file backing the artifact at path.
func NewWriter(path string, opts ...Option) (*Writer, error) {
	w := &Writer{
		path:     path,
		minChars: DefaultMinChars,
		hash:     xxhash.New(),
		emitted:  NewEmittedSet(),
	}
	for _, opt := range opts {
		opt(w)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create artifact directory: %w", err)
		}
	}
	f, err := os.Create(w.tempPath())
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	w.file = f
	if w.gzipped {
		w.gz = gzip.NewWriter(f)
		w.out = w.gz
	} else {
		w.buf = bufio.NewWriter(f)
		w.out = w.buf
	}
	return w, nil
}

func (w *Writer) tempPath() string {
	return w.path + ".tmp"
}

// Path returns the final artifact path.
func (w *Writer) Path() string {
	return w.path
}

// Write serializes rec into the artifact unless its text is too short or
// its normalized (lower-cased, stripped) form was already emitted. It
// reports whether the record was written.
//
// The length check runs against the text as given while dedup uses the
// normalized form, so a text padded with whitespace can pass the length
// check its stripped twin fails. Downstream record counts depend on this
// asymmetry, so it is kept.
func (w *Writer) Write(rec *seedcorpus.ProcessedRecord) (bool, error) {
	if w.done {
		return false, seedcorpus.Errorf(seedcorpus.EINTERNAL, "write to a committed or aborted artifact")
	}

	if utf8.RuneCountInString(rec.Text) <= w.minChars {
		w.stats.DroppedShort++
		return false, nil
	}
	norm := strings.ToLower(strings.TrimSpace(rec.Text))
	if w.emitted.Has(norm) {
		w.stats.DroppedDuplicate++
		return false, nil
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("serialize record: %w", err)
	}
	line = append(line, '\n')
	if _, err := w.out.Write(line); err != nil {
		return false, fmt.Errorf("write record: %w", err)
	}
	_, _ = w.hash.Write(line) // never fails

	w.emitted.Add(norm)
	w.stats.Written++
	w.stats.Bytes += int64(len(line))
	return true, nil
}

// Commit flushes, syncs, and closes the artifact, then atomically renames
// it into place. Once Commit returns the artifact at Path is complete.
func (w *Writer) Commit() error {
	if w.done {
		return seedcorpus.Errorf(seedcorpus.EINTERNAL, "commit a committed or aborted artifact")
	}
	w.done = true

	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.discard()
			return fmt.Errorf("close compressed stream: %w", err)
		}
	}
	if w.buf != nil {
		if err := w.buf.Flush(); err != nil {
			w.discard()
			return fmt.Errorf("flush artifact: %w", err)
		}
	}
	if err := w.file.Sync(); err != nil {
		w.discard()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.tempPath())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(w.tempPath(), w.path); err != nil {
		_ = os.Remove(w.tempPath())
		return fmt.Errorf("publish artifact: %w", err)
	}
	w.stats.Hash = fmt.Sprintf("%016x", w.hash.Sum64())
	return nil
}

// Abort closes and removes the temporary file. It is a no-op after Commit,
// so callers can defer it unconditionally.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.file.Close()
	return os.Remove(w.tempPath())
}

func (w *Writer) discard() {
	_ = w.file.Close()
	_ = os.Remove(w.tempPath())
}

// Stats returns the construction summary.
func (w *Writer) Stats() Stats {
	return w.stats
}
