// Package seedcorpus assembles language-model training corpora from
// pseudo-crawl seed archives. For each seed it detects boilerplate lines
// that recur verbatim across distinct pages, strips them from every page,
// and writes a deduplicated, length-filtered JSONL artifact ready for
// publication to a dataset repository.
//
// This package contains domain types and interfaces following the standard
// package layout: implementations live in subdirectories named after their
// primary dependency or concern (e.g., sqlite/, archive/, hub/).
package seedcorpus

import (
	"context"
)

// RecordIterator streams page records from a seed archive in a stable
// order. Next returns io.EOF after the last record. Callers must Close the
// iterator when done, including after a failed Next.
type RecordIterator interface {
	Next() (*PageRecord, error)
	Close() error
}

// RecordSource opens record streams over one seed's archive. Every Records
// call returns a fresh iterator positioned at the first record and yielding
// records in the same order, so callers can take multiple passes over the
// same seed (the pipeline takes two: one to sample, one to write).
type RecordSource interface {
	Records(ctx context.Context) (RecordIterator, error)
}

// Publisher pushes a finished corpus artifact to a remote dataset
// repository. Implementations must refuse to publish without a credential
// rather than attempt an anonymous upload.
type Publisher interface {
	Publish(ctx context.Context, filePath, repoName string) error
}
