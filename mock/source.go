package mock

import (
	"context"

	"github.com/fwojciec/seedcorpus"
)

// Compile-time interface verification.
var (
	_ seedcorpus.RecordSource   = (*RecordSource)(nil)
	_ seedcorpus.RecordIterator = (*RecordIterator)(nil)
)

// RecordSource is a mock implementation of seedcorpus.RecordSource.
type RecordSource struct {
	RecordsFn func(ctx context.Context) (seedcorpus.RecordIterator, error)
}

func (s *RecordSource) Records(ctx context.Context) (seedcorpus.RecordIterator, error) {
	return s.RecordsFn(ctx)
}

// RecordIterator is a mock implementation of seedcorpus.RecordIterator.
type RecordIterator struct {
	NextFn  func() (*seedcorpus.PageRecord, error)
	CloseFn func() error
}

func (it *RecordIterator) Next() (*seedcorpus.PageRecord, error) {
	return it.NextFn()
}

func (it *RecordIterator) Close() error {
	return it.CloseFn()
}
