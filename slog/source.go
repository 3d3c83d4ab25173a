package slog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/seedcorpus"
)

// Ensure LoggingRecordSource implements seedcorpus.RecordSource.
var (
	_ seedcorpus.RecordSource   = (*LoggingRecordSource)(nil)
	_ seedcorpus.RecordIterator = (*loggingIterator)(nil)
)

// LoggingRecordSource wraps a RecordSource with pass logging: one line when
// a stream opens, one when its iterator closes, with the record count read
// in between.
type LoggingRecordSource struct {
	next   seedcorpus.RecordSource
	logger *slog.Logger
}

// NewLoggingRecordSource creates a new LoggingRecordSource.
func NewLoggingRecordSource(next seedcorpus.RecordSource, logger *slog.Logger) *LoggingRecordSource {
	return &LoggingRecordSource{next: next, logger: logger}
}

// Records delegates to the wrapped source and logs the stream open.
func (s *LoggingRecordSource) Records(ctx context.Context) (seedcorpus.RecordIterator, error) {
	it, err := s.next.Records(ctx)
	if err != nil {
		s.logger.Info("open record stream", "err", err)
		return nil, err
	}
	s.logger.Info("open record stream", "err", nil)
	return &loggingIterator{next: it, logger: s.logger, begin: time.Now()}, nil
}

type loggingIterator struct {
	next   seedcorpus.RecordIterator
	logger *slog.Logger
	begin  time.Time
	count  int
}

func (it *loggingIterator) Next() (*seedcorpus.PageRecord, error) {
	rec, err := it.next.Next()
	if err == nil {
		it.count++
	} else if !errors.Is(err, io.EOF) {
		it.logger.Error("read record", "records", it.count, "err", err)
	}
	return rec, err
}

func (it *loggingIterator) Close() error {
	err := it.next.Close()
	it.logger.Info("close record stream",
		"records", it.count,
		"duration", time.Since(it.begin),
		"err", err,
	)
	return err
}
