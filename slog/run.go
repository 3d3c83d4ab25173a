package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/seedcorpus"
)

// Ensure LoggingRunService implements seedcorpus.RunService.
var _ seedcorpus.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with operation logging.
type LoggingRunService struct {
	next   seedcorpus.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next seedcorpus.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *seedcorpus.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("record run",
			"repository", run.Repository,
			"written", run.RecordsWritten,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

// FindRuns delegates to the wrapped service.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter seedcorpus.RunFilter) ([]*seedcorpus.Run, error) {
	return s.next.FindRuns(ctx, filter)
}

// MarkPublished delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) MarkPublished(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("mark run published",
			"run", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.MarkPublished(ctx, id)
}
