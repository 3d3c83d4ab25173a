// Package slog provides logging middleware for seedcorpus services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/seedcorpus"
)

// Ensure LoggingPublisher implements seedcorpus.Publisher.
var _ seedcorpus.Publisher = (*LoggingPublisher)(nil)

// LoggingPublisher wraps a Publisher with operation logging.
type LoggingPublisher struct {
	next   seedcorpus.Publisher
	logger *slog.Logger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(next seedcorpus.Publisher, logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, logger: logger}
}

// Publish delegates to the wrapped publisher and logs the operation.
func (p *LoggingPublisher) Publish(ctx context.Context, filePath, repoName string) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("publish artifact",
			"file", filePath,
			"repository", repoName,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Publish(ctx, filePath, repoName)
}
