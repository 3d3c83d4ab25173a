package mock

import (
	"context"

	"github.com/fwojciec/seedcorpus"
)

// Compile-time interface verification.
var _ seedcorpus.RunService = (*RunService)(nil)

// RunService is a mock implementation of seedcorpus.RunService.
type RunService struct {
	CreateRunFn     func(ctx context.Context, run *seedcorpus.Run) error
	FindRunsFn      func(ctx context.Context, filter seedcorpus.RunFilter) ([]*seedcorpus.Run, error)
	MarkPublishedFn func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *seedcorpus.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRuns(ctx context.Context, filter seedcorpus.RunFilter) ([]*seedcorpus.Run, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) MarkPublished(ctx context.Context, id string) error {
	return s.MarkPublishedFn(ctx, id)
}
