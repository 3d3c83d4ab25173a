package mock

import (
	"context"

	"github.com/fwojciec/seedcorpus"
)

// Compile-time interface verification.
var _ seedcorpus.Publisher = (*Publisher)(nil)

// Publisher is a mock implementation of seedcorpus.Publisher.
type Publisher struct {
	PublishFn func(ctx context.Context, filePath, repoName string) error
}

func (p *Publisher) Publish(ctx context.Context, filePath, repoName string) error {
	return p.PublishFn(ctx, filePath, repoName)
}
