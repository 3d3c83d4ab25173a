package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/seedcorpus/mock"
	scslog "github.com/fwojciec/seedcorpus/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPublisher_Publish(t *testing.T) {
	t.Parallel()

	t.Run("logs file and repository with duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Publisher{
			PublishFn: func(ctx context.Context, filePath, repoName string) error {
				return nil
			},
		}

		p := scslog.NewLoggingPublisher(inner, logger)
		err := p.Publish(context.Background(), "corpus.jsonl", "lm_fr_pseudocrawl_liberation")

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "publish artifact")
		assert.Contains(t, output, "file=corpus.jsonl")
		assert.Contains(t, output, "repository=lm_fr_pseudocrawl_liberation")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Publisher{
			PublishFn: func(ctx context.Context, filePath, repoName string) error {
				return errors.New("connection failed")
			},
		}

		p := scslog.NewLoggingPublisher(inner, logger)
		err := p.Publish(context.Background(), "corpus.jsonl", "lm_fr_pseudocrawl_liberation")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"connection failed\"")
	})
}
