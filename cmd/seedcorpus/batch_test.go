package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/seedcorpus"
	main "github.com/fwojciec/seedcorpus/cmd/seedcorpus"
	"github.com/fwojciec/seedcorpus/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeManifest writes a YAML manifest into dir and returns its path.
func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBatchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("builds every manifest seed", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeSeedShard(t, root, 686, "000.jsonl.gz", archivePages(686, 12)...)
		writeSeedShard(t, root, 687, "000.jsonl.gz", archivePages(687, 12)...)
		out := t.TempDir()

		manifest := writeManifest(t, t.TempDir(), `seeds:
  - seed_id: 686
    language: zh
    name: wikinews
  - seed_id: 687
    language: fr
    name: wikisource
`)

		createCalls := 0
		runs := &mock.RunService{
			CreateRunFn: func(_ context.Context, run *seedcorpus.Run) error {
				createCalls++
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Runs:   runs,
		}

		cmd := &main.BatchCmd{
			Manifest: manifest,
			Archive:  root,
			Out:      out,
			Schema:   writeDescription(t, t.TempDir()),
			MinChars: 20,
		}

		err := cmd.Run(deps)
		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "Built lm_zh_pseudocrawl_wikinews")
		assert.Contains(t, output, "Built lm_fr_pseudocrawl_wikisource")
		assert.Empty(t, stderr.String())
		assert.Equal(t, 2, createCalls)
		assert.FileExists(t, filepath.Join(out, "lm_zh_pseudocrawl_wikinews.jsonl"))
		assert.FileExists(t, filepath.Join(out, "lm_fr_pseudocrawl_wikisource.jsonl"))
	})

	t.Run("continues past a failed seed", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeSeedShard(t, root, 686, "000.jsonl.gz", archivePages(686, 12)...)
		out := t.TempDir()

		manifest := writeManifest(t, t.TempDir(), `seeds:
  - seed_id: 999
    language: pt
    name: ghost
  - seed_id: 686
    language: zh
    name: wikinews
`)

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Runs:   &mock.RunService{CreateRunFn: func(_ context.Context, _ *seedcorpus.Run) error { return nil }},
		}

		cmd := &main.BatchCmd{
			Manifest: manifest,
			Archive:  root,
			Out:      out,
			Schema:   writeDescription(t, t.TempDir()),
			MinChars: 20,
		}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 builds failed")
		assert.Contains(t, stderr.String(), "error:")
		assert.Contains(t, stdout.String(), "Built lm_zh_pseudocrawl_wikinews")
		assert.FileExists(t, filepath.Join(out, "lm_zh_pseudocrawl_wikinews.jsonl"))
	})

	t.Run("rejects an empty manifest", func(t *testing.T) {
		t.Parallel()

		manifest := writeManifest(t, t.TempDir(), "seeds: []\n")

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
		}

		cmd := &main.BatchCmd{Manifest: manifest}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, seedcorpus.EINVALID, seedcorpus.ErrorCode(err))
		assert.Contains(t, seedcorpus.ErrorMessage(err), "no seeds")
	})

	t.Run("rejects a seed without a name", func(t *testing.T) {
		t.Parallel()

		manifest := writeManifest(t, t.TempDir(), `seeds:
  - seed_id: 686
    language: zh
`)

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
		}

		cmd := &main.BatchCmd{Manifest: manifest}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, seedcorpus.EINVALID, seedcorpus.ErrorCode(err))
		assert.Contains(t, seedcorpus.ErrorMessage(err), "name required")
	})

	t.Run("returns error for missing manifest file", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
		}

		cmd := &main.BatchCmd{Manifest: filepath.Join(t.TempDir(), "missing.yaml")}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, seedcorpus.EINVALID, seedcorpus.ErrorCode(err))
	})
}
