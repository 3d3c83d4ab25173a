package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/seedcorpus/cmd/seedcorpus"
	"github.com/fwojciec/seedcorpus/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_BuildThenRuns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSeedShard(t, root, 686, "000.jsonl.gz", archivePages(686, 12)...)
	out := t.TempDir()
	desc := writeDescription(t, t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "seedcorpus.db")

	m := main.NewMain()
	m.DBPath = dbPath
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{
		"build", "686", "zh", "wikinews",
		"--archive", root,
		"--out", out,
		"--schema", desc,
		"--min-chars", "20",
	}, stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Built lm_zh_pseudocrawl_wikinews")
	assert.FileExists(t, filepath.Join(out, "lm_zh_pseudocrawl_wikinews.jsonl"))

	// The run survives in the ledger for a fresh process.
	lister := main.NewMain()
	lister.DBPath = dbPath
	listOut := &bytes.Buffer{}
	listErr := &bytes.Buffer{}

	err = lister.Run(context.Background(), []string{"runs"}, listOut, listErr)
	require.NoError(t, err)
	assert.Contains(t, listOut.String(), "lm_zh_pseudocrawl_wikinews")
	assert.Contains(t, listOut.String(), "written=12/12")
}

func TestMain_Run_PushRequiresToken(t *testing.T) {
	t.Setenv("SEEDCORPUS_TOKEN", "")

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "seedcorpus.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"build", "686", "zh", "wikinews", "--push"}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEEDCORPUS_TOKEN not set")
	assert.Contains(t, stderr.String(), "SEEDCORPUS_TOKEN environment variable not set")
}

func TestMain_Run_PushTokenFlag(t *testing.T) {
	t.Setenv("SEEDCORPUS_TOKEN", "")

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "seedcorpus.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// The archive is missing, so the build fails after the credential
	// check. A token flag must satisfy that check without the env var.
	err := m.Run(context.Background(), []string{
		"build", "686", "zh", "wikinews",
		"--archive", filepath.Join(t.TempDir(), "ghost"),
		"--push",
		"--token", "hf_test",
	}, stdout, stderr)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SEEDCORPUS_TOKEN")
	assert.NotContains(t, stderr.String(), "SEEDCORPUS_TOKEN")
}

func TestMain_Run_DBFlag(t *testing.T) {
	t.Parallel()

	defaultPath := filepath.Join(t.TempDir(), "default.db")
	flagPath := filepath.Join(t.TempDir(), "flag.db")

	m := main.NewMain()
	m.DBPath = defaultPath
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--db", flagPath, "runs"}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No runs recorded")
	assert.FileExists(t, flagPath)
	assert.NoFileExists(t, defaultPath)
}

func TestMain_Run_PushWithPublisherOverride(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeSeedShard(t, root, 686, "000.jsonl.gz", archivePages(686, 12)...)
	out := t.TempDir()
	desc := writeDescription(t, t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "seedcorpus.db")

	var gotRepo string
	m := main.NewMain()
	m.DBPath = dbPath
	m.Publisher = &mock.Publisher{
		PublishFn: func(_ context.Context, filePath, repoName string) error {
			gotRepo = repoName
			return nil
		},
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{
		"build", "686", "zh", "wikinews",
		"--archive", root,
		"--out", out,
		"--schema", desc,
		"--min-chars", "20",
		"--push",
	}, stdout, stderr)
	require.NoError(t, err)

	assert.Equal(t, "lm_zh_pseudocrawl_wikinews", gotRepo)
	assert.Contains(t, stdout.String(), "Published")

	lister := main.NewMain()
	lister.DBPath = dbPath
	listOut := &bytes.Buffer{}

	err = lister.Run(context.Background(), []string{"runs"}, listOut, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, listOut.String(), "published")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "seedcorpus.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), nil, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestMain_Run_HelpWithoutCreatingDB(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seedcorpus.db")
	m := main.NewMain()
	m.DBPath = dbPath
	stdout := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})
	require.NoError(t, err)

	for _, cmd := range []string{"build", "batch", "detect", "runs"} {
		assert.Contains(t, stdout.String(), cmd)
	}
	assert.NoFileExists(t, dbPath)
}

func TestMain_Run_UnknownCommand(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "seedcorpus.db")

	err := m.Run(context.Background(), []string{"frobnicate"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
}
