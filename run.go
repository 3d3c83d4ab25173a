package seedcorpus

import (
	"context"
	"time"
)

// Run records one completed corpus build. A run is created after the
// artifact is committed, so every ledger row points at a complete file.
type Run struct {
	ID         string `json:"id"`
	SeedID     int64  `json:"seedId"`
	Language   string `json:"language"`
	Name       string `json:"name"`
	Repository string `json:"repository"`

	// Artifact location and xxhash digest of its uncompressed records.
	ArtifactPath string `json:"artifactPath"`
	ArtifactHash string `json:"artifactHash"`

	// Counters accumulated while building the artifact.
	RecordsRead      int `json:"recordsRead"`
	RecordsWritten   int `json:"recordsWritten"`
	DroppedShort     int `json:"droppedShort"`
	DroppedDuplicate int `json:"droppedDuplicate"`
	UniquePages      int `json:"uniquePages"`
	SkipLines        int `json:"skipLines"`
	Threshold        int `json:"threshold"`

	Published  bool      `json:"published"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Language == "" {
		return Errorf(EINVALID, "run language required")
	}
	if r.Name == "" {
		return Errorf(EINVALID, "run name required")
	}
	if r.Repository == "" {
		return Errorf(EINVALID, "run repository required")
	}
	return nil
}

// RunService records and retrieves corpus build runs.
type RunService interface {
	// CreateRun records a completed run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// MarkPublished flags a recorded run as published.
	// Returns ENOTFOUND if the run does not exist.
	MarkPublished(ctx context.Context, id string) error
}

// RunFilter represents a filter passed to FindRuns.
type RunFilter struct {
	ID        *string `json:"id"`
	SeedID    *int64  `json:"seedId"`
	Published *bool   `json:"published"`

	// Restricts results. Limit of zero means unlimited.
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
