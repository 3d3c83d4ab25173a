package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/seedcorpus"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ seedcorpus.RunService = (*RunService)(nil)

// RunService implements seedcorpus.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a completed run and assigns its ID. The run's own
// timestamps are preserved because they describe the build, not the insert;
// zero values fall back to now.
func (s *RunService) CreateRun(ctx context.Context, run *seedcorpus.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	now := time.Now().UTC()
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, seed_id, language, name, repository,
			artifact_path, artifact_hash,
			records_read, records_written, dropped_short, dropped_duplicate,
			unique_pages, skip_lines, threshold,
			published, started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SeedID, run.Language, run.Name, run.Repository,
		run.ArtifactPath, run.ArtifactHash,
		run.RecordsRead, run.RecordsWritten, run.DroppedShort, run.DroppedDuplicate,
		run.UniquePages, run.SkipLines, run.Threshold,
		boolToInt(run.Published),
		run.StartedAt.Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339))

	return err
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter seedcorpus.RunFilter) ([]*seedcorpus.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT id, seed_id, language, name, repository,
		       artifact_path, artifact_hash,
		       records_read, records_written, dropped_short, dropped_duplicate,
		       unique_pages, skip_lines, threshold,
		       published, started_at, finished_at
		FROM runs
		WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.SeedID != nil {
		query.WriteString(" AND seed_id = ?")
		args = append(args, *filter.SeedID)
	}
	if filter.Published != nil {
		query.WriteString(" AND published = ?")
		args = append(args, boolToInt(*filter.Published))
	}

	query.WriteString(" ORDER BY finished_at DESC, id")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*seedcorpus.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkPublished flags a recorded run as published.
func (s *RunService) MarkPublished(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE runs SET published = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return seedcorpus.Errorf(seedcorpus.ENOTFOUND, "run not found")
	}
	return nil
}

func scanRun(rows *sql.Rows) (*seedcorpus.Run, error) {
	var run seedcorpus.Run
	var published int
	var startedAt, finishedAt string

	if err := rows.Scan(&run.ID, &run.SeedID, &run.Language, &run.Name, &run.Repository,
		&run.ArtifactPath, &run.ArtifactHash,
		&run.RecordsRead, &run.RecordsWritten, &run.DroppedShort, &run.DroppedDuplicate,
		&run.UniquePages, &run.SkipLines, &run.Threshold,
		&published, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.Published = published != 0

	var parseErr error
	run.StartedAt, parseErr = parseRFC3339(startedAt, "started_at")
	if parseErr != nil {
		return nil, parseErr
	}
	run.FinishedAt, parseErr = parseRFC3339(finishedAt, "finished_at")
	if parseErr != nil {
		return nil, parseErr
	}

	return &run, nil
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
