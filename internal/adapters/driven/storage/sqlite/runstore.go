package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/litpress/litpress-cli/internal/core/domain"
	"github.com/litpress/litpress-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// CreateRun records the start of a new pipeline run.
func (s *Store) CreateRun(ctx context.Context, run domain.PipelineRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, document_id, source, collection, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.DocumentID, run.Source, run.Collection, string(run.Status), run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// RecordStage appends a stage outcome to an existing run.
func (s *Store) RecordStage(ctx context.Context, runID string, artifact domain.StageArtifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_stages (run_id, position, stage, kind, status, artifact_path, recorded_at)
		VALUES (?, (SELECT COUNT(*) FROM run_stages WHERE run_id = ?), ?, ?, ?, ?, ?)`,
		runID, runID, artifact.Stage, string(artifact.Kind), string(artifact.Status), artifact.Path, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting stage %q for run %s: %w", artifact.Stage, runID, err)
	}
	return nil
}

// CompleteRun finalises a run with its status, final document path and,
// for failed runs, the failure reason.
func (s *Store) CompleteRun(ctx context.Context, runID string, status domain.RunStatus, finalPath, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, final_path = ?, error = ?, completed_at = ?
		WHERE id = ?`,
		string(status), finalPath, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", runID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of run %s: %w", runID, err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", runID, domain.ErrNotFound)
	}
	return nil
}

// GetRun returns a run with its recorded stages.
func (s *Store) GetRun(ctx context.Context, runID string) (domain.PipelineRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, source, collection, status, final_path, error, started_at, completed_at
		FROM runs WHERE id = ?`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PipelineRun{}, fmt.Errorf("run %s: %w", runID, domain.ErrNotFound)
		}
		return domain.PipelineRun{}, fmt.Errorf("querying run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, kind, status, artifact_path
		FROM run_stages WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return domain.PipelineRun{}, fmt.Errorf("querying stages of run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var artifact domain.StageArtifact
		var kind, status string
		if err := rows.Scan(&artifact.Stage, &kind, &status, &artifact.Path); err != nil {
			return domain.PipelineRun{}, fmt.Errorf("scanning stage row: %w", err)
		}
		artifact.Kind = domain.ArtifactKind(kind)
		artifact.Status = domain.StageStatus(status)
		run.Artifacts = append(run.Artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return domain.PipelineRun{}, fmt.Errorf("iterating stage rows: %w", err)
	}

	return run, nil
}

// ListRuns returns runs ordered most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, source, collection, status, final_path, error, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}

	return runs, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanRun.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (domain.PipelineRun, error) {
	var run domain.PipelineRun
	var status string
	var completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.DocumentID, &run.Source, &run.Collection,
		&status, &run.FinalPath, &run.Error, &run.StartedAt, &completedAt,
	)
	if err != nil {
		return domain.PipelineRun{}, err
	}

	run.Status = domain.RunStatus(status)
	if completedAt.Valid {
		run.CompletedAt = completedAt.Time
	}
	return run, nil
}
