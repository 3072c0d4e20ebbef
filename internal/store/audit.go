package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/griddock/stationscope/internal/processor"
	"github.com/griddock/stationscope/pkg/models"
)

// ErrRunNotFound is returned when no audit run exists for the given id.
var ErrRunNotFound = errors.New("audit run not found")

// ParsedFileRecord is one persisted parsed export, keyed by the run it
// belongs to, the dataset type (format), and the target location (the
// original file name).
type ParsedFileRecord struct {
	RunID          uuid.UUID         `json:"run_id"`
	DatasetType    string            `json:"dataset_type"`
	TargetLocation string            `json:"target_location"`
	Payload        models.ParsedFile `json:"payload"`
	CreatedAt      time.Time         `json:"created_at"`
}

var auditMigrations = []Migration{
	{
		Version:     1,
		Description: "create audit_runs table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE audit_runs (
					id              TEXT PRIMARY KEY,
					architecture    TEXT NOT NULL,
					total_files     INTEGER NOT NULL,
					processed_files INTEGER NOT NULL,
					failed_files    INTEGER NOT NULL,
					result          TEXT NOT NULL,
					created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			return err
		},
	},
	{
		Version:     2,
		Description: "create parsed_files table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE parsed_files (
					run_id          TEXT NOT NULL REFERENCES audit_runs(id) ON DELETE CASCADE,
					dataset_type    TEXT NOT NULL,
					target_location TEXT NOT NULL,
					payload         TEXT NOT NULL,
					created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (run_id, dataset_type, target_location)
				)`)
			return err
		},
	},
}

// SaveParsedFile upserts one parsed export file.
func (s *SQLiteStore) SaveParsedFile(ctx context.Context, rec ParsedFileRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("marshal parsed file %q: %w", rec.TargetLocation, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO parsed_files (run_id, dataset_type, target_location, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (run_id, dataset_type, target_location)
		DO UPDATE SET payload = excluded.payload`,
		rec.RunID.String(), rec.DatasetType, rec.TargetLocation, string(payload),
	)
	if err != nil {
		return fmt.Errorf("save parsed file %q: %w", rec.TargetLocation, err)
	}
	return nil
}

// GetRunFiles returns the parsed files stored for a run, ordered by
// dataset type then location.
func (s *SQLiteStore) GetRunFiles(ctx context.Context, runID uuid.UUID) ([]ParsedFileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, dataset_type, target_location, payload, created_at
		FROM parsed_files
		WHERE run_id = ?
		ORDER BY dataset_type, target_location`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query run files %s: %w", runID, err)
	}
	defer rows.Close()

	var recs []ParsedFileRecord
	for rows.Next() {
		var (
			rec     ParsedFileRecord
			id      string
			payload string
		)
		if err := rows.Scan(&id, &rec.DatasetType, &rec.TargetLocation, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		if rec.RunID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal parsed file %q: %w", rec.TargetLocation, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// SaveBatch persists a completed batch: the run row plus every parsed file,
// atomically.
func (s *SQLiteStore) SaveBatch(ctx context.Context, batch *processor.BatchResult) error {
	result, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", batch.RunID, err)
	}

	return s.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO audit_runs (id, architecture, total_files, processed_files, failed_files, result)
			VALUES (?, ?, ?, ?, ?, ?)`,
			batch.RunID.String(), string(batch.Metadata.Architecture),
			batch.Metadata.TotalFiles, batch.Metadata.ProcessedFiles,
			batch.Metadata.FailedFiles, string(result),
		)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", batch.RunID, err)
		}

		for name, parsed := range batch.Files {
			payload, err := json.Marshal(parsed)
			if err != nil {
				return fmt.Errorf("marshal parsed file %q: %w", name, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO parsed_files (run_id, dataset_type, target_location, payload)
				VALUES (?, ?, ?, ?)`,
				batch.RunID.String(), string(parsed.Format), name, string(payload),
			)
			if err != nil {
				return fmt.Errorf("insert parsed file %q: %w", name, err)
			}
		}
		return nil
	})
}

// GetRun loads a previously stored batch result.
func (s *SQLiteStore) GetRun(ctx context.Context, runID uuid.UUID) (*processor.BatchResult, error) {
	var result string
	err := s.db.QueryRowContext(ctx,
		"SELECT result FROM audit_runs WHERE id = ?", runID.String(),
	).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}

	var batch processor.BatchResult
	if err := json.Unmarshal([]byte(result), &batch); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", runID, err)
	}
	return &batch, nil
}

// ListRuns returns run metadata for the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, architecture, total_files, processed_files, failed_files, created_at
		FROM audit_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			run RunSummary
			id  string
		)
		if err := rows.Scan(&id, &run.Architecture, &run.TotalFiles,
			&run.ProcessedFiles, &run.FailedFiles, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunSummary is the list view of a stored audit run.
type RunSummary struct {
	ID             uuid.UUID `json:"id"`
	Architecture   string    `json:"architecture"`
	TotalFiles     int       `json:"total_files"`
	ProcessedFiles int       `json:"processed_files"`
	FailedFiles    int       `json:"failed_files"`
	CreatedAt      time.Time `json:"created_at"`
}
