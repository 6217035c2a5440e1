package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"finsight/database"
	"finsight/models"

	"github.com/jackc/pgx/v5"
)

// ReportRunRepository persists the audit record written after every report
// execution
type ReportRunRepository struct {
	db *database.DB
}

// NewReportRunRepository creates a new report run repository
func NewReportRunRepository(db *database.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

// Create inserts a new report run record
func (r *ReportRunRepository) Create(ctx context.Context, run *models.ReportRun) error {
	paramsJSON, err := json.Marshal(run.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal run parameters: %w", err)
	}

	query := `
		INSERT INTO report_runs
		(id, report_name, parameters, status, row_count, rows_affected, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err = r.db.QueryRow(ctx, query,
		run.ID,
		run.ReportName,
		paramsJSON,
		run.Status,
		run.RowCount,
		run.RowsAffected,
		nullIfEmpty(run.Error),
		run.StartedAt,
		run.FinishedAt,
	).Scan(&run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create report run for %q: %w", run.ReportName, err)
	}

	return nil
}

// GetLatestByName returns the most recent run of the named report
func (r *ReportRunRepository) GetLatestByName(ctx context.Context, reportName string) (*models.ReportRun, error) {
	query := `
		SELECT id, report_name, parameters, status, row_count, rows_affected,
		       COALESCE(error, ''), started_at, finished_at, created_at
		FROM report_runs
		WHERE report_name = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	run, err := scanRun(r.db.QueryRow(ctx, query, reportName))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run of %q: %w", reportName, err)
	}

	return run, nil
}

// ListRecent returns the most recent runs across all reports, newest first
func (r *ReportRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.ReportRun, error) {
	query := `
		SELECT id, report_name, parameters, status, row_count, rows_affected,
		       COALESCE(error, ''), started_at, finished_at, created_at
		FROM report_runs
		ORDER BY started_at DESC, id
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent report runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ReportRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate report runs: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*models.ReportRun, error) {
	var run models.ReportRun
	var paramsJSON []byte

	err := row.Scan(
		&run.ID,
		&run.ReportName,
		&paramsJSON,
		&run.Status,
		&run.RowCount,
		&run.RowsAffected,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &run.Parameters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run parameters: %w", err)
		}
	}

	return &run, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
