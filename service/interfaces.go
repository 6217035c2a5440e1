package service

import (
	"context"

	"finsight/events"
	"finsight/models"
)

// Store executes generated statements against the platform database
type Store interface {
	// Query runs a read statement, returning column names and rows in
	// query order
	Query(ctx context.Context, sql string, args []any) ([]string, [][]any, error)

	// Exec runs a write statement, returning the number of affected rows
	Exec(ctx context.Context, sql string, args []any) (int64, error)
}

// ReportRunRecorder persists the audit trail of report executions
type ReportRunRecorder interface {
	Create(ctx context.Context, run *models.ReportRun) error
}

// EventPublisher publishes report lifecycle events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// ReportExecutor runs a named report with caller-supplied parameters
type ReportExecutor interface {
	Run(ctx context.Context, name string, params map[string]any) (*Result, error)
}
