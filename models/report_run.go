package models

import (
	"time"

	"github.com/google/uuid"
)

// Report run status values
const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ReportRun is the audit record for a single report execution
type ReportRun struct {
	ID           uuid.UUID
	ReportName   string
	Parameters   map[string]any
	Status       string
	RowCount     int
	RowsAffected int64
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
	CreatedAt    time.Time
}
