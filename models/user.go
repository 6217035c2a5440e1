package models

import "time"

// User mirrors a row in the platform's users_customuser table.
// IsActive is derived state: the nightly inactivity sweep recomputes it from
// last-login recency, so readers must not treat it as authoritative between
// sweeps.
type User struct {
	ID           int64
	Name         string
	Email        string
	DateJoined   time.Time
	LastLogin    *time.Time
	IsActive     bool
	RiskAppetite int
	Salary       float64
	Gender       string
	Location     string
}
