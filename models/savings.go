package models

import "time"

// SavingsEntry is a single deposit belonging to a user. Entries are only ever
// aggregated by reports, never mutated.
type SavingsEntry struct {
	ID              int64
	OwnerID         int64
	Amount          float64
	TransactionDate time.Time
}

// Withdrawal is a single withdrawal belonging to a user. Same aggregation
// semantics as SavingsEntry.
type Withdrawal struct {
	ID              int64
	OwnerID         int64
	Amount          float64
	TransactionDate time.Time
}
