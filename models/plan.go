package models

import "time"

// Plan is a savings or investment plan owned by a user.
type Plan struct {
	ID                int64
	OwnerID           int64
	Name              string
	IsSavings         bool
	IsFixedInvestment bool
	CreatedAt         time.Time
}
