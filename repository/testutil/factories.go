package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"finsight/database"
	"finsight/models"

	"github.com/stretchr/testify/require"
)

// CreateTestUser builds a user with sensible defaults. Mutate the returned
// struct before inserting when a test needs specific values.
func CreateTestUser(name string, joined time.Time) *models.User {
	return &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		DateJoined:   joined,
		IsActive:     true,
		RiskAppetite: 5,
		Salary:       60000,
		Gender:       "female",
		Location:     "Lagos",
	}
}

// InsertUser persists a test user and fills in its generated id
func InsertUser(t *testing.T, db *database.DB, user *models.User) {
	t.Helper()

	query := `
		INSERT INTO users_customuser
		(name, email, date_joined, last_login, is_active, risk_appetite, salary, gender, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := db.QueryRow(context.Background(), query,
		user.Name,
		user.Email,
		user.DateJoined,
		user.LastLogin,
		user.IsActive,
		user.RiskAppetite,
		user.Salary,
		user.Gender,
		user.Location,
	).Scan(&user.ID)
	require.NoError(t, err)
}

// InsertSavings persists a savings entry for a user
func InsertSavings(t *testing.T, db *database.DB, ownerID int64, amount float64, when time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO savings_savingsentry (owner_id, amount, transaction_date) VALUES ($1, $2, $3)`,
		ownerID, amount, when)
	require.NoError(t, err)
}

// InsertWithdrawal persists a withdrawal for a user
func InsertWithdrawal(t *testing.T, db *database.DB, ownerID int64, amount float64, when time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO savings_withdrawal (owner_id, amount, transaction_date) VALUES ($1, $2, $3)`,
		ownerID, amount, when)
	require.NoError(t, err)
}

// InsertPlan persists a plan for a user
func InsertPlan(t *testing.T, db *database.DB, plan *models.Plan) {
	t.Helper()

	query := `
		INSERT INTO plans_plan (owner_id, name, is_savings, is_fixed_investment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := db.QueryRow(context.Background(), query,
		plan.OwnerID,
		plan.Name,
		plan.IsSavings,
		plan.IsFixedInvestment,
		plan.CreatedAt,
	).Scan(&plan.ID)
	require.NoError(t, err)
}
