package repository

import (
	"context"
	"testing"
	"time"

	"finsight/catalog"
	"finsight/models"
	"finsight/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runReport generates and executes a built-in read report against the test
// database, anchored at a fixed as-of instant.
func runReport(t *testing.T, store *Store, name string, values map[string]any, asOf time.Time) [][]any {
	t.Helper()

	cat, err := catalog.NewWithBuiltins()
	require.NoError(t, err)
	def, err := cat.Get(name)
	require.NoError(t, err)

	sqlText, args, err := catalog.BuildSQL(def, catalog.Binding{Values: values, AsOf: asOf})
	require.NoError(t, err)

	cols, rows, err := store.Query(context.Background(), sqlText, args)
	require.NoError(t, err)
	require.Len(t, cols, len(def.Columns))

	return rows
}

func runSweep(t *testing.T, store *Store, inactiveDays int, asOf time.Time) int64 {
	t.Helper()

	cat, err := catalog.NewWithBuiltins()
	require.NoError(t, err)
	def, err := cat.Get(catalog.ReportDeactivateStaleUsers)
	require.NoError(t, err)

	sqlText, args, err := catalog.BuildWriteSQL(def, catalog.Binding{
		Values: map[string]any{"inactive_days": inactiveDays},
		AsOf:   asOf,
	})
	require.NoError(t, err)

	affected, err := store.Exec(context.Background(), sqlText, args)
	require.NoError(t, err)
	return affected
}

func testPlan(ownerID int64, name string, isSavings, isInvestment bool, createdAt time.Time) *models.Plan {
	return &models.Plan{
		OwnerID:           ownerID,
		Name:              name,
		IsSavings:         isSavings,
		IsFixedInvestment: isInvestment,
		CreatedAt:         createdAt,
	}
}

func TestStore_NewSignups_WindowBoundaries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// lookback=60 anchored at 2025-06-01 spans [2025-04-02, 2025-06-01]
	onLowerBound := testutil.CreateTestUser("lower", time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))
	justOutside := testutil.CreateTestUser("outside", time.Date(2025, 4, 1, 23, 59, 59, 0, time.UTC))
	onUpperBound := testutil.CreateTestUser("upper", asOf)
	inactive := testutil.CreateTestUser("inactive", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC))
	inactive.IsActive = false

	testutil.InsertUser(t, testDB.DB, onLowerBound)
	testutil.InsertUser(t, testDB.DB, justOutside)
	testutil.InsertUser(t, testDB.DB, onUpperBound)
	testutil.InsertUser(t, testDB.DB, inactive)

	rows := runReport(t, store, "new-signups", map[string]any{"lookback_days": 60}, asOf)

	require.Len(t, rows, 2)
	// Sorted by date_joined descending
	assert.Equal(t, onUpperBound.ID, rows[0][0])
	assert.Equal(t, onLowerBound.ID, rows[1][0])
}

func TestStore_TotalSavingsPerUser_ZeroForUsersWithoutEntries(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	saver := testutil.CreateTestUser("saver", joined)
	nonSaver := testutil.CreateTestUser("nonsaver", joined)
	testutil.InsertUser(t, testDB.DB, saver)
	testutil.InsertUser(t, testDB.DB, nonSaver)

	testutil.InsertSavings(t, testDB.DB, saver.ID, 1000, joined.AddDate(0, 1, 0))
	testutil.InsertSavings(t, testDB.DB, saver.ID, 500, joined.AddDate(0, 2, 0))

	rows := runReport(t, store, "total-savings-per-user", nil, asOf)

	require.Len(t, rows, 2)
	assert.Equal(t, saver.ID, rows[0][0])
	assert.Equal(t, float64(1500), rows[0][2])

	// The user with no entries still appears, reporting 0
	assert.Equal(t, nonSaver.ID, rows[1][0])
	assert.Equal(t, float64(0), rows[1][2])
}

func TestStore_TopSavers_TieBreakByUserID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Three users with identical totals; only insertion order separates them
	var ids []int64
	for _, name := range []string{"tie_a", "tie_b", "tie_c"} {
		u := testutil.CreateTestUser(name, joined)
		testutil.InsertUser(t, testDB.DB, u)
		testutil.InsertSavings(t, testDB.DB, u.ID, 750, joined.AddDate(0, 1, 0))
		ids = append(ids, u.ID)
	}

	rows := runReport(t, store, "top-savers", map[string]any{"limit": 2}, asOf)

	// Equal totals resolve by user id ascending, so the cut is deterministic
	require.Len(t, rows, 2)
	assert.Equal(t, ids[0], rows[0][0])
	assert.Equal(t, ids[1], rows[1][0])
}

func TestStore_UsersWithoutWithdrawals_ListedExactlyOnce(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	hoarder := testutil.CreateTestUser("hoarder", joined)
	spender := testutil.CreateTestUser("spender", joined)
	testutil.InsertUser(t, testDB.DB, hoarder)
	testutil.InsertUser(t, testDB.DB, spender)

	// Many savings rows must not duplicate the user in the result
	testutil.InsertSavings(t, testDB.DB, hoarder.ID, 100, joined.AddDate(0, 1, 0))
	testutil.InsertSavings(t, testDB.DB, hoarder.ID, 200, joined.AddDate(0, 2, 0))
	testutil.InsertSavings(t, testDB.DB, hoarder.ID, 300, joined.AddDate(0, 3, 0))

	testutil.InsertWithdrawal(t, testDB.DB, spender.ID, 50, joined.AddDate(0, 1, 0))

	rows := runReport(t, store, "users-without-withdrawals", nil, asOf)

	require.Len(t, rows, 1)
	assert.Equal(t, hoarder.ID, rows[0][0])
}

func TestStore_WithdrawalSavingsRatio_ZeroOverZero(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	idle := testutil.CreateTestUser("idle", joined)
	active := testutil.CreateTestUser("busy", joined)
	testutil.InsertUser(t, testDB.DB, idle)
	testutil.InsertUser(t, testDB.DB, active)

	testutil.InsertSavings(t, testDB.DB, active.ID, 400, joined.AddDate(0, 1, 0))
	testutil.InsertWithdrawal(t, testDB.DB, active.ID, 100, joined.AddDate(0, 2, 0))

	rows := runReport(t, store, "withdrawal-savings-ratio", nil, asOf)
	require.Len(t, rows, 2)

	byID := make(map[int64][]any)
	for _, row := range rows {
		byID[row[0].(int64)] = row
	}

	// 100 of 400 withdrawn
	assert.Equal(t, float64(25), byID[active.ID][4])

	// No savings and no withdrawals reports 0, not an error or NULL
	assert.Equal(t, float64(0), byID[idle.ID][4])
}

func TestStore_DeactivationSweep_Idempotent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	staleLogin := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	freshLogin := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	stale := testutil.CreateTestUser("stale", joined)
	stale.LastLogin = &staleLogin
	neverLoggedIn := testutil.CreateTestUser("ghost", joined)
	fresh := testutil.CreateTestUser("fresh", joined)
	fresh.LastLogin = &freshLogin

	testutil.InsertUser(t, testDB.DB, stale)
	testutil.InsertUser(t, testDB.DB, neverLoggedIn)
	testutil.InsertUser(t, testDB.DB, fresh)

	// First sweep catches the stale login and the null login
	affected := runSweep(t, store, 90, asOf)
	assert.Equal(t, int64(2), affected)

	// Re-running over unchanged data touches nothing
	affected = runSweep(t, store, 90, asOf)
	assert.Equal(t, int64(0), affected)

	// The fresh user survived both sweeps
	var isActive bool
	err := testDB.DB.QueryRow(context.Background(),
		"SELECT is_active FROM users_customuser WHERE id = $1", fresh.ID).Scan(&isActive)
	require.NoError(t, err)
	assert.True(t, isActive)
}

func TestStore_RiskSegments_BandsAndCounts(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, risk := range map[string]int{
		"cautious": 1, "careful": 3, "balanced": 5, "bold": 8, "reckless": 10,
	} {
		u := testutil.CreateTestUser(name, joined)
		u.RiskAppetite = risk
		testutil.InsertUser(t, testDB.DB, u)
	}

	rows := runReport(t, store, "risk-segments", map[string]any{"low_max": 3, "medium_max": 6}, asOf)

	counts := make(map[string]int64)
	for _, row := range rows {
		counts[row[0].(string)] = row[1].(int64)
	}
	assert.Equal(t, int64(2), counts["low"])
	assert.Equal(t, int64(1), counts["medium"])
	assert.Equal(t, int64(2), counts["high"])
}

func TestStore_PlanAdoption_CountsDistinctOwners(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)

	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	joined := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	planner := testutil.CreateTestUser("planner", joined)
	investor := testutil.CreateTestUser("investor", joined)
	bystander := testutil.CreateTestUser("bystander", joined)
	testutil.InsertUser(t, testDB.DB, planner)
	testutil.InsertUser(t, testDB.DB, investor)
	testutil.InsertUser(t, testDB.DB, bystander)

	// Two plans for one user still count that user once
	testutil.InsertPlan(t, testDB.DB, testPlan(planner.ID, "vacation", true, false, joined))
	testutil.InsertPlan(t, testDB.DB, testPlan(planner.ID, "rainy day", true, false, joined))
	testutil.InsertPlan(t, testDB.DB, testPlan(investor.ID, "bonds", false, true, joined))

	rows := runReport(t, store, "plan-adoption", nil, asOf)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(3), row[0])          // total_users
	assert.Equal(t, int64(2), row[1])          // users_with_plans
	assert.Equal(t, 66.67, row[2])             // adoption_pct
	assert.Equal(t, int64(1), row[3])          // savings_plan_users
	assert.Equal(t, int64(1), row[4])          // investment_plan_users
}
