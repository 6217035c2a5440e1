package repository

import (
	"context"
	"testing"
	"time"

	"finsight/models"
	"finsight/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRun(name string, startedAt time.Time) *models.ReportRun {
	return &models.ReportRun{
		ID:         uuid.New(),
		ReportName: name,
		Parameters: map[string]any{"lookback_days": 30},
		Status:     models.RunStatusSucceeded,
		RowCount:   12,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(150 * time.Millisecond),
	}
}

func TestReportRunRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReportRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		run := newTestRun("new-signups", time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC))

		err := repo.Create(ctx, run)
		require.NoError(t, err)
		assert.False(t, run.CreatedAt.IsZero())
	})

	t.Run("failed run keeps its error", func(t *testing.T) {
		run := newTestRun("top-savers", time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC))
		run.Status = models.RunStatusFailed
		run.RowCount = 0
		run.Error = "datastore failure: report \"top-savers\": connection refused"

		err := repo.Create(ctx, run)
		require.NoError(t, err)

		latest, err := repo.GetLatestByName(ctx, "top-savers")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, models.RunStatusFailed, latest.Status)
		assert.Contains(t, latest.Error, "connection refused")
	})

	t.Run("nil parameters", func(t *testing.T) {
		run := newTestRun("total-savings-per-user", time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC))
		run.Parameters = nil

		err := repo.Create(ctx, run)
		require.NoError(t, err)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		run := newTestRun("plan-adoption", time.Date(2025, 6, 4, 2, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Create(ctx, run))

		dup := newTestRun("plan-adoption", time.Date(2025, 6, 4, 3, 0, 0, 0, time.UTC))
		dup.ID = run.ID
		err := repo.Create(ctx, dup)
		assert.Error(t, err)
	})
}

func TestReportRunRepository_GetLatestByName(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReportRunRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no run found", func(t *testing.T) {
		run, err := repo.GetLatestByName(ctx, "dormant-users")
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("returns newest run of the name", func(t *testing.T) {
		older := newTestRun("dormant-users", time.Date(2025, 5, 30, 2, 0, 0, 0, time.UTC))
		newer := newTestRun("dormant-users", time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC))
		other := newTestRun("new-signups", time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC))
		require.NoError(t, repo.Create(ctx, older))
		require.NoError(t, repo.Create(ctx, newer))
		require.NoError(t, repo.Create(ctx, other))

		latest, err := repo.GetLatestByName(ctx, "dormant-users")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, newer.ID, latest.ID)

		// Parameters survive the JSON round trip as generic values
		assert.Equal(t, float64(30), latest.Parameters["lookback_days"])
	})
}

func TestReportRunRepository_ListRecent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReportRunRepository(testDB.DB)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"new-signups", "top-savers", "dormant-users", "plan-adoption"}
	for i, name := range names {
		run := newTestRun(name, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, run))
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 4)
		assert.Equal(t, "plan-adoption", runs[0].ReportName)
		assert.Equal(t, "new-signups", runs[3].ReportName)
	})

	t.Run("limit respected", func(t *testing.T) {
		runs, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "plan-adoption", runs[0].ReportName)
		assert.Equal(t, "dormant-users", runs[1].ReportName)
	})
}
