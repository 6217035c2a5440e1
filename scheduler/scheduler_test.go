package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"finsight/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	mu     sync.Mutex
	names  []string
	params []map[string]any
	result *service.Result
	err    error
}

func (s *stubExecutor) Run(ctx context.Context, name string, params map[string]any) (*service.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	s.params = append(s.params, params)
	return s.result, s.err
}

func (s *stubExecutor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

func TestScheduler_RunNow(t *testing.T) {
	stub := &stubExecutor{
		result: &service.Result{
			RunID:      uuid.New(),
			ReportName: "top-savers",
			Columns:    []string{"user_id", "name", "total_savings"},
		},
	}
	sched := New(stub)

	result, err := sched.RunNow(context.Background(), "top-savers", map[string]any{"limit": 10})

	require.NoError(t, err)
	assert.Equal(t, stub.result, result)
	require.Equal(t, []string{"top-savers"}, stub.names)
	assert.Equal(t, map[string]any{"limit": 10}, stub.params[0])
}

func TestScheduler_NightlySweep_StopsCleanly(t *testing.T) {
	stub := &stubExecutor{result: &service.Result{}}
	sched := New(stub)

	// Schedule for an hour that is not now; the worker should wait, then
	// stop without ever firing.
	hour := (time.Now().UTC().Hour() + 2) % 24
	cleanup := sched.StartNightlySweep(context.Background(), hour, 90)

	time.Sleep(50 * time.Millisecond)
	cleanup()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, stub.calls())
}

func TestScheduler_NightlySweep_StopsOnContextCancel(t *testing.T) {
	stub := &stubExecutor{result: &service.Result{}}
	sched := New(stub)

	ctx, cancel := context.WithCancel(context.Background())
	hour := (time.Now().UTC().Hour() + 2) % 24
	_ = sched.StartNightlySweep(ctx, hour, 90)

	cancel()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, stub.calls())
}

func TestScheduler_MonthlySignupTrend_StopsCleanly(t *testing.T) {
	stub := &stubExecutor{result: &service.Result{}}
	sched := New(stub)

	hour := (time.Now().UTC().Hour() + 2) % 24
	cleanup := sched.StartMonthlySignupTrend(context.Background(), hour, 12)

	time.Sleep(50 * time.Millisecond)
	cleanup()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, stub.calls())
}
