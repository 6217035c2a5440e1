// Package scheduler triggers report executions on behalf of callers and
// background timers. It owns no report semantics of its own; everything is
// delegated to the executor.
package scheduler

import (
	"context"
	"time"

	"finsight/catalog"
	"finsight/service"

	log "github.com/sirupsen/logrus"
)

// Scheduler wraps a report executor with on-demand and timed triggers
type Scheduler struct {
	executor service.ReportExecutor
}

// New creates a new scheduler around the given executor
func New(executor service.ReportExecutor) *Scheduler {
	return &Scheduler{executor: executor}
}

// RunNow executes the named report immediately with the given parameters.
// It is a plain passthrough so ad-hoc triggers and timed triggers share one
// code path.
func (s *Scheduler) RunNow(ctx context.Context, name string, params map[string]any) (*service.Result, error) {
	return s.executor.Run(ctx, name, params)
}

// StartNightlySweep begins the daily deactivation sweep worker. The sweep
// runs once per day at sweepHour UTC and carries its own confirmation, since
// a timer has no operator to ask.
func (s *Scheduler) StartNightlySweep(ctx context.Context, sweepHour, inactiveDays int) func() {
	stopChan := make(chan struct{})

	// Calculate time until the next sweep
	calculateNextRun := func() time.Duration {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day(), sweepHour, 0, 0, 0, time.UTC)

		// If the sweep time has already passed today, schedule for tomorrow
		if now.After(next) || now.Equal(next) {
			next = next.Add(24 * time.Hour)
		}

		return next.Sub(now)
	}

	runSweep := func() {
		result, err := s.executor.Run(ctx, catalog.ReportDeactivateStaleUsers, map[string]any{
			"inactive_days": inactiveDays,
			"confirm":       true,
		})
		if err != nil {
			log.Errorf("Error running nightly deactivation sweep: %v", err)
			return
		}

		log.WithFields(log.Fields{
			"runID":       result.RunID,
			"deactivated": result.RowsAffected,
		}).Info("Nightly deactivation sweep completed")
	}

	go func() {
		log.Infof("Nightly sweep worker started, next run at %02d:00 UTC", sweepHour)

		for {
			waitDuration := calculateNextRun()
			log.Infof("Nightly sweep worker waiting %v until next run", waitDuration)

			select {
			case <-ctx.Done():
				log.Info("Nightly sweep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Nightly sweep worker shutting down (stop requested)...")
				return
			case <-time.After(waitDuration):
				runSweep()
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// StartMonthlySignupTrend begins the monthly signup trend worker. The report
// runs on the first day of each month at the given hour UTC, covering the
// trailing months window.
func (s *Scheduler) StartMonthlySignupTrend(ctx context.Context, runHour, months int) func() {
	stopChan := make(chan struct{})

	calculateNextRun := func() time.Duration {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), 1, runHour, 0, 0, 0, time.UTC)

		// If this month's run has already passed, schedule for the first of
		// next month
		if now.After(next) || now.Equal(next) {
			next = next.AddDate(0, 1, 0)
		}

		return next.Sub(now)
	}

	runTrend := func() {
		result, err := s.executor.Run(ctx, catalog.ReportSignupTrendMonthly, map[string]any{
			"months": months,
		})
		if err != nil {
			log.Errorf("Error running monthly signup trend report: %v", err)
			return
		}

		log.WithFields(log.Fields{
			"runID": result.RunID,
			"rows":  len(result.Rows),
		}).Info("Monthly signup trend report completed")
	}

	go func() {
		log.Infof("Monthly signup trend worker started, months window %d", months)

		for {
			waitDuration := calculateNextRun()
			log.Infof("Monthly signup trend worker waiting %v until next run", waitDuration)

			select {
			case <-ctx.Done():
				log.Info("Monthly signup trend worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Monthly signup trend worker shutting down (stop requested)...")
				return
			case <-time.After(waitDuration):
				runTrend()
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
