package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"finsight/catalog"
	"finsight/events"
	"finsight/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Result is the transient outcome of one report execution. Rows are
// positional and conform to Columns.
type Result struct {
	RunID        uuid.UUID
	ReportName   string
	Columns      []string
	Rows         [][]any
	RowsAffected int64
	Elapsed      time.Duration
}

// executor implements the ReportExecutor interface
type executor struct {
	catalog        *catalog.Catalog
	store          Store
	runs           ReportRunRecorder
	eventPublisher EventPublisher
	defaultTimeout time.Duration

	// One lock per write-class report name. Read reports are side-effect
	// free and run unserialized.
	mu         sync.Mutex
	writeLocks map[string]*sync.Mutex
}

// NewExecutor creates a new report executor. defaultTimeout bounds executions
// whose context carries no deadline of its own; zero disables the default.
func NewExecutor(cat *catalog.Catalog, store Store, runs ReportRunRecorder, eventPublisher EventPublisher, defaultTimeout time.Duration) ReportExecutor {
	return &executor{
		catalog:        cat,
		store:          store,
		runs:           runs,
		eventPublisher: eventPublisher,
		defaultTimeout: defaultTimeout,
		writeLocks:     make(map[string]*sync.Mutex),
	}
}

// Run validates parameters, generates the statement and executes the named
// report. Errors from the taxonomy (ErrNotFound, ErrInvalidParameter,
// ErrDatastore, ErrTimeout) surface to the caller; nothing is retried.
func (e *executor) Run(ctx context.Context, name string, params map[string]any) (*Result, error) {
	def, err := e.catalog.Get(name)
	if err != nil {
		return nil, err
	}

	values, asOf, err := validateParams(def, params)
	if err != nil {
		return nil, err
	}

	if def.IsWrite() {
		confirmed, _ := values[catalog.ParamConfirm].(bool)
		if !confirmed {
			return nil, fmt.Errorf("%w: report %q", ErrConfirmationRequired, name)
		}

		// No two concurrent executions of the same write report
		lock := e.writeLock(name)
		lock.Lock()
		defer lock.Unlock()
	}

	bind := catalog.Binding{Values: values, AsOf: asOf}

	runCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && e.defaultTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.defaultTimeout)
		defer cancel()
	}

	runID := uuid.New()
	started := time.Now()

	var result *Result
	if def.IsWrite() {
		result, err = e.runWrite(runCtx, def, bind, runID)
	} else {
		result, err = e.runRead(runCtx, def, bind, runID)
	}
	elapsed := time.Since(started)

	if err != nil {
		err = e.classify(runCtx, err, name)
		e.record(&models.ReportRun{
			ID:         runID,
			ReportName: name,
			Parameters: params,
			Status:     models.RunStatusFailed,
			Error:      err.Error(),
			StartedAt:  started,
			FinishedAt: started.Add(elapsed),
		})
		e.eventPublisher.Emit(context.Background(), events.ReportFailedEvent{
			RunID:      runID,
			ReportName: name,
			Err:        err.Error(),
			Duration:   elapsed,
		})
		return nil, err
	}

	result.Elapsed = elapsed
	e.record(&models.ReportRun{
		ID:           runID,
		ReportName:   name,
		Parameters:   params,
		Status:       models.RunStatusSucceeded,
		RowCount:     len(result.Rows),
		RowsAffected: result.RowsAffected,
		StartedAt:    started,
		FinishedAt:   started.Add(elapsed),
	})

	if def.IsWrite() {
		e.eventPublisher.Emit(context.Background(), events.SweepCompletedEvent{
			RunID:            runID,
			UsersDeactivated: result.RowsAffected,
			Duration:         elapsed,
		})
	} else {
		e.eventPublisher.Emit(context.Background(), events.ReportCompletedEvent{
			RunID:      runID,
			ReportName: name,
			RowCount:   len(result.Rows),
			Duration:   elapsed,
		})
	}

	log.WithFields(log.Fields{
		"runID":    runID,
		"report":   name,
		"rows":     len(result.Rows),
		"affected": result.RowsAffected,
		"elapsed":  elapsed,
	}).Info("Report execution finished")

	return result, nil
}

func (e *executor) runRead(ctx context.Context, def catalog.Definition, bind catalog.Binding, runID uuid.UUID) (*Result, error) {
	sqlText, args, err := catalog.BuildSQL(def, bind)
	if err != nil {
		return nil, err
	}

	returned, rows, err := e.store.Query(ctx, sqlText, args)
	if err != nil {
		return nil, err
	}

	// Map rows into the declared output schema. A shape mismatch means the
	// definition and its query structure have drifted apart.
	if len(returned) != len(def.Columns) {
		return nil, fmt.Errorf("report %q returned %d columns, definition declares %d",
			def.Name, len(returned), len(def.Columns))
	}
	columns := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		columns[i] = c.Name
	}

	return &Result{
		RunID:      runID,
		ReportName: def.Name,
		Columns:    columns,
		Rows:       rows,
	}, nil
}

func (e *executor) runWrite(ctx context.Context, def catalog.Definition, bind catalog.Binding, runID uuid.UUID) (*Result, error) {
	sqlText, args, err := catalog.BuildWriteSQL(def, bind)
	if err != nil {
		return nil, err
	}

	affected, err := e.store.Exec(ctx, sqlText, args)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:        runID,
		ReportName:   def.Name,
		Columns:      []string{"rows_affected"},
		Rows:         [][]any{{affected}},
		RowsAffected: affected,
	}, nil
}

// classify maps an execution failure into the error taxonomy
func (e *executor) classify(ctx context.Context, err error, name string) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: report %q", ErrTimeout, name)
	}
	return fmt.Errorf("%w: report %q: %v", ErrDatastore, name, err)
}

// record persists the audit row. Audit failures are logged, never surfaced:
// the report outcome already belongs to the caller.
func (e *executor) record(run *models.ReportRun) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.runs.Create(ctx, run); err != nil {
		log.Errorf("Error recording report run %s for %q: %v", run.ID, run.ReportName, err)
	}
}

func (e *executor) writeLock(name string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.writeLocks[name]
	if !ok {
		lock = &sync.Mutex{}
		e.writeLocks[name] = lock
	}
	return lock
}
