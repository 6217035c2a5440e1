package service

import (
	"context"

	"finsight/events"
	"finsight/models"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Query(ctx context.Context, sql string, args []any) ([]string, [][]any, error) {
	callArgs := m.Called(ctx, sql, args)
	var cols []string
	if callArgs.Get(0) != nil {
		cols = callArgs.Get(0).([]string)
	}
	var rows [][]any
	if callArgs.Get(1) != nil {
		rows = callArgs.Get(1).([][]any)
	}
	return cols, rows, callArgs.Error(2)
}

func (m *MockStore) Exec(ctx context.Context, sql string, args []any) (int64, error) {
	callArgs := m.Called(ctx, sql, args)
	return callArgs.Get(0).(int64), callArgs.Error(1)
}

// MockReportRunRecorder is a mock implementation of ReportRunRecorder
type MockReportRunRecorder struct {
	mock.Mock
}

func (m *MockReportRunRecorder) Create(ctx context.Context, run *models.ReportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
