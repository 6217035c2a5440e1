package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeReportCompleted EventType = "report_completed"
	EventTypeReportFailed    EventType = "report_failed"
	EventTypeSweepCompleted  EventType = "sweep_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ReportCompletedEvent represents a report execution that finished successfully
type ReportCompletedEvent struct {
	RunID      uuid.UUID
	ReportName string
	RowCount   int
	Duration   time.Duration
}

func (e ReportCompletedEvent) Type() EventType {
	return EventTypeReportCompleted
}

// ReportFailedEvent represents a report execution that returned an error
type ReportFailedEvent struct {
	RunID      uuid.UUID
	ReportName string
	Err        string
	Duration   time.Duration
}

func (e ReportFailedEvent) Type() EventType {
	return EventTypeReportFailed
}

// SweepCompletedEvent represents a finished inactivity sweep
type SweepCompletedEvent struct {
	RunID            uuid.UUID
	UsersDeactivated int64
	Duration         time.Duration
}

func (e SweepCompletedEvent) Type() EventType {
	return EventTypeSweepCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking report execution
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
