// Package memory provides an in-memory ring buffer audit sink.
//
// Events are retained up to a fixed capacity; when full, the oldest
// events are discarded. Useful for the CLI's --verbose trace and for
// tests that assert on cycle progress.
package memory

import (
	"sync"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// Ensure Sink implements the interface.
var _ driven.AuditSink = (*Sink)(nil)

// DefaultCapacity is the number of events retained when none is given.
const DefaultCapacity = 256

// Sink is a bounded in-memory audit sink. Safe for concurrent use.
type Sink struct {
	mu       sync.Mutex
	events   []domain.AuditEvent
	capacity int
	logDebug bool
}

// Option configures a Sink.
type Option func(*Sink)

// WithCapacity sets the maximum number of retained events.
func WithCapacity(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithDebugLog mirrors every appended event to the debug logger.
func WithDebugLog() Option {
	return func(s *Sink) {
		s.logDebug = true
	}
}

// NewSink creates an audit sink with the given options.
func NewSink(opts ...Option) *Sink {
	s := &Sink{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records one event, evicting the oldest when at capacity.
func (s *Sink) Append(event domain.AuditEvent) {
	s.mu.Lock()
	if len(s.events) >= s.capacity {
		// Drop the oldest event. Shifting is fine at this capacity.
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
	}
	s.events = append(s.events, event)
	logMirror := s.logDebug
	s.mu.Unlock()

	if logMirror {
		logger.Debug("[audit %s] %s: %s", event.CycleID, event.Stage, event.Detail)
	}
}

// Events returns a copy of the retained events in append order.
func (s *Sink) Events() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

// ByCycle returns retained events for one cycle, in append order.
func (s *Sink) ByCycle(cycleID string) []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEvent
	for _, ev := range s.events {
		if ev.CycleID == cycleID {
			out = append(out, ev)
		}
	}
	return out
}

// Len returns the number of retained events.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
