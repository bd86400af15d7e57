// Package notify delivers user-facing messages with a severity level
package notify

import (
	"context"
	"sync"

	"github.com/cleancrew/crewboard/internal/logging"
	"github.com/rs/zerolog"
)

// Severity of a notification
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a message meant for display to the user
type Notification struct {
	Severity Severity
	Title    string
	Message  string
}

// Sink receives notifications
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// LogSink writes notifications to the structured log
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink backed by the "notify" component logger
func NewLogSink() *LogSink {
	return &LogSink{logger: logging.GetLogger("notify")}
}

// Notify logs the notification at a level matching its severity
func (s *LogSink) Notify(_ context.Context, n Notification) {
	var event *zerolog.Event
	switch n.Severity {
	case SeverityError:
		event = s.logger.Error()
	case SeverityWarning:
		event = s.logger.Warn()
	default:
		event = s.logger.Info()
	}
	event.Str("severity", string(n.Severity)).Str("title", n.Title).Msg(n.Message)
}

// Recorder keeps notifications in memory, newest last.
// The HTTP layer drains it to show pending messages.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	next  Sink
}

// NewRecorder creates a recorder that also forwards to next when it is not nil
func NewRecorder(next Sink) *Recorder {
	return &Recorder{next: next}
}

// Notify stores the notification and forwards it
func (r *Recorder) Notify(ctx context.Context, n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Notify(ctx, n)
	}
}

// Drain returns and clears the stored notifications
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	if items == nil {
		return []Notification{}
	}
	return items
}
