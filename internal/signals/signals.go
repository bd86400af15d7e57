package signals

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/maniartech/signals"
)

// ChangeOp is the kind of row change
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent describes one row change in a table
type ChangeEvent struct {
	Table string
	Op    ChangeOp
	RowID string
}

// ChangeFeed fans row changes out to per-table listeners
type ChangeFeed struct {
	mu     sync.Mutex
	tables map[string]signals.Signal[ChangeEvent]
}

// NewChangeFeed creates an empty change feed
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{tables: make(map[string]signals.Signal[ChangeEvent])}
}

func (f *ChangeFeed) signal(table string) signals.Signal[ChangeEvent] {
	f.mu.Lock()
	defer f.mu.Unlock()
	sig, ok := f.tables[table]
	if !ok {
		sig = signals.New[ChangeEvent]()
		f.tables[table] = sig
	}
	return sig
}

// Emit notifies the listeners of the event's table
func (f *ChangeFeed) Emit(ctx context.Context, event ChangeEvent) {
	f.signal(event.Table).Emit(ctx, event)
}

// Subscribe registers a handler for changes on a table.
// The returned subscription must be released with Unsubscribe.
func (f *ChangeFeed) Subscribe(table string, handler func(ctx context.Context, event ChangeEvent)) *Subscription {
	key := uuid.NewString()
	sig := f.signal(table)
	sig.AddListener(handler, key)
	return &Subscription{table: table, key: key, signal: sig}
}

// Listeners returns the number of handlers registered on a table
func (f *ChangeFeed) Listeners(table string) int {
	return f.signal(table).Len()
}

// Subscription is a handle to one registered listener
type Subscription struct {
	table  string
	key    string
	signal signals.Signal[ChangeEvent]
	once   sync.Once
}

// Table returns the table the subscription listens to
func (s *Subscription) Table() string {
	return s.table
}

// Unsubscribe removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.signal.RemoveListener(s.key)
	})
}
