// Package outboxmock has test doubles for the audit outbox and emitter.
package outboxmock

import (
	"context"
	"sync"
	"time"

	"lending-engine/internal/domain/audit"
)

var (
	_ audit.OutboxRepository = (*Outbox)(nil)
	_ audit.Emitter          = (*Emitter)(nil)
)

// Outbox keeps entries in memory. Safe for concurrent use.
type Outbox struct {
	mu      sync.Mutex
	nextID  uint64
	entries []audit.OutboxEntry
}

func (o *Outbox) Add(_ context.Context, e *audit.OutboxEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	e.ID = o.nextID
	o.entries = append(o.entries, *e)
	return nil
}

func (o *Outbox) MarkDelivered(_ context.Context, id uint64, at time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		t := at
		e.DeliveredAt = &t
	}
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id uint64, cause string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.Attempts++
		e.LastError = cause
	}
	return nil
}

func (o *Outbox) ListUndelivered(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []audit.OutboxEntry
	for _, e := range o.entries {
		if e.DeliveredAt == nil {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Entries returns a copy of everything added so far.
func (o *Outbox) Entries() []audit.OutboxEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]audit.OutboxEntry(nil), o.entries...)
}

func (o *Outbox) find(id uint64) *audit.OutboxEntry {
	for i := range o.entries {
		if o.entries[i].ID == id {
			return &o.entries[i]
		}
	}
	return nil
}

// Emitter records emitted events. Err, when set, is returned from every Emit
// and nothing is recorded.
type Emitter struct {
	mu     sync.Mutex
	Err    error
	events []audit.Event
}

func (m *Emitter) Emit(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *Emitter) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *Emitter) Events() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Event(nil), m.events...)
}
