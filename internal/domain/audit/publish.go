package audit

import (
	"context"
	"log/slog"
	"time"

	"lending-engine/pkg/id"
)

// Deliverer hands a committed outbox entry to the audit log.
type Deliverer interface {
	Deliver(ctx context.Context, e *OutboxEntry) error
}

// NewEntry builds a pending outbox entry with a fresh event id.
func NewEntry(actorID, loanID string, action Action, details string, at time.Time) *OutboxEntry {
	return &OutboxEntry{Event: Event{
		EventID:    id.NewID32(),
		ActorID:    actorID,
		LoanID:     loanID,
		Action:     action,
		Details:    details,
		OccurredAt: at,
	}}
}

// WithStatuses records the old/new status pair on the event.
func (e *OutboxEntry) WithStatuses(from, to string) *OutboxEntry {
	e.Event.OldStatus = from
	e.Event.NewStatus = to
	return e
}

const deliverTimeout = 3 * time.Second

// DeliverNow makes the post-commit delivery attempt. It runs detached from
// ctx's cancellation, since the mutation is already committed. It reports
// true when the entry was left pending for the relay.
func DeliverNow(ctx context.Context, d Deliverer, e *OutboxEntry, log *slog.Logger) (degraded bool) {
	if d == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
	defer cancel()
	if err := d.Deliver(ctx, e); err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("audit: delivery deferred to relay",
			"action", e.Event.Action, "loan_id", e.Event.LoanID, "event_id", e.Event.EventID, "err", err)
		return true
	}
	return false
}
