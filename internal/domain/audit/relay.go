package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Relay moves outbox entries to the Emitter. Use cases call Deliver right
// after their transaction commits; Run retries whatever is still pending.
type Relay struct {
	outbox  OutboxRepository
	emitter Emitter
	log     *slog.Logger
	batch   int
	now     func() time.Time
}

func NewRelay(outbox OutboxRepository, emitter Emitter, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{outbox: outbox, emitter: emitter, log: log, batch: 100, now: func() time.Time { return time.Now().UTC() }}
}

// Deliver emits one entry and records the outcome. A non-nil error means the
// event is still pending.
func (r *Relay) Deliver(ctx context.Context, e *OutboxEntry) error {
	if err := r.emitter.Emit(ctx, e.Event); err != nil {
		if mErr := r.outbox.MarkFailed(ctx, e.ID, err.Error()); mErr != nil {
			r.log.Error("audit: mark failed", "event_id", e.Event.EventID, "err", mErr)
		}
		return err
	}
	if err := r.outbox.MarkDelivered(ctx, e.ID, r.now()); err != nil {
		// emitted but still marked pending; the emitter dedupes the redelivery
		r.log.Warn("audit: mark delivered", "event_id", e.Event.EventID, "err", err)
	}
	return nil
}

// Flush delivers one batch of pending entries and returns how many made it.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := r.outbox.ListUndelivered(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	delivered := 0
	var errs []error
	for i := range pending {
		if err := r.Deliver(ctx, &pending[i]); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Run flushes every interval until ctx is done.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := r.Flush(ctx)
			if err != nil {
				r.log.Warn("audit: relay flush", "delivered", n, "err", err)
			} else if n > 0 {
				r.log.Info("audit: relay flush", "delivered", n)
			}
		}
	}
}
