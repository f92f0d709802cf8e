package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionLoanApplied        Action = "LOAN_APPLIED"
	ActionLoanStatusChanged  Action = "LOAN_STATUS_CHANGED"
	ActionLoanStatusOverride Action = "LOAN_STATUS_OVERRIDE"
	ActionRepaymentPosted    Action = "REPAYMENT_POSTED"
)

// Event is a write-once compliance fact.
type Event struct {
	EventID    string    `gorm:"size:32;not null;uniqueIndex:ux_audit_outbox_event_id" json:"event_id"`
	ActorID    string    `gorm:"size:32;not null" json:"actor_id"`
	LoanID     string    `gorm:"size:32;index" json:"loan_id,omitempty"`
	Action     Action    `gorm:"size:32;not null" json:"action"`
	Details    string    `gorm:"type:text" json:"details"`
	OldStatus  string    `gorm:"size:16" json:"old_status,omitempty"`
	NewStatus  string    `gorm:"size:16" json:"new_status,omitempty"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
}

// OutboxEntry is an event stored in the same transaction as the mutation it
// describes, pending delivery to the audit log.
//
// Table: audit_outbox
type OutboxEntry struct {
	ID          uint64     `gorm:"primaryKey;column:id"`
	Event       Event      `gorm:"embedded"`
	Attempts    int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:text"`
	DeliveredAt *time.Time `gorm:"index"`
}

func (OutboxEntry) TableName() string { return "audit_outbox" }

// Emitter appends an event to the durable audit log. Implementations must be
// idempotent on EventID; the outbox delivers at least once.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

type OutboxRepository interface {
	Add(ctx context.Context, e *OutboxEntry) error
	MarkDelivered(ctx context.Context, id uint64, at time.Time) error
	MarkFailed(ctx context.Context, id uint64, cause string) error
	ListUndelivered(ctx context.Context, limit int) ([]OutboxEntry, error)
}
