package mysql

import (
	"context"
	"time"

	auditDomain "lending-engine/internal/domain/audit"

	"gorm.io/gorm"
)

const defaultBatch = 100

type OutboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) *OutboxRepository { return &OutboxRepository{db: db} }

func (r *OutboxRepository) Add(ctx context.Context, e *auditDomain.OutboxEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *OutboxRepository) MarkDelivered(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&auditDomain.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivered_at": at,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   "",
		}).Error
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64, cause string) error {
	return r.db.WithContext(ctx).
		Model(&auditDomain.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause,
		}).Error
}

// ListUndelivered returns pending entries oldest first; limit <= 0 means
// defaultBatch.
func (r *OutboxRepository) ListUndelivered(ctx context.Context, limit int) ([]auditDomain.OutboxEntry, error) {
	if limit <= 0 {
		limit = defaultBatch
	}
	var out []auditDomain.OutboxEntry
	err := r.db.WithContext(ctx).
		Where("delivered_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
