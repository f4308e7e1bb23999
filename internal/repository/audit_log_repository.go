package repository

import (
	"context"

	"gorm.io/gorm"

	"medscan/internal/model"
)

// AuditLogRepository defines audit log persistence operations.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLogEntry) error
	Count(ctx context.Context) (int64, error)
	// DeleteOldest removes the n entries with the smallest timestamps.
	DeleteOldest(ctx context.Context, n int) error
	// ListNewestFirst returns all entries ordered by timestamp descending.
	ListNewestFirst(ctx context.Context) ([]model.AuditLogEntry, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *model.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.AuditLogEntry{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *auditLogRepository) DeleteOldest(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.AuditLogEntry{}).
		Order("timestamp ASC").Order("id ASC").
		Limit(n).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.AuditLogEntry{}).Error
}

func (r *auditLogRepository) ListNewestFirst(ctx context.Context) ([]model.AuditLogEntry, error) {
	var entries []model.AuditLogEntry
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").Order("id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
