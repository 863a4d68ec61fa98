package audit

import (
	"context"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type AuditEventRepository interface {
	RecordEvent(ctx context.Context, event *model.AuditEvent) error
	Find(ctx context.Context, userID string, limit int) ([]*model.AuditEvent, error)
}

type auditEventRepository struct {
	db *gorm.DB
}

func (r *auditEventRepository) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *auditEventRepository) Find(ctx context.Context, userID string, limit int) ([]*model.AuditEvent, error) {
	query := r.db.WithContext(ctx)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var events []*model.AuditEvent
	err := query.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func NewAuditEventRepository(db *gorm.DB) AuditEventRepository {
	return &auditEventRepository{
		db: db,
	}
}
