package events

import (
	"context"
	"time"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type EventFilter struct {
	ClientID       *uint
	Severity       string
	Status         string
	Classification string
	Since          time.Time
	Limit          int
}

// SeverityCount is one row of the per-tenant report aggregation.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}

type EventRepository interface {
	Find(ctx context.Context, filter EventFilter) ([]*model.SecurityEvent, error)
	FirstByEventID(ctx context.Context, eventID string) (*model.SecurityEvent, error)
	Create(ctx context.Context, event *model.SecurityEvent) error
	Updates(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	CountBySeverity(ctx context.Context, clientID *uint, since time.Time) ([]SeverityCount, error)
}

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Find(ctx context.Context, filter EventFilter) ([]*model.SecurityEvent, error) {
	query := r.db.WithContext(ctx)
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", filter.Severity)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Classification != "" {
		query = query.Where("classification = ?", filter.Classification)
	}
	if !filter.Since.IsZero() {
		query = query.Where("timestamp >= ?", filter.Since)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	var events []*model.SecurityEvent
	err := query.Order("timestamp DESC").Limit(limit).Find(&events).Error
	return events, err
}

func (r *eventRepository) FirstByEventID(ctx context.Context, eventID string) (*model.SecurityEvent, error) {
	var event model.SecurityEvent
	if err := r.db.WithContext(ctx).First(&event, "event_id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *model.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) Updates(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.SecurityEvent{}).Where("id = ?", id).Updates(columns).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.SecurityEvent{}, "id = ?", id).Error
}

func (r *eventRepository) CountBySeverity(ctx context.Context, clientID *uint, since time.Time) ([]SeverityCount, error) {
	query := r.db.WithContext(ctx).Model(&model.SecurityEvent{}).
		Select("severity, count(*) AS count").
		Group("severity")
	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}
	if !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}
	var counts []SeverityCount
	err := query.Scan(&counts).Error
	return counts, err
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db}
}
