package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sentrasec/sentra/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("security event not found")
	ErrDuplicateEventID  = errors.New("event id already ingested")
	ErrNoEventsIngested  = errors.New("no events in the batch could be ingested")
	ErrEventMissingStamp = errors.New("event timestamp is required")
)

type IngestEventOptions struct {
	EventID        string
	ClientID       *uint
	Timestamp      time.Time
	Severity       string
	Status         string
	Host           string
	ProcessName    string
	ProcessPath    string
	SourceIP       string
	DestinationIP  string
	MitreTactic    string
	MitreTechnique string
	Classification string
	Details        map[string]any
}

type BatchResult struct {
	Ingested int `json:"ingested"`
	Skipped  int `json:"skipped"`
}

type EventService struct {
	eventRepo EventRepository
}

func NewEventService(eventRepo EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

func (s *EventService) List(ctx context.Context, filter EventFilter) ([]*model.SecurityEvent, error) {
	return s.eventRepo.Find(ctx, filter)
}

func (s *EventService) Get(ctx context.Context, eventID string) (*model.SecurityEvent, error) {
	event, err := s.eventRepo.FirstByEventID(ctx, eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// Ingest stores one security event. An empty EventID gets a generated uuid;
// a duplicate EventID is rejected.
func (s *EventService) Ingest(ctx context.Context, opts IngestEventOptions) (*model.SecurityEvent, error) {
	if opts.Timestamp.IsZero() {
		return nil, ErrEventMissingStamp
	}
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	} else {
		if _, err := s.eventRepo.FirstByEventID(ctx, eventID); err == nil {
			return nil, ErrDuplicateEventID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	event := &model.SecurityEvent{
		EventID:        eventID,
		ClientID:       opts.ClientID,
		Timestamp:      opts.Timestamp,
		Severity:       opts.Severity,
		Status:         opts.Status,
		Host:           opts.Host,
		ProcessName:    opts.ProcessName,
		ProcessPath:    opts.ProcessPath,
		SourceIP:       opts.SourceIP,
		DestinationIP:  opts.DestinationIP,
		MitreTactic:    opts.MitreTactic,
		MitreTechnique: opts.MitreTechnique,
		Classification: opts.Classification,
		Details:        datatypes.JSONMap(opts.Details),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// IngestBatch stores a batch of events with per-item skip semantics: a
// failed event is logged and skipped, and the batch succeeds as long as at
// least one event was stored.
func (s *EventService) IngestBatch(ctx context.Context, batch []IngestEventOptions) (BatchResult, error) {
	var result BatchResult
	for i, opts := range batch {
		if _, err := s.Ingest(ctx, opts); err != nil {
			slog.Warn("Skipping event in batch", "index", i, "eventId", opts.EventID, "error", err)
			result.Skipped++
			continue
		}
		result.Ingested++
	}
	if result.Ingested == 0 && len(batch) > 0 {
		return result, ErrNoEventsIngested
	}
	return result, nil
}

// UpdateStatus moves an event through its triage lifecycle.
func (s *EventService) UpdateStatus(ctx context.Context, eventID string, status string, classification string) (*model.SecurityEvent, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	columns := map[string]interface{}{"status": status}
	if classification != "" {
		columns["classification"] = classification
	}
	if err := s.eventRepo.Updates(ctx, event.ID, columns); err != nil {
		return nil, err
	}
	return s.Get(ctx, eventID)
}

// SeverityReport aggregates event counts by severity for a tenant (or all
// tenants when clientID is nil) over the given window.
func (s *EventService) SeverityReport(ctx context.Context, clientID *uint, since time.Time) ([]SeverityCount, error) {
	return s.eventRepo.CountBySeverity(ctx, clientID, since)
}
