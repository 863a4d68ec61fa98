package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/events"
	"github.com/sentrasec/sentra/internal/middlewares"
)

type EventHandler struct {
	eventService EventService
}

func NewEventHandler(eventService EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type ingestEventRequest struct {
	EventID        string         `json:"eventId"`
	ClientID       *uint          `json:"clientId"`
	Timestamp      time.Time      `json:"timestamp"`
	Severity       string         `json:"severity"`
	Status         string         `json:"status"`
	Host           string         `json:"host"`
	ProcessName    string         `json:"processName"`
	ProcessPath    string         `json:"processPath"`
	SourceIP       string         `json:"sourceIp"`
	DestinationIP  string         `json:"destinationIp"`
	MitreTactic    string         `json:"mitreTactic"`
	MitreTechnique string         `json:"mitreTechnique"`
	Classification string         `json:"classification"`
	Details        map[string]any `json:"details"`
}

func (r ingestEventRequest) toOptions() events.IngestEventOptions {
	return events.IngestEventOptions{
		EventID:        r.EventID,
		ClientID:       r.ClientID,
		Timestamp:      r.Timestamp,
		Severity:       r.Severity,
		Status:         r.Status,
		Host:           r.Host,
		ProcessName:    r.ProcessName,
		ProcessPath:    r.ProcessPath,
		SourceIP:       r.SourceIP,
		DestinationIP:  r.DestinationIP,
		MitreTactic:    r.MitreTactic,
		MitreTechnique: r.MitreTechnique,
		Classification: r.Classification,
		Details:        r.Details,
	}
}

func (h *EventHandler) GetEvents(ctx *fiber.Ctx) error {
	filter := events.EventFilter{
		ClientID:       scopedClientID(ctx, queryClientID(ctx)),
		Severity:       ctx.Query("severity"),
		Status:         ctx.Query("status"),
		Classification: ctx.Query("classification"),
		Limit:          ctx.QueryInt("limit"),
	}
	if raw := ctx.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fiber.ErrBadRequest
		}
		filter.Since = since
	}
	list, err := h.eventService.List(ctx.Context(), filter)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(list))
}

func (h *EventHandler) GetEvent(ctx *fiber.Ctx) error {
	event, err := h.eventService.Get(ctx.Context(), ctx.Params("eventId"))
	if err != nil {
		return failError(ctx, err)
	}
	if own := scopedClientID(ctx, nil); own != nil && (event.ClientID == nil || *event.ClientID != *own) {
		return fiber.ErrForbidden
	}
	return ctx.JSON(NewDataResponse(event))
}

func (h *EventHandler) PostEvent(ctx *fiber.Ctx) error {
	var req ingestEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	opts := req.toOptions()
	opts.ClientID = scopedClientID(ctx, opts.ClientID)
	event, err := h.eventService.Ingest(ctx.Context(), opts)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(event))
}

func (h *EventHandler) PostEventBatch(ctx *fiber.Ctx) error {
	var reqs []ingestEventRequest
	if err := ctx.BodyParser(&reqs); err != nil {
		return fiber.ErrBadRequest
	}
	batch := make([]events.IngestEventOptions, 0, len(reqs))
	for _, req := range reqs {
		opts := req.toOptions()
		opts.ClientID = scopedClientID(ctx, opts.ClientID)
		batch = append(batch, opts)
	}
	result, err := h.eventService.IngestBatch(ctx.Context(), batch)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(result))
}

// PostClientEvent ingests one event submitted by an authenticated machine
// integration. The event is always attributed to the authenticated tenant.
func (h *EventHandler) PostClientEvent(ctx *fiber.Ctx) error {
	client := middlewares.ClientFromCtx(ctx)
	if client == nil {
		return fiber.ErrUnauthorized
	}
	var req ingestEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	opts := req.toOptions()
	opts.ClientID = &client.ID
	event, err := h.eventService.Ingest(ctx.Context(), opts)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(event))
}

// PostClientEventBatch is the batch variant of PostClientEvent.
func (h *EventHandler) PostClientEventBatch(ctx *fiber.Ctx) error {
	client := middlewares.ClientFromCtx(ctx)
	if client == nil {
		return fiber.ErrUnauthorized
	}
	var reqs []ingestEventRequest
	if err := ctx.BodyParser(&reqs); err != nil {
		return fiber.ErrBadRequest
	}
	batch := make([]events.IngestEventOptions, 0, len(reqs))
	for _, req := range reqs {
		opts := req.toOptions()
		opts.ClientID = &client.ID
		batch = append(batch, opts)
	}
	result, err := h.eventService.IngestBatch(ctx.Context(), batch)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(result))
}

func (h *EventHandler) PutEventStatus(ctx *fiber.Ctx) error {
	var req struct {
		Status         string `json:"status"`
		Classification string `json:"classification"`
	}
	if err := ctx.BodyParser(&req); err != nil || req.Status == "" {
		return fiber.ErrBadRequest
	}
	event, err := h.eventService.UpdateStatus(ctx.Context(), ctx.Params("eventId"), req.Status, req.Classification)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(event))
}

// GetSeverityReport aggregates event counts per severity for the tenant over
// the requested window (default 7 days).
func (h *EventHandler) GetSeverityReport(ctx *fiber.Ctx) error {
	since := time.Now().AddDate(0, 0, -7)
	if raw := ctx.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fiber.ErrBadRequest
		}
		since = parsed
	}
	clientID := scopedClientID(ctx, queryClientID(ctx))
	report, err := h.eventService.SeverityReport(ctx.Context(), clientID, since)
	if err != nil {
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(report))
}
