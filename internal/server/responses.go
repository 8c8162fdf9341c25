package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"parking-system/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type IncomingVehicleRequest struct {
	VehicleType  int    `json:"vehicle_type" validate:"required"`
	Registration string `json:"registration" validate:"required,max=32"`
}

type ExitingVehicleRequest struct {
	Registration string `json:"registration" validate:"required,max=32"`
}

type TicketResponse struct {
	TicketID     int        `json:"ticket_id"`
	SpotNumber   int        `json:"spot_number"`
	VehicleType  string     `json:"vehicle_type"`
	Registration string     `json:"registration"`
	InTime       time.Time  `json:"in_time"`
	OutTime      *time.Time `json:"out_time,omitempty"`
	Price        string     `json:"price,omitempty"`
	Recurring    bool       `json:"recurring,omitempty"`
	Discounted   bool       `json:"discounted,omitempty"`
}

type SpotStatus struct {
	SpotNumber  int    `json:"spot_number"`
	VehicleType string `json:"vehicle_type"`
	Available   bool   `json:"available"`
}

type SpotsResponse struct {
	Total     int          `json:"total"`
	Available int          `json:"available"`
	Spots     []SpotStatus `json:"spots"`
}

func newTicketResponse(ticket *parking.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:     ticket.ID,
		SpotNumber:   ticket.Spot.ID,
		VehicleType:  ticket.Spot.Type.String(),
		Registration: ticket.VehicleRegNumber,
		InTime:       ticket.InTime,
		OutTime:      ticket.OutTime,
	}
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, message string, data any) {
	WriteJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(r.Context()),
	})
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(r.Context()),
	})
}
