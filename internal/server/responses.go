package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
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
	Status    string `json:"status"`
	Service   string `json:"service"`
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
	Meta      *Meta  `json:"meta,omitempty"`
}

type EntryRequest struct {
	Kind          string `json:"kind"`
	Number        string `json:"number"`
	WantsCharging bool   `json:"wants_charging"`
	GateID        int    `json:"gate_id"`
}

type ExitRequest struct {
	TicketID string `json:"ticket_id"`
	GateID   int    `json:"gate_id"`
}

type TicketResponse struct {
	TicketID      string           `json:"ticket_id"`
	VehicleNumber string           `json:"vehicle_number"`
	VehicleKind   parking.Kind     `json:"vehicle_kind"`
	SpotID        string           `json:"spot_id"`
	Floor         int              `json:"floor"`
	Category      parking.Category `json:"category"`
	EntryTime     time.Time        `json:"entry_time"`
	Charging      bool             `json:"charging"`
	Receipt       string           `json:"receipt,omitempty"`
}

type SettlementResponse struct {
	TicketResponse
	Fee           float64   `json:"fee"`
	BillableHours int64     `json:"billable_hours"`
	ExitTime      time.Time `json:"exit_time"`
	GateID        int       `json:"gate_id"`
}

func newTicketResponse(ticket *parking.Ticket, withReceipt bool) TicketResponse {
	resp := TicketResponse{
		TicketID:      ticket.ID(),
		VehicleNumber: ticket.Vehicle().Number(),
		VehicleKind:   ticket.Vehicle().Kind(),
		SpotID:        ticket.Spot().ID(),
		Floor:         ticket.Spot().Floor(),
		Category:      ticket.Spot().Category(),
		EntryTime:     ticket.EntryTime(),
		Charging:      ticket.IsUsingCharging(),
	}
	if withReceipt {
		resp.Receipt = ticket.Receipt()
	}
	return resp
}

func newSettlementResponse(s *parking.Settlement) SettlementResponse {
	return SettlementResponse{
		TicketResponse: newTicketResponse(s.Ticket, false),
		Fee:            s.Fee,
		BillableHours:  s.BillableHours,
		ExitTime:       s.ExitTime,
		GateID:         s.GateID,
	}
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn(context.Background(), "failed to encode response", "error", err)
	}
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

func WriteSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
