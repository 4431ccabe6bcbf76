package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parking-facility/internal/parking"
)

type Handler struct {
	facility    *parking.InstrumentedFacility
	serviceName string
}

func NewHandler(facility *parking.InstrumentedFacility, serviceName string) *Handler {
	return &Handler{
		facility:    facility,
		serviceName: serviceName,
	}
}

// statusFor maps facility errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidVehicleNumber),
		errors.Is(err, parking.ErrUnknownVehicleKind),
		errors.Is(err, parking.ErrChargingNotSupported):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrTicketNotFound),
		errors.Is(err, parking.ErrGateNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrFacilityFull),
		errors.Is(err, parking.ErrVehicleAlreadyParked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   h.serviceName,
		Capacity:  h.facility.Capacity(),
		Available: h.facility.AvailableCount(),
		Meta:      extractMeta(r.Context()),
	})
}

func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Kind == "" || req.Number == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Kind and number are required")
		return
	}

	kind, err := parking.ParseKind(req.Kind)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if req.GateID < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Gate id must not be negative")
		return
	}

	ticket, err := h.facility.Enter(ctx, parking.EntryRequest{
		Kind:          kind,
		Number:        req.Number,
		WantsCharging: req.WantsCharging,
		GateID:        req.GateID,
	})
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, http.StatusCreated, "Ticket issued", newTicketResponse(ticket, true))
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket id is required")
		return
	}

	settlement, err := h.facility.Exit(ctx, req.TicketID, req.GateID)
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, http.StatusOK, "Ticket settled and spot released", newSettlementResponse(settlement))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	WriteSuccess(ctx, w, http.StatusOK, "Status retrieved successfully", h.facility.Status(ctx))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticket, err := h.facility.Ticket(ctx, chi.URLParam(r, "id"))
	if err != nil {
		WriteError(ctx, w, statusFor(err), "Ticket not found")
		return
	}

	WriteSuccess(ctx, w, http.StatusOK, "Ticket found", newTicketResponse(ticket, true))
}

func (h *Handler) FindByVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	number := chi.URLParam(r, "number")
	if number == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Vehicle number is required")
		return
	}

	ticket, err := h.facility.FindByVehicle(ctx, number)
	if err != nil {
		WriteError(ctx, w, statusFor(err), "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, http.StatusOK, "Vehicle found", newTicketResponse(ticket, false))
}
