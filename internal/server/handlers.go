package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"parking-system/internal/logging"
	"parking-system/internal/parking"
)

type Handler struct {
	lifecycle   parking.Lifecycle
	validate    *validator.Validate
	serviceName string
}

func NewHandler(lifecycle parking.Lifecycle, serviceName string) *Handler {
	return &Handler{
		lifecycle:   lifecycle,
		validate:    validator.New(),
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": h.serviceName,
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) IncomingVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IncomingVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.lifecycle.ProcessIncomingVehicle(ctx, parking.StaticInput{
		Selection:    req.VehicleType,
		Registration: req.Registration,
	})
	if err != nil {
		WriteError(w, r, statusFor(err), err.Error())
		return
	}

	message := "Vehicle checked in"
	if result.Recurring {
		message = "Welcome back! Vehicle checked in with recurring user discount"
	}

	resp := newTicketResponse(result.Ticket)
	resp.Recurring = result.Recurring
	WriteSuccess(w, r, message, resp)
}

func (h *Handler) ExitingVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ExitingVehicleRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.lifecycle.ProcessExitingVehicle(ctx, parking.StaticInput{
		Registration: req.Registration,
	})
	if err != nil {
		WriteError(w, r, statusFor(err), err.Error())
		return
	}

	resp := newTicketResponse(result.Ticket)
	resp.Price = result.Price.StringFixed(2)
	resp.Discounted = result.Discounted
	WriteSuccess(w, r, "Vehicle checked out", resp)
}

func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := h.lifecycle.Spots(r.Context())
	if err != nil {
		WriteError(w, r, statusFor(err), err.Error())
		return
	}

	resp := SpotsResponse{
		Total: len(spots),
		Spots: make([]SpotStatus, 0, len(spots)),
	}
	for _, spot := range spots {
		if spot.Available {
			resp.Available++
		}
		resp.Spots = append(resp.Spots, SpotStatus{
			SpotNumber:  spot.ID,
			VehicleType: spot.Type.String(),
			Available:   spot.Available,
		})
	}

	WriteSuccess(w, r, "Spots retrieved successfully", resp)
}

// decode writes the 400 response itself and reports whether the handler
// should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		logging.Warn(r.Context(), "failed to decode request body", slog.Any("error", err))
		WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) && len(validateErr) > 0 {
			WriteError(w, r, http.StatusBadRequest, "Invalid field "+validateErr[0].Field()+": "+validateErr[0].Tag())
			return false
		}
		WriteError(w, r, http.StatusBadRequest, "Invalid request")
		return false
	}

	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrNoSpotAvailable), errors.Is(err, parking.ErrAlreadyParked):
		return http.StatusConflict
	case errors.Is(err, parking.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
