package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/reservation"
	"github.com/agendly/agendly/libs/auth"
)

type reserver interface {
	Reserve(ctx context.Context, clientID, serviceID string, date time.Time, t model.TimeOfDay) (model.Booking, error)
}

type bookingStore interface {
	ListByClient(ctx context.Context, clientID string) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
}

type BookingHandler struct {
	engine   reserver
	bookings bookingStore
}

func NewBookingHandler(engine reserver, bookings bookingStore) *BookingHandler {
	return &BookingHandler{engine: engine, bookings: bookings}
}

type reserveRequest struct {
	ClientID  string `json:"client_id"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type bookingResponse struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id"`
	ServiceID string          `json:"service_id"`
	Date      string          `json:"date"`
	Time      model.TimeOfDay `json:"time"`
	CreatedAt time.Time       `json:"created_at"`
}

func toBookingResponse(b model.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		ClientID:  b.ClientID,
		ServiceID: b.ServiceID,
		Date:      model.FormatDate(b.Date),
		Time:      b.Time,
		CreatedAt: b.CreatedAt,
	}
}

// Reserve books a slot. Clients always book for themselves; the client_id
// field is only honored for admin tokens.
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if claims.Role != auth.RoleAdmin {
		req.ClientID = claims.Sub
	}
	if req.ClientID == "" || req.ServiceID == "" || req.Date == "" || req.Time == "" {
		http.Error(w, reservation.ErrMissingFields.Error(), http.StatusBadRequest)
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	tod, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		http.Error(w, "invalid time, expected HH:MM:SS", http.StatusBadRequest)
		return
	}

	booking, err := h.engine.Reserve(r.Context(), req.ClientID, req.ServiceID, date, tod)
	if err != nil {
		status := reserveStatus(err)
		if status == http.StatusInternalServerError {
			http.Error(w, "failed to create booking", status)
		} else {
			http.Error(w, err.Error(), status)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toBookingResponse(booking))
}

func reserveStatus(err error) int {
	switch {
	case errors.Is(err, reservation.ErrMissingFields),
		errors.Is(err, reservation.ErrBookingInPast),
		errors.Is(err, reservation.ErrNotAWorkDay),
		errors.Is(err, reservation.ErrNotAnOfferedTime):
		return http.StatusBadRequest
	case errors.Is(err, reservation.ErrClientNotFound),
		errors.Is(err, reservation.ErrServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, reservation.ErrSlotTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ListMine returns a client's bookings, newest first. Clients always get
// their own; an admin names the client with the client_id query parameter.
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	clientID := claims.Sub
	if claims.Role == auth.RoleAdmin {
		clientID = r.URL.Query().Get("client_id")
		if clientID == "" {
			http.Error(w, "client_id required", http.StatusBadRequest)
			return
		}
	}

	bookings, err := h.bookings.ListByClient(r.Context(), clientID)
	if err != nil {
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	writeBookings(w, bookings)
}

// ListAll returns every booking, for admins.
func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookings, err := h.bookings.ListAll(r.Context())
	if err != nil {
		http.Error(w, "failed to list bookings", http.StatusInternalServerError)
		return
	}
	writeBookings(w, bookings)
}

func writeBookings(w http.ResponseWriter, bookings []model.Booking) {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
