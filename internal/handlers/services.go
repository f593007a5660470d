package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/reservation"
	"github.com/agendly/agendly/internal/schedule"
	"github.com/agendly/agendly/internal/storage"
)

type serviceStore interface {
	CreateService(ctx context.Context, svc model.Service, workDays []string, offered []model.TimeOfDay) (model.Service, error)
	UpdateService(ctx context.Context, svc model.Service, workDays []string, offered []model.TimeOfDay) (model.Service, error)
	GetService(ctx context.Context, id string) (model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	ListWorkDays(ctx context.Context, serviceID string) ([]string, error)
	ListOfferedTimes(ctx context.Context, serviceID string) ([]model.TimeOfDay, error)
}

type availabilityFinder interface {
	Available(ctx context.Context, serviceID string, date time.Time) ([]model.TimeOfDay, error)
}

type ServiceHandler struct {
	services serviceStore
	finder   availabilityFinder
	grid     schedule.GridSet
	logger   *slog.Logger
}

func NewServiceHandler(services serviceStore, finder availabilityFinder, grid schedule.GridSet, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{services: services, finder: finder, grid: grid, logger: logger}
}

type serviceRequest struct {
	Name              string   `json:"name"`
	DurationMinutes   int      `json:"duration_minutes"`
	Price             float64  `json:"price"`
	ReservationPeriod string   `json:"reservation_period"`
	WorkDays          []string `json:"work_days"`
	StartTime         string   `json:"start_time"`
	EndTime           string   `json:"end_time"`
}

type serviceResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	DurationMinutes   int       `json:"duration_minutes"`
	Price             float64   `json:"price"`
	ReservationPeriod string    `json:"reservation_period"`
	CreatedAt         time.Time `json:"created_at"`
}

type serviceDetailResponse struct {
	serviceResponse
	WorkDays     []string          `json:"work_days"`
	OfferedTimes []model.TimeOfDay `json:"offered_times"`
}

func toServiceResponse(svc model.Service) serviceResponse {
	return serviceResponse{
		ID:                svc.ID,
		Name:              svc.Name,
		DurationMinutes:   svc.DurationMinutes,
		Price:             svc.Price,
		ReservationPeriod: svc.ReservationPeriod,
		CreatedAt:         svc.CreatedAt,
	}
}

type builtSchedule struct {
	svc      model.Service
	workDays []string
	offered  []model.TimeOfDay
	skipped  int
}

// buildSchedule validates the request and expands it into work days plus
// the offered times landing on the grid.
func (h *ServiceHandler) buildSchedule(req serviceRequest) (builtSchedule, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ReservationPeriod = strings.TrimSpace(req.ReservationPeriod)
	if req.Name == "" || req.ReservationPeriod == "" || req.StartTime == "" || req.EndTime == "" {
		return builtSchedule{}, "name, reservation_period, start_time and end_time required", errBadRequest
	}

	workDays, err := schedule.ValidateWorkDays(req.WorkDays)
	if err != nil {
		return builtSchedule{}, err.Error(), errBadRequest
	}
	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return builtSchedule{}, "invalid start_time", errBadRequest
	}
	end, err := model.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return builtSchedule{}, "invalid end_time", errBadRequest
	}

	offered, skipped, err := schedule.GenerateOffered(start, end, req.DurationMinutes, h.grid)
	if err != nil {
		return builtSchedule{}, err.Error(), errBadRequest
	}

	return builtSchedule{
		svc: model.Service{
			Name:              req.Name,
			DurationMinutes:   req.DurationMinutes,
			Price:             req.Price,
			ReservationPeriod: req.ReservationPeriod,
		},
		workDays: workDays,
		offered:  offered,
		skipped:  skipped,
	}, "", nil
}

// logSkipped surfaces schedule steps that missed the grid so a duration
// that barely fits the resolution shows up in logs.
func (h *ServiceHandler) logSkipped(b builtSchedule) {
	if b.skipped > 0 && h.logger != nil {
		h.logger.Warn("offered times skipped off-grid",
			"service", b.svc.Name,
			"skipped", b.skipped,
			"kept", len(b.offered))
	}
}

var errBadRequest = errors.New("bad request")

// Create registers a service and generates its whole schedule, for admins.
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	b, msg, err := h.buildSchedule(req)
	if err != nil {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	h.logSkipped(b)

	created, err := h.services.CreateService(r.Context(), b.svc, b.workDays, b.offered)
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toServiceResponse(created))
}

// Update rewrites a service and regenerates its schedule, for admins.
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		serviceRequest
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	b, msg, err := h.buildSchedule(req.serviceRequest)
	if err != nil {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	h.logSkipped(b)
	b.svc.ID = req.ID

	updated, err := h.services.UpdateService(r.Context(), b.svc, b.workDays, b.offered)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(toServiceResponse(updated))
}

// List returns the service catalog.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services, err := h.services.ListServices(r.Context())
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}

	out := make([]serviceResponse, 0, len(services))
	for _, svc := range services {
		out = append(out, toServiceResponse(svc))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}

// Detail returns one service with its work days and offered times.
func (h *ServiceHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	serviceID := r.URL.Query().Get("service_id")
	if serviceID == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}

	svc, err := h.services.GetService(r.Context(), serviceID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}
	workDays, err := h.services.ListWorkDays(r.Context(), serviceID)
	if err != nil {
		http.Error(w, "failed to load work days", http.StatusInternalServerError)
		return
	}
	offered, err := h.services.ListOfferedTimes(r.Context(), serviceID)
	if err != nil {
		http.Error(w, "failed to load offered times", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(serviceDetailResponse{
		serviceResponse: toServiceResponse(svc),
		WorkDays:        workDays,
		OfferedTimes:    offered,
	})
}

type availabilityResponse struct {
	ServiceID string            `json:"service_id"`
	Date      string            `json:"date"`
	Times     []model.TimeOfDay `json:"times"`
}

// Availability returns the free times for a service on a date. A day the
// service does not work and a fully booked day both answer 404, with
// messages telling them apart.
func (h *ServiceHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	serviceID := r.URL.Query().Get("service_id")
	rawDate := r.URL.Query().Get("date")
	if serviceID == "" || rawDate == "" {
		http.Error(w, "service_id and date required", http.StatusBadRequest)
		return
	}
	date, err := model.ParseDate(rawDate)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	times, err := h.finder.Available(r.Context(), serviceID, date)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotAWorkDay):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, reservation.ErrNoSlotsAvailable):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(availabilityResponse{
		ServiceID: serviceID,
		Date:      model.FormatDate(date),
		Times:     times,
	})
}
