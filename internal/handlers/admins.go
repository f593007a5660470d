package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/storage"
)

type adminStore interface {
	CreateAdmin(ctx context.Context, a model.Admin) (model.Admin, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
}

type AdminHandler struct {
	admins adminStore
}

func NewAdminHandler(admins adminStore) *AdminHandler {
	return &AdminHandler{admins: admins}
}

type adminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Create registers another admin account.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "name, email and password required", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	admin, err := h.admins.CreateAdmin(r.Context(), model.Admin{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create admin", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(adminResponse{
		ID:        admin.ID,
		Name:      admin.Name,
		Email:     admin.Email,
		CreatedAt: admin.CreatedAt,
	})
}

// List returns every admin account.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	admins, err := h.admins.ListAdmins(r.Context())
	if err != nil {
		http.Error(w, "failed to list admins", http.StatusInternalServerError)
		return
	}

	out := make([]adminResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, adminResponse{ID: a.ID, Name: a.Name, Email: a.Email, CreatedAt: a.CreatedAt})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
