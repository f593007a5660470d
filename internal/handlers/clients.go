package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/storage"
	"github.com/agendly/agendly/libs/auth"
)

type clientStore interface {
	CreateClient(ctx context.Context, c model.Client) (model.Client, error)
	UpdateClient(ctx context.Context, c model.Client) (model.Client, error)
	GetClient(ctx context.Context, id string) (model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
}

type ClientHandler struct {
	clients clientStore
	auth    *AuthHandler
}

func NewClientHandler(clients clientStore, authHandler *AuthHandler) *ClientHandler {
	return &ClientHandler{clients: clients, auth: authHandler}
}

type clientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type clientResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	Client      clientResponse `json:"client"`
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
}

func toClientResponse(c model.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

// Register creates a client account and signs it in. A reused email
// answers 409.
func (h *ClientHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "first_name, last_name, email and password required", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	client, err := h.clients.CreateClient(r.Context(), model.Client{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	})
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create client", http.StatusInternalServerError)
		return
	}

	token, err := h.auth.issueToken(client.ID, auth.RoleClient)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(registerResponse{
		Client:      toClientResponse(client),
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

// Update rewrites the signed-in client's own profile. The client comes
// from the token, never from the body.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		http.Error(w, "first_name, last_name and email required", http.StatusBadRequest)
		return
	}

	var hash string
	if req.Password != "" {
		var err error
		if hash, err = hashPassword(req.Password); err != nil {
			http.Error(w, "failed to hash password", http.StatusInternalServerError)
			return
		}
	}

	client, err := h.clients.UpdateClient(r.Context(), model.Client{
		ID:           claims.Sub,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	})
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "client not found", http.StatusNotFound)
			return
		}
		if storage.IsConflict(err) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		http.Error(w, "failed to update client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(toClientResponse(client))
}

// List returns every client, for admins. A client_id query parameter
// narrows the answer to that one client.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		client, err := h.clients.GetClient(r.Context(), clientID)
		if err != nil {
			if storage.IsNotFound(err) {
				http.Error(w, "client not found", http.StatusNotFound)
				return
			}
			http.Error(w, "failed to load client", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(toClientResponse(client))
		return
	}

	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(out)
}
