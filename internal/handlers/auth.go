package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/storage"
	"github.com/agendly/agendly/libs/auth"
)

type clientCredentialStore interface {
	GetClientByEmail(ctx context.Context, email string) (model.Client, error)
}

type adminCredentialStore interface {
	GetAdminByEmail(ctx context.Context, email string) (model.Admin, error)
}

type AuthHandler struct {
	clients  clientCredentialStore
	admins   adminCredentialStore
	secret   string
	tokenTTL time.Duration
}

func NewAuthHandler(clients clientCredentialStore, admins adminCredentialStore, secret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthHandler{clients: clients, admins: admins, secret: secret, tokenTTL: tokenTTL}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

// Login checks the email against clients first, then admins, and issues a
// token carrying the matching role. Both unknown email and bad password
// answer 401 without saying which one failed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	subject, role, hash, err := h.lookup(r.Context(), req.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "failed to lookup account", http.StatusInternalServerError)
		return
	}
	if err := verifyPassword(hash, req.Password); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.issueToken(subject, role)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Role:        role,
	})
}

func (h *AuthHandler) lookup(ctx context.Context, email string) (subject, role, hash string, err error) {
	client, err := h.clients.GetClientByEmail(ctx, email)
	if err == nil {
		return client.ID, auth.RoleClient, client.PasswordHash, nil
	}
	if !storage.IsNotFound(err) {
		return "", "", "", err
	}
	admin, err := h.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		return "", "", "", err
	}
	return admin.ID, auth.RoleAdmin, admin.PasswordHash, nil
}

func (h *AuthHandler) issueToken(subject, role string) (string, error) {
	now := time.Now()
	return auth.SignHS256(auth.Claims{
		Sub:  subject,
		Role: role,
		Iat:  now.Unix(),
		Exp:  now.Add(h.tokenTTL).Unix(),
	}, h.secret)
}

func hashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash string, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
