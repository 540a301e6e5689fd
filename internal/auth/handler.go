package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/producemart/wholesale-api/internal/domain"
)

// UserStore abstracts the repository for handler tests.
type UserStore interface {
	Create(ctx context.Context, u *domain.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, string, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Handler struct {
	repo   UserStore
	secret []byte
	logger *slog.Logger
}

func NewHandler(repo UserStore, secret []byte, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, secret: secret, logger: logger}
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// HandleRegister creates a buyer account. Self-registration never grants
// ADMIN.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &domain.User{
		Name:        req.Name,
		Email:       req.Email,
		Role:        domain.RoleBuyer,
		CompanyName: req.CompanyName,
	}

	if err := h.repo.Create(r.Context(), user, string(hash)); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			h.writeError(w, http.StatusConflict, conflict.Message)
			return
		}
		h.logger.Error("failed to create user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := SignToken(h.secret, *user)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, hash, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to look up user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		h.writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := SignToken(h.secret, *user)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	h.writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.repo.GetByID(r.Context(), p.ID)
	if err != nil {
		h.logger.Error("failed to load user", "error", err, "user_id", p.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]*domain.User{"user": user})
}

// HandleGetUser looks up a user by id. Buyer profiles are visible to any
// authenticated user; admin profiles only to admins.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to load user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.Role == domain.RoleAdmin && !p.IsAdmin() {
		h.writeError(w, http.StatusForbidden, "Admin role required")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]*domain.User{"user": user})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
