package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scribe/scribe/internal/auth"
	"github.com/scribe/scribe/internal/handler/dto"
	"github.com/scribe/scribe/internal/middleware"
	"github.com/scribe/scribe/internal/model"
	"github.com/scribe/scribe/internal/service"
)

// AuthService is the subset of service.AuthService used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
}

// AuthHandler handles registration, login and caller lookup.
type AuthHandler struct {
	svc    AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	result, err := h.svc.Login(r.Context(), req.ToInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("login_failed",
				"reason", err.Error(),
				"ip", r.RemoteAddr,
				"request_id", middleware.GetRequestID(r.Context()),
			)
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLoginResponse(result))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.CallerFromContext(r.Context())
	if user == nil {
		handleServiceError(w, r, h.logger, service.ErrUnauthenticated)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user.Summary()))
}
