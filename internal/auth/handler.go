package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/logo-playground/api/internal/httputil"
	"github.com/logo-playground/api/internal/logging"
	"github.com/logo-playground/api/internal/user"
	"github.com/logo-playground/api/internal/validation"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service         *Service
	sessions        *SessionManager
	logger          *logging.Logger
	isProduction    bool
	sessionDuration time.Duration
}

func NewHandler(service *Service, sessions *SessionManager, logger *logging.Logger, isProduction bool, sessionDuration time.Duration) *Handler {
	return &Handler{
		service:         service,
		sessions:        sessions,
		logger:          logger,
		isProduction:    isProduction,
		sessionDuration: sessionDuration,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse represents a user together with a freshly issued session token
type SessionResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account. A session is established immediately on success.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      422 {object} httputil.ValidationErrorResponse "Validation failed"
// @Router       /api/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		var verr *validation.Errors
		if errors.As(err, &verr) {
			logger.Warn("registration failed: validation error", "fields", verr.Error())
			httputil.RespondValidationError(w, verr)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already registered", "email", req.Email)
			httputil.RespondErrorWithCode(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Create(r.Context(), newUser)
	if err != nil {
		logger.Error("failed to establish session after registration", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to establish session", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	SetSessionCookie(w, token, h.isProduction, h.sessionDuration)
	httputil.RespondJSON(w, SessionResponse{User: newUser, Token: token}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password, establishing a session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	existingUser, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// Unknown email and wrong password answer identically.
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Create(r.Context(), existingUser)
	if err != nil {
		logger.Error("failed to establish session", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to establish session", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", existingUser.ID)

	SetSessionCookie(w, token, h.isProduction, h.sessionDuration)
	httputil.RespondJSON(w, SessionResponse{User: existingUser, Token: token}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Destroy the current session. Idempotent.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]string
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token, _ := ExtractToken(r)
	if err := h.sessions.Destroy(r.Context(), token); err != nil {
		logger.Error("failed to destroy session", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to logout", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	ClearSessionCookie(w, h.isProduction)

	logger.Info("user logged out")
	httputil.RespondJSON(w, map[string]string{"message": "Logged out successfully"}, http.StatusOK)
}

// Me returns the currently authenticated user
// @Summary      Current user
// @Description  Return the user bound to the request's session.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.User
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /api/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		// Route reachable without the gate; no session means no current user.
		httputil.RespondJSON(w, nil, http.StatusOK)
		return
	}

	currentUser, err := h.service.GetUser(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "invalid session", httputil.CodeSessionInvalid, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to load current user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load current user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, currentUser, http.StatusOK)
}
