package program

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/logo-playground/api/internal/auth"
	"github.com/logo-playground/api/internal/httputil"
	"github.com/logo-playground/api/internal/logging"
	"github.com/logo-playground/api/internal/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// Handler contains HTTP handlers for program endpoints. All routes sit behind
// the session gate; the router wires the middleware.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Meta carries pagination totals alongside the items.
type Meta struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// ListResponse is the paginated listing envelope.
type ListResponse struct {
	Meta Meta      `json:"meta"`
	Data []Program `json:"data"`
}

// List handles the paginated program listing
// @Summary      List programs
// @Description  List programs ordered by creation time descending. visibility=public narrows to public programs.
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number (default 1)"
// @Param        limit query int false "Page size (default 20)"
// @Param        visibility query string false "Filter: public"
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      422 {object} httputil.ValidationErrorResponse "Invalid paging parameters"
// @Router       /api/programs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	verr := validation.NewErrors()
	page := parsePositiveInt(r.URL.Query().Get("page"), defaultPage, "page", verr)
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultLimit, "limit", verr)
	if verr.HasErrors() {
		httputil.RespondValidationError(w, verr)
		return
	}

	result, err := h.service.List(r.Context(), page, limit, r.URL.Query().Get("visibility"))
	if err != nil {
		logger.Error("failed to list programs", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list programs", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, ListResponse{
		Meta: Meta{
			Total:       result.Total,
			PerPage:     result.Limit,
			CurrentPage: result.Page,
			LastPage:    result.LastPage(),
		},
		Data: result.Items,
	}, http.StatusOK)
}

// Create handles program creation
// @Summary      Create a program
// @Description  Store a new program. Visibility defaults to private, description to null.
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Program fields"
// @Success      201 {object} Program
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      422 {object} httputil.ValidationErrorResponse "Validation failed"
// @Router       /api/programs [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create program request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	prog, err := h.service.Create(r.Context(), req)
	if err != nil {
		var verr *validation.Errors
		if errors.As(err, &verr) {
			logger.Warn("program creation failed: validation error", "fields", verr.Error())
			httputil.RespondValidationError(w, verr)
			return
		}
		logger.Error("program creation failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create program", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	userID, _ := auth.GetUserIDFromContext(r.Context())
	logger.Info("program created", "program_id", prog.ID, "user_id", userID)
	httputil.RespondJSON(w, prog, http.StatusCreated)
}

// Get handles fetching a single program
// @Summary      Get a program
// @Description  Fetch one program by id. Direct reads are not visibility-scoped.
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Program ID"
// @Success      200 {object} Program
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /api/programs/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	prog, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "program not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get program", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get program", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, prog, http.StatusOK)
}

// Update handles partial program updates
// @Summary      Update a program
// @Description  Apply a partial update. Only fields present in the body change; description null clears it.
// @Tags         programs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Program ID"
// @Param        request body Patch true "Fields to change"
// @Success      200 {object} Program
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Failure      422 {object} httputil.ValidationErrorResponse "Validation failed"
// @Router       /api/programs/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var patch Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logger.Warn("invalid update program request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	prog, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		var verr *validation.Errors
		if errors.As(err, &verr) {
			logger.Warn("program update failed: validation error", "fields", verr.Error())
			httputil.RespondValidationError(w, verr)
			return
		}
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "program not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("program update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update program", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	userID, _ := auth.GetUserIDFromContext(r.Context())
	logger.Info("program updated", "program_id", prog.ID, "user_id", userID)
	httputil.RespondJSON(w, prog, http.StatusOK)
}

// Delete handles program deletion
// @Summary      Delete a program
// @Description  Remove a program irreversibly.
// @Tags         programs
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Program ID"
// @Success      200 {object} map[string]string
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Router       /api/programs/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "program not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("program deletion failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete program", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	userID, _ := auth.GetUserIDFromContext(r.Context())
	logger.Info("program deleted", "program_id", id, "user_id", userID)
	httputil.RespondJSON(w, map[string]string{"message": "Program deleted"}, http.StatusOK)
}

// parseID reads the {id} route parameter. A non-numeric id cannot name any
// program, so it answers 404 like any other missing artifact.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "program not found", httputil.CodeNotFound, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// parsePositiveInt parses a paging query parameter, recording a violation for
// anything that is not a positive integer.
func parsePositiveInt(raw string, defaultValue int, field string, verr *validation.Errors) int {
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		verr.Add(field, field+" must be a positive integer")
		return defaultValue
	}
	return value
}
