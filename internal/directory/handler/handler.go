package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"userdir/internal/directory/models"
	"userdir/internal/directory/service"
	"userdir/internal/platform/middleware"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/httputil"
	"userdir/pkg/requestcontext"
)

// Service is the directory as seen by the HTTP layer.
type Service interface {
	EnsureInitialized(ctx context.Context) error
	Ready() bool
	GetUser(ctx context.Context, id string) (models.User, bool, error)
	GetUsersByName(ctx context.Context, text string) ([]models.User, error)
	GetUsersByCountry(ctx context.Context, code string) ([]models.User, error)
	GetUsersByAge(ctx context.Context, ageText string) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	Countries(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (service.Stats, error)
}

// Handler serves the directory over JSON/HTTP.
type Handler struct {
	logger     *slog.Logger
	directory  Service
	adminToken string
}

// New creates a Handler. When adminToken is non-empty, DELETE requires a
// matching X-Admin-Token header.
func New(directory Service, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{
		logger:     logger,
		directory:  directory,
		adminToken: adminToken,
	}
}

// Register registers the directory routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Get("/users/{id}", h.handleGetUser)
		r.Get("/users/name/{name}", h.handleGetUsersByName)
		r.Get("/users/country/{country}", h.handleGetUsersByCountry)
		r.Get("/users/age/{age}", h.handleGetUsersByAge)
		r.With(middleware.RequireAdminToken(h.adminToken, h.logger)).
			Delete("/users/{id}", h.handleDeleteUser)
		r.Get("/countries", h.handleCountries)
		r.Get("/stats", h.handleStats)
		r.Get("/healthz", h.handleHealth)
		r.Get("/readyz", h.handleReady)
	})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pathParam(r, "id")
	h.logCall(ctx, "get user", "id", id)

	user, ok, err := h.directory.GetUser(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "get user", err)
		return
	}
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) handleGetUsersByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := pathParam(r, "name")
	h.logCall(ctx, "get users by name", "name", name)

	users, err := h.directory.GetUsersByName(ctx, name)
	h.writeUsers(ctx, w, "get users by name", users, err)
}

func (h *Handler) handleGetUsersByCountry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	country := pathParam(r, "country")
	h.logCall(ctx, "get users by country", "country", country)

	users, err := h.directory.GetUsersByCountry(ctx, country)
	h.writeUsers(ctx, w, "get users by country", users, err)
}

func (h *Handler) handleGetUsersByAge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	age := pathParam(r, "age")
	h.logCall(ctx, "get users by age", "age", age)

	users, err := h.directory.GetUsersByAge(ctx, age)
	h.writeUsers(ctx, w, "get users by age", users, err)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := pathParam(r, "id")
	h.logCall(ctx, "delete user", "id", id)

	deleted, err := h.directory.DeleteUser(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, "delete user", err)
		return
	}
	if !deleted {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "user not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logCall(ctx, "list countries")

	countries, err := h.directory.Countries(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "list countries", err)
		return
	}
	if countries == nil {
		countries = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, countries)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.directory.Stats(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

type statusResponse struct {
	Status string `json:"status"`
}

// handleHealth reports liveness only; it never triggers a load.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handleReady loads the directory if needed and reports whether it is
// serving.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.directory.Ready() {
		if err := h.directory.EnsureInitialized(ctx); err != nil {
			h.writeServiceError(ctx, w, "readiness", err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}

func (h *Handler) writeUsers(ctx context.Context, w http.ResponseWriter, op string, users []models.User, err error) {
	if err != nil {
		h.writeServiceError(ctx, w, op, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// writeServiceError logs and writes err. Errors that carry a code pass
// through; anything else becomes an opaque 500.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	h.logger.ErrorContext(ctx, "directory operation failed",
		"operation", op,
		"code", code,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func (h *Handler) logCall(ctx context.Context, msg string, args ...any) {
	args = append(args, "request_id", requestcontext.RequestID(ctx))
	h.logger.DebugContext(ctx, msg, args...)
}

// pathParam returns the decoded value of a route parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
