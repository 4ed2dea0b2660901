package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
	"github.com/Shivanand-hulikatti/eventdesk/internal/metrics"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/service"
)

// EventService is the business layer behind the events API.
type EventService interface {
	ListPublic(ctx context.Context) ([]model.Event, error)
	ListAll(ctx context.Context, p auth.Principal) ([]model.Event, error)
	ListMine(ctx context.Context, p auth.Principal) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	CreateEvent(ctx context.Context, p auth.Principal, form model.EventForm) (*model.Event, error)
	UpdateEvent(ctx context.Context, p auth.Principal, id string, form model.EventForm) error
	DeleteEvent(ctx context.Context, p auth.Principal, id string) error
	AddParticipant(ctx context.Context, p auth.Principal, eventID, userID, role string) error
	RemoveParticipant(ctx context.Context, p auth.Principal, eventID, userID string) error
	ChangeParticipantRole(ctx context.Context, p auth.Principal, eventID, userID, role string) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

// EventHandler holds all HTTP handlers for the events API.
type EventHandler struct {
	svc EventService
	log zerolog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{svc: svc, log: log.WithComponent("api")}
}

// NewAPIRouter builds the events API routes.
func NewAPIRouter(h *EventHandler, verifier TokenVerifier) http.Handler {
	r := chi.NewRouter()
	baseMiddleware(r, "api")

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	requireAuth := RequireAuth(verifier)

	r.Route("/events", func(r chi.Router) {
		r.Get("/public", h.ListPublic)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.CreateEvent)
			r.Get("/getAllEvents", h.ListAll)
			r.Get("/my-events", h.ListMine)
			r.Get("/{id}", h.GetEvent)
			r.Put("/{id}", h.UpdateEvent)
			r.Delete("/{id}", h.DeleteEvent)
			r.Post("/{id}/participants/{userId}", h.AddParticipant)
			r.Delete("/{id}/participants/{userId}", h.RemoveParticipant)
			r.Put("/{id}/participants/{userId}/role", h.ChangeParticipantRole)
		})
	})
	r.With(requireAuth).Get("/user", h.ListUsers)

	return r
}

// principal returns the caller set by RequireAuth.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

// fail maps service errors to status codes.
func (h *EventHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrParticipantMissing):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyParticipant):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeEvents(w http.ResponseWriter, events []model.Event) {
	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ListPublic handles GET /events/public
func (h *EventHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListPublic(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeEvents(w, events)
}

// ListAll handles GET /events/getAllEvents
func (h *EventHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListAll(r.Context(), principal(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeEvents(w, events)
}

// ListMine handles GET /events/my-events
func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListMine(r.Context(), principal(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeEvents(w, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /events
// The caller becomes the event's OWNER.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var form model.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), principal(r), form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// UpdateEvent handles PUT /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var form model.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdateEvent(r.Context(), principal(r), chi.URLParam(r, "id"), form); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddParticipant handles POST /events/{id}/participants/{userId}?role=R
func (h *EventHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.svc.AddParticipant(r.Context(), principal(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "userId"), r.URL.Query().Get("role"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveParticipant handles DELETE /events/{id}/participants/{userId}
func (h *EventHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveParticipant(r.Context(), principal(r), chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeParticipantRole handles PUT /events/{id}/participants/{userId}/role?newRole=R
func (h *EventHandler) ChangeParticipantRole(w http.ResponseWriter, r *http.Request) {
	err := h.svc.ChangeParticipantRole(r.Context(), principal(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "userId"), r.URL.Query().Get("newRole"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /user
func (h *EventHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}
