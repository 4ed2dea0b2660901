package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/desk"
	"github.com/Shivanand-hulikatti/eventdesk/internal/fault"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
	"github.com/Shivanand-hulikatti/eventdesk/internal/metrics"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
	"github.com/Shivanand-hulikatti/eventdesk/internal/viewstate"
)

// DeskHandler exposes desk sessions over HTTP. The session id returned by
// POST /desk/sessions addresses every later call.
type DeskHandler struct {
	desk *desk.Desk
	log  zerolog.Logger
}

// NewDeskHandler constructs a DeskHandler.
func NewDeskHandler(d *desk.Desk) *DeskHandler {
	return &DeskHandler{desk: d, log: log.WithComponent("desk-http")}
}

// NewDeskRouter builds the desk routes.
func NewDeskRouter(h *DeskHandler) http.Handler {
	r := chi.NewRouter()
	baseMiddleware(r, "desk")

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/desk", func(r chi.Router) {
		r.Get("/public", h.PublicEvents)
		r.Post("/sessions", h.Open)

		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", h.Page)
			r.Delete("/", h.Close)
			r.Post("/view", h.Dispatch)
			r.Post("/refresh", h.Refresh)
			r.Post("/form", h.OpenForm)
			r.Post("/form/submit", h.SubmitForm)
			r.Delete("/modal", h.CloseModal)
			r.Get("/events/{id}", h.EventDetail)
			r.Post("/events/{id}/delete", h.RequestDelete)
			r.Post("/roster/{id}", h.OpenRoster)
			r.Post("/participants", h.AddParticipant)
			r.Put("/participants/{userId}", h.ChangeParticipantRole)
			r.Delete("/participants/{userId}", h.RequestRemoveParticipant)
			r.Post("/confirm", h.Confirm)
			r.Post("/cancel", h.Cancel)
			r.Delete("/notice", h.DismissNotice)
		})
	})
	return r
}

func sid(r *http.Request) string { return chi.URLParam(r, "sid") }

// fail maps desk errors to status codes. Failures of the events API itself
// are notices on the page, so only calls that bypass the page land here
// with a fault.Error.
func (h *DeskHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var fe *fault.Error
	switch {
	case errors.Is(err, desk.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, desk.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, viewstate.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fe) && fe.Status != 0:
		msg := fe.Message
		if msg == "" {
			msg = http.StatusText(fe.Status)
		}
		writeError(w, fe.Status, msg)
	case errors.As(err, &fe):
		writeError(w, http.StatusBadGateway, "events API unavailable")
	default:
		h.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *DeskHandler) respond(w http.ResponseWriter, r *http.Request, page *desk.Page, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Open handles POST /desk/sessions
func (h *DeskHandler) Open(w http.ResponseWriter, r *http.Request) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	page, err := h.desk.Open(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// Close handles DELETE /desk/sessions/{sid}
func (h *DeskHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.desk.Close(r.Context(), sid(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Page handles GET /desk/sessions/{sid}
func (h *DeskHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.Page(r.Context(), sid(r))
	h.respond(w, r, page, err)
}

// Dispatch handles POST /desk/sessions/{sid}/view
func (h *DeskHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var a viewstate.Action
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	page, err := h.desk.Dispatch(r.Context(), sid(r), a)
	h.respond(w, r, page, err)
}

// Refresh handles POST /desk/sessions/{sid}/refresh
func (h *DeskHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.Refresh(r.Context(), sid(r))
	h.respond(w, r, page, err)
}

type openFormRequest struct {
	EventID string `json:"eventId"`
}

// OpenForm handles POST /desk/sessions/{sid}/form
// An eventId opens the edit form; no body opens the create form.
func (h *DeskHandler) OpenForm(w http.ResponseWriter, r *http.Request) {
	var req openFormRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	var (
		page *desk.Page
		err  error
	)
	if req.EventID == "" {
		page, err = h.desk.OpenCreateForm(r.Context(), sid(r))
	} else {
		page, err = h.desk.OpenEditForm(r.Context(), sid(r), req.EventID)
	}
	h.respond(w, r, page, err)
}

// SubmitForm handles POST /desk/sessions/{sid}/form/submit
func (h *DeskHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var form model.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	page, err := h.desk.SubmitForm(r.Context(), sid(r), form)
	h.respond(w, r, page, err)
}

// CloseModal handles DELETE /desk/sessions/{sid}/modal
func (h *DeskHandler) CloseModal(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.CloseModal(r.Context(), sid(r))
	h.respond(w, r, page, err)
}

// EventDetail handles GET /desk/sessions/{sid}/events/{id}
func (h *DeskHandler) EventDetail(w http.ResponseWriter, r *http.Request) {
	ev, err := h.desk.EventDetail(r.Context(), sid(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// RequestDelete handles POST /desk/sessions/{sid}/events/{id}/delete
func (h *DeskHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.RequestDelete(r.Context(), sid(r), chi.URLParam(r, "id"))
	h.respond(w, r, page, err)
}

// OpenRoster handles POST /desk/sessions/{sid}/roster/{id}
func (h *DeskHandler) OpenRoster(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.OpenRoster(r.Context(), sid(r), chi.URLParam(r, "id"))
	h.respond(w, r, page, err)
}

type participantRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// AddParticipant handles POST /desk/sessions/{sid}/participants
func (h *DeskHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	page, err := h.desk.AddParticipant(r.Context(), sid(r), req.UserID, req.Role)
	h.respond(w, r, page, err)
}

// ChangeParticipantRole handles PUT /desk/sessions/{sid}/participants/{userId}
func (h *DeskHandler) ChangeParticipantRole(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	page, err := h.desk.ChangeParticipantRole(r.Context(), sid(r), chi.URLParam(r, "userId"), req.Role)
	h.respond(w, r, page, err)
}

// RequestRemoveParticipant handles DELETE /desk/sessions/{sid}/participants/{userId}
// The removal only happens after POST .../confirm.
func (h *DeskHandler) RequestRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.RequestRemoveParticipant(r.Context(), sid(r), chi.URLParam(r, "userId"))
	h.respond(w, r, page, err)
}

// Confirm handles POST /desk/sessions/{sid}/confirm
func (h *DeskHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.Confirm(r.Context(), sid(r))
	h.respond(w, r, page, err)
}

// Cancel handles POST /desk/sessions/{sid}/cancel
func (h *DeskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.Cancel(r.Context(), sid(r))
	h.respond(w, r, page, err)
}

// DismissNotice handles DELETE /desk/sessions/{sid}/notice
func (h *DeskHandler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	page, err := h.desk.DismissNotice(r.Context(), sid(r))
	h.respond(w, r, page, err)
}

// PublicEvents handles GET /desk/public
func (h *DeskHandler) PublicEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.desk.PublicEvents(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeEvents(w, events)
}
