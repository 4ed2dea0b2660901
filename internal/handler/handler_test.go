package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/desk"
	"github.com/Shivanand-hulikatti/eventdesk/internal/gateway"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/notify"
	"github.com/Shivanand-hulikatti/eventdesk/internal/service"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
)

// stubService keeps events in memory and fails every call with err when set.
type stubService struct {
	mu     sync.Mutex
	events []model.Event
	users  []model.User
	err    error
	nextID int
}

func newStubService() *stubService {
	return &stubService{
		events: []model.Event{{
			ID: "e1", EventName: "Kickoff", EventType: model.EventTypeMeeting,
			StartDateTime: model.MustTimestamp("2025-05-01T09:00"),
			EndDateTime:   model.MustTimestamp("2025-05-01T10:00"),
			Participants:  map[string]model.Role{"u1": model.RoleOwner},
		}},
		users: []model.User{
			{ID: "u1", FirstName: "Alice", LastName: "Adams"},
			{ID: "u2", FirstName: "Bob", LastName: "Brown"},
		},
	}
}

func (s *stubService) snapshot() ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		cp := e
		cp.Participants = make(map[string]model.Role, len(e.Participants))
		for k, v := range e.Participants {
			cp.Participants[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *stubService) find(id string) (*model.Event, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			return &s.events[i], nil
		}
	}
	return nil, service.ErrNotFound
}

func (s *stubService) ListPublic(context.Context) ([]model.Event, error) {
	events, err := s.snapshot()
	for i := range events {
		events[i].Participants = nil
	}
	return events, err
}

func (s *stubService) ListAll(context.Context, auth.Principal) ([]model.Event, error) {
	return s.snapshot()
}

func (s *stubService) ListMine(_ context.Context, p auth.Principal) ([]model.Event, error) {
	events, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	mine := []model.Event{}
	for _, e := range events {
		if e.HasParticipant(p.UserID) {
			mine = append(mine, e)
		}
	}
	return mine, nil
}

func (s *stubService) GetEvent(_ context.Context, id string) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	e, err := s.find(id)
	if err != nil {
		return nil, err
	}
	cp := *e
	return &cp, nil
}

func (s *stubService) CreateEvent(_ context.Context, p auth.Principal, form model.EventForm) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	e := model.Event{
		ID: fmt.Sprintf("n%d", s.nextID), EventName: form.EventName, EventType: form.EventType,
		StartDateTime: form.StartDateTime, EndDateTime: form.EndDateTime,
		Participants: map[string]model.Role{p.UserID: model.RoleOwner},
	}
	s.events = append(s.events, e)
	return &e, nil
}

func (s *stubService) UpdateEvent(_ context.Context, _ auth.Principal, id string, form model.EventForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	e, err := s.find(id)
	if err != nil {
		return err
	}
	e.EventName = form.EventName
	return nil
}

func (s *stubService) DeleteEvent(_ context.Context, _ auth.Principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (s *stubService) AddParticipant(_ context.Context, _ auth.Principal, eventID, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	e, err := s.find(eventID)
	if err != nil {
		return err
	}
	if e.HasParticipant(userID) {
		return service.ErrAlreadyParticipant
	}
	e.Participants[userID] = model.Role(role)
	return nil
}

func (s *stubService) RemoveParticipant(_ context.Context, _ auth.Principal, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	e, err := s.find(eventID)
	if err != nil {
		return err
	}
	delete(e.Participants, userID)
	return nil
}

func (s *stubService) ChangeParticipantRole(_ context.Context, _ auth.Principal, eventID, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	e, err := s.find(eventID)
	if err != nil {
		return err
	}
	e.Participants[userID] = model.Role(role)
	return nil
}

func (s *stubService) ListUsers(context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users, s.err
}

func newAuth(t *testing.T) *auth.Authenticator {
	t.Helper()
	a, err := auth.New("test-secret", time.Hour)
	require.NoError(t, err)
	return a
}

func issue(t *testing.T, a *auth.Authenticator, userID string, roles ...string) string {
	t.Helper()
	tok, err := a.Issue(userID, roles)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func TestHealth(t *testing.T) {
	router := NewAPIRouter(NewEventHandler(newStubService()), newAuth(t))
	rec := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	router := NewAPIRouter(NewEventHandler(newStubService()), newAuth(t))

	rec := do(t, router, http.MethodGet, "/events/getAllEvents", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, errorMessage(t, rec))

	rec = do(t, router, http.MethodGet, "/user", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token", errorMessage(t, rec))
}

func TestAPIPublicListingIsAnonymous(t *testing.T) {
	router := NewAPIRouter(NewEventHandler(newStubService()), newAuth(t))

	rec := do(t, router, http.MethodGet, "/events/public", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []model.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Participants)
}

func TestAPICreateEvent(t *testing.T) {
	a := newAuth(t)
	router := NewAPIRouter(NewEventHandler(newStubService()), a)
	body := `{"eventName":"Demo","eventLocation":"","startDateTime":"2025-06-01T10:00","endDateTime":"2025-06-01T11:00","eventDescription":"","eventType":"WORKSHOP"}`

	rec := do(t, router, http.MethodPost, "/events", issue(t, a, "u2"), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var ev model.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ev))
	assert.Equal(t, "Demo", ev.EventName)
	assert.Equal(t, model.RoleOwner, ev.Participants["u2"])

	rec = do(t, router, http.MethodPost, "/events", issue(t, a, "u2"), `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Message: "eventName is required"}, http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"participant missing", service.ErrParticipantMissing, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"conflict", service.ErrAlreadyParticipant, http.StatusConflict},
		{"unexpected", fmt.Errorf("list events: %w", context.DeadlineExceeded), http.StatusInternalServerError},
	}

	a := newAuth(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStubService()
			svc.err = tt.err
			router := NewAPIRouter(NewEventHandler(svc), a)

			rec := do(t, router, http.MethodPost, "/events/e1/participants/u2?role=ATTENDEE", issue(t, a, "u1"), "")
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, errorMessage(t, rec))
		})
	}
}

func TestAPIParticipantRoutes(t *testing.T) {
	a := newAuth(t)
	svc := newStubService()
	router := NewAPIRouter(NewEventHandler(svc), a)
	tok := issue(t, a, "u1")

	rec := do(t, router, http.MethodPost, "/events/e1/participants/u2?role=COLLABORATOR", tok, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, model.RoleCollaborator, svc.events[0].Participants["u2"])

	rec = do(t, router, http.MethodPut, "/events/e1/participants/u2/role?newRole=ATTENDEE", tok, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, model.RoleAttendee, svc.events[0].Participants["u2"])

	rec = do(t, router, http.MethodDelete, "/events/e1/participants/u2", tok, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, svc.events[0].HasParticipant("u2"))
}

func TestCORSPreflight(t *testing.T) {
	router := NewAPIRouter(NewEventHandler(newStubService()), newAuth(t))
	rec := do(t, router, http.MethodOptions, "/events/getAllEvents", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// deskStack runs the desk router against a live events API router.
func deskStack(t *testing.T) (http.Handler, *stubService, *auth.Authenticator) {
	t.Helper()
	a := newAuth(t)
	svc := newStubService()
	api := httptest.NewServer(NewAPIRouter(NewEventHandler(svc), a))
	t.Cleanup(api.Close)

	client := gateway.New(api.URL, 2*time.Second)
	d := desk.New(session.NewMemoryStore(time.Hour), func(token string) desk.Gateway {
		return client.WithToken(token)
	}, a)
	return NewDeskRouter(NewDeskHandler(d)), svc, a
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) desk.Page {
	t.Helper()
	var page desk.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	return page
}

func TestDeskOpenNeedsToken(t *testing.T) {
	router, _, _ := deskStack(t)

	rec := do(t, router, http.MethodPost, "/desk/sessions", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/desk/sessions", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeskUnknownSession(t *testing.T) {
	router, _, _ := deskStack(t)
	rec := do(t, router, http.MethodGet, "/desk/sessions/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", errorMessage(t, rec))
}

func TestDeskCreateAndDeleteFlow(t *testing.T) {
	router, svc, a := deskStack(t)

	rec := do(t, router, http.MethodPost, "/desk/sessions", issue(t, a, "u1"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	page := decodePage(t, rec)
	require.Len(t, page.Mine, 1)
	base := "/desk/sessions/" + page.SessionID

	rec = do(t, router, http.MethodPost, base+"/form", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decodePage(t, rec).Form)

	rec = do(t, router, http.MethodPost, base+"/form/submit", "",
		`{"eventName":"","startDateTime":"2025-06-01T10:00","endDateTime":"2025-06-01T11:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodePage(t, rec)
	require.NotNil(t, page.Notice)
	assert.Equal(t, notify.KindError, page.Notice.Kind)
	assert.Len(t, svc.events, 1)

	rec = do(t, router, http.MethodPost, base+"/form/submit", "",
		`{"eventName":"Launch","startDateTime":"2025-06-01T10:00","endDateTime":"2025-06-01T11:00","eventType":"OTHER"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodePage(t, rec)
	require.NotNil(t, page.Notice)
	assert.Equal(t, notify.KindSuccess, page.Notice.Kind)
	assert.Equal(t, 2, page.Total)

	rec = do(t, router, http.MethodPost, base+"/events/e1/delete", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, notify.KindConfirm, decodePage(t, rec).Notice.Kind)

	rec = do(t, router, http.MethodPost, base+"/confirm", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodePage(t, rec)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "Launch", page.Mine[0].EventName)

	rec = do(t, router, http.MethodDelete, base, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeskRosterFlow(t *testing.T) {
	router, svc, a := deskStack(t)

	rec := do(t, router, http.MethodPost, "/desk/sessions", issue(t, a, "u1"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/desk/sessions/" + decodePage(t, rec).SessionID

	rec = do(t, router, http.MethodPost, base+"/roster/e1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodePage(t, rec)
	require.NotNil(t, page.Roster)
	require.Len(t, page.Roster.Available, 1)
	assert.Equal(t, "u2", page.Roster.Available[0].ID)

	rec = do(t, router, http.MethodPost, base+"/participants", "", `{"userId":"u2","role":"COLLABORATOR"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodePage(t, rec)
	assert.Equal(t, 2, page.Roster.Total)
	assert.Equal(t, model.RoleCollaborator, svc.events[0].Participants["u2"])

	rec = do(t, router, http.MethodDelete, base+"/participants/u2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodePage(t, rec).Notice.Message, "Bob Brown")

	rec = do(t, router, http.MethodPost, base+"/cancel", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.events[0].HasParticipant("u2"))

	rec = do(t, router, http.MethodPost, base+"/view", "", `{"action":"nonsense"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeskEventDetailMapsAPIStatus(t *testing.T) {
	router, _, a := deskStack(t)

	rec := do(t, router, http.MethodPost, "/desk/sessions", issue(t, a, "u1"), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/desk/sessions/" + decodePage(t, rec).SessionID

	rec = do(t, router, http.MethodGet, base+"/events/e1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, base+"/events/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.ErrNotFound.Error(), errorMessage(t, rec))
}

func TestDeskPublicEvents(t *testing.T) {
	router, _, _ := deskStack(t)

	rec := do(t, router, http.MethodGet, "/desk/public", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []model.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
	assert.Len(t, events, 1)
}
