// Package session holds the per-user desk state and the stores that keep it
// between requests.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/notify"
	"github.com/Shivanand-hulikatti/eventdesk/internal/viewstate"
)

var (
	// ErrNotFound is returned for unknown, expired or closed sessions. Save
	// returns it too, so a session closed mid-call is never written back.
	ErrNotFound = errors.New("session not found")
	ErrExists   = errors.New("session already exists")
)

// Session is everything the desk remembers about one open events page.
type Session struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	ViewerID string `json:"viewerId"`
	Admin    bool   `json:"admin"`

	View   viewstate.State `json:"view"`
	Events []model.Event   `json:"events"`
	Users  []model.User    `json:"users"`
	Notice notify.Slot     `json:"notice"`
	Form   model.EventForm `json:"form"`

	CreatedAt time.Time `json:"createdAt"`
}

// New returns a session with the default view and empty collections.
func New(id, token, viewerID string, admin bool) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		ViewerID:  viewerID,
		Admin:     admin,
		View:      viewstate.Default(),
		Events:    []model.Event{},
		Users:     []model.User{},
		Form:      model.NewEventForm(),
		CreatedAt: time.Now().UTC(),
	}
}

// Event returns the cached event with the given id.
func (s *Session) Event(id string) (*model.Event, bool) {
	if id == "" {
		return nil, false
	}
	for i := range s.Events {
		if s.Events[i].ID == id {
			return &s.Events[i], true
		}
	}
	return nil, false
}

// SelectedEvent returns the event the open modal refers to.
func (s *Session) SelectedEvent() (*model.Event, bool) {
	return s.Event(s.View.SelectedEventID)
}

func encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Events == nil {
		s.Events = []model.Event{}
	}
	if s.Users == nil {
		s.Users = []model.User{}
	}
	return &s, nil
}
