package desk

import (
	"github.com/Shivanand-hulikatti/eventdesk/internal/listing"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/notify"
	"github.com/Shivanand-hulikatti/eventdesk/internal/roster"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
	"github.com/Shivanand-hulikatti/eventdesk/internal/viewstate"
)

// Card actions.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionRoster = "roster"
)

// Page is the rendered events page of one session.
type Page struct {
	SessionID string          `json:"sessionId"`
	ViewerID  string          `json:"viewerId"`
	Admin     bool            `json:"admin"`
	View      viewstate.State `json:"view"`

	// Total is the number of events left after search and type filter.
	Total     int  `json:"total"`
	PageCount int  `json:"pageCount"`
	Empty     bool `json:"empty"`

	Mine     []Card               `json:"mine"`
	Others   []Card               `json:"others"`
	OthersAs listing.Presentation `json:"othersAs"`

	Form   *model.EventForm `json:"form,omitempty"`
	Roster *RosterView      `json:"roster,omitempty"`
	Notice *notify.Notice   `json:"notice,omitempty"`
}

// Card is one event as listed. Peek cards carry only the name, type and
// start; full cards carry every field and the actions the viewer may take.
type Card struct {
	ID            string          `json:"id"`
	EventName     string          `json:"eventName"`
	EventType     model.EventType `json:"eventType"`
	StartDateTime model.Timestamp `json:"startDateTime"`

	EndDateTime      *model.Timestamp `json:"endDateTime,omitempty"`
	EventLocation    string           `json:"eventLocation,omitempty"`
	EventDescription string           `json:"eventDescription,omitempty"`
	Participants     int              `json:"participants,omitempty"`
	MyRole           model.Role       `json:"myRole,omitempty"`
	Actions          []string         `json:"actions,omitempty"`
}

// RosterView is the open participant list.
type RosterView struct {
	EventID   string        `json:"eventId"`
	EventName string        `json:"eventName"`
	Entries   []RosterEntry `json:"entries"`
	Page      int           `json:"page"`
	PageSize  int           `json:"pageSize"`
	PageCount int           `json:"pageCount"`
	Total     int           `json:"total"`
	Available []model.User  `json:"available"`
	Roles     []model.Role  `json:"roles"`
}

// RosterEntry is one listed participant with its user details when known.
type RosterEntry struct {
	UserID string     `json:"userId"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email,omitempty"`
	Role   model.Role `json:"role"`
}

// Render builds the page model of s. It does not modify s; a page number
// left out of range by a refresh is clamped for display only.
func Render(s *session.Session) *Page {
	v := s.View
	all := ordered(s)
	v.EventPage = listing.ClampPage(v.EventPage, len(all), v.EventPageSize)

	part := listing.Split(all, s.ViewerID, s.Admin, v.ViewMode, v.EventPage, v.EventPageSize)

	p := &Page{
		SessionID: s.ID,
		ViewerID:  s.ViewerID,
		Admin:     s.Admin,
		View:      v,
		Total:     len(all),
		PageCount: listing.PageCount(len(all), v.EventPageSize),
		Empty:     len(all) == 0,
		Mine:      make([]Card, 0, len(part.Mine)),
		Others:    make([]Card, 0, len(part.Others)),
		OthersAs:  part.OthersAs,
		Notice:    s.Notice.Notice,
	}
	for _, e := range part.Mine {
		p.Mine = append(p.Mine, card(s, e, listing.Full))
	}
	for _, e := range part.Others {
		p.Others = append(p.Others, card(s, e, part.OthersAs))
	}

	switch v.Modal {
	case viewstate.ModalEventForm:
		form := s.Form
		p.Form = &form
	case viewstate.ModalRoster:
		p.Roster = rosterView(s, v)
		if p.Roster != nil {
			p.View.ParticipantPage = p.Roster.Page
		}
	}
	return p
}

func card(s *session.Session, e model.Event, as listing.Presentation) Card {
	c := Card{
		ID:            e.ID,
		EventName:     e.EventName,
		EventType:     e.EventType,
		StartDateTime: e.StartDateTime,
	}
	if as != listing.Full {
		return c
	}
	end := e.EndDateTime
	c.EndDateTime = &end
	c.EventLocation = e.EventLocation
	c.EventDescription = e.EventDescription
	c.Participants = len(e.Participants)
	c.MyRole, _ = e.RoleOf(s.ViewerID)
	if canManage(s, &e) {
		c.Actions = []string{ActionEdit, ActionDelete, ActionRoster}
	}
	return c
}

func rosterView(s *session.Session, v viewstate.State) *RosterView {
	ev, ok := s.Event(v.SelectedEventID)
	if !ok {
		return nil
	}
	entries := roster.Participants(ev)
	page := listing.ClampPage(v.ParticipantPage, len(entries), v.ParticipantPageSize)

	users := make(map[string]model.User, len(s.Users))
	for _, u := range s.Users {
		users[u.ID] = u
	}

	rv := &RosterView{
		EventID:   ev.ID,
		EventName: ev.EventName,
		Entries:   []RosterEntry{},
		Page:      page,
		PageSize:  v.ParticipantPageSize,
		PageCount: listing.PageCount(len(entries), v.ParticipantPageSize),
		Total:     len(entries),
		Available: roster.AvailableUsers(s.Users, ev, s.Admin),
		Roles:     model.Roles,
	}
	for _, e := range listing.Paginate(entries, page, v.ParticipantPageSize) {
		re := RosterEntry{UserID: e.UserID, Role: e.Role}
		if u, ok := users[e.UserID]; ok {
			re.Name = u.DisplayName()
			re.Email = u.Email
		}
		rv.Entries = append(rv.Entries, re)
	}
	return rv
}
