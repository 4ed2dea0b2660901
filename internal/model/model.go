// Package model defines the core domain types for the event management system.
package model

import "strings"

// EventType classifies an event.
type EventType string

const (
	EventTypeConference EventType = "CONFERENCE"
	EventTypeWorkshop   EventType = "WORKSHOP"
	EventTypeMeeting    EventType = "MEETING"
	EventTypeOther      EventType = "OTHER"
)

// EventTypes lists every event type in display order.
var EventTypes = []EventType{EventTypeConference, EventTypeWorkshop, EventTypeMeeting, EventTypeOther}

// Valid reports whether t is one of the fixed event types.
func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Role is a participant's permission level within one event's roster.
type Role string

const (
	RoleOwner        Role = "OWNER"
	RoleCollaborator Role = "COLLABORATOR"
	RoleAttendee     Role = "ATTENDEE"
	RoleAdmin        Role = "ADMIN"

	// AdminMarker is the reserved roster value for administrators attached to
	// an event. Entries carrying it are never listed as removable participants.
	AdminMarker Role = "admin"
)

// Roles lists the assignable participant roles in display order.
var Roles = []Role{RoleOwner, RoleCollaborator, RoleAttendee, RoleAdmin}

// ParseRole normalises s into a participant role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range Roles {
		if r == v {
			return r, true
		}
	}
	return "", false
}

// Event is a schedulable activity with a time range, type and participant roster.
type Event struct {
	ID               string          `json:"id"`
	EventName        string          `json:"eventName"`
	EventLocation    string          `json:"eventLocation,omitempty"`
	StartDateTime    Timestamp       `json:"startDateTime"`
	EndDateTime      Timestamp       `json:"endDateTime"`
	EventDescription string          `json:"eventDescription,omitempty"`
	EventType        EventType       `json:"eventType"`
	Participants     map[string]Role `json:"participants,omitempty"`
}

// HasParticipant reports whether userID is a key of the participant map.
func (e *Event) HasParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	_, ok := e.Participants[userID]
	return ok
}

// RoleOf returns the role userID holds on the event.
func (e *Event) RoleOf(userID string) (Role, bool) {
	r, ok := e.Participants[userID]
	return r, ok
}

// EventForm is the payload for creating or replacing an event.
type EventForm struct {
	EventName        string    `json:"eventName"`
	EventLocation    string    `json:"eventLocation"`
	StartDateTime    Timestamp `json:"startDateTime"`
	EndDateTime      Timestamp `json:"endDateTime"`
	EventDescription string    `json:"eventDescription"`
	EventType        EventType `json:"eventType"`
}

// NewEventForm returns an empty form with the default event type.
func NewEventForm() EventForm {
	return EventForm{EventType: EventTypeConference}
}

// FormFromEvent pre-fills a form with an existing event's fields.
func FormFromEvent(e Event) EventForm {
	return EventForm{
		EventName:        e.EventName,
		EventLocation:    e.EventLocation,
		StartDateTime:    e.StartDateTime,
		EndDateTime:      e.EndDateTime,
		EventDescription: e.EventDescription,
		EventType:        e.EventType,
	}
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Message string `json:"message"`
}
