// Package notify holds the single notification slot shown as a blocking
// popup: an error, a success message or a pending confirmation. Raising a new
// notice replaces whatever was shown before.
package notify

// Kind is the notice category.
type Kind string

const (
	KindError   Kind = "error"
	KindSuccess Kind = "success"
	KindConfirm Kind = "confirm"
)

// ActionKind names an irreversible action waiting for confirmation.
type ActionKind string

const (
	DeleteEvent       ActionKind = "delete_event"
	RemoveParticipant ActionKind = "remove_participant"
)

// Pending is a staged action. It is plain data so a session can be stored
// and the action replayed after the user confirms.
type Pending struct {
	Action  ActionKind `json:"action"`
	EventID string     `json:"eventId"`
	UserID  string     `json:"userId,omitempty"`
}

// Notice is what the popup displays.
type Notice struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Pending *Pending `json:"pending,omitempty"`
}

// Slot holds at most one notice.
type Slot struct {
	Notice *Notice `json:"notice,omitempty"`
}

// Error shows an error message.
func (s *Slot) Error(msg string) {
	s.Notice = &Notice{Kind: KindError, Message: msg}
}

// Success shows a success message.
func (s *Slot) Success(msg string) {
	s.Notice = &Notice{Kind: KindSuccess, Message: msg}
}

// Confirm stages p behind a confirmation prompt.
func (s *Slot) Confirm(msg string, p Pending) {
	s.Notice = &Notice{Kind: KindConfirm, Message: msg, Pending: &p}
}

// Empty reports whether nothing is shown.
func (s *Slot) Empty() bool {
	return s.Notice == nil
}

// Dismiss clears the slot. Dismissing a confirmation discards its action.
func (s *Slot) Dismiss() {
	s.Notice = nil
}

// TakePending clears a pending confirmation and returns its action. ok is
// false when the slot does not hold a confirmation.
func (s *Slot) TakePending() (p Pending, ok bool) {
	if s.Notice == nil || s.Notice.Kind != KindConfirm || s.Notice.Pending == nil {
		return Pending{}, false
	}
	p = *s.Notice.Pending
	s.Notice = nil
	return p, true
}
