// Package roster inspects the participant map of the event whose roster is
// open: who can still be added, and which current participants are listed.
package roster

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Shivanand-hulikatti/eventdesk/internal/listing"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

// Entry is one listed participant.
type Entry struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role"`
}

// AvailableUsers returns the users that are not yet participants of ev.
// Non-admin callers additionally cannot add administrators.
func AvailableUsers(all []model.User, ev *model.Event, isAdmin bool) []model.User {
	out := make([]model.User, 0, len(all))
	for _, u := range all {
		if ev != nil && ev.HasParticipant(u.ID) {
			continue
		}
		if !isAdmin && u.IsAdmin() {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Participants lists ev's roster ordered by user id, leaving out entries
// that carry the reserved admin marker.
func Participants(ev *model.Event) []Entry {
	if ev == nil {
		return []Entry{}
	}
	out := make([]Entry, 0, len(ev.Participants))
	for id, role := range ev.Participants {
		if role == model.AdminMarker {
			continue
		}
		out = append(out, Entry{UserID: id, Role: role})
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.UserID, b.UserID) })
	return out
}

// Paginated returns one page of Participants(ev).
func Paginated(ev *model.Event, page, size int) []Entry {
	return listing.Paginate(Participants(ev), page, size)
}

// RemovalPrompt is the confirmation text for removing userID.
func RemovalPrompt(users []model.User, userID string) string {
	name := "this participant"
	for _, u := range users {
		if u.ID == userID {
			name = u.DisplayName()
			break
		}
	}
	return fmt.Sprintf("Do you really want to remove %s from the event?", name)
}
