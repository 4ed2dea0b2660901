package roster

import (
	"fmt"
	"testing"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/stretchr/testify/assert"
)

var (
	alice = model.User{ID: "u1", FirstName: "Alice", LastName: "Adams", Email: "alice@example.com"}
	bob   = model.User{ID: "u2", FirstName: "Bob", LastName: "Brown", Email: "bob@example.com"}
	root  = model.User{ID: "u3", FirstName: "Root", LastName: "Admin", Email: "root@example.com",
		Roles: []model.UserRole{{Name: "ADMIN"}}}
	carol = model.User{ID: "u4", FirstName: "Carol", LastName: "Clark", Email: "carol@example.com"}
)

func userIDs(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestAvailableUsers(t *testing.T) {
	all := []model.User{alice, bob, root, carol}
	ev := &model.Event{ID: "e1", Participants: map[string]model.Role{"u1": model.RoleOwner}}

	tests := []struct {
		name    string
		isAdmin bool
		want    []string
	}{
		{"admin sees admins", true, []string{"u2", "u3", "u4"}},
		{"non-admin cannot add admins", false, []string{"u2", "u4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userIDs(AvailableUsers(all, ev, tt.isAdmin)))
		})
	}
}

func TestAvailableUsersNoEvent(t *testing.T) {
	got := AvailableUsers([]model.User{alice, root}, nil, false)
	assert.Equal(t, []string{"u1"}, userIDs(got))
}

func TestParticipantsSkipsAdminMarker(t *testing.T) {
	ev := &model.Event{Participants: map[string]model.Role{
		"u2": model.RoleAttendee,
		"u3": model.AdminMarker,
		"u1": model.RoleOwner,
		"u4": model.RoleAdmin,
	}}

	assert.Equal(t, []Entry{
		{UserID: "u1", Role: model.RoleOwner},
		{UserID: "u2", Role: model.RoleAttendee},
		{UserID: "u4", Role: model.RoleAdmin},
	}, Participants(ev))
}

func TestPaginated(t *testing.T) {
	ev := &model.Event{Participants: map[string]model.Role{}}
	for i := range 12 {
		ev.Participants[fmt.Sprintf("u%02d", i)] = model.RoleAttendee
	}

	page := Paginated(ev, 3, 5)
	assert.Equal(t, []Entry{{"u10", model.RoleAttendee}, {"u11", model.RoleAttendee}}, page)
	assert.Empty(t, Paginated(ev, 4, 5))
	assert.Empty(t, Paginated(nil, 1, 5))
}

func TestRemovalPrompt(t *testing.T) {
	assert.Contains(t, RemovalPrompt([]model.User{alice, bob}, "u2"), "Bob Brown")
	assert.Contains(t, RemovalPrompt([]model.User{alice}, "u9"), "this participant")
}
