package viewstate

import (
	"testing"

	"github.com/Shivanand-hulikatti/eventdesk/internal/listing"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func onPage(page int) State {
	s := Default()
	s.EventPage = page
	return s
}

func TestFilterChangesResetEventPage(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{"search", Action{Kind: ActSearch, Text: "conf"}},
		{"type filter", Action{Kind: ActTypeFilter, Text: string(model.EventTypeWorkshop)}},
		{"sort key", Action{Kind: ActSortKey, Text: string(listing.SortByName)}},
		{"direction", Action{Kind: ActDirection, Text: string(listing.Desc)}},
		{"toggle direction", Action{Kind: ActToggleDirection}},
		{"event page size", Action{Kind: ActEventPageSize, Number: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Apply(onPage(3), tt.action, Bounds{Events: 100})
			require.NoError(t, err)
			assert.Equal(t, 1, next.EventPage)
		})
	}
}

func TestViewModeKeepsPage(t *testing.T) {
	next, err := Apply(onPage(2), Action{Kind: ActViewMode, Text: string(listing.AllEvents)}, Bounds{})
	require.NoError(t, err)
	assert.Equal(t, listing.AllEvents, next.ViewMode)
	assert.Equal(t, 2, next.EventPage)
}

func TestInvalidValuesAreIgnored(t *testing.T) {
	s := onPage(2)

	assert.Equal(t, s, s.WithTypeFilter("PARTY"))
	assert.Equal(t, s, s.WithSortKey("location"))
	assert.Equal(t, s, s.WithDirection("sideways"))
	assert.Equal(t, s, s.WithViewMode("EVERYTHING"))
	assert.Equal(t, s, s.WithEventPageSize(7))
	assert.Equal(t, s, s.WithParticipantPageSize(15))
}

func TestWithEventPageBounds(t *testing.T) {
	s := Default() // 10 per page

	assert.Equal(t, 3, s.WithEventPage(3, 25).EventPage)
	assert.Equal(t, 1, s.WithEventPage(4, 25).EventPage, "beyond last page is a no-op")
	assert.Equal(t, 1, s.WithEventPage(0, 25).EventPage)
	assert.Equal(t, 1, s.WithEventPage(2, 0).EventPage, "no pages when empty")
}

func TestParticipantPageSizeResetsParticipantPage(t *testing.T) {
	s := Default()
	s.ParticipantPage = 4

	next := s.WithParticipantPageSize(5)
	assert.Equal(t, 5, next.ParticipantPageSize)
	assert.Equal(t, 1, next.ParticipantPage)
}

func TestWithParticipantPageBounds(t *testing.T) {
	s := Default().WithParticipantPageSize(5)

	assert.Equal(t, 2, s.WithParticipantPage(2, 7).ParticipantPage)
	assert.Equal(t, 1, s.WithParticipantPage(3, 7).ParticipantPage)
}

func TestModalsAreMutuallyExclusive(t *testing.T) {
	s := Default().OpenEditForm("e1")
	assert.Equal(t, ModalEventForm, s.Modal)
	assert.Equal(t, FormEdit, s.FormMode)
	assert.Equal(t, "e1", s.SelectedEventID)

	s.ParticipantPage = 3
	s = s.OpenRoster("e2")
	assert.Equal(t, ModalRoster, s.Modal)
	assert.Empty(t, s.FormMode)
	assert.Equal(t, "e2", s.SelectedEventID)
	assert.Equal(t, 1, s.ParticipantPage)

	s = s.CloseModal()
	assert.Equal(t, ModalNone, s.Modal)
	assert.Empty(t, s.SelectedEventID)

	s = s.OpenCreateForm()
	assert.Equal(t, FormCreate, s.FormMode)
	assert.Empty(t, s.SelectedEventID)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := Default()
	_ = s.WithSearch("x").WithSortKey(listing.SortByEnd).OpenRoster("e1")

	assert.Equal(t, Default(), s)
}

func TestApplyUnknownAction(t *testing.T) {
	s := onPage(2)
	next, err := Apply(s, Action{Kind: "teleport"}, Bounds{})

	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, s, next)
}
