package listing

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(id, name, location string, typ model.EventType, start, end string) model.Event {
	return model.Event{
		ID:            id,
		EventName:     name,
		EventLocation: location,
		EventType:     typ,
		StartDateTime: model.MustTimestamp(start),
		EndDateTime:   model.MustTimestamp(end),
	}
}

func sampleEvents() []model.Event {
	return []model.Event{
		event("e1", "Go Conference", "Berlin", model.EventTypeConference, "2025-03-01T09:00", "2025-03-01T17:00"),
		event("e2", "client workshop", "Hamburg", model.EventTypeWorkshop, "2025-01-15T10:00", "2025-01-15T12:00"),
		event("e3", "Weekly Sync", "", model.EventTypeMeeting, "2025-02-01T08:00", "2025-02-01T08:30"),
		event("e4", "Board Meeting", "Client HQ", model.EventTypeMeeting, "2025-04-10T14:00", "2025-04-10T18:00"),
		event("e5", "alpha launch", "Munich", model.EventTypeOther, "2024-12-24T18:00", "2024-12-24T23:00"),
	}
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestFilterAndSortSearch(t *testing.T) {
	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty search matches all", search: "", want: []string{"e5", "e2", "e3", "e1", "e4"}},
		{name: "name match is case-insensitive", search: "CLIENT", want: []string{"e2", "e4"}},
		{name: "location match", search: "berlin", want: []string{"e1"}},
		{name: "no match", search: "nowhere", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAndSort(sampleEvents(), tt.search, AllTypes, SortByStart, Asc)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterAndSortSearchProperty(t *testing.T) {
	events := sampleEvents()
	for _, s := range []string{"", "a", "meet", "HQ", "x", "conf"} {
		got := FilterAndSort(events, s, AllTypes, SortByStart, Asc)

		var want []string
		for _, e := range events {
			if strings.Contains(strings.ToLower(e.EventName), strings.ToLower(s)) ||
				strings.Contains(strings.ToLower(e.EventLocation), strings.ToLower(s)) {
				want = append(want, e.ID)
			}
		}
		assert.ElementsMatch(t, want, ids(got), "search %q", s)
	}
}

func TestFilterAndSortTypeFilter(t *testing.T) {
	got := FilterAndSort(sampleEvents(), "", model.EventTypeMeeting, SortByStart, Asc)
	assert.Equal(t, []string{"e3", "e4"}, ids(got))

	got = FilterAndSort(sampleEvents(), "", "", SortByStart, Asc)
	assert.Len(t, got, 5, "empty filter behaves like ALL")
}

func TestFilterAndSortKeys(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByStart, []string{"e5", "e2", "e3", "e1", "e4"}},
		{SortByEnd, []string{"e5", "e2", "e3", "e1", "e4"}},
		{SortByName, []string{"e5", "e4", "e2", "e1", "e3"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterAndSort(sampleEvents(), "", AllTypes, tt.key, Asc)))
		})
	}
}

func TestFilterAndSortDescendingIsReverse(t *testing.T) {
	for _, key := range []SortKey{SortByStart, SortByEnd, SortByName} {
		asc := ids(FilterAndSort(sampleEvents(), "", AllTypes, key, Asc))
		desc := ids(FilterAndSort(sampleEvents(), "", AllTypes, key, Desc))

		slices.Reverse(asc)
		assert.Equal(t, asc, desc, "key %s", key)
	}
}

func TestFilterAndSortStableOnEqualKeys(t *testing.T) {
	// e3 and e4 share the MEETING type; input order must be kept.
	got := ids(FilterAndSort(sampleEvents(), "", AllTypes, SortByType, Asc))
	assert.Equal(t, []string{"e1", "e3", "e4", "e5", "e2"}, got)

	got = ids(FilterAndSort(sampleEvents(), "", AllTypes, SortByType, Desc))
	assert.Equal(t, []string{"e2", "e5", "e3", "e4", "e1"}, got)
}

func TestFilterAndSortIsPure(t *testing.T) {
	events := sampleEvents()
	before := ids(events)

	first := FilterAndSort(events, "e", AllTypes, SortByName, Desc)
	second := FilterAndSort(events, "e", AllTypes, SortByName, Desc)

	assert.Equal(t, first, second)
	assert.Equal(t, before, ids(events), "input must not be reordered")
}

func TestFilterAndSortEmptyInput(t *testing.T) {
	got := FilterAndSort(nil, "x", AllTypes, SortByStart, Asc)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name       string
		page, size int
		want       []int
	}{
		{"first page", 1, 3, []int{1, 2, 3}},
		{"last partial page", 3, 3, []int{7}},
		{"beyond last page", 4, 3, []int{}},
		{"page zero", 0, 3, []int{}},
		{"zero size", 1, 0, []int{}},
		{"size larger than list", 1, 20, items},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(items, tt.page, tt.size))
		})
	}
}

func TestPaginateEmptyList(t *testing.T) {
	got := Paginate([]model.Event{}, 1, 10)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPageCountAndClamp(t *testing.T) {
	assert.Equal(t, 0, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 2, PageCount(11, 10))

	assert.Equal(t, 1, ClampPage(0, 25, 10))
	assert.Equal(t, 3, ClampPage(9, 25, 10))
	assert.Equal(t, 2, ClampPage(2, 25, 10))
	assert.Equal(t, 1, ClampPage(5, 0, 10))
}

func TestSplitPartitionsByParticipation(t *testing.T) {
	events := sampleEvents()
	events[0].Participants = map[string]model.Role{"u1": model.RoleOwner}
	events[2].Participants = map[string]model.Role{"u1": model.RoleAttendee, "u2": model.RoleOwner}
	events[3].Participants = map[string]model.Role{"u2": model.RoleOwner}

	ordered := FilterAndSort(events, "", AllTypes, SortByStart, Asc)
	p := Split(ordered, "u1", false, MyEvents, 1, 10)

	assert.Equal(t, []string{"e3", "e1"}, ids(p.Mine))
	assert.Equal(t, []string{"e5", "e2", "e4"}, ids(p.Others))
	assert.Equal(t, Peek, p.OthersAs)
}

func TestSplitExactlyOnePartition(t *testing.T) {
	var events []model.Event
	for i := range 23 {
		e := event(fmt.Sprintf("e%02d", i), fmt.Sprintf("Event %02d", i), "", model.EventTypeOther,
			fmt.Sprintf("2025-01-%02dT10:00", i+1), fmt.Sprintf("2025-01-%02dT11:00", i+1))
		if i%3 == 0 {
			e.Participants = map[string]model.Role{"viewer": model.RoleAttendee}
		}
		events = append(events, e)
	}

	seen := map[string]int{}
	for page := 1; page <= PageCount(len(events), 5); page++ {
		p := Split(events, "viewer", false, MyEvents, page, 5)
		for _, e := range p.Mine {
			assert.True(t, e.HasParticipant("viewer"))
			seen[e.ID]++
		}
		for _, e := range p.Others {
			assert.False(t, e.HasParticipant("viewer"))
			seen[e.ID]++
		}
	}

	assert.Len(t, seen, len(events))
	for id, n := range seen {
		assert.Equal(t, 1, n, "event %s", id)
	}
}

func TestSplitPresentation(t *testing.T) {
	tests := []struct {
		name    string
		isAdmin bool
		mode    ViewMode
		want    Presentation
	}{
		{"admin all events", true, AllEvents, Full},
		{"admin my events", true, MyEvents, Peek},
		{"user all events", false, AllEvents, Peek},
		{"user my events", false, MyEvents, Peek},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Split(sampleEvents(), "nobody", tt.isAdmin, tt.mode, 1, 10)
			assert.Equal(t, tt.want, p.OthersAs)
		})
	}
}

func TestSplitEmptyViewerOwnsNothing(t *testing.T) {
	events := sampleEvents()
	events[0].Participants = map[string]model.Role{"u1": model.RoleOwner}

	p := Split(events, "", false, MyEvents, 1, 10)
	assert.Empty(t, p.Mine)
	assert.Len(t, p.Others, len(events))
}
