// Package listing turns a raw event collection into the ordered, paginated
// sections shown on the events page. Everything here is a pure function of
// its arguments.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
)

// AllTypes is the type-filter sentinel that lets every event type through.
const AllTypes model.EventType = "ALL"

// SortKey selects the field events are ordered by.
type SortKey string

const (
	SortByStart SortKey = "startDateTime"
	SortByEnd   SortKey = "endDateTime"
	SortByName  SortKey = "eventName"
	SortByType  SortKey = "eventType"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortByStart, SortByEnd, SortByName, SortByType:
		return true
	}
	return false
}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// FilterAndSort returns the events matching search and filter, ordered by key
// in direction dir. The input slice is never modified.
//
// search matches case-insensitively against the name or the location; an
// empty search matches everything. The sort is stable, so events with equal
// keys keep their input order in both directions.
func FilterAndSort(events []model.Event, search string, filter model.EventType, key SortKey, dir Direction) []model.Event {
	needle := strings.ToLower(search)
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.EventName), needle) &&
			!strings.Contains(strings.ToLower(e.EventLocation), needle) {
			continue
		}
		if filter != "" && filter != AllTypes && e.EventType != filter {
			continue
		}
		out = append(out, e)
	}

	compare := comparator(key)
	slices.SortStableFunc(out, func(a, b model.Event) int {
		c := compare(a, b)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func comparator(key SortKey) func(a, b model.Event) int {
	switch key {
	case SortByEnd:
		return func(a, b model.Event) int { return a.EndDateTime.Compare(b.EndDateTime.Time) }
	case SortByName:
		return func(a, b model.Event) int {
			return cmp.Compare(strings.ToLower(a.EventName), strings.ToLower(b.EventName))
		}
	case SortByType:
		return func(a, b model.Event) int {
			return cmp.Compare(strings.ToLower(string(a.EventType)), strings.ToLower(string(b.EventType)))
		}
	default:
		return func(a, b model.Event) int { return a.StartDateTime.Compare(b.StartDateTime.Time) }
	}
}
