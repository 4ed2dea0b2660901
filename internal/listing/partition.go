package listing

import "github.com/Shivanand-hulikatti/eventdesk/internal/model"

// ViewMode chooses between the viewer's own events and every event. Only
// administrators can switch to AllEvents.
type ViewMode string

const (
	MyEvents  ViewMode = "MY_EVENTS"
	AllEvents ViewMode = "ALL_EVENTS"
)

// Presentation is how a section's cards are rendered.
type Presentation string

const (
	// Full shows every field and the mutating actions.
	Full Presentation = "full"
	// Peek shows name, type and start only, with no actions.
	Peek Presentation = "peek"
)

// Partition is one page of events split by participation.
type Partition struct {
	Mine   []model.Event
	Others []model.Event
	// OthersAs is Full only for an administrator in AllEvents mode.
	OthersAs Presentation
}

// PageCount is ceil(n/size); zero when there is nothing to show.
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage keeps page inside [1, max(1, PageCount(n, size))].
func ClampPage(page, n, size int) int {
	last := max(PageCount(n, size), 1)
	return min(max(page, 1), last)
}

// Paginate returns items[(page-1)*size : page*size], bounded to the slice.
// Out-of-range pages yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// Split paginates ordered and then partitions the page: an event goes to Mine
// iff viewerID is a key of its participant map, otherwise to Others. Every
// event on the page lands in exactly one of the two.
func Split(ordered []model.Event, viewerID string, isAdmin bool, mode ViewMode, page, size int) Partition {
	p := Partition{
		Mine:     []model.Event{},
		Others:   []model.Event{},
		OthersAs: Peek,
	}
	if isAdmin && mode == AllEvents {
		p.OthersAs = Full
	}
	for _, e := range Paginate(ordered, page, size) {
		if e.HasParticipant(viewerID) {
			p.Mine = append(p.Mine, e)
		} else {
			p.Others = append(p.Others, e)
		}
	}
	return p
}
