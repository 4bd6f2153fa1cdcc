package event

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Event is the canonical record for one published CSV row. Immutable after
// construction; the only derived copy is the emoji-decorated variant used
// for booklet rendering.
type Event struct {
	// Name is the event name as shown in the booklet.
	Name string `json:"name"`

	// Dorm is the non-empty set of canonical dorm names hosting the event.
	Dorm []string `json:"dorm"`

	// Location is where the event takes place.
	Location string `json:"location"`

	// Start and End are wall-clock times in the Eastern zone.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Description is displayed in the booklet.
	Description string `json:"description"`

	// Tags is the set of lower-cased tag names, alias-resolved.
	Tags []string `json:"tags"`

	// Group is the optional set of subcommunities hosting the event.
	Group []string `json:"group,omitempty"`

	// ID uniquely identifies the event across the published collection.
	ID string `json:"id"`

	// Published events are the only ones that reach the API and the
	// booklet; unpublished rows are dropped at ingest.
	Published bool `json:"-"`
}

// WithEmoji is an emoji-decorated copy of an Event. Only used for the
// booklet, not the API.
type WithEmoji struct {
	Event

	// Emoji holds the emojis of the event's configured tags.
	Emoji []string `json:"emoji"`
}

// HasTag reports whether the event carries the given (already lower-cased)
// tag.
func (e *Event) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// DayBucket returns the calendar date the event is grouped under for
// display. Events starting before the cutoff hour count as part of the
// previous day, so a 1 AM event lands in the prior evening's lineup.
func DayBucket(e *Event, cutoff int) time.Time {
	day := e.Start.Truncate(0)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if e.Start.Hour() < cutoff {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// SortByStartEnd orders events ascending by start, ties broken by ascending
// end. The sort is stable.
func SortByStartEnd(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].End.Before(events[j].End)
	})
}

// SameNameExists reports whether another event shares e's name with a
// different start and a different end. Used to disambiguate recurring-name
// events in error messages, not for filtering.
func SameNameExists(e *Event, events []*Event) bool {
	for _, other := range events {
		if other.Name == e.Name && !other.Start.Equal(e.Start) && !other.End.Equal(e.End) {
			return true
		}
	}
	return false
}

// sortFold sorts names case-insensitively, with the raw string as a
// tie-break so the order is total.
func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
