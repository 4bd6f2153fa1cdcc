// Package booklet turns the event collection into the printable booklet:
// day bucketing, tour separation, season partitioning, and HTML rendering.
package booklet

import (
	"sort"
	"time"

	"rexgen/internal/aggregate"
	"rexgen/internal/config"
	"rexgen/internal/event"
)

// dateKey is the bucket key format used throughout the booklet.
const dateKey = "2006-01-02"

// Partition classifies every distinct bucket date against the season range.
// Each list is ascending.
type Partition struct {
	// Before holds dates strictly before the season start.
	Before []string

	// Rex holds dates within the season range, inclusive on both ends.
	Rex []string

	// After holds dates strictly after the season end.
	After []string
}

// Booklet is the fully derived, render-ready grouping of events.
type Booklet struct {
	API *aggregate.APIResponse

	// Dates partitions the bucket dates around the season.
	Dates Partition

	// ByDate maps bucket dates to their events, sorted by start then end.
	ByDate map[string][]*event.WithEmoji

	// Tours are events tagged "tour", shown at a fixed front position
	// regardless of date.
	Tours []*event.WithEmoji

	// Emojis maps tags present in the event set to their configured emoji.
	Emojis map[string]string

	// Published is the human-readable Eastern publish timestamp.
	Published string

	// CoverDorms lists the dorms shown on the booklet cover.
	CoverDorms []string
}

// tourTag separates walking tours from the day buckets.
const tourTag = "tour"

// Build derives the booklet grouping from the API payload plus any
// booklet-only extra events. Pure derivation: events are copied, never
// mutated.
func Build(cfg *config.Config, api *aggregate.APIResponse, extra []*event.Event) (*Booklet, error) {
	eastern, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}

	all := make([]*event.WithEmoji, 0, len(api.Events)+len(extra))
	for _, e := range api.Events {
		all = append(all, decorate(cfg, e))
	}
	for _, e := range extra {
		all = append(all, decorate(cfg, e))
	}

	b := &Booklet{
		API:       api,
		ByDate:    make(map[string][]*event.WithEmoji),
		Emojis:    make(map[string]string),
		Published: api.Published.In(eastern).Format("January 02, 2006 at 03:04 PM"),
	}

	startKey := api.Start.Format(dateKey)
	endKey := api.End.Format(dateKey)

	for _, e := range all {
		if e.HasTag(tourTag) {
			b.Tours = append(b.Tours, e)
			continue
		}
		key := event.DayBucket(&e.Event, cfg.Dates.HourCutoff).Format(dateKey)
		b.ByDate[key] = append(b.ByDate[key], e)
	}

	for key := range b.ByDate {
		switch {
		case key < startKey:
			b.Dates.Before = append(b.Dates.Before, key)
		case key <= endKey:
			b.Dates.Rex = append(b.Dates.Rex, key)
		default:
			b.Dates.After = append(b.Dates.After, key)
		}
	}
	sort.Strings(b.Dates.Before)
	sort.Strings(b.Dates.Rex)
	sort.Strings(b.Dates.After)

	for _, events := range b.ByDate {
		sortEvents(events)
	}
	sortEvents(b.Tours)

	// The emoji legend covers the API tag list only; a tag appearing
	// solely on booklet-only extras stays out of it, though the extras
	// themselves are still decorated above.
	for _, tag := range api.Tags {
		if tc, ok := cfg.Tags[tag]; ok && tc.Emoji != "" {
			b.Emojis[tag] = tc.Emoji
		}
	}

	for _, dorm := range api.Dorms {
		if cfg.OnCover(dorm) {
			b.CoverDorms = append(b.CoverDorms, dorm)
		}
	}

	return b, nil
}

// DaySection is one rendered day of the booklet.
type DaySection struct {
	// Key is the bucket date.
	Key string

	// Phase is "before", "rex", or "after" relative to the season range.
	Phase string

	// Events are the day's events, sorted.
	Events []*event.WithEmoji
}

// DaySections flattens the date partitions into render order: before the
// season, during, then after.
func (b *Booklet) DaySections() []DaySection {
	var out []DaySection
	for _, part := range []struct {
		phase string
		keys  []string
	}{
		{"before", b.Dates.Before},
		{"rex", b.Dates.Rex},
		{"after", b.Dates.After},
	} {
		for _, key := range part.keys {
			out = append(out, DaySection{Key: key, Phase: part.phase, Events: b.ByDate[key]})
		}
	}
	return out
}

// decorate copies an event and attaches the emojis of its configured tags.
func decorate(cfg *config.Config, e *event.Event) *event.WithEmoji {
	out := &event.WithEmoji{Event: *e}
	for _, tag := range e.Tags {
		if tc, ok := cfg.Tags[tag]; ok && tc.Emoji != "" {
			out.Emoji = append(out.Emoji, tc.Emoji)
		}
	}
	sort.Strings(out.Emoji)
	return out
}

// sortEvents orders by start ascending, earlier end winning ties. Stable.
func sortEvents(events []*event.WithEmoji) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].End.Before(events[j].End)
	})
}
