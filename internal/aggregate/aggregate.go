// Package aggregate derives the API payload from the published event set.
// It is a pure read step: no event is mutated.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"rexgen/internal/config"
	"rexgen/internal/event"
)

// Colors holds the color lookup maps, restricted to entities actually
// present in the event set and keyed by canonical names.
type Colors struct {
	// Dorms maps canonical dorm names to their colors.
	Dorms map[string]string `json:"dorms"`

	// Groups maps canonical dorm names to group color maps.
	Groups map[string]map[string]string `json:"groups"`

	// Tags maps tag names to their colors.
	Tags map[string]string `json:"tags"`
}

// APIResponse is the machine-readable payload written to api.json,
// recomputed from scratch on every run.
type APIResponse struct {
	// Name is the season display name.
	Name string `json:"name"`

	// Published is when this payload was generated, in UTC.
	Published time.Time `json:"published"`

	// Events is the full published collection, ordered by start then end.
	Events []*event.Event `json:"events"`

	// Dorms is the sorted list of distinct dorm names appearing in any
	// event, with rename targets promoted to the front.
	Dorms []string `json:"dorms"`

	// Groups maps dorms to their sorted distinct group names.
	Groups map[string][]string `json:"groups"`

	// Tags is the sorted list of distinct tag names.
	Tags []string `json:"tags"`

	// Colors are the display color lookups.
	Colors Colors `json:"colors"`

	// Start and End bound the season.
	Start config.Date `json:"start"`
	End   config.Date `json:"end"`
}

// Build assembles the APIResponse for the given published events. The input
// slice is re-sorted in place by (start, end).
func Build(cfg *config.Config, events []*event.Event, published time.Time) *APIResponse {
	event.SortByStartEnd(events)

	api := &APIResponse{
		Name:      cfg.Name,
		Published: published.UTC(),
		Events:    events,
		Groups:    make(map[string][]string),
		Start:     cfg.Dates.Start,
		End:       cfg.Dates.End,
	}

	api.Dorms = distinctDorms(cfg, events)
	for _, dorm := range api.Dorms {
		if groups := groupsFor(events, dorm); len(groups) > 0 {
			api.Groups[dorm] = groups
		}
	}
	api.Tags = distinctTags(events)
	api.Colors = colors(cfg, api)

	return api
}

// distinctDorms returns the case-insensitively sorted set of dorm names in
// the event set. Any dorm that is itself a rename target moves to the front
// of the list; config keys are walked in sorted order so the promotion is
// deterministic.
func distinctDorms(cfg *config.Config, events []*event.Event) []string {
	set := make(map[string]struct{})
	for _, e := range events {
		for _, d := range e.Dorm {
			set[d] = struct{}{}
		}
	}

	dorms := make([]string, 0, len(set))
	for d := range set {
		dorms = append(dorms, d)
	}
	sortFold(dorms)

	for _, key := range cfg.SortedDormKeys() {
		target := cfg.Dorms[key].RenameTo
		if target == "" {
			continue
		}
		for i, d := range dorms {
			if d == target {
				dorms = append(dorms[:i], dorms[i+1:]...)
				dorms = append([]string{target}, dorms...)
				break
			}
		}
	}

	return dorms
}

// groupsFor returns the sorted distinct group names of events hosted by the
// given dorm.
func groupsFor(events []*event.Event, dorm string) []string {
	set := make(map[string]struct{})
	for _, e := range events {
		if len(e.Group) == 0 {
			continue
		}
		for _, d := range e.Dorm {
			if d != dorm {
				continue
			}
			for _, g := range e.Group {
				set[g] = struct{}{}
			}
		}
	}

	groups := make([]string, 0, len(set))
	for g := range set {
		groups = append(groups, g)
	}
	sortFold(groups)
	return groups
}

// distinctTags returns the sorted set of tags in the event set. Tags are
// already lower-cased, so a plain sort is stable across locales.
func distinctTags(events []*event.Event) []string {
	set := make(map[string]struct{})
	for _, e := range events {
		for _, t := range e.Tags {
			set[t] = struct{}{}
		}
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// colors builds the color maps restricted to dorms/tags/groups present in
// the response, keyed by canonical names.
func colors(cfg *config.Config, api *APIResponse) Colors {
	out := Colors{
		Dorms:  make(map[string]string),
		Groups: make(map[string]map[string]string),
		Tags:   make(map[string]string),
	}

	present := make(map[string]struct{}, len(api.Dorms))
	for _, d := range api.Dorms {
		present[d] = struct{}{}
	}

	for _, key := range cfg.SortedDormKeys() {
		d := cfg.Dorms[key]
		canonical := cfg.CanonicalDorm(key)
		if _, ok := present[canonical]; !ok {
			continue
		}
		out.Dorms[canonical] = d.Color
		if len(d.Groups) > 0 {
			groupColors := make(map[string]string, len(d.Groups))
			for g, gc := range d.Groups {
				groupColors[g] = gc.Color
			}
			out.Groups[canonical] = groupColors
		}
	}

	presentTags := make(map[string]struct{}, len(api.Tags))
	for _, t := range api.Tags {
		presentTags[t] = struct{}{}
	}
	for _, key := range cfg.SortedTagKeys() {
		t := cfg.Tags[key]
		if _, ok := presentTags[key]; ok && t.Color != "" {
			out.Tags[key] = t.Color
		}
	}

	return out
}

// sortFold sorts case-insensitively with a raw tie-break, avoiding
// locale-dependent ASCII-case splits.
func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
