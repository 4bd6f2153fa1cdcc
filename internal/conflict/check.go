// Package conflict validates the published event set against the mandatory
// (blackout) events and collects content-level errors. Nothing here is an
// exception path: the report is rendered and the run still succeeds.
package conflict

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"rexgen/internal/config"
	"rexgen/internal/event"
)

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) overlap. Touching endpoints do not conflict.
//
// The four-clause formula is redundant on purpose: it is the behavior
// contract for boundary instants, and simplifying it would silently change
// edge cases.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return (!aStart.Before(bStart) && aStart.Before(bEnd)) ||
		(bStart.Before(aEnd) && !aEnd.After(bEnd)) ||
		(!bStart.Before(aStart) && bStart.Before(aEnd)) ||
		(aStart.Before(bEnd) && !bEnd.After(aEnd))
}

// Check runs the validity pass over the published events plus the extra
// (orientation) set and returns the grouped error report.
//
// Every event, extra ones included, is checked against the mandatory set;
// same-ID pairs are skipped so a mandatory event never conflicts with
// itself. Unpublished rows were dropped at ingest and never reach this
// pass.
func Check(cfg *config.Config, events, extra []*event.Event) *Report {
	report := NewReport()

	all := make([]*event.Event, 0, len(events)+len(extra))
	all = append(all, events...)
	all = append(all, extra...)

	var mandatory []*event.Event
	for _, e := range all {
		if e.HasTag(cfg.Orientation.MandatoryTag) {
			mandatory = append(mandatory, e)
		}
	}

	for _, e := range all {
		if e.End.Before(e.Start) {
			suffix := ""
			if event.SameNameExists(e, all) {
				suffix = " on " + bucketDate(e, cfg)
			}
			record(report, cfg, e,
				fmt.Sprintf("%s%s has an end time before its start time.", e.Name, suffix))
			continue
		}

		for _, m := range mandatory {
			if m.ID == e.ID {
				continue
			}
			if Overlaps(e.Start, e.End, m.Start, m.End) {
				record(report, cfg, e,
					fmt.Sprintf("%s conflicts with %s on %s.", e.Name, m.Name, bucketDate(e, cfg)))
			}
		}
	}

	mergeRenamed(report, cfg)
	return report
}

// bucketDate formats the event's day bucket for error messages.
func bucketDate(e *event.Event, cfg *config.Config) string {
	return event.DayBucket(e, cfg.Dates.HourCutoff).Format("01/02/06")
}

// record files one message under the event's alias-resolved dorm key.
func record(r *Report, cfg *config.Config, e *event.Event, msg string) {
	dorms := canonicalDorms(cfg, e.Dorm)
	r.add(GroupKey(dorms), contactsFor(cfg, dorms), msg)
}

// canonicalDorms resolves and de-duplicates a dorm set, sorted
// case-insensitively so the derived key is deterministic.
func canonicalDorms(cfg *config.Config, dorms []string) []string {
	seen := make(map[string]struct{}, len(dorms))
	var out []string
	for _, d := range dorms {
		c := cfg.CanonicalDorm(d)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

// GroupKey joins a canonical dorm set into the report key.
func GroupKey(dorms []string) string {
	return strings.Join(dorms, ", ")
}

// contactsFor collects one contact per canonical dorm, deduplicated in
// append order. Unregistered dorms contribute nothing.
func contactsFor(cfg *config.Config, dorms []string) []string {
	var contacts []string
	for _, d := range dorms {
		contact, ok := cfg.ContactFor(d)
		if !ok {
			continue
		}
		if !slices.Contains(contacts, contact) {
			contacts = append(contacts, contact)
		}
	}
	return contacts
}

// mergeRenamed re-resolves every group key through the alias table and
// merges groups whose key changes into their canonical key. Handles events
// spelled with old vs. new dorm names landing in the same bucket even when
// both spellings produced entries independently.
func mergeRenamed(r *Report, cfg *config.Config) {
	for _, key := range append([]string(nil), r.Keys()...) {
		parts := strings.Split(key, ", ")
		canonical := canonicalDorms(cfg, parts)
		target := GroupKey(canonical)
		if target != key {
			r.MergeInto(target, key)
		}
	}
}
