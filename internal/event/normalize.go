package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"rexgen/internal/config"
)

// CSV column headers, fixed by the sheet export.
const (
	ColName        = "Event Name"
	ColDorm        = "Dorm"
	ColLocation    = "Event Location"
	ColStart       = "Start Date and Time"
	ColEnd         = "End Date and Time"
	ColDescription = "Event Description"
	ColTags        = "Tags"
	ColGroup       = "Group"
	ColID          = "ID"
	ColPublished   = "Published"
)

// Columns lists every required CSV header.
var Columns = []string{
	ColName, ColDorm, ColLocation, ColStart, ColEnd,
	ColDescription, ColTags, ColGroup, ColID, ColPublished,
}

// publishedMarker is the exact truthy value of the Published column, as
// exported by the event sheet. Anything else leaves the row unpublished.
const publishedMarker = "TRUE"

// easternZone is the wall-clock zone all CSV timestamps are declared in.
const easternZone = "America/New_York"

var (
	// ErrMissingColumn indicates a required CSV header is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmptyDorm indicates a row without any hosting dorm.
	ErrEmptyDorm = errors.New("dorm must not be empty")

	// ErrDuplicateID indicates an event ID already seen in the published
	// collection.
	ErrDuplicateID = errors.New("duplicate event id")

	// ErrInvalidRow wraps field-level validation failures.
	ErrInvalidRow = errors.New("invalid row")
)

// Normalizer turns raw CSV rows into canonical Events. It owns the
// configured date layout, the Eastern zone, and the registry of event IDs
// seen so far; it carries no other state between rows, so normalizing the
// same row twice yields the same Event.
type Normalizer struct {
	cfg    *config.Config
	layout string
	loc    *time.Location
	seen   map[string]struct{}
	valid  *validator.Validate
}

// NewNormalizer builds a Normalizer for the given configuration.
func NewNormalizer(cfg *config.Config) (*Normalizer, error) {
	layout, err := cfg.DateLayout()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(easternZone)
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		cfg:    cfg,
		layout: layout,
		loc:    loc,
		seen:   make(map[string]struct{}),
		valid:  validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// rowEvent mirrors Event for struct-tag validation of length limits.
type rowEvent struct {
	Name        string   `validate:"required,max=100"`
	Dorm        []string `validate:"min=1,dive,required"`
	Location    string   `validate:"max=50"`
	Description string   `validate:"max=280"`
	ID          string   `validate:"required,max=16"`
}

// Normalize parses one raw row into a canonical Event.
//
// The row is trimmed field by field; multi-value fields are split on commas,
// de-duplicated, and alias-resolved (dorms forward through rename_to, tags
// backward through rename_from); tags and the ID are case-folded;
// timestamps are parsed with the configured layout and declared to be
// Eastern wall-clock time. An end before its start is structurally valid
// here and only flagged later by the conflict checker.
//
// Published rows enter the ID uniqueness registry; a collision is a fatal
// row error.
func (n *Normalizer) Normalize(row map[string]string) (*Event, error) {
	for _, col := range Columns {
		if _, ok := row[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	ev := &Event{
		Name:        strings.TrimSpace(row[ColName]),
		Location:    strings.TrimSpace(row[ColLocation]),
		Description: strings.TrimSpace(row[ColDescription]),
		ID:          strings.ToLower(strings.TrimSpace(row[ColID])),
		Published:   strings.TrimSpace(row[ColPublished]) == publishedMarker,
	}

	ev.Dorm = splitSet(row[ColDorm], n.cfg.CanonicalDorm)
	if len(ev.Dorm) == 0 {
		return nil, fmt.Errorf("%w (event %q)", ErrEmptyDorm, ev.Name)
	}

	ev.Tags = splitSet(strings.ToLower(row[ColTags]), n.cfg.CanonicalTag)
	ev.Group = splitSet(row[ColGroup], nil)
	if len(ev.Group) == 0 {
		ev.Group = nil
	}

	var err error
	if ev.Start, err = n.parseTime(row[ColStart]); err != nil {
		return nil, fmt.Errorf("%w: start of %q: %v", ErrInvalidRow, ev.Name, err)
	}
	if ev.End, err = n.parseTime(row[ColEnd]); err != nil {
		return nil, fmt.Errorf("%w: end of %q: %v", ErrInvalidRow, ev.Name, err)
	}

	if err := n.valid.Struct(rowEvent{
		Name:        ev.Name,
		Dorm:        ev.Dorm,
		Location:    ev.Location,
		Description: ev.Description,
		ID:          ev.ID,
	}); err != nil {
		return nil, fmt.Errorf("%w: event %q: %v", ErrInvalidRow, ev.Name, err)
	}

	if ev.Published {
		if _, dup := n.seen[ev.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, ev.ID)
		}
		n.seen[ev.ID] = struct{}{}
	}

	return ev, nil
}

// parseTime parses a timestamp with the configured layout and attaches the
// Eastern zone. This is a declaration, not a conversion: the parsed
// wall-clock time is taken to already be Eastern.
func (n *Normalizer) parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(n.layout, strings.TrimSpace(s), n.loc)
}

// splitSet collapses a comma-delimited field into a sorted, de-duplicated
// set. Elements are trimmed, empties dropped, and each survivor passed
// through resolve when given.
func splitSet(raw string, resolve func(string) string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if resolve != nil {
			part = resolve(part)
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}

	sortFold(out)
	return out
}
