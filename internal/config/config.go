package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/ncruces/go-strftime"
)

// ErrConfig wraps every failure surfaced by Load so callers can treat any
// configuration problem as fatal without inspecting the cause.
var ErrConfig = errors.New("config")

// OrientationConfig controls how orientation (blackout) events are handled.
type OrientationConfig struct {
	// FileName is the CSV file containing orientation events, relative to
	// the events directory. Empty means there are no orientation events.
	FileName string `toml:"file_name" json:"file_name,omitempty"`

	// MandatoryTag marks mandatory (blackout) events. It is normalized to
	// trimmed lowercase at load time so later comparisons are
	// case-insensitive without repeated normalization.
	MandatoryTag string `toml:"mandatory_tag" json:"mandatory_tag" validate:"required"`

	// IncludeInBooklet controls whether orientation events appear in the
	// rendered booklet.
	IncludeInBooklet bool `toml:"include_in_booklet" json:"include_in_booklet"`
}

// Path resolves FileName against the events directory. Returns "" when no
// orientation file is configured.
func (o OrientationConfig) Path(eventsDir string) string {
	if o.FileName == "" {
		return ""
	}
	if filepath.IsAbs(o.FileName) {
		return o.FileName
	}
	return filepath.Join(eventsDir, o.FileName)
}

// CSVConfig configures how CSV rows are parsed.
type CSVConfig struct {
	// DateFormat is a strftime-style pattern used for the start/end
	// columns, e.g. "%m/%d/%Y %H:%M". See https://strftime.net/.
	DateFormat string `toml:"date_format" json:"date_format" validate:"required"`
}

// DatesConfig holds the season date range.
type DatesConfig struct {
	// Start is the first day of the season.
	Start Date `toml:"start" json:"start"`

	// End is the last day of the season, inclusive.
	End Date `toml:"end" json:"end"`

	// HourCutoff shifts events starting before this hour to the previous
	// day's bucket in the booklet.
	HourCutoff int `toml:"hour_cutoff" json:"hour_cutoff" validate:"gte=0,lt=24"`
}

// GroupConfig describes a subcommunity within a dorm.
type GroupConfig struct {
	// Color is a representative CSS color (hex/rgb/hsl).
	Color string `toml:"color" json:"color" validate:"required,iscolor"`
}

// DormConfig describes a dorm registered for the season.
type DormConfig struct {
	// Color is a representative CSS color, usually the primary color on
	// the dorm's website.
	Color string `toml:"color" json:"color" validate:"required,iscolor"`

	// Contact is the event-chair contact address for the dorm.
	Contact string `toml:"contact" json:"contact" validate:"required,email"`

	// RenameTo, if set, is the public-facing name used in the booklet and
	// on the website instead of the config key.
	RenameTo string `toml:"rename_to" json:"rename_to,omitempty"`

	// Groups maps subcommunity names to their configuration.
	Groups map[string]GroupConfig `toml:"groups" json:"groups,omitempty" validate:"omitempty,dive"`

	// IncludeOnCover controls whether the dorm is listed on the booklet
	// cover.
	IncludeOnCover bool `toml:"include_on_cover" json:"include_on_cover"`
}

// TagConfig describes a registered event tag.
type TagConfig struct {
	// Color is the CSS color used for the tag on the website.
	Color string `toml:"color" json:"color" validate:"required,iscolor"`

	// Emoji is optionally displayed next to the tag name in the booklet.
	Emoji string `toml:"emoji" json:"emoji,omitempty"`

	// RenameFrom, if set, folds inputs spelled that way into this tag's
	// key. Compared case-insensitively.
	RenameFrom string `toml:"rename_from" json:"rename_from,omitempty"`
}

// Config is the top-level season configuration, loaded once per run and
// immutable afterwards.
type Config struct {
	// Name is the season display name, e.g. "REX 2026".
	Name string `toml:"name" json:"name" validate:"required"`

	// Orientation configures blackout-event handling.
	Orientation OrientationConfig `toml:"orientation" json:"orientation"`

	// CSV configures row parsing.
	CSV CSVConfig `toml:"csv" json:"csv"`

	// Dates is the season date range and day-bucket cutoff.
	Dates DatesConfig `toml:"dates" json:"dates"`

	// Dorms maps canonical dorm keys to their configuration.
	Dorms map[string]DormConfig `toml:"dorms" json:"dorms" validate:"required,dive"`

	// Tags maps canonical tag keys to their configuration.
	Tags map[string]TagConfig `toml:"tags" json:"tags" validate:"required,dive"`
}

// Load reads and validates the TOML configuration at path. eventsDir is the
// directory that a configured orientation file must live in.
//
// Any failure (malformed TOML, missing field, bad email/color, invalid
// date_format, missing orientation file) aborts the load; there is no
// partially-valid configuration.
func Load(path, eventsDir string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
	}

	cfg.normalize()
	if err := cfg.validate(eventsDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	return &cfg, nil
}

// normalize applies load-time canonicalization before validation.
func (c *Config) normalize() {
	c.Orientation.MandatoryTag = strings.ToLower(strings.TrimSpace(c.Orientation.MandatoryTag))
	c.Orientation.FileName = strings.TrimSpace(c.Orientation.FileName)
}

func (c *Config) validate(eventsDir string) error {
	if err := valid.Struct(c); err != nil {
		return err
	}

	// Smoke test, not a full grammar check: the pattern must convert to a
	// concrete layout.
	if _, err := strftime.Layout(c.CSV.DateFormat); err != nil {
		return fmt.Errorf("invalid date_format %q: %w", c.CSV.DateFormat, err)
	}

	// Zero dates slip past struct validation and would classify every
	// bucket date as after the season.
	if c.Dates.Start.IsZero() || c.Dates.End.IsZero() {
		return fmt.Errorf("dates: start and end are required")
	}
	if c.Dates.End.Before(c.Dates.Start.Time) {
		return fmt.Errorf("dates: end %s is before start %s", c.Dates.End, c.Dates.Start)
	}

	if c.Orientation.FileName != "" {
		p := c.Orientation.Path(eventsDir)
		rel, err := filepath.Rel(eventsDir, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("orientation file %q must be in the events directory", c.Orientation.FileName)
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("orientation file %s does not exist", p)
		}
	}

	return nil
}

var valid = validator.New(validator.WithRequiredStructEnabled())

// DateLayout returns the Go time layout equivalent of the configured
// strftime pattern. Only valid after a successful Load.
func (c *Config) DateLayout() (string, error) {
	return strftime.Layout(c.CSV.DateFormat)
}

// SortedDormKeys returns the dorm config keys in sorted order. Used wherever
// dorm configs are scanned, so that scans are deterministic.
func (c *Config) SortedDormKeys() []string {
	keys := make([]string, 0, len(c.Dorms))
	for k := range c.Dorms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedTagKeys returns the tag config keys in sorted order.
func (c *Config) SortedTagKeys() []string {
	keys := make([]string, 0, len(c.Tags))
	for k := range c.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CanonicalDorm resolves a dorm name through the forward alias table: a
// configured dorm with rename_to resolves to its target, anything else
// passes through unchanged. Resolving an already-canonical or unknown name
// is a fixed point.
func (c *Config) CanonicalDorm(name string) string {
	if d, ok := c.Dorms[name]; ok && d.RenameTo != "" {
		return d.RenameTo
	}
	return name
}

// CanonicalTag resolves a tag name through the backward alias table: an
// input matching a tag's rename_from (case-insensitively) folds into that
// tag's key. Anything else passes through unchanged.
func (c *Config) CanonicalTag(name string) string {
	for _, key := range c.SortedTagKeys() {
		t := c.Tags[key]
		if t.RenameFrom != "" && strings.EqualFold(t.RenameFrom, name) {
			return key
		}
	}
	return name
}

// ContactFor returns the contact address for a canonical dorm name. Direct
// key lookup first, then a fallback scan matching rename targets, since the
// canonical name of a renamed dorm is not a config key.
func (c *Config) ContactFor(name string) (string, bool) {
	if d, ok := c.Dorms[name]; ok {
		return d.Contact, true
	}
	for _, key := range c.SortedDormKeys() {
		d := c.Dorms[key]
		if name == d.RenameTo || name == key {
			return d.Contact, true
		}
	}
	return "", false
}

// OnCover reports whether a dorm (by canonical or config name) should be
// listed on the booklet cover.
func (c *Config) OnCover(name string) bool {
	if d, ok := c.Dorms[name]; ok {
		return d.IncludeOnCover
	}
	for _, key := range c.SortedDormKeys() {
		d := c.Dorms[key]
		if name == d.RenameTo || name == key {
			return d.IncludeOnCover
		}
	}
	return false
}

// SchemaJSON returns the JSON schema describing the Config shape. This is a
// pure export for external consumers and documentation; processing does not
// depend on it.
func SchemaJSON() ([]byte, error) {
	r := jsonschema.Reflector{ExpandedStruct: true}
	schema := r.Reflect(&Config{})
	return json.MarshalIndent(schema, "", "  ")
}

// SaveSchema writes SchemaJSON to path.
func SaveSchema(path string) error {
	data, err := SchemaJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Date is a calendar date. It decodes from a TOML local date (or a
// YYYY-MM-DD string) and serializes to JSON as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate constructs a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Date) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case time.Time:
		d.Time = t
		return nil
	case string:
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			return err
		}
		d.Time = parsed
		return nil
	default:
		return fmt.Errorf("cannot decode %T into a date", v)
	}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// JSONSchema overrides schema reflection for Date.
func (Date) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "date"}
}
