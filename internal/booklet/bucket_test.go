package booklet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rexgen/internal/aggregate"
	"rexgen/internal/config"
	"rexgen/internal/event"
)

func testCfg() *config.Config {
	return &config.Config{
		Name: "REX 2025",
		Dates: config.DatesConfig{
			Start:      config.NewDate(2025, time.August, 23),
			End:        config.NewDate(2025, time.August, 25),
			HourCutoff: 3,
		},
		Dorms: map[string]config.DormConfig{
			"East Campus": {Color: "#0066cc", Contact: "ec-rex@example.edu", IncludeOnCover: true},
			"MacGregor":   {Color: "#555555", Contact: "mac@example.edu"},
		},
		Tags: map[string]config.TagConfig{
			"food": {Color: "#ff0000", Emoji: "🍕"},
			"tour": {Color: "#00ff00"},
		},
	}
}

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func at(loc *time.Location, day, hour, min int) time.Time {
	return time.Date(2025, time.August, day, hour, min, 0, 0, loc)
}

func testAPI(t *testing.T, events []*event.Event) *aggregate.APIResponse {
	t.Helper()
	published := time.Date(2025, time.August, 20, 16, 0, 0, 0, time.UTC)
	return aggregate.Build(testCfg(), events, published)
}

func TestBuildBuckets(t *testing.T) {
	loc := eastern(t)
	events := []*event.Event{
		{Name: "Early Arrival BBQ", Dorm: []string{"East Campus"}, Tags: []string{"food"},
			Start: at(loc, 22, 18, 0), End: at(loc, 22, 20, 0), ID: "ec-bbq"},
		{Name: "Ice Cream", Dorm: []string{"East Campus"}, Tags: []string{"food"},
			Start: at(loc, 23, 21, 0), End: at(loc, 23, 23, 0), ID: "ec-ice"},
		{Name: "Midnight Snack", Dorm: []string{"East Campus"}, Tags: nil,
			Start: at(loc, 24, 1, 0), End: at(loc, 24, 2, 0), ID: "ec-snack"},
		{Name: "Cleanup Brunch", Dorm: []string{"East Campus"}, Tags: nil,
			Start: at(loc, 26, 11, 0), End: at(loc, 26, 12, 0), ID: "ec-brunch"},
	}

	b, err := Build(testCfg(), testAPI(t, events), nil)
	require.NoError(t, err)

	// 1 AM on the 24th is before the 3 AM cutoff, so it belongs to the 23rd.
	assert.Equal(t, []string{"2025-08-22"}, b.Dates.Before)
	assert.Equal(t, []string{"2025-08-23"}, b.Dates.Rex)
	assert.Equal(t, []string{"2025-08-26"}, b.Dates.After)

	day := b.ByDate["2025-08-23"]
	require.Len(t, day, 2)
	assert.Equal(t, "Ice Cream", day[0].Name)
	assert.Equal(t, "Midnight Snack", day[1].Name)
}

func TestBuildToursAreSeparated(t *testing.T) {
	loc := eastern(t)
	events := []*event.Event{
		{Name: "Ice Cream", Dorm: []string{"East Campus"}, Tags: []string{"food"},
			Start: at(loc, 23, 21, 0), End: at(loc, 23, 23, 0), ID: "ec-ice"},
		{Name: "Evening Tour", Dorm: []string{"MacGregor"}, Tags: []string{"tour"},
			Start: at(loc, 23, 19, 0), End: at(loc, 23, 20, 0), ID: "mac-tour-2"},
		{Name: "Morning Tour", Dorm: []string{"MacGregor"}, Tags: []string{"tour"},
			Start: at(loc, 23, 10, 0), End: at(loc, 23, 11, 0), ID: "mac-tour-1"},
	}

	b, err := Build(testCfg(), testAPI(t, events), nil)
	require.NoError(t, err)

	require.Len(t, b.Tours, 2)
	assert.Equal(t, "Morning Tour", b.Tours[0].Name)
	assert.Equal(t, "Evening Tour", b.Tours[1].Name)

	// Tours never show up in the day buckets.
	require.Len(t, b.ByDate["2025-08-23"], 1)
	assert.Equal(t, "Ice Cream", b.ByDate["2025-08-23"][0].Name)
}

func TestBuildExtraEvents(t *testing.T) {
	loc := eastern(t)
	regular := []*event.Event{
		{Name: "Ice Cream", Dorm: []string{"East Campus"}, Tags: []string{"food"},
			Start: at(loc, 23, 21, 0), End: at(loc, 23, 23, 0), ID: "ec-ice"},
	}
	extra := []*event.Event{
		{Name: "Orientation Kickoff", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
			Start: at(loc, 23, 9, 0), End: at(loc, 23, 10, 0), ID: "orient-1"},
	}

	b, err := Build(testCfg(), testAPI(t, regular), extra)
	require.NoError(t, err)

	day := b.ByDate["2025-08-23"]
	require.Len(t, day, 2)
	assert.Equal(t, "Orientation Kickoff", day[0].Name)

	// The API payload stays untouched by booklet-only extras.
	assert.Len(t, b.API.Events, 1)
}

func TestBuildDecoration(t *testing.T) {
	loc := eastern(t)
	events := []*event.Event{
		{Name: "Ice Cream", Dorm: []string{"East Campus"}, Tags: []string{"food"},
			Start: at(loc, 23, 21, 0), End: at(loc, 23, 23, 0), ID: "ec-ice"},
	}

	b, err := Build(testCfg(), testAPI(t, events), nil)
	require.NoError(t, err)

	day := b.ByDate["2025-08-23"]
	require.Len(t, day, 1)
	assert.Equal(t, []string{"🍕"}, day[0].Emoji)
	assert.Equal(t, map[string]string{"food": "🍕"}, b.Emojis)

	// August 20 16:00 UTC is noon Eastern.
	assert.Equal(t, "August 20, 2025 at 12:00 PM", b.Published)
	assert.Equal(t, []string{"East Campus"}, b.CoverDorms)
}

func TestBuildEmojiLegendFollowsAPITags(t *testing.T) {
	loc := eastern(t)
	cfg := testCfg()
	cfg.Tags["orientation"] = config.TagConfig{Color: "#00ff00", Emoji: "📣"}

	regular := []*event.Event{
		{Name: "Ice Cream", Dorm: []string{"East Campus"}, Tags: []string{"food"},
			Start: at(loc, 23, 21, 0), End: at(loc, 23, 23, 0), ID: "ec-ice"},
	}
	extra := []*event.Event{
		{Name: "Orientation Kickoff", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
			Start: at(loc, 23, 9, 0), End: at(loc, 23, 10, 0), ID: "orient-1"},
	}

	published := time.Date(2025, time.August, 20, 16, 0, 0, 0, time.UTC)
	b, err := Build(cfg, aggregate.Build(cfg, regular, published), extra)
	require.NoError(t, err)

	// The legend tracks the API tag list; a tag carried only by a
	// booklet-only extra stays out of it, but the extra itself is still
	// decorated.
	assert.Equal(t, map[string]string{"food": "🍕"}, b.Emojis)

	day := b.ByDate["2025-08-23"]
	require.Len(t, day, 2)
	assert.Equal(t, []string{"📣"}, day[0].Emoji)
}

func TestDaySections(t *testing.T) {
	b := &Booklet{
		Dates: Partition{
			Before: []string{"2025-08-22"},
			Rex:    []string{"2025-08-23", "2025-08-24"},
			After:  []string{"2025-08-26"},
		},
		ByDate: map[string][]*event.WithEmoji{
			"2025-08-22": {},
			"2025-08-23": {},
			"2025-08-24": {},
			"2025-08-26": {},
		},
	}

	sections := b.DaySections()
	require.Len(t, sections, 4)
	assert.Equal(t, "2025-08-22", sections[0].Key)
	assert.Equal(t, "before", sections[0].Phase)
	assert.Equal(t, "rex", sections[1].Phase)
	assert.Equal(t, "rex", sections[2].Phase)
	assert.Equal(t, "2025-08-26", sections[3].Key)
	assert.Equal(t, "after", sections[3].Phase)
}
