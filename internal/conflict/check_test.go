package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rexgen/internal/config"
	"rexgen/internal/event"
)

func testCfg() *config.Config {
	return &config.Config{
		Name:        "REX Test",
		Orientation: config.OrientationConfig{MandatoryTag: "orientation"},
		Dates: config.DatesConfig{
			Start:      config.NewDate(2025, time.August, 23),
			End:        config.NewDate(2025, time.August, 25),
			HourCutoff: 3,
		},
		Dorms: map[string]config.DormConfig{
			"Old":         {Color: "#111111", Contact: "old@example.edu", RenameTo: "New"},
			"East Campus": {Color: "#0066cc", Contact: "ec-rex@example.edu"},
		},
	}
}

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func hm(loc *time.Location, hour, min int) time.Time {
	return time.Date(2025, time.August, 23, hour, min, 0, 0, loc)
}

func TestOverlaps(t *testing.T) {
	loc := eastern(t)

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", hm(loc, 10, 0), hm(loc, 11, 0), hm(loc, 10, 0), hm(loc, 11, 0), true},
		{"partial overlap", hm(loc, 10, 0), hm(loc, 11, 0), hm(loc, 10, 30), hm(loc, 11, 30), true},
		{"contained", hm(loc, 10, 0), hm(loc, 12, 0), hm(loc, 10, 30), hm(loc, 11, 0), true},
		{"touching endpoints do not conflict", hm(loc, 10, 0), hm(loc, 11, 0), hm(loc, 11, 0), hm(loc, 12, 0), false},
		{"disjoint", hm(loc, 10, 0), hm(loc, 11, 0), hm(loc, 14, 0), hm(loc, 15, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// Symmetry holds for every pair.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestCheckConflictScenario(t *testing.T) {
	loc := eastern(t)

	mandatory := &event.Event{
		Name:  "Orientation Kickoff",
		Dorm:  []string{"East Campus"},
		Tags:  []string{"orientation"},
		Start: hm(loc, 9, 0),
		End:   hm(loc, 10, 0),
		ID:    "orient-1",
	}
	conflicting := &event.Event{
		Name:  "Ice Cream",
		Dorm:  []string{"East Campus"},
		Tags:  []string{"food"},
		Start: hm(loc, 9, 30),
		End:   hm(loc, 10, 30),
		ID:    "ec-ice",
	}

	report := Check(testCfg(), []*event.Event{conflicting}, []*event.Event{mandatory})

	require.Equal(t, 1, report.Len())
	group := report.Get("East Campus")
	require.NotNil(t, group)
	assert.Equal(t, []string{"ec-rex@example.edu"}, group.Contacts)
	require.Len(t, group.Messages, 1)
	assert.Equal(t, "Ice Cream conflicts with Orientation Kickoff on 08/23/25.", group.Messages[0])
}

func TestCheckTouchingIsNotConflict(t *testing.T) {
	loc := eastern(t)

	mandatory := &event.Event{
		Name: "Orientation", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
		Start: hm(loc, 9, 0), End: hm(loc, 10, 0), ID: "orient-1",
	}
	back2back := &event.Event{
		Name: "Brunch", Dorm: []string{"East Campus"}, Tags: []string{"food"},
		Start: hm(loc, 10, 0), End: hm(loc, 11, 0), ID: "ec-brunch",
	}

	report := Check(testCfg(), []*event.Event{back2back}, []*event.Event{mandatory})
	assert.True(t, report.Empty())
}

func TestCheckMandatoryDoesNotConflictWithItself(t *testing.T) {
	loc := eastern(t)

	mandatory := &event.Event{
		Name: "Orientation", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
		Start: hm(loc, 9, 0), End: hm(loc, 10, 0), ID: "orient-1",
	}

	report := Check(testCfg(), nil, []*event.Event{mandatory})
	assert.True(t, report.Empty())
}

func TestCheckOrientationEventsCheckedAgainstEachOther(t *testing.T) {
	loc := eastern(t)

	a := &event.Event{
		Name: "Kickoff", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
		Start: hm(loc, 9, 0), End: hm(loc, 10, 0), ID: "orient-1",
	}
	b := &event.Event{
		Name: "Safety Talk", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
		Start: hm(loc, 9, 30), End: hm(loc, 10, 30), ID: "orient-2",
	}

	report := Check(testCfg(), nil, []*event.Event{a, b})

	group := report.Get("East Campus")
	require.NotNil(t, group)
	// Both directions are reported: a against b and b against a.
	assert.Len(t, group.Messages, 2)
}

func TestCheckEndBeforeStart(t *testing.T) {
	loc := eastern(t)

	inverted := &event.Event{
		Name: "Backwards", Dorm: []string{"East Campus"}, Tags: []string{"food"},
		Start: hm(loc, 12, 0), End: hm(loc, 11, 0), ID: "ec-back",
	}

	report := Check(testCfg(), []*event.Event{inverted}, nil)

	group := report.Get("East Campus")
	require.NotNil(t, group)
	require.Len(t, group.Messages, 1)
	// No same-name sibling, so no date disambiguation.
	assert.Equal(t, "Backwards has an end time before its start time.", group.Messages[0])
}

func TestCheckEndBeforeStartWithRecurringName(t *testing.T) {
	loc := eastern(t)

	inverted := &event.Event{
		Name: "Tea Time", Dorm: []string{"East Campus"}, Tags: nil,
		Start: hm(loc, 12, 0), End: hm(loc, 11, 0), ID: "tea-1",
	}
	sibling := &event.Event{
		Name: "Tea Time", Dorm: []string{"East Campus"}, Tags: nil,
		Start: time.Date(2025, time.August, 24, 12, 0, 0, 0, loc),
		End:   time.Date(2025, time.August, 24, 13, 0, 0, 0, loc),
		ID:    "tea-2",
	}

	report := Check(testCfg(), []*event.Event{inverted, sibling}, nil)

	group := report.Get("East Campus")
	require.NotNil(t, group)
	require.Len(t, group.Messages, 1)
	assert.Equal(t, "Tea Time on 08/23/25 has an end time before its start time.", group.Messages[0])
}

func TestCheckRenamedDormsShareGroup(t *testing.T) {
	loc := eastern(t)

	mandatory := &event.Event{
		Name: "Orientation", Dorm: []string{"East Campus"}, Tags: []string{"orientation"},
		Start: hm(loc, 9, 0), End: hm(loc, 12, 0), ID: "orient-1",
	}
	oldSpelling := &event.Event{
		Name: "Old Event", Dorm: []string{"Old"}, Tags: nil,
		Start: hm(loc, 9, 0), End: hm(loc, 10, 0), ID: "old-1",
	}
	newSpelling := &event.Event{
		Name: "New Event", Dorm: []string{"New"}, Tags: nil,
		Start: hm(loc, 10, 0), End: hm(loc, 11, 0), ID: "new-1",
	}

	report := Check(testCfg(), []*event.Event{oldSpelling, newSpelling}, []*event.Event{mandatory})

	// Both spellings land in the canonical group.
	require.Equal(t, 1, report.Len())
	group := report.Get("New")
	require.NotNil(t, group)
	assert.Len(t, group.Messages, 2)
	assert.Equal(t, []string{"old@example.edu"}, group.Contacts)
}

func TestReportMergeInto(t *testing.T) {
	r := NewReport()
	r.add("Old", []string{"old@example.edu"}, "first")
	r.add("New", []string{"old@example.edu", "other@example.edu"}, "second")

	r.MergeInto("New", "Old")

	require.Equal(t, 1, r.Len())
	group := r.Get("New")
	require.NotNil(t, group)
	assert.Equal(t, []string{"second", "first"}, group.Messages)
	// Contacts are deduplicated across the merge.
	assert.Equal(t, []string{"old@example.edu", "other@example.edu"}, group.Contacts)
	assert.Nil(t, r.Get("Old"))
	assert.Equal(t, []string{"New"}, r.Keys())
}

func TestReportMergeIntoMissingTarget(t *testing.T) {
	r := NewReport()
	r.add("Old", []string{"old@example.edu"}, "only")

	r.MergeInto("New", "Old")

	group := r.Get("New")
	require.NotNil(t, group)
	assert.Equal(t, []string{"only"}, group.Messages)
	assert.Equal(t, []string{"New"}, r.Keys())
}

func TestCheckMultiDormKeyIsSortedAndDeduplicated(t *testing.T) {
	loc := eastern(t)

	inverted := &event.Event{
		Name: "Joint Event", Dorm: []string{"Old", "East Campus", "New"}, Tags: nil,
		Start: hm(loc, 12, 0), End: hm(loc, 11, 0), ID: "joint-1",
	}

	report := Check(testCfg(), []*event.Event{inverted}, nil)

	group := report.Get("East Campus, New")
	require.NotNil(t, group)
	assert.Equal(t, []string{"ec-rex@example.edu", "old@example.edu"}, group.Contacts)
}
