// Package feed exports the published event set as a subscribable iCalendar
// feed (rex.ics).
package feed

import (
	ical "github.com/arran4/golang-ical"

	"rexgen/internal/aggregate"
)

// Calendar serializes the API payload's events into an iCalendar document.
// Event IDs are unique across the published collection, so they double as
// VEVENT UIDs.
func Calendar(api *aggregate.APIResponse) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + api.Name + "//rexgen//EN")

	for _, e := range api.Events {
		ve := cal.AddEvent(e.ID)
		ve.SetSummary(e.Name)
		ve.SetLocation(e.Location)
		ve.SetDescription(e.Description)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetDtStampTime(api.Published)
	}

	return cal.Serialize()
}
