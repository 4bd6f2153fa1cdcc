package booklet

import (
	"strings"
	"time"
)

// burtonThird triggers the ":x3 -> rd" time suffix, a long-standing booklet
// easter egg for Burton Third events.
var burtonThird = map[string]struct{}{
	"b3rd":         {},
	"burton third": {},
	"b3":           {},
}

// FormatWhen renders the time range shown on the booklet, e.g.
// "Sat 9 PM - 11 PM" or "Fri noon - 1:30 PM".
func FormatWhen(start, end time.Time, groups []string) string {
	parts := make([]string, 0, 2)
	for _, dt := range []time.Time{start, end} {
		switch {
		case dt.Hour() == 12 && dt.Minute() == 0:
			parts = append(parts, "noon")
		case dt.Minute() == 0:
			parts = append(parts, dt.Format("3 PM"))
		case dt.Minute()%10 == 3 && isBurtonThird(groups):
			parts = append(parts, dt.Format("3:04")+"rd "+dt.Format("PM"))
		default:
			parts = append(parts, dt.Format("3:04 PM"))
		}
	}
	return start.Format("Mon") + " " + strings.Join(parts, " - ")
}

func isBurtonThird(groups []string) bool {
	for _, g := range groups {
		if _, ok := burtonThird[strings.ToLower(g)]; ok {
			return true
		}
	}
	return false
}
