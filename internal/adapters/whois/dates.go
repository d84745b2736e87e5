package whois

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-2006 15:04:05 MST",
	"2006.01.02",
	"2006.01.02 15:04:05",
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
	"20060102",
	"January 2 2006",
	"Mon Jan 2 15:04:05 MST 2006",
}

// NormalizeDate turns a raw WHOIS date into a UTC time with no zone
// information left. Multi-valued fields keep their first value. Unknown
// formats yield nil.
func NormalizeDate(raw string) *time.Time {
	value := firstValue(raw)
	if value == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		t = t.UTC()
		naive := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		return &naive
	}
	return nil
}

func firstValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ",\n"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
