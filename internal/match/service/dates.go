package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate — best-effort parse of a loosely formatted date value.
// Ambiguous numeric dates are read day-first ("03/04/2024" is April 3).
// Anything unparseable reports ok=false; parsing never errors out.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case string:
		return parseDateString(t)
	default:
		return parseDateString(fmt.Sprint(v))
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ISODate — canonical RFC3339 UTC string for storage, nil when unparseable.
func ISODate(v any) any {
	t, ok := ParseDate(v)
	if !ok {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
