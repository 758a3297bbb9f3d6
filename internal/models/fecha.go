package models

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for fechaTransaccion. The first two are what a
// datetime-local input produces, the rest are what the backend may return.
var fechaLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// ParseFecha parses a transaction date. Values without a zone are read in loc.
func ParseFecha(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range fechaLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
