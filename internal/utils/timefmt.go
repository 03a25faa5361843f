package utils

import (
	"fmt"
	"strings"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var weekdayNames = [...]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// LoadLocation resolves an IANA zone name, falling back to UTC
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatLongDate renders a date as "15 de octubre de 2026"
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// FormatTimestamp renders an instant in loc as "15 de octubre de 2026, 14:05 h"
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%s, %02d:%02d h", FormatLongDate(t), t.Hour(), t.Minute())
}

// FormatMatchDate turns a YYYY-MM-DD date into "jueves 15 de octubre de 2026".
// Values that do not parse are returned trimmed and unchanged.
func FormatMatchDate(date string) string {
	date = strings.TrimSpace(date)
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return weekdayNames[t.Weekday()] + " " + FormatLongDate(t)
}

// FormatMatchTime normalizes "HH:MM" or "HH:MM:SS" to "HH:MM h"
func FormatMatchTime(clock string) string {
	clock = strings.TrimSpace(clock)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Format("15:04") + " h"
		}
	}
	return clock
}
