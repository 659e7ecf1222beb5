// Package timezone converts gym-local wall-clock form values to absolute instants and back.
package timezone

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for local date-time inputs, most specific first.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// LocalLayout is the layout produced by ToLocal.
const LocalLayout = "2006-01-02T15:04"

// Converter maps between a gym's wall clock and UTC instants.
type Converter struct {
	loc *time.Location
}

// New returns a converter for the IANA zone name. Empty or unknown names fall back to UTC.
func New(name string) *Converter {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Converter{loc: time.UTC}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return &Converter{loc: time.UTC}
	}
	return &Converter{loc: loc}
}

// Name reports the effective zone name.
func (c *Converter) Name() string {
	return c.location().String()
}

// ToInstant interprets a local form value in the gym's zone.
func (c *Converter) ToInstant(local string) (time.Time, error) {
	local = strings.TrimSpace(local)
	if local == "" {
		return time.Time{}, fmt.Errorf("empty local time")
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, local, c.location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised local time %q", local)
}

// ToLocal renders an instant as a gym-local form value.
func (c *Converter) ToLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.location()).Format(LocalLayout)
}

func (c *Converter) location() *time.Location {
	if c == nil || c.loc == nil {
		return time.UTC
	}
	return c.loc
}
