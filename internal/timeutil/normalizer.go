// Package timeutil normalizes raw timestamp and date values into the
// single canonical timezone every computation runs in. Values that carry
// no zone information are localized (interpreted as already being in the
// canonical zone); values that carry a zone are converted.
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// DefaultZone is the canonical timezone of the reference deployment.
const DefaultZone = "Asia/Kolkata"

// ErrMalformedTimestamp is returned when a raw value cannot be parsed as a
// date or time at all.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// naiveLayouts are accepted layouts that carry no zone information.
// Order matters: the most specific layout is tried first.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// zonedLayouts are accepted layouts that carry zone information.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
}

// Normalizer converts raw values into instants in the canonical zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer loads the named canonical zone. An empty name selects
// DefaultZone.
func NewNormalizer(zone string) (*Normalizer, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("loading canonical zone %q: %w", zone, err)
	}
	return &Normalizer{loc: loc}, nil
}

// Location returns the canonical zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseTimestamp parses a raw timestamp string into an instant in the
// canonical zone. Zone-less values are localized, zoned values converted.
func (n *Normalizer) ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(n.loc), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
}

// ParseDate parses a raw calendar-date string ("2006-01-02") into midnight
// of that day in the canonical zone. Values carrying a time component are
// accepted and truncated to day granularity.
func (n *Normalizer) ParseDate(raw string) (time.Time, error) {
	t, err := n.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// Normalize converts an already-parsed instant into the canonical zone.
func (n *Normalizer) Normalize(t time.Time) time.Time {
	return t.In(n.loc)
}

// Now returns the current instant in the canonical zone.
func (n *Normalizer) Now() time.Time {
	return time.Now().In(n.loc)
}

// DateOf truncates an instant to day granularity, keeping its zone.
// All date-vs-date comparisons in the engine go through this.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateKey renders an instant's calendar day as "2006-01-02", the join and
// grouping key used throughout the analytics engine.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
