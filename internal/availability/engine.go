package availability

import (
	"fmt"
	"strconv"
)

// DefaultDurationMinutes is assumed for service names missing from the
// catalog. Unknown or legacy labels must not break the booking flow; they
// degrade to this conservative default instead of raising an error.
const DefaultDurationMinutes = 30

// Catalog maps a service name to its duration in minutes.
type Catalog map[string]int

// Duration returns the catalog duration for name, or DefaultDurationMinutes
// when the name is unknown. The fallback is silent and intentional.
func (c Catalog) Duration(name string) int {
	if d, ok := c[name]; ok && d > 0 {
		return d
	}
	return DefaultDurationMinutes
}

// MinutesOfDay parses a zero-padded 24-hour "HH:MM" string into minutes
// since midnight. Inputs are machine-generated (slot grids, persisted rows),
// so a parse failure is a caller contract violation and is reported rather
// than coerced.
func MinutesOfDay(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("malformed time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("malformed time %q: bad hour", s)
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("malformed time %q: bad minute", s)
	}
	return hour*60 + minute, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Overlaps reports whether [startA, startA+durA) and [startB, startB+durB)
// share at least one minute. Half-open semantics: intervals that exactly
// abut do not overlap, so a slot starting when another booking ends is free.
func Overlaps(startA, durA, startB, durB int) bool {
	return startA < startB+durB && startB < startA+durA
}

// Booked is the engine's read-only projection of a persisted appointment:
// its day-local start time and the service that determines its span.
// Callers pre-filter to one barber, one day, status booked, and leave out
// the appointment being rescheduled, if any. DurationMin, when positive,
// overrides the catalog lookup; time-off blocks use it since they have no
// service behind them.
type Booked struct {
	ID          string
	Start       string // "HH:MM"
	Service     string
	DurationMin int
}

// Candidate is a prospective booking being checked.
type Candidate struct {
	Start   string // "HH:MM"
	Service string
}

// Hours is a barber's working window for slot generation, as whole hours
// forming the half-open interval [StartHour, EndHour).
type Hours struct {
	StartHour int
	EndHour   int
}

// Slot is one grid entry with its availability for a fixed service.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Engine answers slot availability questions against a service catalog.
// It is pure and stateless: safe for concurrent use, never mutates inputs,
// and two calls with identical inputs always agree.
type Engine struct {
	catalog Catalog
}

func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Duration resolves a service name to minutes, applying the catalog default
// for unknown names.
func (e *Engine) Duration(service string) int {
	return e.catalog.Duration(service)
}

// SlotAvailable reports whether the candidate would overlap any existing
// booking. A linear scan is deliberate: a barber's day holds at most a few
// dozen appointments.
func (e *Engine) SlotAvailable(candidate Candidate, existing []Booked) (bool, error) {
	start, err := MinutesOfDay(candidate.Start)
	if err != nil {
		return false, err
	}
	duration := e.Duration(candidate.Service)

	for _, b := range existing {
		bookedStart, err := MinutesOfDay(b.Start)
		if err != nil {
			return false, err
		}
		bookedDur := b.DurationMin
		if bookedDur <= 0 {
			bookedDur = e.Duration(b.Service)
		}
		if Overlaps(start, duration, bookedStart, bookedDur) {
			return false, nil
		}
	}
	return true, nil
}

// SlotGrid produces every "HH:MM" boundary from StartHour:00 up to but
// excluding EndHour:00, stepping by stepMinutes (default 30).
func SlotGrid(h Hours, stepMinutes int) []string {
	return SlotGridMinutes(h.StartHour*60, h.EndHour*60, stepMinutes)
}

// SlotGridMinutes is the minute-grained form: boundaries in
// [startMinute, endMinute), with startMinute rounded up to the next step
// boundary so a 09:30 opening with a 30 minute step begins at 09:30, not
// 09:00.
func SlotGridMinutes(startMinute, endMinute, stepMinutes int) []string {
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	first := startMinute
	if rem := first % stepMinutes; rem != 0 {
		first += stepMinutes - rem
	}
	var grid []string
	for m := first; m < endMinute; m += stepMinutes {
		grid = append(grid, FormatMinutes(m))
	}
	return grid
}

// AnnotateGrid maps SlotAvailable over the grid for a fixed service. Used
// for display only; the write path re-checks the chosen slot.
func (e *Engine) AnnotateGrid(grid []string, service string, existing []Booked) ([]Slot, error) {
	slots := make([]Slot, 0, len(grid))
	for _, t := range grid {
		ok, err := e.SlotAvailable(Candidate{Start: t, Service: service}, existing)
		if err != nil {
			return nil, err
		}
		slots = append(slots, Slot{Time: t, Available: ok})
	}
	return slots, nil
}
