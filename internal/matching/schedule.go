// Package matching implements the SkillSwap compatibility engine. The core
// of the package is pure computation: given user profiles with declared
// teachable/learnable skills and weekly recurring availability, it produces
// ranked match scores. Service wiring (NATS, Redis caching) lives in
// separate files and never leaks into the scoring functions.
package matching

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Weekday is a fixed seven-value enumeration of the days of the week.
// Schedules from two independently authored profiles are compared through
// this type rather than free-form strings, so casing or locale differences
// cannot cause silent non-matches.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// String returns the English day name.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday converts an English day name to a Weekday. The match is
// exact; unknown or differently cased names are an error.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if s == name {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("matching: unknown weekday %q", s)
}

// Clock is a wall-clock time of day expressed as minutes since midnight.
type Clock int

// ParseClock parses a strict "HH:MM" time-of-day string. Hours must be
// 00-23 and minutes 00-59, both two digits. Anything else is an error;
// coercing malformed input to zero would corrupt overlap totals for the
// remaining valid slots.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("matching: invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("matching: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("matching: invalid minute in %q", s)
	}
	return Clock(h*60 + m), nil
}

// String formats the clock back to "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ErrInvalidSlot marks an availability slot whose end precedes its start.
// Slots do not wrap past midnight, so such a slot has no valid reading and
// is rejected at the boundary instead of silently contributing a negative
// duration.
var ErrInvalidSlot = errors.New("matching: slot end precedes start")

// Slot is one recurring weekly availability interval. End is inclusive of
// the declared range's close, exclusive for overlap purposes (a slot ending
// at 12:00 does not overlap one starting at 12:00).
type Slot struct {
	Day   Weekday
	Start Clock
	End   Clock
}

// ParseSlot builds a validated Slot from wire-format strings.
func ParseSlot(day, start, end string) (Slot, error) {
	d, err := ParseWeekday(day)
	if err != nil {
		return Slot{}, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Slot{}, err
	}
	slot := Slot{Day: d, Start: s, End: e}
	if err := slot.Validate(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Validate reports ErrInvalidSlot for negative-duration slots. Zero-length
// slots are valid; they simply contribute nothing.
func (s Slot) Validate() error {
	if s.End < s.Start {
		return fmt.Errorf("%w: %s %s-%s", ErrInvalidSlot, s.Day, s.Start, s.End)
	}
	return nil
}

// Minutes returns the declared duration of the slot.
func (s Slot) Minutes() int {
	return int(s.End - s.Start)
}

// ValidateSchedule checks every slot in a schedule, returning the first
// validation error encountered.
func ValidateSchedule(slots []Slot) error {
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// OverlapPercent computes how much of two weekly schedules coincide,
// as a percentage in [0, 100] of the smaller schedule's total declared
// minutes. Normalizing by the smaller total makes the figure read as "what
// fraction of the more time-constrained user's availability is shared",
// rather than penalizing users who declare more availability.
//
// Slots are compared pairwise within each weekday. Self-overlapping slots
// in one schedule are not pre-merged, so each pair contributes
// independently. The function is symmetric in its arguments.
func OverlapPercent(a, b []Slot) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	overlap := 0
	for _, sa := range a {
		for _, sb := range b {
			if sa.Day != sb.Day {
				continue
			}
			start := max(sa.Start, sb.Start)
			end := min(sa.End, sb.End)
			if end > start {
				overlap += int(end - start)
			}
		}
	}

	denom := min(totalMinutes(a), totalMinutes(b))
	if denom == 0 {
		return 0
	}

	// Self-overlapping slots inflate the numerator past the smaller total;
	// cap at 100 to keep the published percentage within its range.
	pct := 100 * float64(overlap) / float64(denom)
	return min(pct, 100)
}

// totalMinutes sums the declared duration of all slots, regardless of day.
func totalMinutes(slots []Slot) int {
	total := 0
	for _, s := range slots {
		total += s.Minutes()
	}
	return total
}
