package matching

import (
	"errors"
	"testing"
)

// mustSlot builds a slot from wire strings, failing the test on error.
func mustSlot(t *testing.T, day, start, end string) Slot {
	t.Helper()
	s, err := ParseSlot(day, start, end)
	if err != nil {
		t.Fatalf("ParseSlot(%q, %q, %q): %v", day, start, end, err)
	}
	return s
}

// ---------- ParseWeekday / ParseClock ----------

func TestParseWeekday_AllDays(t *testing.T) {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	for i, name := range names {
		d, err := ParseWeekday(name)
		if err != nil {
			t.Fatalf("ParseWeekday(%q): %v", name, err)
		}
		if int(d) != i {
			t.Errorf("ParseWeekday(%q) = %d, want %d", name, d, i)
		}
		if d.String() != name {
			t.Errorf("Weekday(%d).String() = %q, want %q", i, d.String(), name)
		}
	}
}

func TestParseWeekday_RejectsCaseAndLocaleVariants(t *testing.T) {
	for _, bad := range []string{"monday", "MONDAY", "Mon", "Montag", ""} {
		if _, err := ParseWeekday(bad); err == nil {
			t.Errorf("ParseWeekday(%q): expected error, got none", bad)
		}
	}
}

func TestParseClock_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want Clock
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"09:30", 570},
		{"23:59", 1439},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
		if got.String() != tc.in {
			t.Errorf("Clock(%d).String() = %q, want %q", got, got.String(), tc.in)
		}
	}
}

func TestParseClock_Malformed(t *testing.T) {
	for _, bad := range []string{"", "9:00", "09:0", "24:00", "12:60", "ab:cd", "12.30", "12:30:00", "-1:00"} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q): expected error, got none", bad)
		}
	}
}

// ---------- Slot validation ----------

func TestParseSlot_RejectsNegativeDuration(t *testing.T) {
	_, err := ParseSlot("Monday", "17:00", "09:00")
	if err == nil {
		t.Fatal("expected error for end before start, got none")
	}
	if !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
}

func TestParseSlot_AllowsZeroLength(t *testing.T) {
	s, err := ParseSlot("Monday", "09:00", "09:00")
	if err != nil {
		t.Fatalf("zero-length slot should be valid: %v", err)
	}
	if s.Minutes() != 0 {
		t.Errorf("Minutes() = %d, want 0", s.Minutes())
	}
}

func TestValidateSchedule_SurfacesFirstBadSlot(t *testing.T) {
	good := mustSlot(t, "Monday", "09:00", "12:00")
	bad := Slot{Day: Tuesday, Start: 600, End: 500}

	if err := ValidateSchedule([]Slot{good}); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}
	if err := ValidateSchedule([]Slot{good, bad}); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
}

// ---------- OverlapPercent ----------

func TestOverlapPercent_IdenticalSlots(t *testing.T) {
	a := []Slot{mustSlot(t, "Monday", "09:00", "17:00")}
	b := []Slot{mustSlot(t, "Monday", "09:00", "17:00")}

	if got := OverlapPercent(a, b); got != 100 {
		t.Errorf("OverlapPercent = %v, want 100", got)
	}
}

func TestOverlapPercent_PartialOverlapNormalizedBySmaller(t *testing.T) {
	// A declares 180 min, B declares 120 min, they share 60 min.
	// Denominator is the smaller total (120), so the result is 50.
	a := []Slot{mustSlot(t, "Monday", "09:00", "12:00")}
	b := []Slot{mustSlot(t, "Monday", "11:00", "13:00")}

	if got := OverlapPercent(a, b); got != 50 {
		t.Errorf("OverlapPercent = %v, want 50", got)
	}
}

func TestOverlapPercent_MultipleSlotsSameDay(t *testing.T) {
	// A: 09:00-10:00 and 14:00-15:00 (120 min total).
	// B: 09:30-14:30 (300 min). Overlaps: 30 + 30 = 60 min.
	// min(120, 300) = 120, so 50%.
	a := []Slot{
		mustSlot(t, "Monday", "09:00", "10:00"),
		mustSlot(t, "Monday", "14:00", "15:00"),
	}
	b := []Slot{mustSlot(t, "Monday", "09:30", "14:30")}

	if got := OverlapPercent(a, b); got != 50 {
		t.Errorf("OverlapPercent = %v, want 50", got)
	}
}

func TestOverlapPercent_DifferentDaysNeverOverlap(t *testing.T) {
	a := []Slot{mustSlot(t, "Monday", "09:00", "17:00")}
	b := []Slot{mustSlot(t, "Tuesday", "09:00", "17:00")}

	if got := OverlapPercent(a, b); got != 0 {
		t.Errorf("OverlapPercent = %v, want 0", got)
	}
}

func TestOverlapPercent_AdjacentSlotsDoNotOverlap(t *testing.T) {
	a := []Slot{mustSlot(t, "Friday", "09:00", "12:00")}
	b := []Slot{mustSlot(t, "Friday", "12:00", "15:00")}

	if got := OverlapPercent(a, b); got != 0 {
		t.Errorf("touching boundaries should not count: got %v", got)
	}
}

func TestOverlapPercent_EmptySchedules(t *testing.T) {
	slots := []Slot{mustSlot(t, "Monday", "09:00", "17:00")}

	if got := OverlapPercent(nil, slots); got != 0 {
		t.Errorf("OverlapPercent(nil, x) = %v, want 0", got)
	}
	if got := OverlapPercent(slots, nil); got != 0 {
		t.Errorf("OverlapPercent(x, nil) = %v, want 0", got)
	}
	if got := OverlapPercent(nil, nil); got != 0 {
		t.Errorf("OverlapPercent(nil, nil) = %v, want 0", got)
	}
}

func TestOverlapPercent_ZeroLengthSlotsOnly(t *testing.T) {
	// Schedules are non-empty but declare zero total minutes; the
	// denominator is zero, so the result must be 0 rather than NaN.
	a := []Slot{mustSlot(t, "Monday", "09:00", "09:00")}
	b := []Slot{mustSlot(t, "Monday", "09:00", "09:00")}

	if got := OverlapPercent(a, b); got != 0 {
		t.Errorf("OverlapPercent = %v, want 0", got)
	}
}

func TestOverlapPercent_Symmetric(t *testing.T) {
	a := []Slot{
		mustSlot(t, "Monday", "09:00", "12:00"),
		mustSlot(t, "Wednesday", "18:00", "21:00"),
	}
	b := []Slot{
		mustSlot(t, "Monday", "10:00", "14:00"),
		mustSlot(t, "Wednesday", "19:00", "20:00"),
		mustSlot(t, "Sunday", "08:00", "09:00"),
	}

	ab := OverlapPercent(a, b)
	ba := OverlapPercent(b, a)
	if ab != ba {
		t.Errorf("OverlapPercent not symmetric: %v vs %v", ab, ba)
	}
	if ab < 0 || ab > 100 {
		t.Errorf("OverlapPercent out of range: %v", ab)
	}
}

func TestOverlapPercent_SelfOverlappingSlotsCapAtFull(t *testing.T) {
	// A declares the same hour twice. Slots are not merged, so each copy
	// overlaps B independently (120 min against a 60-min denominator); the
	// published percentage is capped to stay within [0, 100].
	a := []Slot{
		mustSlot(t, "Monday", "09:00", "10:00"),
		mustSlot(t, "Monday", "09:00", "10:00"),
	}
	b := []Slot{mustSlot(t, "Monday", "09:00", "10:00")}

	if got := OverlapPercent(a, b); got != 100 {
		t.Errorf("OverlapPercent = %v, want 100 (capped)", got)
	}
}
