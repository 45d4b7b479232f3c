package availability

import "testing"

func testCatalog() Catalog {
	return Catalog{
		"Haircut":         30,
		"Haircut + Beard": 45,
		"Beard Trim":      15,
		"Hair Color":      90,
	}
}

func TestCatalogDuration(t *testing.T) {
	c := testCatalog()
	if got := c.Duration("Haircut + Beard"); got != 45 {
		t.Fatalf("expected 45, got %d", got)
	}
	if got := c.Duration("nonexistent"); got != DefaultDurationMinutes {
		t.Fatalf("unknown service should default to %d, got %d", DefaultDurationMinutes, got)
	}
	if got := Catalog(nil).Duration("Haircut"); got != DefaultDurationMinutes {
		t.Fatalf("nil catalog should default to %d, got %d", DefaultDurationMinutes, got)
	}
}

func TestMinutesOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"10:45", 645},
		{"23:59", 1439},
	}
	for _, tc := range cases {
		got, err := MinutesOfDay(tc.in)
		if err != nil {
			t.Fatalf("MinutesOfDay(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("MinutesOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMinutesOfDayRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "9:00", "09:0", "0900", "24:00", "09:60", "ab:cd", "09-00", "09:00:00"} {
		if _, err := MinutesOfDay(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := FormatMinutes(540); got != "09:00" {
		t.Fatalf("expected 09:00, got %s", got)
	}
	if got := FormatMinutes(1050); got != "17:30" {
		t.Fatalf("expected 17:30, got %s", got)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		startA, durA, startB, durB int
		want                       bool
	}{
		{"disjoint after", 660, 30, 600, 45, false},
		{"start inside existing", 630, 30, 600, 45, true},
		{"end inside existing", 585, 30, 600, 45, true},
		{"fully contains existing", 590, 60, 600, 45, true},
		{"contained by existing", 610, 10, 600, 45, true},
		{"identical", 600, 30, 600, 30, true},
		{"abuts before", 570, 30, 600, 45, false},
		{"abuts after", 645, 30, 600, 45, false},
	}
	for _, tc := range cases {
		if got := Overlaps(tc.startA, tc.durA, tc.startB, tc.durB); got != tc.want {
			t.Fatalf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSlotAvailable_HaircutBeardScenario(t *testing.T) {
	e := NewEngine(testCatalog())
	// Existing booking 10:00 for 45 minutes spans 10:00-10:45.
	existing := []Booked{{ID: "a1", Start: "10:00", Service: "Haircut + Beard"}}

	ok, err := e.SlotAvailable(Candidate{Start: "10:30", Service: "Haircut"}, existing)
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	if ok {
		t.Fatal("10:30-11:00 overlaps 10:00-10:45; expected unavailable")
	}

	ok, err = e.SlotAvailable(Candidate{Start: "10:45", Service: "Haircut"}, existing)
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	if !ok {
		t.Fatal("10:45 starts exactly when the booking ends; expected available")
	}
}

func TestSlotAvailable_CandidateContainsExisting(t *testing.T) {
	e := NewEngine(testCatalog())
	existing := []Booked{{ID: "a1", Start: "10:00", Service: "Beard Trim"}} // 10:00-10:15

	ok, err := e.SlotAvailable(Candidate{Start: "09:45", Service: "Hair Color"}, existing) // 09:45-11:15
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	if ok {
		t.Fatal("candidate fully containing an existing booking must be unavailable")
	}
}

func TestSlotAvailable_EmptyDay(t *testing.T) {
	e := NewEngine(testCatalog())
	ok, err := e.SlotAvailable(Candidate{Start: "09:00", Service: "Haircut"}, nil)
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	if !ok {
		t.Fatal("empty day should be available")
	}
}

func TestSlotAvailable_ChecksEveryBooking(t *testing.T) {
	e := NewEngine(testCatalog())
	// The conflicting booking is not first in the list.
	existing := []Booked{
		{ID: "a1", Start: "09:00", Service: "Haircut"},
		{ID: "a2", Start: "14:00", Service: "Haircut"},
	}
	ok, err := e.SlotAvailable(Candidate{Start: "14:00", Service: "Haircut"}, existing)
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	if ok {
		t.Fatal("conflict with the second booking must be detected")
	}
}

func TestSlotAvailable_Idempotent(t *testing.T) {
	e := NewEngine(testCatalog())
	existing := []Booked{{ID: "a1", Start: "10:00", Service: "Haircut"}}
	candidate := Candidate{Start: "10:15", Service: "Haircut"}

	first, err := e.SlotAvailable(candidate, existing)
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	second, err := e.SlotAvailable(candidate, existing)
	if err != nil {
		t.Fatalf("SlotAvailable failed: %v", err)
	}
	if first != second {
		t.Fatalf("same inputs produced different answers: %v then %v", first, second)
	}
}

func TestSlotAvailable_MalformedCandidate(t *testing.T) {
	e := NewEngine(testCatalog())
	if _, err := e.SlotAvailable(Candidate{Start: "9am", Service: "Haircut"}, nil); err == nil {
		t.Fatal("expected error for malformed candidate time")
	}
	if _, err := e.SlotAvailable(Candidate{Start: "09:00", Service: "Haircut"}, []Booked{{Start: "bogus", Service: "Haircut"}}); err == nil {
		t.Fatal("expected error for malformed booking time")
	}
}

func TestSlotGrid(t *testing.T) {
	grid := SlotGrid(Hours{StartHour: 9, EndHour: 18}, 30)
	if len(grid) != 18 {
		t.Fatalf("expected 18 slots, got %d", len(grid))
	}
	if grid[0] != "09:00" {
		t.Fatalf("expected first slot 09:00, got %s", grid[0])
	}
	if grid[1] != "09:30" {
		t.Fatalf("expected second slot 09:30, got %s", grid[1])
	}
	if grid[len(grid)-1] != "17:30" {
		t.Fatalf("expected last slot 17:30, got %s", grid[len(grid)-1])
	}
}

func TestSlotGrid_DefaultStepAndEmptyWindow(t *testing.T) {
	if got := SlotGrid(Hours{StartHour: 9, EndHour: 10}, 0); len(got) != 2 {
		t.Fatalf("expected default 30-minute step to yield 2 slots, got %d", len(got))
	}
	if got := SlotGrid(Hours{StartHour: 18, EndHour: 9}, 30); got != nil {
		t.Fatalf("inverted window should yield no slots, got %v", got)
	}
}

func TestSlotGridMinutes(t *testing.T) {
	grid := SlotGridMinutes(9*60+30, 17*60+30, 30)
	if len(grid) != 16 {
		t.Fatalf("expected 16 slots for 09:30-17:30, got %d", len(grid))
	}
	if grid[0] != "09:30" {
		t.Fatalf("expected first slot 09:30, got %s", grid[0])
	}
	if grid[len(grid)-1] != "17:00" {
		t.Fatalf("expected last slot 17:00, got %s", grid[len(grid)-1])
	}
	for _, s := range grid {
		if s == "09:00" {
			t.Fatal("09:00 is before the 09:30 opening and must not appear")
		}
	}
}

func TestSlotGridMinutes_RoundsUpToStep(t *testing.T) {
	grid := SlotGridMinutes(9*60+40, 12*60, 30)
	if grid[0] != "10:00" {
		t.Fatalf("09:40 opening should round up to 10:00, got %s", grid[0])
	}
	if got := SlotGridMinutes(18*60, 9*60, 30); got != nil {
		t.Fatalf("inverted window should yield no slots, got %v", got)
	}
}

func TestAnnotateGrid_ConsistentAcrossBookings(t *testing.T) {
	e := NewEngine(testCatalog())
	existing := []Booked{
		{ID: "a1", Start: "10:00", Service: "Haircut + Beard"}, // 10:00-10:45
		{ID: "a2", Start: "15:00", Service: "Haircut"},         // 15:00-15:30
	}
	grid := SlotGrid(Hours{StartHour: 9, EndHour: 18}, 30)
	slots, err := e.AnnotateGrid(grid, "Haircut", existing)
	if err != nil {
		t.Fatalf("AnnotateGrid failed: %v", err)
	}
	if len(slots) != len(grid) {
		t.Fatalf("expected %d annotated slots, got %d", len(grid), len(slots))
	}

	want := map[string]bool{
		"10:00": false, // inside first booking
		"10:30": false, // 10:30-11:00 clips 10:00-10:45
		"11:00": true,
		"14:30": true,  // 14:30-15:00 ends exactly where the next booking starts
		"15:00": false, // inside second booking
		"15:30": true,  // starts when second booking ends
	}

	for _, s := range slots {
		expected, ok := want[s.Time]
		if !ok {
			continue
		}
		if s.Available != expected {
			t.Fatalf("slot %s: available = %v, want %v", s.Time, s.Available, expected)
		}
	}

	// No slot marked available may conflict with any existing booking.
	for _, s := range slots {
		if !s.Available {
			continue
		}
		start, err := MinutesOfDay(s.Time)
		if err != nil {
			t.Fatalf("bad grid time %q: %v", s.Time, err)
		}
		for _, b := range existing {
			bStart, err := MinutesOfDay(b.Start)
			if err != nil {
				t.Fatalf("bad booking time %q: %v", b.Start, err)
			}
			if Overlaps(start, e.Duration("Haircut"), bStart, e.Duration(b.Service)) {
				t.Fatalf("slot %s marked available but conflicts with booking at %s", s.Time, b.Start)
			}
		}
	}
}
