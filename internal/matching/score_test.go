package matching

import (
	"math"
	"reflect"
	"testing"
)

func monday9to5(t *testing.T) []Slot {
	t.Helper()
	return []Slot{mustSlot(t, "Monday", "09:00", "17:00")}
}

// ---------- ComputeMatches ----------

func TestComputeMatches_PerfectComplement(t *testing.T) {
	alice := User{
		ID:           "alice",
		TeachSkills:  []string{"Python"},
		LearnSkills:  []string{"Guitar"},
		Availability: monday9to5(t),
	}
	bob := User{
		ID:           "bob",
		TeachSkills:  []string{"Guitar"},
		LearnSkills:  []string{"Python"},
		Availability: monday9to5(t),
	}

	results := ComputeMatches(alice, []User{bob})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.CandidateID != "bob" {
		t.Errorf("CandidateID = %q, want bob", r.CandidateID)
	}
	if r.MatchScore != 100 {
		t.Errorf("MatchScore = %v, want 100", r.MatchScore)
	}
	if r.AvailabilityOverlap != 100 {
		t.Errorf("AvailabilityOverlap = %v, want 100", r.AvailabilityOverlap)
	}
	if !reflect.DeepEqual(r.CanTeach, []string{"Python"}) {
		t.Errorf("CanTeach = %v, want [Python]", r.CanTeach)
	}
	if !reflect.DeepEqual(r.CanLearn, []string{"Guitar"}) {
		t.Errorf("CanLearn = %v, want [Guitar]", r.CanLearn)
	}
}

func TestComputeMatches_OneDirectionalSkillsZeroDenominator(t *testing.T) {
	// Alice can teach Python but wants nothing; Bob wants Python but
	// teaches nothing. maxPossible = min(1,1) + min(0,0) = 1, so the
	// one-way pairing still scores.
	alice := User{ID: "alice", TeachSkills: []string{"Python"}}
	bob := User{ID: "bob", LearnSkills: []string{"Python"}}

	results := ComputeMatches(alice, []User{bob})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].MatchScore != 70 {
		t.Errorf("MatchScore = %v, want 70 (full skill score, no availability)", results[0].MatchScore)
	}
}

func TestComputeMatches_NoComplementarityExcluded(t *testing.T) {
	// Both users teach and want entirely different things, and neither
	// declared availability. Zero score means "not a match".
	alice := User{ID: "alice", TeachSkills: []string{"Python"}, LearnSkills: []string{"Guitar"}}
	bob := User{ID: "bob", TeachSkills: []string{"Welding"}, LearnSkills: []string{"Baking"}}

	results := ComputeMatches(alice, []User{bob})
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestComputeMatches_ExcludesSelf(t *testing.T) {
	alice := User{
		ID:          "alice",
		TeachSkills: []string{"Python"},
		LearnSkills: []string{"Python"}, // would match itself perfectly
	}

	results := ComputeMatches(alice, []User{alice})
	if len(results) != 0 {
		t.Errorf("focal user must never match itself, got %d results", len(results))
	}
}

func TestComputeMatches_EmptyPool(t *testing.T) {
	alice := User{ID: "alice", TeachSkills: []string{"Python"}}

	results := ComputeMatches(alice, nil)
	if results == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestComputeMatches_SortedDescendingWithDeterministicTies(t *testing.T) {
	alice := User{
		ID:          "alice",
		TeachSkills: []string{"Python", "Go"},
		LearnSkills: []string{"Guitar", "Piano"},
	}
	// Perfect complement: scores higher.
	best := User{
		ID:          "best",
		TeachSkills: []string{"Guitar", "Piano"},
		LearnSkills: []string{"Python", "Go"},
	}
	// Two identical partial complements: tie, broken by ID.
	tieB := User{ID: "tie-b", TeachSkills: []string{"Guitar"}, LearnSkills: []string{"Python"}}
	tieA := User{ID: "tie-a", TeachSkills: []string{"Guitar"}, LearnSkills: []string{"Python"}}

	results := ComputeMatches(alice, []User{tieB, best, tieA})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].CandidateID != "best" {
		t.Errorf("results[0] = %q, want best", results[0].CandidateID)
	}
	if results[1].CandidateID != "tie-a" || results[2].CandidateID != "tie-b" {
		t.Errorf("tie order = [%q, %q], want [tie-a, tie-b]",
			results[1].CandidateID, results[2].CandidateID)
	}

	for i := 1; i < len(results); i++ {
		if results[i].MatchScore > results[i-1].MatchScore {
			t.Errorf("results not sorted descending at %d: %v > %v",
				i, results[i].MatchScore, results[i-1].MatchScore)
		}
	}
}

func TestComputeMatches_WeightedCombination(t *testing.T) {
	// Half the skill pairings achieved, half the availability shared:
	// skillScore = 50, availability = 50, total = 0.7*50 + 0.3*50 = 50.
	alice := User{
		ID:           "alice",
		TeachSkills:  []string{"Python", "Go"},
		LearnSkills:  []string{},
		Availability: []Slot{mustSlot(t, "Monday", "09:00", "12:00")},
	}
	bob := User{
		ID:           "bob",
		TeachSkills:  []string{},
		LearnSkills:  []string{"Python", "Rust"},
		Availability: []Slot{mustSlot(t, "Monday", "11:00", "13:00")},
	}

	results := ComputeMatches(alice, []User{bob})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := results[0].MatchScore; math.Abs(got-50) > 1e-9 {
		t.Errorf("MatchScore = %v, want 50", got)
	}
}

func TestComputeMatches_AvailabilityAloneScores(t *testing.T) {
	// No skill complementarity but matching schedules still produce a
	// small positive score through the availability weight.
	alice := User{
		ID:           "alice",
		TeachSkills:  []string{"Python"},
		LearnSkills:  []string{"Guitar"},
		Availability: monday9to5(t),
	}
	bob := User{
		ID:           "bob",
		TeachSkills:  []string{"Welding"},
		LearnSkills:  []string{"Baking"},
		Availability: monday9to5(t),
	}

	results := ComputeMatches(alice, []User{bob})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := results[0].MatchScore; math.Abs(got-30) > 1e-9 {
		t.Errorf("MatchScore = %v, want 30 (availability only)", got)
	}
}

func TestComputeMatches_DuplicateSkillsCollapse(t *testing.T) {
	alice := User{ID: "alice", TeachSkills: []string{"Python", "Python", "Go"}}
	bob := User{ID: "bob", LearnSkills: []string{"Python", "Go"}}

	results := ComputeMatches(alice, []User{bob})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !reflect.DeepEqual(results[0].CanTeach, []string{"Python", "Go"}) {
		t.Errorf("CanTeach = %v, want [Python Go]", results[0].CanTeach)
	}
}

func TestComputeMatches_BoundedAndIdempotent(t *testing.T) {
	alice := User{
		ID:           "alice",
		TeachSkills:  []string{"Python", "Go", "SQL"},
		LearnSkills:  []string{"Guitar"},
		Availability: monday9to5(t),
	}
	pool := []User{
		{ID: "b", TeachSkills: []string{"Guitar"}, LearnSkills: []string{"Python"}, Availability: monday9to5(t)},
		{ID: "c", LearnSkills: []string{"SQL", "Go"}},
		{ID: "d", TeachSkills: []string{"Knitting"}},
	}

	first := ComputeMatches(alice, pool)
	second := ComputeMatches(alice, pool)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated calls with identical inputs differ")
	}
	for _, r := range first {
		if r.MatchScore <= 0 || r.MatchScore > 100 {
			t.Errorf("MatchScore out of (0, 100]: %v for %s", r.MatchScore, r.CandidateID)
		}
		if r.AvailabilityOverlap < 0 || r.AvailabilityOverlap > 100 {
			t.Errorf("AvailabilityOverlap out of [0, 100]: %v for %s", r.AvailabilityOverlap, r.CandidateID)
		}
	}
}

func TestComputeMatches_PoolWithSelfAndZeroScores(t *testing.T) {
	alice := User{ID: "alice", TeachSkills: []string{"Python"}, LearnSkills: []string{"Guitar"}}
	pool := []User{
		alice,
		{ID: "b", LearnSkills: []string{"Python"}},
		{ID: "c"}, // empty profile, never a match
	}

	results := ComputeMatches(alice, pool)
	if len(results) != 1 {
		t.Fatalf("expected 1 result (self and empty excluded), got %d", len(results))
	}
	if results[0].CandidateID != "b" {
		t.Errorf("CandidateID = %q, want b", results[0].CandidateID)
	}
}

// ---------- intersect ----------

func TestIntersect_PreservesOwnerOrder(t *testing.T) {
	got := intersect([]string{"c", "a", "b"}, []string{"a", "b", "c"})
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("intersect = %v, want [c a b]", got)
	}
}

func TestIntersect_EmptyInputs(t *testing.T) {
	if got := intersect(nil, []string{"a"}); len(got) != 0 {
		t.Errorf("intersect(nil, x) = %v, want empty", got)
	}
	if got := intersect([]string{"a"}, nil); len(got) != 0 {
		t.Errorf("intersect(x, nil) = %v, want empty", got)
	}
}
