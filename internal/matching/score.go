package matching

import "sort"

// Score weights. Skill complementarity dominates; availability acts as a
// secondary filter. These are a fixed policy of the engine, not tunable
// per user.
const (
	skillWeight        = 0.7
	availabilityWeight = 0.3
)

// User is a profile as seen by the scoring engine. Instances are owned by
// the caller and treated as read-only; the engine never mutates them.
type User struct {
	ID           string
	TeachSkills  []string
	LearnSkills  []string
	Availability []Slot
}

// MatchResult is one scored candidate. CanTeach lists the skills the focal
// user teaches that the candidate wants to learn; CanLearn lists the skills
// the candidate teaches that the focal user wants. Both percentages are in
// [0, 100].
type MatchResult struct {
	CandidateID         string   `json:"candidate_id"`
	MatchScore          float64  `json:"match_score"`
	CanTeach            []string `json:"can_teach"`
	CanLearn            []string `json:"can_learn"`
	AvailabilityOverlap float64  `json:"availability_overlap"`
}

// ComputeMatches scores every candidate in the pool against the focal user
// and returns the results ranked by score, highest first. Candidates with a
// zero score are not matches and are dropped, as is the focal user if it
// appears in its own pool. Ties break by candidate ID ascending so repeated
// calls with the same inputs produce identical output.
func ComputeMatches(focal User, pool []User) []MatchResult {
	results := make([]MatchResult, 0, len(pool))

	for _, c := range pool {
		if c.ID == focal.ID {
			continue
		}

		canTeach := intersect(focal.TeachSkills, c.LearnSkills)
		canLearn := intersect(c.TeachSkills, focal.LearnSkills)

		// Upper bound on achievable bidirectional pairings given the
		// declared list sizes. This is the normalization denominator, not
		// a count of achieved matches.
		maxPossible := min(len(focal.TeachSkills), len(c.LearnSkills)) +
			min(len(c.TeachSkills), len(focal.LearnSkills))

		var skillScore float64
		if maxPossible > 0 {
			skillScore = 100 * float64(len(canTeach)+len(canLearn)) / float64(maxPossible)
		}

		overlap := OverlapPercent(focal.Availability, c.Availability)
		score := skillWeight*skillScore + availabilityWeight*overlap
		if score == 0 {
			continue
		}

		results = append(results, MatchResult{
			CandidateID:         c.ID,
			MatchScore:          score,
			CanTeach:            canTeach,
			CanLearn:            canLearn,
			AvailabilityOverlap: overlap,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	return results
}

// intersect returns the elements of a that appear anywhere in b, keeping
// a's order and collapsing duplicates to their first occurrence.
func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}

	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a))
	for _, s := range a {
		if inB[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
