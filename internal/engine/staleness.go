package engine

import (
	"sort"
	"time"
)

// Staleness review forces a short burst of questions on any subtopic that
// has gone unpracticed past the threshold, so the learning-rate EWMA gets
// fresh evidence: a score drop reveals forgetting, a hold confirms
// retention. The whole mechanism lives behind StalenessOverride and the
// PendingReviewCount field so it can be swapped for a real
// spaced-repetition scheduler later without touching the selector.
const (
	StalenessThreshold   = 72 * time.Hour
	StalenessReviewCount = 3
)

// ReviewPhase is the staleness state of a subtopic.
type ReviewPhase int

const (
	PhaseNormal ReviewPhase = iota
	PhaseForcedReview
)

// Phase reports whether the subtopic is inside a forced-review burst.
func (s *SubtopicState) Phase() ReviewPhase {
	if s.PendingReviewCount > 0 {
		return PhaseForcedReview
	}
	return PhaseNormal
}

// Stale reports whether the subtopic should trigger a forced review:
// unpracticed past the threshold and out of cold start. Cold-start
// subtopics are exempt — the selector already boosts them to the front.
func (s *SubtopicState) Stale(now time.Time) bool {
	if s.QuestionsAnswered < ColdStartMin {
		return false
	}
	return now.Sub(s.LastPracticedAt) > StalenessThreshold
}

// StalenessOverride scans the eligible subtopics for one that must be
// practiced next. An active forced review continues until its pending count
// drains; otherwise the most overdue stale subtopic is promoted to
// forced review. Returns false to let priority selection proceed.
//
// Ordering is deterministic: most overdue first, subtopic id as tie-break.
// The promotion mutates the chosen subtopic's PendingReviewCount.
func StalenessOverride(states map[string]*SubtopicState, eligible []string, now time.Time) (string, bool) {
	active := pickMostOverdue(states, eligible, now, func(s *SubtopicState) bool {
		return s.Phase() == PhaseForcedReview
	})
	if active != "" {
		return active, true
	}

	stale := pickMostOverdue(states, eligible, now, func(s *SubtopicState) bool {
		return s.Stale(now)
	})
	if stale == "" {
		return "", false
	}
	states[stale].PendingReviewCount = StalenessReviewCount
	return stale, true
}

func pickMostOverdue(states map[string]*SubtopicState, eligible []string, now time.Time, match func(*SubtopicState) bool) string {
	type candidate struct {
		id      string
		overdue time.Duration
	}
	var candidates []candidate
	for _, id := range eligible {
		st, ok := states[id]
		if !ok || !match(st) {
			continue
		}
		candidates = append(candidates, candidate{id: id, overdue: now.Sub(st.LastPracticedAt)})
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].overdue != candidates[j].overdue {
			return candidates[i].overdue > candidates[j].overdue
		}
		return candidates[i].id < candidates[j].id
	})
	return candidates[0].id
}
