package engine

import "time"

// Smoothing constants. Alpha weights the most recent attempt in the baseline
// EWMA (a ~5-10 attempt horizon); PAlpha does the same for the correct-rate.
// Kept separate so the two estimates can be recalibrated independently.
const (
	Alpha  = 0.3
	PAlpha = 0.3
)

// RecordAttempt folds one graded attempt into the subtopic's mastery
// statistics and returns the updated state. The very first attempt seeds
// baseline and p directly from the observed outcome instead of blending
// with the cold-start defaults.
func RecordAttempt(s SubtopicState, correct bool, now time.Time) SubtopicState {
	score := 0.0
	indicator := 0.0
	if correct {
		score = 100.0
		indicator = 1.0
	}

	if s.QuestionsAnswered == 0 {
		s.Baseline = score
		s.P = indicator
	} else {
		s.Baseline = clamp(Alpha*score+(1-Alpha)*s.Baseline, 0, 100)
		s.P = clamp(PAlpha*indicator+(1-PAlpha)*s.P, 0, 1)
	}

	s.QuestionsAnswered++
	s.LastPracticedAt = now
	if s.PendingReviewCount > 0 {
		s.PendingReviewCount--
	}
	return s
}
