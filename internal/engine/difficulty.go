package engine

import (
	"fmt"
	"math"
)

// ColdStartTargets are the difficulties probed by the first three questions
// in a subtopic: one easy, one medium, one hard, so the estimator has a
// spread of evidence before the adaptive loop takes over.
var ColdStartTargets = [...]float64{25, 50, 75}

// ColdStartMin is the number of attempts a subtopic needs before its
// statistics are trusted for staleness review and difficulty scaling.
const ColdStartMin = len(ColdStartTargets)

// FeedbackLevel is the learner's answer to "how much did you get out of
// that?". Combined with the attempt's correctness it steers the target
// difficulty: correct attempts push the target up, incorrect ones down,
// with the level setting the step size.
type FeedbackLevel string

const (
	FeedbackNotMuch  FeedbackLevel = "not_much"
	FeedbackSomewhat FeedbackLevel = "somewhat"
	FeedbackALot     FeedbackLevel = "a_lot"
)

var feedbackDelta = map[FeedbackLevel]float64{
	FeedbackNotMuch:  4,
	FeedbackSomewhat: 8,
	FeedbackALot:     15,
}

// ParseFeedbackLevel validates a wire-format feedback string.
func ParseFeedbackLevel(s string) (FeedbackLevel, error) {
	level := FeedbackLevel(s)
	if _, ok := feedbackDelta[level]; !ok {
		return "", fmt.Errorf("unknown feedback level %q", s)
	}
	return level, nil
}

// Multiplier maps the smoothed correct-rate p to a difficulty multiplier.
// Below the 0.85 pivot it eases off toward 0.5x; above it a superlinear
// ramp rewards mastery with harder questions, capped at 2.5x. Monotone
// non-decreasing over [0,1], with Multiplier(0.85) == 1.
func Multiplier(p float64) float64 {
	if p <= 0.85 {
		return 0.5 + 0.5*math.Pow(p/0.85, 1.8)
	}
	return math.Min(2.5, 1.0+math.Pow((p-0.85)/0.15, 2.5))
}

// RequestedDifficulty is the difficulty the picker should aim at for the
// next question in this subtopic: the cold-start ladder for the first
// attempts, then the feedback-steered target scaled by the accuracy
// multiplier.
func RequestedDifficulty(s SubtopicState) float64 {
	if s.QuestionsAnswered < ColdStartMin {
		return ColdStartTargets[s.QuestionsAnswered]
	}
	return clamp(s.TargetDifficulty*Multiplier(s.P), 0, 100)
}

// TargetAdjustment reports a feedback-driven target move so callers can
// render the transition.
type TargetAdjustment struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// AdjustTarget applies one feedback signal to the target difficulty. The
// same inputs always produce the same output; it is the caller's job to
// store After back into the subtopic state.
func AdjustTarget(target float64, correct bool, level FeedbackLevel) (TargetAdjustment, error) {
	delta, ok := feedbackDelta[level]
	if !ok {
		return TargetAdjustment{}, fmt.Errorf("unknown feedback level %q", level)
	}
	if !correct {
		delta = -delta
	}
	return TargetAdjustment{
		Before: target,
		After:  clamp(target+delta, 0, 100),
	}, nil
}
