package engine

// Beta is the smoothing constant for the learning-rate EWMA.
const Beta = 0.3

// UpdateLearningRate folds the latest baseline movement into the subtopic's
// learning-rate estimate. The estimate stays signed: a falling baseline
// (forgetting) produces a negative rate, a rising one a positive rate, and
// the selector consumes the signed value directly.
func UpdateLearningRate(s SubtopicState, baselineBefore, baselineAfter float64) SubtopicState {
	delta := baselineAfter - baselineBefore
	s.LearningRateHat = Beta*delta + (1-Beta)*s.LearningRateHat
	return s
}
