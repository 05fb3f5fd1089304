package engine

import (
	"sort"
	"time"
)

// coldStartPriorityRate substitutes for the learning-rate estimate of a
// subtopic still in cold start. Baselines are 0-100 so per-attempt deltas
// are bounded by [-100, 100]; 200 sits safely above any real rate and
// guarantees unexplored subtopics are probed before established ones.
const coldStartPriorityRate = 200.0

// SelectSubtopic picks the subtopic to pull the next question from.
//
// The staleness override is consulted first and short-circuits selection
// when it fires. Otherwise each eligible subtopic gets
// priority = normalized_weight * learning_rate_hat and the argmax wins,
// with ties broken by subtopic id ascending so identical inputs always
// produce the same choice. Raw weights may be percentages, fractions or
// anything non-negative; they are normalized over the eligible set.
func SelectSubtopic(weights map[string]float64, states map[string]*SubtopicState, eligible []string, now time.Time) (string, error) {
	if len(eligible) == 0 {
		return "", ErrNoEligibleSubtopic
	}

	if id, ok := StalenessOverride(states, eligible, now); ok {
		return id, nil
	}

	normalized := normalizeWeights(weights, eligible)

	type scored struct {
		id       string
		priority float64
	}
	ranked := make([]scored, 0, len(eligible))
	for _, id := range eligible {
		rate := coldStartPriorityRate
		if st, ok := states[id]; ok && st.QuestionsAnswered >= ColdStartMin {
			rate = st.LearningRateHat
		}
		ranked = append(ranked, scored{id: id, priority: normalized[id] * rate})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].priority != ranked[j].priority {
			return ranked[i].priority > ranked[j].priority
		}
		return ranked[i].id < ranked[j].id
	})
	return ranked[0].id, nil
}

// normalizeWeights maps raw weights onto the eligible set so they sum to 1.
// Subtopics absent from the raw map get a uniform share; if everything
// collapses to zero the split is uniform.
func normalizeWeights(weights map[string]float64, eligible []string) map[string]float64 {
	uniform := 1.0 / float64(len(eligible))

	raw := make(map[string]float64, len(eligible))
	total := 0.0
	for _, id := range eligible {
		w, ok := weights[id]
		if !ok || w < 0 {
			w = uniform
		}
		raw[id] = w
		total += w
	}

	normalized := make(map[string]float64, len(eligible))
	for _, id := range eligible {
		if total <= 0 {
			normalized[id] = uniform
		} else {
			normalized[id] = raw[id] / total
		}
	}
	return normalized
}
