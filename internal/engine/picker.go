package engine

import (
	"math"
	"sort"
)

// PickQuestion selects the question in the subtopic whose difficulty score
// is numerically closest to the requested difficulty. Already-completed
// questions are excluded as long as alternatives remain; exclusion never
// empties the pool. Distance ties go to the lowest question id so picking
// is reproducible.
func PickQuestion(questions []Question, subtopicID string, targetDifficulty float64, excluded map[int]bool) (Question, error) {
	var pool []Question
	for _, q := range questions {
		if q.SubtopicID == subtopicID {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return Question{}, ErrNoQuestionAvailable
	}

	var fresh []Question
	for _, q := range pool {
		if !excluded[q.ID] {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) > 0 {
		pool = fresh
	}

	sort.Slice(pool, func(i, j int) bool {
		di := math.Abs(float64(pool[i].DifficultyScore) - targetDifficulty)
		dj := math.Abs(float64(pool[j].DifficultyScore) - targetDifficulty)
		if di != dj {
			return di < dj
		}
		return pool[i].ID < pool[j].ID
	})
	return pool[0], nil
}

// EligibleSubtopics returns the sorted subtopic ids that still have at
// least one question in the bank, the precondition the selector requires.
func EligibleSubtopics(questions []Question) []string {
	seen := make(map[string]bool)
	for _, q := range questions {
		if q.SubtopicID != "" {
			seen[q.SubtopicID] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
