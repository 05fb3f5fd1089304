package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleBank() []Question {
	return []Question{
		{ID: 1, SubtopicID: "Strings: Slicing", DifficultyScore: 40},
		{ID: 2, SubtopicID: "Strings: Slicing", DifficultyScore: 58},
		{ID: 3, SubtopicID: "Strings: Slicing", DifficultyScore: 72},
		{ID: 4, SubtopicID: "Loops: Basics", DifficultyScore: 30},
	}
}

func TestPickQuestionClosestDifficulty(t *testing.T) {
	// Scores {40, 58, 72} against a request of 60: 58 is closest.
	q, err := PickQuestion(sampleBank(), "Strings: Slicing", 60, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, q.ID)
	assert.Equal(t, 58, q.DifficultyScore)
}

func TestPickQuestionDistanceTieLowestID(t *testing.T) {
	questions := []Question{
		{ID: 7, SubtopicID: "S", DifficultyScore: 55},
		{ID: 3, SubtopicID: "S", DifficultyScore: 45},
	}
	q, err := PickQuestion(questions, "S", 50, nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, q.ID)
}

func TestPickQuestionSkipsCompleted(t *testing.T) {
	q, err := PickQuestion(sampleBank(), "Strings: Slicing", 60, map[int]bool{2: true})
	assert.NoError(t, err)
	assert.Equal(t, 3, q.ID, "next-closest question once 58 is completed")
}

func TestPickQuestionExclusionNeverEmptiesPool(t *testing.T) {
	excluded := map[int]bool{1: true, 2: true, 3: true}
	q, err := PickQuestion(sampleBank(), "Strings: Slicing", 60, excluded)
	assert.NoError(t, err)
	assert.Equal(t, 2, q.ID, "with everything completed the full pool is reused")
}

func TestPickQuestionUnknownSubtopic(t *testing.T) {
	_, err := PickQuestion(sampleBank(), "Sets: Ops", 50, nil)
	assert.ErrorIs(t, err, ErrNoQuestionAvailable)
}

func TestPickQuestionEmptyBank(t *testing.T) {
	_, err := PickQuestion(nil, "Strings: Slicing", 50, nil)
	assert.ErrorIs(t, err, ErrNoQuestionAvailable)
}

func TestEligibleSubtopicsSortedUnique(t *testing.T) {
	got := EligibleSubtopics(sampleBank())
	assert.Equal(t, []string{"Loops: Basics", "Strings: Slicing"}, got)
}

func TestEligibleSubtopicsIgnoresBlankIDs(t *testing.T) {
	questions := []Question{{ID: 1, SubtopicID: ""}, {ID: 2, SubtopicID: "A"}}
	assert.Equal(t, []string{"A"}, EligibleSubtopics(questions))
}
