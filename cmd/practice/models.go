// Package main provides implementation for the practice scheduler MCP service.
package main

import "github.com/delta-drills/mcp-practice/internal/engine"

// QuestionView is the question as shown to the learner: the reference
// solution and expected output stay server-side until grading.
type QuestionView struct {
	ID              int    `json:"id"`
	Topic           string `json:"topic"`
	Subtopic        string `json:"subtopic"`
	QuestionText    string `json:"question_text"`
	DifficultyScore int    `json:"difficulty_score"`
	DifficultyLabel string `json:"difficulty_label"`
}

func newQuestionView(q engine.Question) QuestionView {
	return QuestionView{
		ID:              q.ID,
		Topic:           q.Topic,
		Subtopic:        q.SubtopicID,
		QuestionText:    q.QuestionText,
		DifficultyScore: q.DifficultyScore,
		DifficultyLabel: q.DifficultyLabel,
	}
}

// NextQuestionResponse is the response structure for get_next_question.
type NextQuestionResponse struct {
	Question         QuestionView `json:"question"`
	TargetDifficulty float64      `json:"target_difficulty"`
	ForcedReview     bool         `json:"forced_review,omitempty"`
}

// SubmitResponse is the response structure for submit_answer.
type SubmitResponse struct {
	Correct        bool    `json:"correct"`
	ActualOutput   string  `json:"actual_output"`
	ExpectedOutput string  `json:"expected_output"`
	Baseline       float64 `json:"baseline"`
	P              float64 `json:"p"`
}

// FeedbackResponse is the response structure for send_feedback.
type FeedbackResponse struct {
	Subtopic               string  `json:"subtopic"`
	TargetDifficultyBefore float64 `json:"target_difficulty_before"`
	TargetDifficultyAfter  float64 `json:"target_difficulty_after"`
	P                      float64 `json:"p_after"`
}

// OverrideResponse is the response structure for override_correct.
type OverrideResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubtopicRow is one entry in the list_subtopics report.
type SubtopicRow struct {
	Subtopic          string  `json:"subtopic"`
	Weight            float64 `json:"weight"`
	LearningRate      float64 `json:"learning_rate"`
	QuestionsAnswered int     `json:"questions_answered"`
	Baseline          float64 `json:"baseline"`
	P                 float64 `json:"p"`
	TargetDifficulty  float64 `json:"target_difficulty"`
	NextDifficulty    float64 `json:"next_difficulty"`
	ColdStart         bool    `json:"cold_start"`
	ForcedReview      bool    `json:"forced_review"`
}

// ListSubtopicsResponse is the response structure for list_subtopics.
type ListSubtopicsResponse struct {
	Subtopics []SubtopicRow `json:"subtopics"`
}

// SetWeightsResponse is the response structure for set_weights.
type SetWeightsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
