// Package engine implements the adaptive practice scheduler: mastery
// estimation, difficulty control, learning-rate tracking, staleness review,
// subtopic selection and question picking. All functions are pure — state
// goes in, updated state comes out, and the clock is always a parameter —
// so the same library backs both the authoritative scheduler and any
// client-side preview without drift.
package engine

import "time"

// SchemaVersion is stamped into every persisted UserPracticeState document.
// Loaders accept older documents and fill missing fields with zero values.
const SchemaVersion = 2

// SubtopicState tracks adaptive state for one (user, subtopic) pair.
type SubtopicState struct {
	SubtopicID string `json:"subtopic_id"`
	// QuestionsAnswered counts graded attempts; monotonically increasing.
	QuestionsAnswered int `json:"questions_answered"`
	// Baseline is the smoothed 0-100 mastery estimate.
	Baseline float64 `json:"baseline"`
	// P is the smoothed recent correct-rate in [0,1].
	P float64 `json:"p"`
	// LearningRateHat is the EWMA of recent baseline deltas; may be negative.
	LearningRateHat float64 `json:"learning_rate_hat"`
	// TargetDifficulty is the 0-100 difficulty feedback has steered toward.
	TargetDifficulty float64 `json:"target_difficulty"`
	LastPracticedAt  time.Time `json:"last_practiced_at"`
	// PendingReviewCount is the number of forced-review questions remaining
	// from a staleness trigger; 0 when the subtopic is in normal scheduling.
	PendingReviewCount   int   `json:"pending_review_count"`
	CompletedQuestionIDs []int `json:"completed_question_ids,omitempty"`
}

// NewSubtopicState returns the cold-start state for a subtopic.
func NewSubtopicState(subtopicID string) *SubtopicState {
	return &SubtopicState{
		SubtopicID:       subtopicID,
		P:                0.5,
		TargetDifficulty: 50,
	}
}

// Completed reports whether the question has already been answered in this
// subtopic.
func (s *SubtopicState) Completed(questionID int) bool {
	for _, id := range s.CompletedQuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// CompletedSet returns the completed question ids as a lookup set.
func (s *SubtopicState) CompletedSet() map[int]bool {
	set := make(map[int]bool, len(s.CompletedQuestionIDs))
	for _, id := range s.CompletedQuestionIDs {
		set[id] = true
	}
	return set
}

// Attempt is the in-flight question snapshot: created when a question is
// served, graded on submission, and consumed by feedback. The Before
// snapshot holds the subtopic state as it was prior to grading so a manual
// correctness override can re-derive the post-attempt state.
type Attempt struct {
	ID               string     `json:"id"`
	QuestionID       int        `json:"question_id"`
	SubtopicID       string     `json:"subtopic_id"`
	DifficultyScore  int        `json:"difficulty_score"`
	ServedDifficulty float64    `json:"served_difficulty"`
	ServedAt         time.Time  `json:"served_at"`
	Answered         bool       `json:"answered"`
	Correct          bool       `json:"correct"`
	AnsweredAt       *time.Time `json:"answered_at,omitempty"`
	Before           *SubtopicState `json:"before,omitempty"`
}

// UserPracticeState is the full per-user scheduler document. It is owned by
// exactly one user, created on first access and persisted as a single JSON
// document (last-write-wins at document granularity).
type UserPracticeState struct {
	SchemaVersion int                       `json:"schema_version"`
	UserID        string                    `json:"user_id"`
	Subtopics     map[string]*SubtopicState `json:"subtopic_states"`
	// Current is the question the user is working on, nil between questions.
	Current *Attempt `json:"current_question,omitempty"`
	// Weights are learner-assigned relative subtopic weights. They need not
	// sum to 1; the selector normalizes. Empty means uniform.
	Weights map[string]float64 `json:"custom_weights,omitempty"`
}

// NewUserPracticeState returns a fresh document for a user with no history.
func NewUserPracticeState(userID string) *UserPracticeState {
	return &UserPracticeState{
		SchemaVersion: SchemaVersion,
		UserID:        userID,
		Subtopics:     make(map[string]*SubtopicState),
	}
}

// Subtopic returns the state for a subtopic, creating cold-start state on
// first access.
func (u *UserPracticeState) Subtopic(subtopicID string) *SubtopicState {
	if u.Subtopics == nil {
		u.Subtopics = make(map[string]*SubtopicState)
	}
	st, ok := u.Subtopics[subtopicID]
	if !ok {
		st = NewSubtopicState(subtopicID)
		u.Subtopics[subtopicID] = st
	}
	return st
}

// Question is one entry in the read-only question bank. The scheduler never
// mutates questions; AnswerCode and ExpectedOutput are opaque to it and only
// relayed to the judge.
type Question struct {
	ID              int    `json:"id"`
	Topic           string `json:"topic"`
	SubtopicID      string `json:"subtopic_id"`
	QuestionText    string `json:"question_text"`
	AnswerCode      string `json:"answer_code"`
	DifficultyScore int    `json:"difficulty_score"`
	DifficultyLabel string `json:"difficulty_label"`
	ExpectedOutput  string `json:"expected_output"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
