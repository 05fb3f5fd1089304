// Package main provides implementation for the practice scheduler MCP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/delta-drills/mcp-practice/internal/bank"
	"github.com/delta-drills/mcp-practice/internal/engine"
	"github.com/delta-drills/mcp-practice/internal/judge"
	"github.com/delta-drills/mcp-practice/internal/store"
)

// ErrWrongQuestion is returned when a submission, feedback or override
// names a question other than the user's current one.
var ErrWrongQuestion = errors.New("question is not the current question")

// PracticeService orchestrates the scheduling engine, the question bank,
// the judge and the state store. Each request loads the user's state,
// applies the engine and persists; the in-memory copy stays authoritative
// for the session even when a save fails.
type PracticeService struct {
	Store  *store.Adapter
	Bank   *bank.Bank
	Judge  judge.Judge
	Logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*engine.UserPracticeState
}

// NewPracticeService creates a new PracticeService over the given backing
// stores (either may be nil), bank and judge.
func NewPracticeService(primary, cache store.Store, b *bank.Bank, j judge.Judge) *PracticeService {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	logger, err := logConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		fmt.Printf("Error initializing zap logger: %v. Falling back to Nop logger.\n", err)
		logger = zap.NewNop()
	}

	return &PracticeService{
		Store:    store.NewAdapter(primary, cache, logger),
		Bank:     b,
		Judge:    j,
		Logger:   logger,
		sessions: make(map[string]*engine.UserPracticeState),
	}
}

// Variable to allow mocking time.Now in tests
var timeNow = time.Now

// state returns the user's practice state: the session copy if one exists,
// otherwise the persisted document, otherwise fresh cold-start state.
func (s *PracticeService) state(ctx context.Context, userID string) *engine.UserPracticeState {
	if st, ok := s.sessions[userID]; ok {
		return st
	}
	st := s.Store.Load(ctx, userID)
	if st == nil {
		s.Logger.Debug("No persisted state, initializing fresh", zap.String("user_id", userID))
		st = engine.NewUserPracticeState(userID)
	}
	s.sessions[userID] = st
	return st
}

// persist writes the state through the store adapter. A failed save is
// logged and absorbed: the session copy remains authoritative.
func (s *PracticeService) persist(ctx context.Context, st *engine.UserPracticeState) {
	if !s.Store.Save(ctx, st.UserID, st) {
		s.Logger.Warn("Failed to persist practice state, session copy remains authoritative",
			zap.String("user_id", st.UserID))
	}
}

// eligibleSubtopics returns subtopics that still have an unanswered
// question, falling back to every populated subtopic once the user has
// completed the whole bank (the pool then repeats).
func (s *PracticeService) eligibleSubtopics(st *engine.UserPracticeState) []string {
	all := s.Bank.SubtopicIDs()
	var eligible []string
	for _, id := range all {
		questions := s.Bank.BySubtopic(id)
		if len(questions) == 0 {
			continue
		}
		sub, tracked := st.Subtopics[id]
		if !tracked {
			eligible = append(eligible, id)
			continue
		}
		for _, q := range questions {
			if !sub.Completed(q.ID) {
				eligible = append(eligible, id)
				break
			}
		}
	}
	if len(eligible) > 0 {
		return eligible
	}
	for _, id := range all {
		if len(s.Bank.BySubtopic(id)) > 0 {
			eligible = append(eligible, id)
		}
	}
	return eligible
}

// GetNextQuestion picks the next question for the user. Retrying without
// answering returns the same question rather than advancing the scheduler,
// so the call is safe to repeat.
func (s *PracticeService) GetNextQuestion(ctx context.Context, userID string) (NextQuestionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, userID)
	now := timeNow()

	if cur := st.Current; cur != nil && !cur.Answered {
		if q, ok := s.Bank.ByID(cur.QuestionID); ok {
			s.Logger.Debug("Returning in-flight question",
				zap.String("user_id", userID), zap.Int("question_id", cur.QuestionID))
			return NextQuestionResponse{
				Question:         newQuestionView(q),
				TargetDifficulty: cur.ServedDifficulty,
				ForcedReview:     st.Subtopic(cur.SubtopicID).Phase() == engine.PhaseForcedReview,
			}, nil
		}
		// Question vanished from the bank between sessions; reselect.
		st.Current = nil
	}

	eligible := s.eligibleSubtopics(st)
	for len(eligible) > 0 {
		subtopicID, err := engine.SelectSubtopic(st.Weights, st.Subtopics, eligible, now)
		if err != nil {
			return NextQuestionResponse{}, err
		}

		sub := st.Subtopic(subtopicID)
		requested := engine.RequestedDifficulty(*sub)
		q, err := engine.PickQuestion(s.Bank.Questions(), subtopicID, requested, sub.CompletedSet())
		if errors.Is(err, engine.ErrNoQuestionAvailable) {
			eligible = remove(eligible, subtopicID)
			continue
		}
		if err != nil {
			return NextQuestionResponse{}, err
		}

		st.Current = &engine.Attempt{
			ID:               uuid.New().String(),
			QuestionID:       q.ID,
			SubtopicID:       subtopicID,
			DifficultyScore:  q.DifficultyScore,
			ServedDifficulty: requested,
			ServedAt:         now,
		}
		s.persist(ctx, st)

		s.Logger.Debug("Question selected",
			zap.String("user_id", userID),
			zap.String("subtopic", subtopicID),
			zap.Int("question_id", q.ID),
			zap.Float64("requested_difficulty", requested),
			zap.Bool("forced_review", sub.Phase() == engine.PhaseForcedReview))

		return NextQuestionResponse{
			Question:         newQuestionView(q),
			TargetDifficulty: requested,
			ForcedReview:     sub.Phase() == engine.PhaseForcedReview,
		}, nil
	}
	return NextQuestionResponse{}, engine.ErrNoEligibleSubtopic
}

// SubmitAnswer judges the submission for the current question and applies
// the mastery and learning-rate updates. When the judge cannot be reached
// no state is mutated and the caller gets a retryable error.
func (s *PracticeService) SubmitAnswer(ctx context.Context, userID string, questionID int, submittedCode, actualOutput string) (SubmitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, userID)
	cur := st.Current
	if cur == nil {
		return SubmitResponse{}, engine.ErrNoPendingAttempt
	}
	if cur.QuestionID != questionID {
		return SubmitResponse{}, fmt.Errorf("%w: current is %d, got %d", ErrWrongQuestion, cur.QuestionID, questionID)
	}
	if cur.Answered {
		return SubmitResponse{}, fmt.Errorf("question %d has already been graded", questionID)
	}

	q, ok := s.Bank.ByID(questionID)
	if !ok {
		return SubmitResponse{}, fmt.Errorf("question %d not found in bank", questionID)
	}

	verdict, err := s.Judge.Evaluate(ctx, q, submittedCode, actualOutput)
	if err != nil {
		s.Logger.Warn("Judge failed, leaving state untouched",
			zap.String("user_id", userID), zap.Int("question_id", questionID), zap.Error(err))
		return SubmitResponse{}, err
	}

	now := timeNow()
	sub := st.Subtopic(cur.SubtopicID)
	s.applyVerdict(st, cur, sub, verdict.Correct, now)

	s.persist(ctx, st)
	s.Logger.Debug("Answer graded",
		zap.String("user_id", userID),
		zap.Int("question_id", questionID),
		zap.Bool("correct", verdict.Correct),
		zap.Float64("baseline", sub.Baseline),
		zap.Float64("p", sub.P),
		zap.Float64("learning_rate", sub.LearningRateHat))

	return SubmitResponse{
		Correct:        verdict.Correct,
		ActualOutput:   verdict.ActualOutput,
		ExpectedOutput: verdict.ExpectedOutput,
		Baseline:       sub.Baseline,
		P:              sub.P,
	}, nil
}

// applyVerdict grades the current attempt against a verdict, stashing the
// pre-update state on the attempt so a later override can re-derive it.
func (s *PracticeService) applyVerdict(st *engine.UserPracticeState, cur *engine.Attempt, sub *engine.SubtopicState, correct bool, now time.Time) {
	before := *sub
	before.CompletedQuestionIDs = nil

	updated := engine.RecordAttempt(*sub, correct, now)
	updated = engine.UpdateLearningRate(updated, before.Baseline, updated.Baseline)
	if !sub.Completed(cur.QuestionID) {
		updated.CompletedQuestionIDs = append(updated.CompletedQuestionIDs, cur.QuestionID)
	}
	*sub = updated

	cur.Answered = true
	cur.Correct = correct
	cur.AnsweredAt = &now
	cur.Before = &before
}

// SendFeedback applies the learner's feedback signal to the subtopic target
// difficulty and consumes the current attempt.
func (s *PracticeService) SendFeedback(ctx context.Context, userID string, questionID int, level engine.FeedbackLevel) (FeedbackResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, userID)
	cur := st.Current
	if cur == nil || !cur.Answered {
		return FeedbackResponse{}, engine.ErrNoPendingAttempt
	}
	if cur.QuestionID != questionID {
		return FeedbackResponse{}, fmt.Errorf("%w: current is %d, got %d", ErrWrongQuestion, cur.QuestionID, questionID)
	}

	sub := st.Subtopic(cur.SubtopicID)
	adj, err := engine.AdjustTarget(sub.TargetDifficulty, cur.Correct, level)
	if err != nil {
		return FeedbackResponse{}, err
	}
	sub.TargetDifficulty = adj.After
	st.Current = nil

	s.persist(ctx, st)
	s.Logger.Debug("Feedback applied",
		zap.String("user_id", userID),
		zap.String("subtopic", sub.SubtopicID),
		zap.String("level", string(level)),
		zap.Float64("target_before", adj.Before),
		zap.Float64("target_after", adj.After))

	return FeedbackResponse{
		Subtopic:               sub.SubtopicID,
		TargetDifficultyBefore: adj.Before,
		TargetDifficultyAfter:  adj.After,
		P:                      sub.P,
	}, nil
}

// OverrideCorrect manually marks the just-graded attempt correct,
// bypassing the judge. The attempt's pre-update snapshot is replayed with
// the corrected verdict so the statistics come out exactly as if the judge
// had said correct in the first place.
func (s *PracticeService) OverrideCorrect(ctx context.Context, userID string, questionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, userID)
	cur := st.Current
	if cur == nil || !cur.Answered {
		return engine.ErrNoPendingAttempt
	}
	if cur.QuestionID != questionID {
		return fmt.Errorf("%w: current is %d, got %d", ErrWrongQuestion, cur.QuestionID, questionID)
	}
	if cur.Correct {
		return nil
	}
	if cur.Before == nil {
		return fmt.Errorf("attempt %s has no pre-grade snapshot", cur.ID)
	}

	sub := st.Subtopic(cur.SubtopicID)
	completed := sub.CompletedQuestionIDs
	restored := *cur.Before
	answeredAt := cur.ServedAt
	if cur.AnsweredAt != nil {
		answeredAt = *cur.AnsweredAt
	}

	updated := engine.RecordAttempt(restored, true, answeredAt)
	updated = engine.UpdateLearningRate(updated, restored.Baseline, updated.Baseline)
	updated.CompletedQuestionIDs = completed
	*sub = updated
	cur.Correct = true

	s.persist(ctx, st)
	s.Logger.Debug("Verdict overridden to correct",
		zap.String("user_id", userID),
		zap.Int("question_id", questionID),
		zap.Float64("baseline", sub.Baseline),
		zap.Float64("p", sub.P))
	return nil
}

// ListSubtopics reports per-subtopic scheduling statistics for display.
func (s *PracticeService) ListSubtopics(ctx context.Context, userID string) []SubtopicRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, userID)
	all := s.Bank.SubtopicIDs()
	uniform := 0.0
	if len(all) > 0 {
		uniform = 1.0 / float64(len(all))
	}

	rows := make([]SubtopicRow, 0, len(all))
	for _, id := range all {
		sub := st.Subtopic(id)
		weight := uniform
		if w, ok := st.Weights[id]; ok && w >= 0 {
			weight = w
		}
		rows = append(rows, SubtopicRow{
			Subtopic:          id,
			Weight:            weight,
			LearningRate:      sub.LearningRateHat,
			QuestionsAnswered: sub.QuestionsAnswered,
			Baseline:          sub.Baseline,
			P:                 sub.P,
			TargetDifficulty:  sub.TargetDifficulty,
			NextDifficulty:    engine.RequestedDifficulty(*sub),
			ColdStart:         sub.QuestionsAnswered < engine.ColdStartMin,
			ForcedReview:      sub.Phase() == engine.PhaseForcedReview,
		})
	}
	return rows
}

// SetWeights replaces the user's subtopic weights. Weights are relative and
// need not sum to 1; negative values are rejected.
func (s *PracticeService) SetWeights(ctx context.Context, userID string, weights map[string]float64) error {
	for id, w := range weights {
		if w < 0 {
			return fmt.Errorf("weight for %q must be non-negative, got %v", id, w)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(ctx, userID)
	st.Weights = weights
	s.persist(ctx, st)
	s.Logger.Debug("Weights updated", zap.String("user_id", userID), zap.Int("count", len(weights)))
	return nil
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
