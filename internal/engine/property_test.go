package engine

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genAccuracy generates correct-rate estimates over the full unit interval.
func genAccuracy() gopter.Gen {
	return gen.Float64Range(0, 1)
}

func TestMultiplierProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("stays within [0.5, 2.5]", prop.ForAll(
		func(p float64) bool {
			m := Multiplier(p)
			return m >= 0.5 && m <= 2.5
		},
		genAccuracy(),
	))

	properties.Property("monotonically non-decreasing", prop.ForAll(
		func(a, b float64) bool {
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			return Multiplier(lo) <= Multiplier(hi)
		},
		genAccuracy(), genAccuracy(),
	))

	properties.TestingRun(t)
}

func TestRecordAttemptProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	genState := gopter.CombineGens(
		gen.IntRange(0, 50),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 1),
	).Map(func(vals []interface{}) SubtopicState {
		return SubtopicState{
			QuestionsAnswered: vals[0].(int),
			Baseline:          vals[1].(float64),
			P:                 vals[2].(float64),
		}
	})

	properties.Property("baseline and p stay in range", prop.ForAll(
		func(s SubtopicState, correct bool) bool {
			updated := RecordAttempt(s, correct, now)
			return updated.Baseline >= 0 && updated.Baseline <= 100 &&
				updated.P >= 0 && updated.P <= 1
		},
		genState, gen.Bool(),
	))

	properties.Property("answer count always advances", prop.ForAll(
		func(s SubtopicState, correct bool) bool {
			updated := RecordAttempt(s, correct, now)
			return updated.QuestionsAnswered == s.QuestionsAnswered+1
		},
		genState, gen.Bool(),
	))

	properties.Property("correct never lowers p below incorrect", prop.ForAll(
		func(s SubtopicState) bool {
			up := RecordAttempt(s, true, now)
			down := RecordAttempt(s, false, now)
			return up.P >= down.P && up.Baseline >= down.Baseline
		},
		genState,
	))

	properties.TestingRun(t)
}

func TestAdjustTargetProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	genLevel := gen.OneConstOf(FeedbackNotMuch, FeedbackSomewhat, FeedbackALot)

	properties.Property("adjusted target stays in [0, 100]", prop.ForAll(
		func(target float64, correct bool, level FeedbackLevel) bool {
			adj, err := AdjustTarget(target, correct, level)
			if err != nil {
				return false
			}
			return adj.After >= 0 && adj.After <= 100
		},
		gen.Float64Range(0, 100), gen.Bool(), genLevel,
	))

	properties.Property("correct raises, incorrect lowers", prop.ForAll(
		func(target float64, level FeedbackLevel) bool {
			up, err := AdjustTarget(target, true, level)
			if err != nil {
				return false
			}
			down, err := AdjustTarget(target, false, level)
			if err != nil {
				return false
			}
			return up.After >= target && down.After <= target
		},
		gen.Float64Range(0, 100), genLevel,
	))

	properties.TestingRun(t)
}

func TestRequestedDifficultyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	genSettled := gopter.CombineGens(
		gen.IntRange(ColdStartMin, 200),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 1),
	).Map(func(vals []interface{}) SubtopicState {
		return SubtopicState{
			QuestionsAnswered: vals[0].(int),
			TargetDifficulty:  vals[1].(float64),
			P:                 vals[2].(float64),
		}
	})

	properties.Property("requested difficulty stays in [0, 100]", prop.ForAll(
		func(s SubtopicState) bool {
			d := RequestedDifficulty(s)
			return d >= 0 && d <= 100
		},
		genSettled,
	))

	properties.Property("cold start walks the fixed ladder", prop.ForAll(
		func(n int) bool {
			s := SubtopicState{QuestionsAnswered: n, TargetDifficulty: 50, P: 0.5}
			return RequestedDifficulty(s) == ColdStartTargets[n]
		},
		gen.IntRange(0, ColdStartMin-1),
	))

	properties.TestingRun(t)
}
