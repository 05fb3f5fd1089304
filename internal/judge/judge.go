// Package judge defines the correctness-judge boundary. The scheduler only
// consumes a boolean-equivalent verdict; how the verdict is produced (exact
// output comparison, an LLM, a human) is a collaborator concern.
package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

// ErrUnavailable marks verdicts that could not be produced because the
// judge could not be reached. Callers surface these as "try again" — the
// scheduler never guesses a verdict.
var ErrUnavailable = errors.New("judge unavailable")

// Verdict is the judge's output for one submission.
type Verdict struct {
	Correct        bool   `json:"correct"`
	ActualOutput   string `json:"actual_output"`
	ExpectedOutput string `json:"expected_output"`
}

// Judge evaluates a submission against a question's reference solution and
// expected output.
type Judge interface {
	Evaluate(ctx context.Context, question engine.Question, submittedCode, actualOutput string) (Verdict, error)
}

// JudgeError distinguishes "the judge returned garbage" from "the judge was
// unreachable" (which unwraps to ErrUnavailable).
type JudgeError struct {
	Reason  string
	Wrapped error
}

func (e *JudgeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("judging failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("judging failed: %s", e.Reason)
}

func (e *JudgeError) Unwrap() error {
	return e.Wrapped
}

// OutputJudge grades by exact comparison of the submission's output with
// the question's expected output, whitespace-trimmed. It is the primary
// judging path and never becomes unavailable.
type OutputJudge struct{}

// Compile-time check: OutputJudge satisfies the Judge interface.
var _ Judge = OutputJudge{}

// Evaluate compares actual and expected output.
func (OutputJudge) Evaluate(_ context.Context, question engine.Question, _ string, actualOutput string) (Verdict, error) {
	expected := strings.TrimSpace(question.ExpectedOutput)
	actual := strings.TrimSpace(actualOutput)
	return Verdict{
		Correct:        expected != "" && expected == actual,
		ActualOutput:   actual,
		ExpectedOutput: expected,
	}, nil
}
