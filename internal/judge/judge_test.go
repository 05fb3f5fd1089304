package judge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

func TestOutputJudgeExactMatch(t *testing.T) {
	q := engine.Question{ExpectedOutput: "hello"}

	v, err := OutputJudge{}.Evaluate(context.Background(), q, "print('hello')", "hello")
	require.NoError(t, err)
	assert.True(t, v.Correct)
	assert.Equal(t, "hello", v.ActualOutput)
	assert.Equal(t, "hello", v.ExpectedOutput)
}

func TestOutputJudgeTrimsWhitespace(t *testing.T) {
	q := engine.Question{ExpectedOutput: "42\n"}

	v, err := OutputJudge{}.Evaluate(context.Background(), q, "", "  42  ")
	require.NoError(t, err)
	assert.True(t, v.Correct)
}

func TestOutputJudgeMismatch(t *testing.T) {
	q := engine.Question{ExpectedOutput: "42"}

	v, err := OutputJudge{}.Evaluate(context.Background(), q, "", "43")
	require.NoError(t, err)
	assert.False(t, v.Correct)
}

func TestOutputJudgeEmptyExpectedNeverCorrect(t *testing.T) {
	q := engine.Question{ExpectedOutput: "   "}

	v, err := OutputJudge{}.Evaluate(context.Background(), q, "", "")
	require.NoError(t, err)
	assert.False(t, v.Correct, "a question without expected output cannot auto-grade correct")
}

func TestJudgeErrorUnwrap(t *testing.T) {
	err := &JudgeError{Reason: "endpoint unreachable", Wrapped: ErrUnavailable}
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "endpoint unreachable")
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"correct": true}`, `{"correct": true}`},
		{"surrounded by prose", `Sure! {"correct": false} Hope that helps.`, `{"correct": false}`},
		{"nested braces", `{"a": {"b": 1}}`, `{"a": {"b": 1}}`},
		{"brace inside string", `{"text": "a } b", "correct": true}`, `{"text": "a } b", "correct": true}`},
		{"escaped quote inside string", `{"text": "say \"hi\"", "correct": true}`, `{"text": "say \"hi\"", "correct": true}`},
		{"no object", "no json here", ""},
		{"unterminated", `{"correct": true`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.input))
		})
	}
}
