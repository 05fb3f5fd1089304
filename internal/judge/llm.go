package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

// LLMJudge grades submissions by calling an OpenAI-compatible chat endpoint
// (Ollama, LM Studio, vLLM, etc.). Used when exact output comparison is not
// decisive, e.g. answers that print equivalent but differently formatted
// results.
type LLMJudge struct {
	url    string       // e.g. "http://localhost:1234"
	model  string       // e.g. "qwen3-8b"
	client *http.Client // reused across calls
}

// Compile-time check: *LLMJudge satisfies the Judge interface.
var _ Judge = (*LLMJudge)(nil)

// NewLLMJudge creates a judge that calls the given endpoint. The timeout
// bounds each verdict request; expired requests surface as ErrUnavailable.
func NewLLMJudge(url, model string, timeout time.Duration) *LLMJudge {
	return &LLMJudge{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

const maxAttempts = 2

// Evaluate asks the LLM for a correctness verdict. It retries once on parse
// failure (small models sometimes need a second try); transport failures
// unwrap to ErrUnavailable so callers can prompt a retry instead of
// guessing a verdict.
func (j *LLMJudge) Evaluate(ctx context.Context, question engine.Question, submittedCode, actualOutput string) (Verdict, error) {
	prompt := buildVerdictPrompt(question, submittedCode, actualOutput)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		raw, err := j.callLLM(ctx, prompt)
		if err != nil {
			return Verdict{}, &JudgeError{Reason: "endpoint unreachable", Wrapped: fmt.Errorf("%w: %v", ErrUnavailable, err)}
		}

		jsonStr := extractJSON(raw)
		if jsonStr == "" {
			lastErr = &JudgeError{Reason: "no JSON object found in LLM response"}
			continue
		}

		var verdict struct {
			Correct bool `json:"correct"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
			lastErr = &JudgeError{Reason: "invalid JSON from LLM", Wrapped: err}
			continue
		}

		return Verdict{
			Correct:        verdict.Correct,
			ActualOutput:   actualOutput,
			ExpectedOutput: question.ExpectedOutput,
		}, nil
	}

	return Verdict{}, &JudgeError{
		Reason:  fmt.Sprintf("failed after %d attempts", maxAttempts),
		Wrapped: lastErr,
	}
}

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// callLLM sends a single request to the endpoint and returns the raw text.
func (j *LLMJudge) callLLM(ctx context.Context, prompt string) (string, error) {
	reqBody := llmRequest{
		Model: j.model,
		Messages: []llmMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.url+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM returned status %d", resp.StatusCode)
	}

	var llmResp llmResponse
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	content := llmResp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("LLM returned empty content")
	}
	return content, nil
}

// buildVerdictPrompt keeps the task a binary classification so small models
// answer reliably, and puts the JSON schema last so it is the final thing
// the model sees.
func buildVerdictPrompt(question engine.Question, submittedCode, actualOutput string) string {
	return fmt.Sprintf(`/no_think
You are grading a coding exercise. Decide whether the user's solution is correct.

RULES:
- The solution is correct if it produces output equivalent to the expected output.
- Formatting differences (whitespace, float precision within rounding) do not matter.
- Different code that achieves the same result is still correct.

QUESTION:
%s

REFERENCE SOLUTION:
%s

EXPECTED OUTPUT:
%s

USER'S CODE:
%s

USER'S OUTPUT:
%s

Respond with ONLY this JSON — no explanation, no markdown:
{"correct": true}`,
		question.QuestionText, question.AnswerCode, question.ExpectedOutput, submittedCode, actualOutput)
}

// extractJSON finds the outermost JSON object in a string, handling nested
// braces and braces inside quoted strings.
func extractJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
