// Package main provides implementation for the practice scheduler MCP service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/delta-drills/mcp-practice/internal/engine"
	"github.com/delta-drills/mcp-practice/internal/judge"
)

// serviceFrom extracts the PracticeService placed in the context by main.
func serviceFrom(ctx context.Context) (*PracticeService, bool) {
	s, ok := ctx.Value("service").(*PracticeService)
	return s, ok && s != nil
}

// requireString extracts a required string argument from a tool request.
func requireString(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok && v != ""
}

// requireInt extracts a required numeric argument. JSON numbers arrive as
// float64.
func requireInt(request mcp.CallToolRequest, name string) (int, bool) {
	v, ok := request.Params.Arguments[name].(float64)
	return int(v), ok
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func errorResult(format string, args ...interface{}) (*mcp.CallToolResult, error) {
	msg, _ := json.Marshal(fmt.Sprintf(format, args...))
	return mcp.NewToolResultText(fmt.Sprintf(`{"error": %s}`, msg)), nil
}

// handleGetNextQuestion handles the get_next_question tool request by
// running the scheduler: staleness override, subtopic selection, then
// difficulty-targeted question picking. Retrying before answering returns
// the same question.
func handleGetNextQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	userID, ok := requireString(request, "user_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: user_id"), nil
	}

	response, err := s.GetNextQuestion(ctx, userID)
	if errors.Is(err, engine.ErrNoEligibleSubtopic) {
		return errorResult("No questions available to practice right now")
	}
	if err != nil {
		return errorResult("Error getting next question: %v", err)
	}
	return jsonResult(response)
}

// handleSubmitAnswer handles the submit_answer tool request by judging the
// submission and folding the verdict into the user's mastery statistics.
func handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	userID, ok := requireString(request, "user_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: user_id"), nil
	}
	questionID, ok := requireInt(request, "question_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: question_id"), nil
	}
	// Both optional: a submission may be code, raw output, or both.
	code, _ := request.Params.Arguments["code"].(string)
	output, _ := request.Params.Arguments["output"].(string)

	response, err := s.SubmitAnswer(ctx, userID, questionID, code, output)
	if errors.Is(err, judge.ErrUnavailable) {
		return errorResult("The answer could not be graded right now — please try submitting again")
	}
	if err != nil {
		return errorResult("Error submitting answer: %v", err)
	}
	return jsonResult(response)
}

// handleSendFeedback handles the send_feedback tool request by adjusting
// the subtopic's target difficulty from the learner's signal.
func handleSendFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	userID, ok := requireString(request, "user_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: user_id"), nil
	}
	questionID, ok := requireInt(request, "question_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: question_id"), nil
	}
	rawLevel, ok := requireString(request, "feedback")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: feedback"), nil
	}
	level, err := engine.ParseFeedbackLevel(rawLevel)
	if err != nil {
		return errorResult("Invalid feedback level %q: use not_much, somewhat or a_lot", rawLevel)
	}

	response, err := s.SendFeedback(ctx, userID, questionID, level)
	if err != nil {
		return errorResult("Error applying feedback: %v", err)
	}
	return jsonResult(response)
}

// handleOverrideCorrect handles the override_correct tool request, the
// manual correction path that bypasses the judge.
func handleOverrideCorrect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	userID, ok := requireString(request, "user_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: user_id"), nil
	}
	questionID, ok := requireInt(request, "question_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: question_id"), nil
	}

	if err := s.OverrideCorrect(ctx, userID, questionID); err != nil {
		return errorResult("Error overriding verdict: %v", err)
	}
	return jsonResult(OverrideResponse{
		Success: true,
		Message: fmt.Sprintf("Question %d marked correct", questionID),
	})
}

// handleListSubtopics handles the list_subtopics tool request.
func handleListSubtopics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	userID, ok := requireString(request, "user_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: user_id"), nil
	}

	return jsonResult(ListSubtopicsResponse{Subtopics: s.ListSubtopics(ctx, userID)})
}

// handleSetWeights handles the set_weights tool request. Weights arrive as
// a JSON object mapping subtopic ids to non-negative relative weights.
func handleSetWeights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return mcp.NewToolResultText("Error: Service not available"), nil
	}
	userID, ok := requireString(request, "user_id")
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: user_id"), nil
	}

	raw, ok := request.Params.Arguments["weights"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultText("Missing required parameter: weights"), nil
	}
	weights := make(map[string]float64, len(raw))
	for id, v := range raw {
		w, ok := v.(float64)
		if !ok {
			return errorResult("Weight for %q must be a number", id)
		}
		weights[id] = w
	}

	if err := s.SetWeights(ctx, userID, weights); err != nil {
		return errorResult("Error setting weights: %v", err)
	}
	return jsonResult(SetWeightsResponse{
		Success: true,
		Message: fmt.Sprintf("Stored %d subtopic weights", len(weights)),
	})
}
