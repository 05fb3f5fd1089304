package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/delta-drills/mcp-practice/internal/bank"
	"github.com/delta-drills/mcp-practice/internal/config"
	"github.com/delta-drills/mcp-practice/internal/judge"
	"github.com/delta-drills/mcp-practice/internal/store"
)

const practiceServerInfo = `
This is an adaptive practice scheduler. It decides which subtopic a learner
should practice next, at what difficulty, and updates its belief about their
mastery after every attempt. Follow this workflow per question:

1. Call get_next_question with the learner's user_id and present the question
   text. Do not reveal anything about the reference solution.
2. Collect the learner's code and/or its output and call submit_answer.
   Report whether it was correct, showing actual vs expected output.
3. If the learner believes a "incorrect" verdict is wrong and you agree after
   inspecting their output, call override_correct before sending feedback.
4. Ask how much they got out of the question (not much / somewhat / a lot)
   and call send_feedback — this steers future difficulty, so always send it
   before requesting the next question.
5. Use list_subtopics when the learner asks about their progress, and
   set_weights when they want to focus on specific subtopics.
`

func main() {
	cfg := config.Load()

	// Command-line flags override the environment.
	dbPath := flag.String("db", cfg.StateDBPath, "Path to sqlite practice state database")
	cacheDir := flag.String("cache-dir", cfg.CacheDir, "Directory for the local state document cache")
	questionCSVs := flag.String("questions", strings.Join(cfg.QuestionCSVs, ","), "Comma-separated question bank CSV files")
	flag.Parse()

	questionBank, err := bank.Load(strings.Split(*questionCSVs, ",")...)
	if err != nil {
		fmt.Printf("Error loading question bank: %v\n", err)
		os.Exit(1)
	}

	// The sqlite primary is best-effort: when it cannot be opened the file
	// cache carries the session alone.
	var primary store.Store
	if sqliteStore, err := store.NewSQLite(*dbPath); err != nil {
		log.Printf("Warning: primary state store unavailable, using cache only: %v", err)
	} else {
		primary = sqliteStore
	}
	cache, err := store.NewFileStore(*cacheDir)
	if err != nil {
		fmt.Printf("Error creating state cache: %v\n", err)
		os.Exit(1)
	}

	var verdictJudge judge.Judge = judge.OutputJudge{}
	if cfg.JudgeURL != "" {
		verdictJudge = judge.NewLLMJudge(cfg.JudgeURL, cfg.JudgeModel, cfg.JudgeTimeout)
	}

	practiceService := NewPracticeService(primary, cache, questionBank, verdictJudge)
	practiceService.Store.Timeout = cfg.StoreTimeout

	s := server.NewMCPServer(
		"Practice Scheduler MCP",
		"1.0.0",
		server.WithInstructions(practiceServerInfo),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	// Create context with the service for tool handlers
	ctx := context.WithValue(context.Background(), "service", practiceService)

	getNextQuestionTool := mcp.NewTool("get_next_question",
		mcp.WithDescription(
			"Get the next practice question for a learner. The scheduler picks the "+
				"subtopic (forced review of stale subtopics takes precedence, otherwise "+
				"weight x learning-rate priority) and targets the learner's current "+
				"difficulty. Safe to retry: an unanswered question is returned again.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The learner's stable identifier"),
		),
	)

	submitAnswerTool := mcp.NewTool("submit_answer",
		mcp.WithDescription(
			"Submit the learner's solution for the current question. The judge "+
				"compares the submission's output with the expected output and the "+
				"verdict updates the learner's mastery and learning-rate estimates. "+
				"If grading is temporarily unavailable, ask the learner to resubmit.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The learner's stable identifier"),
		),
		mcp.WithNumber("question_id",
			mcp.Required(),
			mcp.Description("The ID of the question being answered"),
		),
		mcp.WithString("code",
			mcp.Description("The learner's submitted code"),
		),
		mcp.WithString("output",
			mcp.Description("The output produced by running the learner's code"),
		),
	)

	sendFeedbackTool := mcp.NewTool("send_feedback",
		mcp.WithDescription(
			"Record how much the learner got out of the just-answered question: "+
				"not_much, somewhat, or a_lot. Correct answers step the subtopic's "+
				"target difficulty up by the chosen magnitude, incorrect ones step it "+
				"down. Send feedback before requesting the next question.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The learner's stable identifier"),
		),
		mcp.WithNumber("question_id",
			mcp.Required(),
			mcp.Description("The ID of the question the feedback is about"),
		),
		mcp.WithString("feedback",
			mcp.Required(),
			mcp.Description("Feedback level: not_much, somewhat, or a_lot"),
		),
	)

	overrideCorrectTool := mcp.NewTool("override_correct",
		mcp.WithDescription(
			"Manually mark the just-graded question correct, bypassing the judge. "+
				"Use when the learner's answer is right but was graded incorrect "+
				"(e.g. equivalent output formatted differently). Must be called "+
				"before send_feedback.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The learner's stable identifier"),
		),
		mcp.WithNumber("question_id",
			mcp.Required(),
			mcp.Description("The ID of the question to mark correct"),
		),
	)

	listSubtopicsTool := mcp.NewTool("list_subtopics",
		mcp.WithDescription(
			"List every subtopic with the learner's scheduling statistics: weight, "+
				"learning rate, mastery baseline, recent accuracy, target difficulty "+
				"and whether the subtopic is in cold start or forced review.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The learner's stable identifier"),
		),
	)

	setWeightsTool := mcp.NewTool("set_weights",
		mcp.WithDescription(
			"Set the learner's relative subtopic weights. Weights are non-negative "+
				"and need not sum to 1 — the scheduler normalizes them. An empty "+
				"object restores uniform weighting.",
		),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The learner's stable identifier"),
		),
		mcp.WithObject("weights",
			mcp.Required(),
			mcp.Description("Mapping from subtopic id to relative weight"),
		),
	)

	// Register all tools with their handlers
	s.AddTool(getNextQuestionTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetNextQuestion(ctx, request)
	})
	s.AddTool(submitAnswerTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSubmitAnswer(ctx, request)
	})
	s.AddTool(sendFeedbackTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSendFeedback(ctx, request)
	})
	s.AddTool(overrideCorrectTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleOverrideCorrect(ctx, request)
	})
	s.AddTool(listSubtopicsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListSubtopics(ctx, request)
	})
	s.AddTool(setWeightsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSetWeights(ctx, request)
	})

	defer practiceService.Store.Close()

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Error serving MCP server: %v", err)
	}
}
