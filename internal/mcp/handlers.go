package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/course-rag/internal/rag"
)

// makeAskHandler creates the ask_course_question tool handler.
// Answer flow:
// 1. Resolve or create the conversation session
// 2. Generate an answer, letting the model call the search tool if needed
// 3. Record the exchange in session history
// 4. Return answer, source labels, and session ID for follow-ups
func makeAskHandler(sys *rag.System) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		answer, err := sys.AnswerQuery(ctx, input.Query, input.SessionID)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("failed to answer query: %w", err)
		}

		sources := answer.Sources
		if sources == nil {
			sources = []string{} // Ensure non-nil for JSON marshaling
		}

		return nil, AskOutput{
			Answer:    answer.Answer,
			Sources:   sources,
			SessionID: answer.SessionID,
		}, nil
	}
}

// makeStatsHandler creates the get_course_stats tool handler.
// Returns the number of indexed courses and their titles.
func makeStatsHandler(sys *rag.System) func(
	context.Context, *mcp.CallToolRequest, StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (
		*mcp.CallToolResult, StatsOutput, error,
	) {
		stats, err := sys.CourseStats(ctx)
		if err != nil {
			return nil, StatsOutput{}, fmt.Errorf("failed to collect course stats: %w", err)
		}

		titles := stats.CourseTitles
		if titles == nil {
			titles = []string{}
		}

		return nil, StatsOutput{
			CourseCount:  stats.CourseCount,
			CourseTitles: titles,
		}, nil
	}
}
