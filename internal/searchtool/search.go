package searchtool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/bull/course-rag/internal/vectorstore"
)

// ToolName is the single capability registered at this scope.
const ToolName = "search_course_content"

// ContentStore is the slice of the vector store the search tool needs.
type ContentStore interface {
	ResolveCourseName(ctx context.Context, name string) (string, error)
	SearchContent(ctx context.Context, query string, limit int, courseFilter string, lessonFilter *int) ([]vectorstore.ScoredChunk, error)
}

// CourseSearch searches course content with optional course and lesson
// filters. A fuzzy course name is resolved against the catalog first;
// resolution failure is reported to the model as a tool outcome, never as
// an unfiltered search (precision over recall).
type CourseSearch struct {
	store      ContentStore
	maxResults int
}

// NewCourseSearch creates the search tool. maxResults caps how many chunks
// one invocation returns.
func NewCourseSearch(store ContentStore, maxResults int) *CourseSearch {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &CourseSearch{
		store:      store,
		maxResults: maxResults,
	}
}

func (t *CourseSearch) Name() string { return ToolName }

// Definition declares the tool schema the model sees.
func (t *CourseSearch) Definition() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        ToolName,
			Description: openai.String("Search course materials with smart course name matching and lesson filtering"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "What to search for in the course content",
					},
					"course_name": map[string]any{
						"type":        "string",
						"description": "Course title (partial matches work, e.g. 'MCP', 'Intro')",
					},
					"lesson_number": map[string]any{
						"type":        "integer",
						"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

type searchArgs struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

// Execute runs one search round. Zero matches and failed course resolution
// are valid tool outcomes, not errors; only unexpected store failures
// return an error.
func (t *CourseSearch) Execute(ctx context.Context, args json.RawMessage) (*Outcome, error) {
	var in searchArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid search arguments: %w", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return &Outcome{Text: "A search query is required."}, nil
	}

	courseFilter := ""
	if in.CourseName != "" {
		resolved, err := t.store.ResolveCourseName(ctx, in.CourseName)
		if errors.Is(err, vectorstore.ErrCourseNotFound) {
			return &Outcome{Text: fmt.Sprintf("No course found matching '%s'", in.CourseName)}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolve course name: %w", err)
		}
		courseFilter = resolved
	}

	results, err := t.store.SearchContent(ctx, in.Query, t.maxResults, courseFilter, in.LessonNumber)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	if len(results) == 0 {
		return &Outcome{Text: noResultsMessage(courseFilter, in.LessonNumber)}, nil
	}

	var blocks []string
	var sources []string
	seen := make(map[string]bool)
	for _, r := range results {
		label := r.Chunk.SourceLabel()
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, r.Chunk.Content))
		if !seen[label] {
			seen[label] = true
			sources = append(sources, label)
		}
	}

	return &Outcome{
		Text:    strings.Join(blocks, "\n\n"),
		Sources: sources,
	}, nil
}

// noResultsMessage annotates the empty result with the active filters so
// the model can relay the scope that came up empty.
func noResultsMessage(courseFilter string, lesson *int) string {
	msg := "No relevant content found"
	if courseFilter != "" {
		msg += fmt.Sprintf(" in course '%s'", courseFilter)
	}
	if lesson != nil {
		msg += fmt.Sprintf(" in lesson %d", *lesson)
	}
	return msg + "."
}
