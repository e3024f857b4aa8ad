// Package mcp exposes the course chatbot over the Model Context Protocol.
package mcp

// AskInput defines the input parameters for the ask_course_question tool.
type AskInput struct {
	// Query is the user's question about the course materials.
	Query string `json:"query" jsonschema:"required,description=The question to answer from the indexed course materials"`
	// SessionID continues an existing conversation. Omit to start a new one.
	SessionID string `json:"session_id,omitempty" jsonschema:"description=Session identifier from a previous answer; omit to start a new conversation"`
}

// AskOutput contains the generated answer.
type AskOutput struct {
	// Answer is the model's response.
	Answer string `json:"answer"`
	// Sources lists the course/lesson labels the answer drew on. Empty when
	// the model answered without searching.
	Sources []string `json:"sources"`
	// SessionID identifies the conversation for follow-up questions.
	SessionID string `json:"session_id"`
}

// StatsInput defines the input for the get_course_stats tool.
// The tool takes no parameters.
type StatsInput struct {
	// No input parameters required
}

// StatsOutput summarizes the indexed course corpus.
type StatsOutput struct {
	// CourseCount is the number of indexed courses.
	CourseCount int `json:"course_count"`
	// CourseTitles lists the titles of all indexed courses.
	CourseTitles []string `json:"course_titles"`
}
