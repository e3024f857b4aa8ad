// Package course defines the domain model for ingested course material.
package course

import "fmt"

// Course represents one course document parsed from the corpus.
// The title is the course identity and must be unique across the corpus.
// Courses are created once at ingestion and never mutated afterwards.
type Course struct {
	Title      string   // Unique identifier: "MCP: Build Rich-Context AI Apps"
	Link       string   // Course URL, optional
	Instructor string   // Instructor name, optional
	Lessons    []Lesson // Ordered by lesson number
}

// Lesson is a numbered section of a course.
type Lesson struct {
	Number int    // Unique within the course
	Title  string
	Link   string // Lesson URL, optional
}

// Chunk is the unit of retrieval: a bounded span of lesson text tagged
// with its provenance. Chunks are immutable once created.
type Chunk struct {
	CourseTitle  string
	LessonNumber int // NoLesson when the document had no lesson markers
	Index        int // Sequential position within the course
	Content      string
}

// NoLesson marks chunks taken from a document without lesson markers.
const NoLesson = -1

// ContextualContent returns the chunk text with the provenance prefix
// prepended. This is the text that gets embedded; the raw Content is what
// search results show.
func (c Chunk) ContextualContent() string {
	if c.LessonNumber == NoLesson {
		return fmt.Sprintf("Course %s content: %s", c.CourseTitle, c.Content)
	}
	return fmt.Sprintf("Course %s Lesson %d content: %s", c.CourseTitle, c.LessonNumber, c.Content)
}

// SourceLabel returns the human-readable provenance label surfaced to
// callers alongside answers, e.g. "Intro - Lesson 1".
func (c Chunk) SourceLabel() string {
	if c.LessonNumber == NoLesson {
		return c.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", c.CourseTitle, c.LessonNumber)
}
