// Package ingest reads course documents from a source, parses their
// structured headers, and feeds chunks into the vector store.
package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bull/course-rag/internal/course"
)

// ErrMalformedHeader reports a document whose header lines could not be
// parsed. The ingestion pipeline skips such files and continues the batch.
var ErrMalformedHeader = errors.New("malformed course document header")

var lessonMarkerRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParsedDocument is a course plus the raw text of each lesson body,
// parallel to Course.Lessons.
type ParsedDocument struct {
	Course       course.Course
	LessonBodies []string
}

// ParseDocument parses the course document format:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<lesson content...>
//
// The title line is mandatory; link and instructor are optional. A document
// with no lesson markers keeps its whole body as a single unnumbered lesson.
func ParseDocument(text string) (*ParsedDocument, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	c := course.Course{}
	bodyStart := 0
	for i, line := range lines {
		if i >= 4 {
			break
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Course Title:"):
			c.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
			bodyStart = i + 1
		case strings.HasPrefix(trimmed, "Course Link:"):
			c.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
			bodyStart = i + 1
		case strings.HasPrefix(trimmed, "Course Instructor:"):
			c.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
			bodyStart = i + 1
		}
	}
	if c.Title == "" {
		return nil, fmt.Errorf("%w: missing 'Course Title:' line", ErrMalformedHeader)
	}

	doc := &ParsedDocument{Course: c}
	bodyLines := lines[bodyStart:]

	hasMarkers := false
	for _, line := range bodyLines {
		if lessonMarkerRe.MatchString(strings.TrimSpace(line)) {
			hasMarkers = true
			break
		}
	}
	if !hasMarkers {
		// No lesson structure: keep the whole body as a single unnumbered
		// lesson so the document still indexes.
		body := strings.TrimSpace(strings.Join(bodyLines, "\n"))
		if body == "" {
			return nil, fmt.Errorf("%w: no lesson content in %q", ErrMalformedHeader, c.Title)
		}
		doc.Course.Lessons = []course.Lesson{{Number: course.NoLesson}}
		doc.LessonBodies = []string{body}
		return doc, nil
	}

	var current *course.Lesson
	var body strings.Builder
	flush := func() {
		if current == nil {
			return
		}
		doc.Course.Lessons = append(doc.Course.Lessons, *current)
		doc.LessonBodies = append(doc.LessonBodies, strings.TrimSpace(body.String()))
		body.Reset()
	}

	for _, line := range bodyLines {
		trimmed := strings.TrimSpace(line)
		if m := lessonMarkerRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("%w: bad lesson number %q", ErrMalformedHeader, m[1])
			}
			current = &course.Lesson{Number: number, Title: strings.TrimSpace(m[2])}
			continue
		}
		if current == nil {
			continue // preamble before the first lesson marker
		}
		if strings.HasPrefix(trimmed, "Lesson Link:") && strings.TrimSpace(body.String()) == "" {
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	if len(doc.Course.Lessons) == 0 {
		return nil, fmt.Errorf("%w: no lesson content in %q", ErrMalformedHeader, c.Title)
	}
	return doc, nil
}
