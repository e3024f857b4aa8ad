package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/course-rag/internal/chunker"
	"github.com/bull/course-rag/internal/course"
)

// mapSource serves documents from a map.
type mapSource struct {
	docs map[string]string
}

func (s mapSource) List(_ context.Context) ([]string, error) {
	var names []string
	for name := range s.docs {
		names = append(names, name)
	}
	return names, nil
}

func (s mapSource) Fetch(_ context.Context, name string) (string, error) {
	return s.docs[name], nil
}

// memCatalog is an in-memory Catalog capturing what the pipeline stores.
type memCatalog struct {
	courses map[string]course.Course
	chunks  []course.Chunk
}

func newMemCatalog() *memCatalog {
	return &memCatalog{courses: make(map[string]course.Course)}
}

func (c *memCatalog) HasCourse(_ context.Context, title string) (bool, error) {
	_, ok := c.courses[title]
	return ok, nil
}

func (c *memCatalog) AddCourseMetadata(_ context.Context, crs course.Course) error {
	c.courses[crs.Title] = crs
	return nil
}

func (c *memCatalog) AddChunks(_ context.Context, chunks []course.Chunk) error {
	c.chunks = append(c.chunks, chunks...)
	return nil
}

const twoLessonDoc = `Course Title: Intro
Course Link: https://example.com/intro
Course Instructor: Sam

Lesson 1: Basics
The first lesson explains variables. It also covers types. Every example is short.

Lesson 2: Flow
The second lesson explains loops. It also covers conditionals.
`

func newPipeline(store Catalog) *Pipeline {
	return NewPipeline(chunker.New(800, 100), store, nil)
}

func TestRun_IngestsCoursesAndChunks(t *testing.T) {
	store := newMemCatalog()
	src := mapSource{docs: map[string]string{"intro.txt": twoLessonDoc}}

	result, err := newPipeline(store).Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CoursesAdded)
	assert.Equal(t, result.ChunksAdded, len(store.chunks))
	require.Contains(t, store.courses, "Intro")
	assert.Len(t, store.courses["Intro"].Lessons, 2)

	// No chunk spans two lessons and indexes are sequential.
	for i, chunk := range store.chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Contains(t, []int{1, 2}, chunk.LessonNumber)
		if chunk.LessonNumber == 1 {
			assert.NotContains(t, chunk.Content, "second lesson")
		} else {
			assert.NotContains(t, chunk.Content, "first lesson")
		}
	}
}

func TestRun_ReRunIsNoOp(t *testing.T) {
	store := newMemCatalog()
	src := mapSource{docs: map[string]string{"intro.txt": twoLessonDoc}}
	pipeline := newPipeline(store)

	first, err := pipeline.Run(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, 1, first.CoursesAdded)
	storedChunks := len(store.chunks)

	second, err := pipeline.Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 0, second.CoursesAdded)
	assert.Equal(t, 0, second.ChunksAdded)
	assert.Equal(t, 1, second.SkippedCourses)
	assert.Len(t, store.chunks, storedChunks, "re-ingestion must not grow storage")
}

func TestRun_CourseWithEmptyLessonsCountsAsAdded(t *testing.T) {
	store := newMemCatalog()
	src := mapSource{docs: map[string]string{
		"hollow.txt": "Course Title: Hollow\n\nLesson 1: A\nLesson 2: B\n",
	}}

	result, err := newPipeline(store).Run(context.Background(), src)
	require.NoError(t, err)

	// The catalog entry was written, so the result must say so even though
	// the lessons produced no chunks.
	require.Contains(t, store.courses, "Hollow")
	assert.Equal(t, 1, result.CoursesAdded)
	assert.Equal(t, 0, result.ChunksAdded)
	assert.Equal(t, 0, result.SkippedCourses)
	assert.Empty(t, result.FailedFiles)
}

func TestRun_MalformedFileSkippedBatchContinues(t *testing.T) {
	store := newMemCatalog()
	src := mapSource{docs: map[string]string{
		"bad.txt":   "no header at all, just text",
		"intro.txt": twoLessonDoc,
	}}

	result, err := newPipeline(store).Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CoursesAdded)
	require.Len(t, result.FailedFiles, 1)
	assert.Equal(t, "bad.txt", result.FailedFiles[0].Name)
	assert.Contains(t, result.FailedFiles[0].Reason, "malformed")
}

func TestRun_ChunksCarryContextPrefix(t *testing.T) {
	store := newMemCatalog()
	src := mapSource{docs: map[string]string{"intro.txt": twoLessonDoc}}

	_, err := newPipeline(store).Run(context.Background(), src)
	require.NoError(t, err)

	require.NotEmpty(t, store.chunks)
	first := store.chunks[0]
	assert.Equal(t, "Course Intro Lesson 1 content: "+first.Content, first.ContextualContent())
}

func TestFolderSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "course_a.txt", twoLessonDoc)
	writeFile(t, dir, "notes.md", "not a course doc")

	src := NewFolderSource(dir)
	names, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"course_a.txt"}, names)

	text, err := src.Fetch(context.Background(), "course_a.txt")
	require.NoError(t, err)
	assert.Equal(t, twoLessonDoc, text)
}
