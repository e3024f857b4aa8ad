package rag

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/course-rag/internal/chunker"
	"github.com/bull/course-rag/internal/course"
	"github.com/bull/course-rag/internal/ingest"
	"github.com/bull/course-rag/internal/session"
)

type fakeAnswerer struct {
	answer    string
	sources   []string
	err       error
	histories []string
}

func (f *fakeAnswerer) Generate(_ context.Context, _, history string) (string, []string, error) {
	f.histories = append(f.histories, history)
	if f.err != nil {
		return "", nil, f.err
	}
	return f.answer, f.sources, nil
}

type fakeCatalog struct {
	titles []string
	err    error
}

func (f *fakeCatalog) ListCourseTitles(_ context.Context) ([]string, error) {
	return f.titles, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAnswerQueryCreatesSession(t *testing.T) {
	gen := &fakeAnswerer{answer: "Paris"}
	sys := NewSystem(gen, session.NewStore(4), &fakeCatalog{}, nil, quietLogger())

	ans, err := sys.AnswerQuery(context.Background(), "capital of France?", "")
	require.NoError(t, err)
	assert.NotEmpty(t, ans.SessionID)
	assert.Equal(t, "Paris", ans.Answer)
	assert.Empty(t, ans.Sources)
}

func TestAnswerQueryReusesSessionHistory(t *testing.T) {
	gen := &fakeAnswerer{answer: "ok"}
	sys := NewSystem(gen, session.NewStore(4), &fakeCatalog{}, nil, quietLogger())

	first, err := sys.AnswerQuery(context.Background(), "what is MCP?", "")
	require.NoError(t, err)

	_, err = sys.AnswerQuery(context.Background(), "tell me more", first.SessionID)
	require.NoError(t, err)

	require.Len(t, gen.histories, 2)
	assert.Empty(t, gen.histories[0])
	assert.Contains(t, gen.histories[1], "User: what is MCP?")
	assert.Contains(t, gen.histories[1], "Assistant: ok")
}

func TestAnswerQueryPropagatesSources(t *testing.T) {
	gen := &fakeAnswerer{answer: "see lesson 2", sources: []string{"Go Basics - Lesson 2"}}
	sys := NewSystem(gen, session.NewStore(4), &fakeCatalog{}, nil, quietLogger())

	ans, err := sys.AnswerQuery(context.Background(), "where is X covered?", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Basics - Lesson 2"}, ans.Sources)
}

func TestAnswerQueryGeneratorFailureRecordsNothing(t *testing.T) {
	gen := &fakeAnswerer{err: errors.New("upstream down")}
	sessions := session.NewStore(4)
	sys := NewSystem(gen, sessions, &fakeCatalog{}, nil, quietLogger())

	id := sessions.NewSession()
	_, err := sys.AnswerQuery(context.Background(), "anything", id)
	require.Error(t, err)
	assert.Empty(t, sessions.History(id))
}

func TestAnswerQueryRejectsEmptyQuery(t *testing.T) {
	sys := NewSystem(&fakeAnswerer{}, session.NewStore(4), &fakeCatalog{}, nil, quietLogger())

	_, err := sys.AnswerQuery(context.Background(), "   ", "")
	require.Error(t, err)
}

func TestCourseStats(t *testing.T) {
	catalog := &fakeCatalog{titles: []string{"Advanced RAG", "Go Basics"}}
	sys := NewSystem(&fakeAnswerer{}, session.NewStore(4), catalog, nil, quietLogger())

	stats, err := sys.CourseStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CourseCount)
	assert.Equal(t, []string{"Advanced RAG", "Go Basics"}, stats.CourseTitles)
}

type memCatalog struct {
	courses []string
	chunks  int
}

func (m *memCatalog) HasCourse(_ context.Context, title string) (bool, error) {
	for _, c := range m.courses {
		if c == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCatalog) AddCourseMetadata(_ context.Context, c course.Course) error {
	m.courses = append(m.courses, c.Title)
	return nil
}

func (m *memCatalog) AddChunks(_ context.Context, chunks []course.Chunk) error {
	m.chunks += len(chunks)
	return nil
}

func TestIngestFolder(t *testing.T) {
	dir := t.TempDir()
	doc := "Course Title: Go Basics\n\nLesson 1: Hello\nSome lesson content here.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go_basics.txt"), []byte(doc), 0o644))

	catalog := &memCatalog{}
	pipeline := ingest.NewPipeline(chunker.New(0, 0), catalog, quietLogger())
	sys := NewSystem(&fakeAnswerer{}, session.NewStore(4), &fakeCatalog{}, pipeline, quietLogger())

	result, err := sys.IngestFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CoursesAdded)
	assert.Equal(t, []string{"Go Basics"}, catalog.courses)
	assert.Positive(t, catalog.chunks)
}

func TestIngestWithoutPipeline(t *testing.T) {
	sys := NewSystem(&fakeAnswerer{}, session.NewStore(4), &fakeCatalog{}, nil, quietLogger())

	_, err := sys.IngestFolder(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestCourseStatsError(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("qdrant unreachable")}
	sys := NewSystem(&fakeAnswerer{}, session.NewStore(4), catalog, nil, quietLogger())

	_, err := sys.CourseStats(context.Background())
	require.Error(t, err)
}
