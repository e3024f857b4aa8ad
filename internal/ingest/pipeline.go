package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bull/course-rag/internal/chunker"
	"github.com/bull/course-rag/internal/course"
)

// Catalog is the slice of the vector store the pipeline writes to.
type Catalog interface {
	HasCourse(ctx context.Context, title string) (bool, error)
	AddCourseMetadata(ctx context.Context, c course.Course) error
	AddChunks(ctx context.Context, chunks []course.Chunk) error
}

// Result contains statistics about one ingestion run.
type Result struct {
	TotalFiles     int
	CoursesAdded   int
	ChunksAdded    int
	SkippedCourses int
	FailedFiles    []FailedFile
	Duration       time.Duration
}

// FailedFile records a document that could not be ingested. Failures are
// per-file and never abort the batch.
type FailedFile struct {
	Name   string
	Reason string
}

// Pipeline parses course documents, chunks each lesson, and feeds the
// vector store, skipping courses that are already indexed.
type Pipeline struct {
	chunker *chunker.Chunker
	store   Catalog
	logger  *slog.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(ch *chunker.Chunker, store Catalog, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		chunker: ch,
		store:   store,
		logger:  logger,
	}
}

// Run ingests every document the source lists. Re-running over an
// unchanged corpus adds nothing: already-indexed courses are skipped
// before any chunking or embedding happens.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()
	result := &Result{}

	names, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	result.TotalFiles = len(names)
	p.logger.Info("Starting ingestion", "files", len(names))

	for _, name := range names {
		added, chunks, err := p.processDocument(ctx, src, name, result)
		if err != nil {
			p.logger.Warn("Failed to ingest document", "file", name, "error", err)
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				Name:   name,
				Reason: err.Error(),
			})
			continue
		}
		if !added {
			continue
		}
		result.CoursesAdded++
		result.ChunksAdded += chunks
	}

	result.Duration = time.Since(start)
	p.logger.Info("Ingestion complete",
		"courses", result.CoursesAdded,
		"chunks", result.ChunksAdded,
		"skipped", result.SkippedCourses,
		"failed", len(result.FailedFiles),
		"duration", result.Duration,
	)

	return result, nil
}

// processDocument handles one file. added reports whether the course was
// written to the catalog; it is false only on the already-indexed skip
// path, so a course whose lessons yield zero chunks still counts as added.
func (p *Pipeline) processDocument(ctx context.Context, src Source, name string, result *Result) (added bool, chunkCount int, err error) {
	text, err := src.Fetch(ctx, name)
	if err != nil {
		return false, 0, fmt.Errorf("fetch: %w", err)
	}

	doc, err := ParseDocument(text)
	if err != nil {
		return false, 0, fmt.Errorf("parse: %w", err)
	}

	exists, err := p.store.HasCourse(ctx, doc.Course.Title)
	if err != nil {
		return false, 0, fmt.Errorf("check catalog: %w", err)
	}
	if exists {
		p.logger.Debug("Course already indexed, skipping", "course", doc.Course.Title, "file", name)
		result.SkippedCourses++
		return false, 0, nil
	}

	chunks := p.chunkCourse(doc)

	if err := p.store.AddCourseMetadata(ctx, doc.Course); err != nil {
		return false, 0, fmt.Errorf("store course metadata: %w", err)
	}
	if err := p.store.AddChunks(ctx, chunks); err != nil {
		return false, 0, fmt.Errorf("store chunks: %w", err)
	}

	p.logger.Info("Ingested course", "course", doc.Course.Title, "lessons", len(doc.Course.Lessons), "chunks", len(chunks))
	return true, len(chunks), nil
}

// chunkCourse chunks each lesson body separately so no chunk ever spans
// two lessons. The chunk index is sequential across the whole course.
func (p *Pipeline) chunkCourse(doc *ParsedDocument) []course.Chunk {
	var chunks []course.Chunk
	index := 0
	for i, lesson := range doc.Course.Lessons {
		for _, text := range p.chunker.Chunk(doc.LessonBodies[i]) {
			chunks = append(chunks, course.Chunk{
				CourseTitle:  doc.Course.Title,
				LessonNumber: lesson.Number,
				Index:        index,
				Content:      text,
			})
			index++
		}
	}
	return chunks
}
