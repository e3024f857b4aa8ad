// Package rag wires the retrieval pipeline together and exposes the two
// boundary operations callers consume: query answering and course stats.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bull/course-rag/internal/ingest"
	"github.com/bull/course-rag/internal/session"
)

// Answerer produces the final answer and source labels for one query.
// Implemented by generator.Generator.
type Answerer interface {
	Generate(ctx context.Context, query, history string) (string, []string, error)
}

// Catalog is the slice of the vector store the stats operation reads.
type Catalog interface {
	ListCourseTitles(ctx context.Context) ([]string, error)
}

// Answer is the result of one answered query. Sources is empty when the
// model answered directly without searching.
type Answer struct {
	Answer    string
	Sources   []string
	SessionID string
}

// Stats summarizes the indexed corpus.
type Stats struct {
	CourseCount  int
	CourseTitles []string
}

// System is the top-level RAG facade.
type System struct {
	generator Answerer
	sessions  *session.Store
	catalog   Catalog
	pipeline  *ingest.Pipeline
	logger    *slog.Logger
}

// NewSystem assembles the facade from its collaborators. pipeline may be
// nil for deployments that only serve queries over an existing index.
func NewSystem(generator Answerer, sessions *session.Store, catalog Catalog, pipeline *ingest.Pipeline, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		generator: generator,
		sessions:  sessions,
		catalog:   catalog,
		pipeline:  pipeline,
		logger:    logger,
	}
}

// AnswerQuery answers one user query with conversation continuity. An
// empty sessionID starts a new session; the returned Answer carries the
// identifier to use on the follow-up. The (query, answer) pair is recorded
// only on success.
func (s *System) AnswerQuery(ctx context.Context, query, sessionID string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query cannot be empty")
	}

	if sessionID == "" {
		sessionID = s.sessions.NewSession()
		s.logger.Debug("Created session", "session", sessionID)
	}

	history := s.sessions.FormatHistory(sessionID)
	answer, sources, err := s.generator.Generate(ctx, query, history)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.sessions.Append(sessionID, session.RoleUser, query)
	s.sessions.Append(sessionID, session.RoleAssistant, answer)

	s.logger.Info("Answered query", "session", sessionID, "sources", len(sources))
	return &Answer{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	}, nil
}

// Ingest runs the ingestion pipeline over the given document source.
func (s *System) Ingest(ctx context.Context, src ingest.Source) (*ingest.Result, error) {
	if s.pipeline == nil {
		return nil, errors.New("no ingestion pipeline configured")
	}
	return s.pipeline.Run(ctx, src)
}

// IngestFolder ingests every course document in a local folder.
func (s *System) IngestFolder(ctx context.Context, dir string) (*ingest.Result, error) {
	return s.Ingest(ctx, ingest.NewFolderSource(dir))
}

// CourseStats reports how many courses are indexed and their titles.
func (s *System) CourseStats(ctx context.Context) (*Stats, error) {
	titles, err := s.catalog.ListCourseTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list course titles: %w", err)
	}
	return &Stats{
		CourseCount:  len(titles),
		CourseTitles: titles,
	}, nil
}
