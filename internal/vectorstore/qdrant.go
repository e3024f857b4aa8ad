// Package vectorstore adapts Qdrant into the two logical collections the
// RAG core needs: a course catalog for fuzzy title resolution and a content
// collection for passage retrieval.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/bull/course-rag/internal/course"
)

// Embedder computes vectors for text. Implemented by embedding.Embedder;
// tests substitute fakes.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store wraps the Qdrant client with connection management and the
// catalog/content collection split. Reads never mutate state; upserts use
// deterministic point IDs so re-running ingestion is a storage no-op.
type Store struct {
	client      *qdrant.Client
	embedder    Embedder
	matchFloor  float32
	host        string
	port        int
	scrollBatch uint32
}

// NewStore connects to Qdrant and verifies health with retry, failing fast
// if the server stays unreachable. matchFloor is the minimum similarity a
// catalog match must clear during course-name resolution.
func NewStore(host string, port int, embedder Embedder, matchFloor float32) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &Store{
		client:      client,
		embedder:    embedder,
		matchFloor:  matchFloor,
		host:        host,
		port:        port,
		scrollBatch: 100,
	}

	if err := store.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return store, nil
}

func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, exponentialBackoff)
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollections creates the catalog and content collections and their
// payload indexes if missing. Idempotent.
func (s *Store) EnsureCollections(ctx context.Context) error {
	existing, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	for _, name := range []string{CatalogCollection, ContentCollection} {
		if present[name] {
			continue
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
				vectorName: {
					Size:     VectorDimension,
					Distance: qdrant.Distance_Cosine,
				},
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	return s.createPayloadIndexes(ctx)
}

// createPayloadIndexes indexes the filterable fields. Without these,
// course/lesson filtering degrades to a full scan.
func (s *Store) createPayloadIndexes(ctx context.Context) error {
	indexes := []struct {
		collection string
		field      string
		fieldType  qdrant.FieldType
	}{
		{CatalogCollection, "title", qdrant.FieldType_FieldTypeKeyword},
		{ContentCollection, "course_title", qdrant.FieldType_FieldTypeKeyword},
		{ContentCollection, "lesson_number", qdrant.FieldType_FieldTypeInteger},
	}

	for _, idx := range indexes {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: idx.collection,
			FieldName:      idx.field,
			FieldType:      idx.fieldType.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for %s.%s: %w", idx.collection, idx.field, err)
		}
	}
	return nil
}

// ClearAll drops and recreates both collections. Used by full re-ingestion.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, name := range []string{CatalogCollection, ContentCollection} {
		if err := s.client.DeleteCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", name, err)
		}
	}
	return s.EnsureCollections(ctx)
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
		})
		return err
	}, exponentialBackoff)
}

// pointID derives a stable UUID from a logical key so upserts overwrite
// instead of duplicating.
func pointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("course-rag:"+key)).String()
}

// AddCourseMetadata upserts one catalog point per course. The title is the
// embedded text, which is what makes fuzzy name resolution a similarity
// query.
func (s *Store) AddCourseMetadata(ctx context.Context, c course.Course) error {
	vectors, err := s.embedder.Embed(ctx, []string{c.Title})
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}

	type lessonMeta struct {
		Number int    `json:"lesson_number"`
		Title  string `json:"lesson_title"`
		Link   string `json:"lesson_link,omitempty"`
	}
	lessons := make([]lessonMeta, len(c.Lessons))
	for i, l := range c.Lessons {
		lessons[i] = lessonMeta{Number: l.Number, Title: l.Title, Link: l.Link}
	}
	lessonsJSON, err := json.Marshal(lessons)
	if err != nil {
		return fmt.Errorf("marshal lesson metadata: %w", err)
	}

	point := &qdrant.PointStruct{
		Id: qdrant.NewIDUUID(pointID(c.Title)),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
			vectorName: qdrant.NewVector(vectors[0]...),
		}),
		Payload: qdrant.NewValueMap(map[string]any{
			"title":        c.Title,
			"course_link":  c.Link,
			"instructor":   c.Instructor,
			"lesson_count": len(c.Lessons),
			"lessons_json": string(lessonsJSON),
		}),
	}

	return s.upsertWithRetry(ctx, CatalogCollection, []*qdrant.PointStruct{point})
}

// AddChunks embeds each chunk's contextual text and upserts the batch into
// the content collection, 100 points at a time. Point identity is
// (course, lesson, index), so re-ingesting an unchanged course rewrites
// the same points.
func (s *Store) AddChunks(ctx context.Context, chunks []course.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.ContextualContent()
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	for i, v := range vectors {
		if len(v) != VectorDimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(v), VectorDimension)
		}
	}

	batchSize := 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		points := make([]*qdrant.PointStruct, 0, end-i)

		for j := i; j < end; j++ {
			chunk := chunks[j]
			key := fmt.Sprintf("%s|%d|%d", chunk.CourseTitle, chunk.LessonNumber, chunk.Index)
			points = append(points, &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(pointID(key)),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					vectorName: qdrant.NewVector(vectors[j]...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"course_title":  chunk.CourseTitle,
					"lesson_number": chunk.LessonNumber,
					"chunk_index":   chunk.Index,
					"content":       chunk.Content,
				}),
			})
		}

		if err := s.upsertWithRetry(ctx, ContentCollection, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// SearchContent runs a similarity query over the content collection.
// Filters narrow by exact course title and/or lesson number; results come
// back ranked by score. Zero matches is not an error.
func (s *Store) SearchContent(ctx context.Context, query string, limit int, courseFilter string, lessonFilter *int) ([]ScoredChunk, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var must []*qdrant.Condition
	if courseFilter != "" {
		must = append(must, qdrant.NewMatch("course_title", courseFilter))
	}
	if lessonFilter != nil {
		must = append(must, qdrant.NewMatchInt("lesson_number", int64(*lessonFilter)))
	}
	var filter *qdrant.Filter
	if len(must) > 0 {
		filter = &qdrant.Filter{Must: must}
	}

	using := vectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ContentCollection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Using:          &using,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}

	matches := make([]ScoredChunk, 0, len(results))
	for _, result := range results {
		payload := result.Payload
		matches = append(matches, ScoredChunk{
			Chunk: course.Chunk{
				CourseTitle:  payload["course_title"].GetStringValue(),
				LessonNumber: int(payload["lesson_number"].GetIntegerValue()),
				Index:        int(payload["chunk_index"].GetIntegerValue()),
				Content:      payload["content"].GetStringValue(),
			},
			Score: float64(result.Score),
		})
	}

	return matches, nil
}

// ResolveCourseName resolves a partial or fuzzy course name to the
// canonical catalog title. The best match must clear the similarity floor
// or the resolution fails with ErrCourseNotFound; there is no unfiltered
// fallback.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	vectors, err := s.embedder.Embed(ctx, []string{name})
	if err != nil {
		return "", fmt.Errorf("embed course name: %w", err)
	}

	using := vectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CatalogCollection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Using:          &using,
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayloadInclude("title"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to query catalog: %w", err)
	}

	if len(results) == 0 || results[0].Score < s.matchFloor {
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}

	title := results[0].Payload["title"].GetStringValue()
	if title == "" {
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}
	return title, nil
}

// HasCourse reports whether the catalog already holds a course with the
// exact title. Ingestion uses it to skip re-processing.
func (s *Store) HasCourse(ctx context.Context, title string) (bool, error) {
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: CatalogCollection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("title", title),
			},
		},
		Limit: qdrant.PtrOf(uint32(1)),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check catalog for %q: %w", title, err)
	}
	return len(results) > 0, nil
}

// ListCourseTitles returns every catalog title, sorted. Scroll paginates
// by last point ID, which the next page includes again, so collection
// dedups by title (the catalog's point identity).
func (s *Store) ListCourseTitles(ctx context.Context) ([]string, error) {
	var titles []string
	var offset *qdrant.PointId
	seen := make(map[string]bool)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: CatalogCollection,
			Limit:          qdrant.PtrOf(s.scrollBatch),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayloadInclude("title"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll catalog: %w", err)
		}

		for _, result := range results {
			title := result.Payload["title"].GetStringValue()
			if title != "" && !seen[title] {
				seen[title] = true
				titles = append(titles, title)
			}
		}

		if uint32(len(results)) < s.scrollBatch {
			break
		}
		offset = results[len(results)-1].Id
	}

	sort.Strings(titles)
	return titles, nil
}
