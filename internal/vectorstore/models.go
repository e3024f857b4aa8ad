package vectorstore

import "github.com/bull/course-rag/internal/course"

// ScoredChunk is one content match from a similarity query.
type ScoredChunk struct {
	Chunk course.Chunk
	Score float64 // Cosine similarity, higher is closer
}

// CatalogCollection resolves fuzzy course names to canonical titles.
// ContentCollection answers passage retrieval queries.
const (
	CatalogCollection = "course_catalog"
	ContentCollection = "course_content"
)

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536

// vectorName is the named vector used in both collections.
const vectorName = "text"
