package vectorstore

import "errors"

var (
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
	ErrCourseNotFound    = errors.New("no course matches the given name")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
