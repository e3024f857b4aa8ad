// Package config collects the environment-driven settings shared by the
// server and sync entry points.
package config

import (
	"fmt"
	"os"
)

// Config holds all tunables consumed by the RAG core. Values come from
// environment variables; zero configuration works against a local Qdrant.
type Config struct {
	// Chunking
	ChunkSize    int // Max characters per chunk
	ChunkOverlap int // Characters of overlap between consecutive chunks

	// Retrieval
	MaxResults       int     // Max chunks returned per search
	CourseMatchFloor float32 // Minimum similarity for course-name resolution

	// Conversation
	MaxHistory int // Max turns kept per session (FIFO eviction)

	// External services
	QdrantHost string
	QdrantPort int
	ChatModel  string

	// Serving
	DocsPath   string
	Port       string
	ServerMode bool
}

// FromEnv builds a Config from environment variables, applying defaults
// for anything unset.
func FromEnv() *Config {
	return &Config{
		ChunkSize:        getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 100),
		MaxResults:       getEnvInt("MAX_RESULTS", 5),
		CourseMatchFloor: float32(getEnvFloat("COURSE_MATCH_FLOOR", 0.55)),
		MaxHistory:       getEnvInt("MAX_HISTORY", 4),
		QdrantHost:       getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:       getEnvInt("QDRANT_PORT", 6334),
		ChatModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		DocsPath:         getEnv("DOCS_PATH", "./docs"),
		Port:             getEnv("PORT", "8080"),
		ServerMode:       getEnv("SERVER_MODE", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return defaultValue
}
