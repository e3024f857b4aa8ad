// Package main provides the MCP server entry point for the course
// materials chatbot.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/course-rag/internal/chunker"
	"github.com/bull/course-rag/internal/config"
	"github.com/bull/course-rag/internal/embedding"
	"github.com/bull/course-rag/internal/generator"
	"github.com/bull/course-rag/internal/ingest"
	mcpserver "github.com/bull/course-rag/internal/mcp"
	"github.com/bull/course-rag/internal/rag"
	"github.com/bull/course-rag/internal/searchtool"
	"github.com/bull/course-rag/internal/session"
	"github.com/bull/course-rag/internal/vectorstore"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// Initialize vector store
	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, embedder, cfg.CourseMatchFloor)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	if err := store.EnsureCollections(ctx); err != nil {
		log.Fatalf("failed to ensure collections: %v", err)
	}

	// Assemble the RAG core: search tool, generator, session store, pipeline
	search := searchtool.NewCourseSearch(store, cfg.MaxResults)
	tools := searchtool.NewRegistry(search)
	chat := generator.NewOpenAIChat(embeddingClient.Client())
	gen := generator.New(chat, tools, cfg.ChatModel, logger)
	sessions := session.NewStore(cfg.MaxHistory)
	pipeline := ingest.NewPipeline(chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), store, logger)
	system := rag.NewSystem(gen, sessions, store, pipeline, logger)

	// Index course documents shipped alongside the server, skipping
	// anything already present.
	if info, err := os.Stat(cfg.DocsPath); err == nil && info.IsDir() {
		result, err := system.IngestFolder(ctx, cfg.DocsPath)
		if err != nil {
			log.Fatalf("failed to ingest %s: %v", cfg.DocsPath, err)
		}
		logger.Info("Startup ingestion complete",
			"courses", result.CoursesAdded,
			"chunks", result.ChunksAdded,
			"skipped", result.SkippedCourses,
			"failed", len(result.FailedFiles))
	} else {
		logger.Info("No docs folder found, skipping startup ingestion", "path", cfg.DocsPath)
	}

	// Create MCP server
	server := mcpserver.NewServer(&mcpserver.Config{
		System: system,
		Store:  store,
	})

	// Create HTTP server with multiple endpoints
	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(store))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	if cfg.ServerMode {
		// HTTP mode: serve MCP over HTTP for remote clients
		addr := "0.0.0.0:" + cfg.Port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP server over stdin/stdout for local clients
		// Also start HTTP health endpoint in background for local testing
		go func() {
			addr := "0.0.0.0:" + cfg.Port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting Course Materials MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}
