// Package main provides the sync CLI for course document indexing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/course-rag/internal/chunker"
	"github.com/bull/course-rag/internal/config"
	"github.com/bull/course-rag/internal/embedding"
	ghclient "github.com/bull/course-rag/internal/github"
	"github.com/bull/course-rag/internal/ingest"
	"github.com/bull/course-rag/internal/vectorstore"
)

var (
	docsFlag    string
	clearFlag   bool
	githubOwner string
	githubRepo  string
	githubPath  string
)

var rootCmd = &cobra.Command{
	Use:   "course-sync",
	Short: "Course materials indexing tool",
	Long:  "CLI tool for managing the course materials index in Qdrant",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index course documents into Qdrant",
	Long: `Indexes course transcript documents into the vector store.

This command:
1. Connects to Qdrant and verifies health
2. Ensures the catalog and content collections exist
3. Reads course documents from a folder (or a GitHub repo directory)
4. Parses headers, chunks lesson content, and generates embeddings
5. Upserts catalog entries and content chunks (already-indexed courses are skipped)

Environment variables:
  QDRANT_HOST    Qdrant hostname (default: localhost)
  QDRANT_PORT    Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY OpenAI API key for embeddings (required)
  GITHUB_TOKEN   GitHub token for higher rate limits (optional, --github only)`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&docsFlag, "docs", "", "folder of course documents (default: DOCS_PATH env or ./docs)")
	syncCmd.Flags().BoolVar(&clearFlag, "clear", false, "drop both collections before indexing")
	syncCmd.Flags().StringVar(&githubOwner, "github-owner", "", "GitHub owner to fetch documents from instead of a local folder")
	syncCmd.Flags().StringVar(&githubRepo, "github-repo", "", "GitHub repository name (requires --github-owner)")
	syncCmd.Flags().StringVar(&githubPath, "repo-path", "docs", "directory inside the GitHub repository holding the documents")
	rootCmd.AddCommand(syncCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	fmt.Println("Starting sync...")
	fmt.Println()

	cfg := config.FromEnv()
	if docsFlag != "" {
		cfg.DocsPath = docsFlag
	}

	// 1. Initialize embedding client
	embeddingClient, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("Failed to create OpenAI client: %w", err)
	}
	embedder := embedding.NewEmbedder(embeddingClient, 0) // Use default batch size

	// 2. Connect to Qdrant
	fmt.Printf("Connecting to Qdrant at %s:%d...\n", cfg.QdrantHost, cfg.QdrantPort)
	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, embedder, cfg.CourseMatchFloor)
	if err != nil {
		return fmt.Errorf("Failed to connect to Qdrant: %w", err)
	}
	defer store.Close()

	// 3. Check health
	if err := store.Health(ctx); err != nil {
		return fmt.Errorf("Qdrant health check failed: %w", err)
	}
	fmt.Println("Qdrant healthy")

	// 4. Optionally drop everything for a full rebuild
	if clearFlag {
		fmt.Println("Clearing existing collections...")
		if err := store.ClearAll(ctx); err != nil {
			return fmt.Errorf("Failed to clear collections: %w", err)
		}
		fmt.Println("Collections cleared")
	}

	// 5. Ensure collections exist
	if err := store.EnsureCollections(ctx); err != nil {
		return fmt.Errorf("Failed to ensure collections: %w", err)
	}

	// 6. Pick the document source
	var src ingest.Source
	if githubOwner != "" && githubRepo != "" {
		ghClient, err := ghclient.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("Failed to create GitHub client: %w", err)
		}
		src = ghclient.NewSource(ghClient, githubOwner, githubRepo, githubPath)
		fmt.Printf("Indexing documents from github.com/%s/%s/%s...\n", githubOwner, githubRepo, githubPath)
	} else {
		src = ingest.NewFolderSource(cfg.DocsPath)
		fmt.Printf("Indexing documents from %s...\n", cfg.DocsPath)
	}

	// 7. Run the ingestion pipeline
	fmt.Println()
	pipeline := ingest.NewPipeline(chunker.New(cfg.ChunkSize, cfg.ChunkOverlap), store, slog.Default())

	result, err := pipeline.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("Indexing failed: %w", err)
	}

	// 8. Print results
	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Files: %d\n", result.TotalFiles)
	fmt.Printf("  Courses added: %d\n", result.CoursesAdded)
	fmt.Printf("  Courses skipped (already indexed): %d\n", result.SkippedCourses)
	fmt.Printf("  Chunks: %d\n", result.ChunksAdded)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	// 9. Print failed files if any
	if len(result.FailedFiles) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, failed := range result.FailedFiles {
			fmt.Printf("  - %s: %s\n", failed.Name, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))

	return nil
}
