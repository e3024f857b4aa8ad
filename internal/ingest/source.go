package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source supplies course documents to the pipeline. Implementations exist
// for a local folder and for a GitHub repository directory.
type Source interface {
	// List returns the document names in this source.
	List(ctx context.Context) ([]string, error)
	// Fetch returns the raw text of one document.
	Fetch(ctx context.Context, name string) (string, error)
}

// FolderSource reads course documents from a local directory. Only .txt
// files are considered course documents.
type FolderSource struct {
	dir string
}

// NewFolderSource creates a source over the given directory.
func NewFolderSource(dir string) *FolderSource {
	return &FolderSource{dir: dir}
}

func (s *FolderSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read docs folder %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *FolderSource) Fetch(ctx context.Context, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}
