package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
)

// Source lists and fetches course transcript files (.txt) from one
// directory of a GitHub repository. It satisfies the ingestion pipeline's
// document source contract.
type Source struct {
	client   *Client
	owner    string
	repo     string
	basePath string
}

// NewSource creates a document source for owner/repo at basePath.
func NewSource(client *Client, owner, repo, basePath string) *Source {
	return &Source{
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}
}

// List returns the names of all course documents in the repository
// directory. Subdirectories are not traversed: course corpora are flat.
func (s *Source) List(ctx context.Context) ([]string, error) {
	_, dirContents, _, err := s.client.Repositories.GetContents(
		ctx,
		s.owner,
		s.repo,
		s.basePath,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.basePath, err)
	}

	var names []string
	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil || *item.Type != "file" {
			continue
		}
		if strings.HasSuffix(strings.ToLower(*item.Name), ".txt") {
			names = append(names, *item.Name)
		}
	}
	return names, nil
}

// Fetch returns the text of one course document.
func (s *Source) Fetch(ctx context.Context, name string) (string, error) {
	fullPath := path.Join(s.basePath, name)

	fileContent, _, _, err := s.client.Repositories.GetContents(
		ctx,
		s.owner,
		s.repo,
		fullPath,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", fullPath, err)
	}
	return string(content), nil
}
