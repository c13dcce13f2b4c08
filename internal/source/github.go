package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// GitHubSource loads unit documents from a GitHub repository, for courses
// whose material lives in a docs repo instead of local files. Catalog paths
// are interpreted relative to basePath in the repository.
type GitHubSource struct {
	catalog  *Catalog
	client   *github.Client
	owner    string
	repo     string
	basePath string
}

// NewGitHubSource creates a GitHub-backed source. The client handles both
// primary and secondary rate limits transparently; if GITHUB_TOKEN is set the
// client authenticates for higher limits.
func NewGitHubSource(catalog *Catalog, owner, repo, basePath string) (*GitHubSource, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, fmt.Errorf("create rate-limited client: %w", err)
	}

	client := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHubSource{
		catalog:  catalog,
		client:   client,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}, nil
}

// Load fetches the unit's file content from the repository.
func (s *GitHubSource) Load(ctx context.Context, key string) (string, error) {
	unit, ok := s.catalog.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, key)
	}

	fullPath := path.Join(s.basePath, unit.Path)
	fileContent, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, fullPath, nil)
	if err != nil {
		return "", fmt.Errorf("get contents of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return "", fmt.Errorf("decode content of %s: %w", fullPath, err)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyDocument, fullPath)
	}
	return string(content), nil
}
