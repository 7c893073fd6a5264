package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"remediation-agent/packages/config"
	"remediation-agent/types"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// ErrInvalidRepositoryURL is returned when a repository reference cannot be parsed.
var ErrInvalidRepositoryURL = errors.New("invalid repository url")

// Client reads and writes repository content through the GitHub REST API.
type Client struct {
	gh            *github.Client
	commitMessage string
}

// NewClient creates a Client authenticated with the configured GitHub token
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Secrets.GitHubToken})
	gh := github.NewClient(oauth2.NewClient(ctx, ts))

	if cfg.GitHub.BaseURL != "" {
		baseURL, err := endpointURL(cfg.GitHub.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse github base url: %w", err)
		}
		gh.BaseURL = baseURL
	}
	if cfg.GitHub.UploadURL != "" {
		uploadURL, err := endpointURL(cfg.GitHub.UploadURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse github upload url: %w", err)
		}
		gh.UploadURL = uploadURL
	}

	return NewClientWithGitHub(gh, cfg.GitHub.CommitMessage), nil
}

// NewClientWithGitHub wraps an existing go-github client
func NewClientWithGitHub(gh *github.Client, commitMessage string) *Client {
	return &Client{gh: gh, commitMessage: commitMessage}
}

// CommitMessage is the message used when the publish request does not carry one
func (c *Client) CommitMessage() string {
	return c.commitMessage
}

// endpointURL parses raw and makes sure it ends with a slash, as go-github requires.
func endpointURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return url.Parse(raw)
}

// ParseRepositoryURL extracts owner and name from a repository URL such as
// https://github.com/owner/repo(.git) or from the "owner/repo" shorthand.
func ParseRepositoryURL(raw string) (types.Repository, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.Repository{}, fmt.Errorf("%w: empty", ErrInvalidRepositoryURL)
	}

	repoPath := trimmed
	if strings.Contains(trimmed, "://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return types.Repository{}, fmt.Errorf("%w: %s: %v", ErrInvalidRepositoryURL, raw, err)
		}
		repoPath = u.Path
	}

	parts := strings.Split(strings.Trim(repoPath, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return types.Repository{}, fmt.Errorf("%w: %s", ErrInvalidRepositoryURL, raw)
	}

	return types.Repository{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}
