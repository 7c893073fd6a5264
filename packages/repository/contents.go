package repository

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"remediation-agent/types"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/github"
)

// FetchContents downloads every file on branch that is not inside a folder
// named in excludeFolders. Folder names are matched at every depth. Any failed
// listing or download aborts the fetch.
func (c *Client) FetchContents(ctx context.Context, repo types.Repository, branch string, excludeFolders []string) (types.FileMap, error) {
	log := clog.FromContext(ctx).With("repo", repo.FullName(), "branch", branch)

	excluded := make(map[string]bool, len(excludeFolders))
	for _, name := range excludeFolders {
		excluded[name] = true
	}

	files := types.FileMap{}
	opts := &github.RepositoryContentGetOptions{Ref: branch}

	// Directories still to be listed. Popping from the end gives a depth-first walk.
	pending := []string{""}
	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		_, entries, _, err := c.gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, dir, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", dir, err)
		}

		var subdirs []string
		for _, entry := range entries {
			switch entry.GetType() {
			case "dir":
				if excluded[entry.GetName()] {
					log.Info("Skipping excluded folder", "folder", entry.GetPath())
					continue
				}
				subdirs = append(subdirs, entry.GetPath())
			case "file":
				content, err := c.download(ctx, entry.GetDownloadURL())
				if err != nil {
					return nil, fmt.Errorf("failed to download %q: %w", entry.GetPath(), err)
				}
				files[entry.GetPath()] = content
			}
		}

		// Reverse so the first listed subdirectory is walked first.
		for i := len(subdirs) - 1; i >= 0; i-- {
			pending = append(pending, subdirs[i])
		}
	}

	log.Info("Fetched repository contents", "files", len(files))
	return files, nil
}

// download fetches raw file content with the authenticated client.
func (c *Client) download(ctx context.Context, downloadURL string) (string, error) {
	req, err := c.gh.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := c.gh.Do(ctx, req, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
