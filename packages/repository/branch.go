package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"remediation-agent/types"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/github"
)

// ErrBranchExists is returned when the branch to publish already exists.
var ErrBranchExists = errors.New("branch already exists")

const (
	blobFileMode = "100644"
	blobType     = "blob"
)

// PublishBranch creates req.NewBranch from req.BaseBranch and commits the
// remediated files on top of the base tree. Paths not in req.Remediations keep
// their base content. It returns the new branch name.
//
// Nothing is written if the new branch already exists. A failure after the
// branch was created leaves the branch and any uploaded blobs in place.
func (c *Client) PublishBranch(ctx context.Context, req types.BranchPublishRequest) (string, error) {
	owner, repo := req.Repository.Owner, req.Repository.Name
	log := clog.FromContext(ctx).With("repo", req.Repository.FullName(), "base", req.BaseBranch, "branch", req.NewBranch)

	baseRef, _, err := c.gh.Git.GetRef(ctx, owner, repo, "refs/heads/"+req.BaseBranch)
	if err != nil {
		return "", fmt.Errorf("failed to get base branch %s: %w", req.BaseBranch, err)
	}
	baseSHA := baseRef.GetObject().GetSHA()

	exists, err := c.branchExists(ctx, owner, repo, req.NewBranch)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrBranchExists, req.NewBranch)
	}

	newRef := &github.Reference{
		Ref: github.String("refs/heads/" + req.NewBranch),
		Object: &github.GitObject{
			SHA: github.String(baseSHA),
		},
	}
	if _, _, err := c.gh.Git.CreateRef(ctx, owner, repo, newRef); err != nil {
		return "", fmt.Errorf("failed to create branch %s: %w", req.NewBranch, err)
	}
	log.Info("Branch created", "sha", baseSHA)

	entries := make([]github.TreeEntry, 0, len(req.Remediations))
	for path, content := range req.Remediations {
		blob, _, err := c.gh.Git.CreateBlob(ctx, owner, repo, &github.Blob{
			Content:  github.String(base64.StdEncoding.EncodeToString([]byte(content))),
			Encoding: github.String("base64"),
		})
		if err != nil {
			return "", fmt.Errorf("failed to create blob for %s: %w", path, err)
		}
		entries = append(entries, github.TreeEntry{
			Path: github.String(path),
			Mode: github.String(blobFileMode),
			Type: github.String(blobType),
			SHA:  blob.SHA,
		})
	}

	baseCommit, _, err := c.gh.Git.GetCommit(ctx, owner, repo, baseSHA)
	if err != nil {
		return "", fmt.Errorf("failed to get base commit %s: %w", baseSHA, err)
	}

	tree, _, err := c.gh.Git.CreateTree(ctx, owner, repo, baseCommit.GetTree().GetSHA(), entries)
	if err != nil {
		return "", fmt.Errorf("failed to create tree: %w", err)
	}

	message := req.CommitMessage
	if message == "" {
		message = c.commitMessage
	}
	commit, _, err := c.gh.Git.CreateCommit(ctx, owner, repo, &github.Commit{
		Message: github.String(message),
		Tree:    &github.Tree{SHA: tree.SHA},
		Parents: []github.Commit{{SHA: github.String(baseSHA)}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	newRef.Object = &github.GitObject{SHA: commit.SHA}
	if _, _, err := c.gh.Git.UpdateRef(ctx, owner, repo, newRef, false); err != nil {
		return "", fmt.Errorf("failed to update branch %s: %w", req.NewBranch, err)
	}

	log.Info("Remediated files committed", "files", len(entries), "commit", commit.GetSHA())
	return req.NewBranch, nil
}

// branchExists reports whether refs/heads/<branch> exists. A 404, or a 200
// listing refs that merely share the prefix, counts as absent.
func (c *Client) branchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	_, resp, err := c.gh.Git.GetRef(ctx, owner, repo, "refs/heads/"+branch)
	if err == nil {
		return true, nil
	}
	if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusOK) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check branch %s: %w", branch, err)
}
