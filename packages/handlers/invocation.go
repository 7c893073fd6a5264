package handlers

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"remediation-agent/packages/repository"
	"remediation-agent/types"

	"github.com/chainguard-dev/clog"
)

// Fetcher downloads the files of a branch
type Fetcher interface {
	FetchContents(ctx context.Context, repo types.Repository, branch string, excludeFolders []string) (types.FileMap, error)
}

// Remediator produces fixed versions of code files
type Remediator interface {
	Remediate(ctx context.Context, files types.FileMap, nonCodeExts []string) (types.RemediationMap, error)
}

// Publisher commits remediated files to a new branch
type Publisher interface {
	PublishBranch(ctx context.Context, req types.BranchPublishRequest) (string, error)
}

// InvocationHandler runs fetch, remediation and publishing for one agent function call.
type InvocationHandler struct {
	fetcher       Fetcher
	remediator    Remediator
	publisher     Publisher
	commitMessage string
}

// NewInvocationHandler wires the three pipeline stages together
func NewInvocationHandler(fetcher Fetcher, remediator Remediator, publisher Publisher, commitMessage string) *InvocationHandler {
	return &InvocationHandler{
		fetcher:       fetcher,
		remediator:    remediator,
		publisher:     publisher,
		commitMessage: commitMessage,
	}
}

// Invoke adapts Handle to the func(ctx, event) (response, error) shape of the
// Lambda runtime. The error is always nil; failures are reported in the body.
func (h *InvocationHandler) Invoke(ctx context.Context, event types.Event) (types.Response, error) {
	return h.Handle(ctx, event), nil
}

// Handle processes one invocation. It always returns a response envelope: the
// new branch name on success, otherwise a text error message.
func (h *InvocationHandler) Handle(ctx context.Context, event types.Event) (resp types.Response) {
	log := clog.FromContext(ctx).With("actionGroup", event.ActionGroup, "function", event.Function)
	if event.Agent != nil {
		log = log.With("agent", event.Agent.Name)
	}
	ctx = clog.WithLogger(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Invocation panicked", "panic", r, "stack", string(debug.Stack()))
			resp = newResponse(event, fmt.Sprintf("Error: %v", r))
		}
	}()

	branch, err := h.run(ctx, event)
	if err != nil {
		var missing *MissingParameterError
		if errors.As(err, &missing) {
			log.Error("Missing required information", "key", missing.Key)
			return newResponse(event, fmt.Sprintf("Missing required information: %s", missing.Key))
		}
		log.Error("An error occurred", "error", err)
		return newResponse(event, fmt.Sprintf("Error: %v", err))
	}

	resp = newResponse(event, branch)
	log.Info("Response", "messageVersion", resp.MessageVersion, "body", branch)
	return resp
}

func (h *InvocationHandler) run(ctx context.Context, event types.Event) (string, error) {
	if err := validateEnvelope(event); err != nil {
		return "", err
	}

	req, err := parseRequest(event.Parameters)
	if err != nil {
		return "", err
	}

	repo, err := repository.ParseRepositoryURL(req.RepositoryURL)
	if err != nil {
		return "", err
	}

	log := clog.FromContext(ctx).With("repo", repo.FullName())
	ctx = clog.WithLogger(ctx, log)
	log.Info("Starting remediation workflow",
		"branch", req.Branch,
		"newBranch", req.NewBranch,
		"excludeExtensions", req.ExcludeExtensions,
		"excludeFolders", req.ExcludeFolders)

	files, err := h.fetcher.FetchContents(ctx, repo, req.Branch, req.ExcludeFolders)
	if err != nil {
		return "", fmt.Errorf("failed to fetch repository contents: %w", err)
	}

	remediations, err := h.remediator.Remediate(ctx, files, req.ExcludeExtensions)
	if err != nil {
		return "", fmt.Errorf("failed to remediate code: %w", err)
	}

	return h.publisher.PublishBranch(ctx, types.BranchPublishRequest{
		Repository:    repo,
		BaseBranch:    req.Branch,
		NewBranch:     req.NewBranch,
		Remediations:  remediations,
		CommitMessage: h.commitMessage,
	})
}

func newResponse(event types.Event, body string) types.Response {
	return types.Response{
		MessageVersion: event.MessageVersion,
		Response: types.ActionResponse{
			ActionGroup: event.ActionGroup,
			Function:    event.Function,
			FunctionResponse: types.FunctionResponse{
				ResponseBody: types.ResponseBody{
					Text: types.TextBody{Body: body},
				},
			},
		},
		SessionAttributes:       event.SessionAttributes,
		PromptSessionAttributes: event.PromptSessionAttributes,
	}
}
