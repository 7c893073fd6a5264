package agents

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"remediation-agent/packages/ai"
	"remediation-agent/types"

	"github.com/chainguard-dev/clog"
)

// boilerplatePreamble is a sentence the model tends to put before the fixed code.
const boilerplatePreamble = "Here is the fixed code without any additional explanations or summaries:"

var codeFence = regexp.MustCompile("```[A-Za-z0-9_+#-]*")

// RemediationAgent asks a model to find issues in each code file and to fix them
type RemediationAgent struct {
	model      ai.Model
	classifier IssueClassifier
}

// Option configures a RemediationAgent
type Option func(*RemediationAgent)

// WithClassifier replaces the default keyword classifier
func WithClassifier(c IssueClassifier) Option {
	return func(a *RemediationAgent) {
		a.classifier = c
	}
}

// NewRemediationAgent creates a new remediation agent
func NewRemediationAgent(model ai.Model, opts ...Option) *RemediationAgent {
	a := &RemediationAgent{
		model:      model,
		classifier: NewKeywordClassifier(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Remediate analyzes and fixes every file whose path does not end with one of
// nonCodeExts. Skipped files are absent from the result. The first model error
// aborts the whole batch.
func (a *RemediationAgent) Remediate(ctx context.Context, files types.FileMap, nonCodeExts []string) (types.RemediationMap, error) {
	log := clog.FromContext(ctx)
	remediations := types.RemediationMap{}

	for _, path := range slices.Sorted(maps.Keys(files)) {
		if hasAnySuffix(path, nonCodeExts) {
			log.Info("Skipping non-code file", "file", path)
			continue
		}

		code := files[path]
		issues, err := a.Analyze(ctx, path, code)
		if err != nil {
			return nil, err
		}

		fixed, err := a.Fix(ctx, path, code, issues)
		if err != nil {
			return nil, err
		}
		remediations[path] = fixed
	}

	log.Info("Remediation complete", "files", len(remediations), "skipped", len(files)-len(remediations))
	return remediations, nil
}

// Analyze asks the model to review code and classifies its answer. An empty
// answer yields no issues.
func (a *RemediationAgent) Analyze(ctx context.Context, path, code string) (types.IssueList, error) {
	analysis, err := a.model.Generate(ctx, buildAnalysisPrompt(path, code), ai.AnalysisParams)
	if errors.Is(err, ai.ErrEmptyCompletion) {
		clog.FromContext(ctx).Warn("Empty analysis, recording no issues", "file", path)
		return types.IssueList{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("analysis of %s failed: %w", path, err)
	}

	issues := a.classifier.Classify(strings.TrimSpace(analysis))
	clog.FromContext(ctx).Info("Analyzed file", "file", path, "issues", issues.Strings())
	return issues, nil
}

// Fix asks the model for a corrected version of code. It runs whether or not
// issues were found. An empty answer is an error so a file is never blanked.
func (a *RemediationAgent) Fix(ctx context.Context, path, code string, issues types.IssueList) (string, error) {
	remediation, err := a.model.Generate(ctx, buildRemediationPrompt(path, code, issues), ai.RemediationParams)
	if err != nil {
		return "", fmt.Errorf("remediation of %s failed: %w", path, err)
	}
	return CleanRemediation(remediation), nil
}

// CleanRemediation strips code fence markers and the boilerplate preamble from a
// model answer so that only code remains.
// Removing one marker can join the pieces of another, so both are stripped
// until the text stops changing.
func CleanRemediation(text string) string {
	text = strings.TrimSpace(text)
	for {
		cleaned := strings.ReplaceAll(text, boilerplatePreamble, "")
		cleaned = strings.TrimSpace(codeFence.ReplaceAllString(cleaned, ""))
		if cleaned == text {
			return cleaned
		}
		text = cleaned
	}
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func buildAnalysisPrompt(path, code string) string {
	return fmt.Sprintf(`Please analyze the following %s.

Report every problem you find, naming each with one of these categories: %s.

Code:
%s`,
		describeCode(path),
		strings.Join(types.IssueList(types.AllIssues).Strings(), ", "),
		code,
	)
}

func buildRemediationPrompt(path, code string, issues types.IssueList) string {
	return fmt.Sprintf(`Please fix the identified issues in the %s below and return only the modified code without any explanations, summaries, or code block delimiters.

Code:
%s

Issues identified:
%s`,
		describeCode(path),
		code,
		strings.Join(issues.Strings(), ", "),
	)
}
