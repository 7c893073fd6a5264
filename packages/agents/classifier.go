package agents

import (
	"regexp"
	"strings"

	"remediation-agent/types"
)

// IssueClassifier turns a free-text analysis into issue categories.
type IssueClassifier interface {
	Classify(analysis string) types.IssueList
}

// KeywordClassifier finds the known category phrases in the analysis text.
// Phrases are matched case-insensitively and each category is reported once,
// in order of first mention.
type KeywordClassifier struct {
	pattern *regexp.Regexp
}

// NewKeywordClassifier returns a classifier matching every category in types.AllIssues
func NewKeywordClassifier() *KeywordClassifier {
	phrases := make([]string, len(types.AllIssues))
	for i, issue := range types.AllIssues {
		phrases[i] = regexp.QuoteMeta(string(issue))
	}
	return &KeywordClassifier{
		pattern: regexp.MustCompile(`(?i)(` + strings.Join(phrases, "|") + `)`),
	}
}

// Classify implements IssueClassifier
func (k *KeywordClassifier) Classify(analysis string) types.IssueList {
	issues := types.IssueList{}
	seen := make(map[types.Issue]bool)
	for _, match := range k.pattern.FindAllString(analysis, -1) {
		issue := types.Issue(strings.ToLower(match))
		if seen[issue] {
			continue
		}
		seen[issue] = true
		issues = append(issues, issue)
	}
	return issues
}
