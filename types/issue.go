package types

// Issue is an issue category reported by the analysis model.
type Issue string

const (
	IssueSecurityVulnerability Issue = "potential security vulnerability"
	IssueCodeStyle             Issue = "code style issue"
	IssuePerformance           Issue = "performance issue"
	IssueCodeComplexity        Issue = "code complexity issue"
	IssueBug                   Issue = "potential bug"
)

// AllIssues lists every known issue category.
var AllIssues = []Issue{
	IssueSecurityVulnerability,
	IssueCodeStyle,
	IssuePerformance,
	IssueCodeComplexity,
	IssueBug,
}

// IssueList is the ordered list of issues found in one file. It may be empty.
type IssueList []Issue

// Strings returns the labels as plain strings
func (l IssueList) Strings() []string {
	out := make([]string, len(l))
	for i, issue := range l {
		out[i] = string(issue)
	}
	return out
}
