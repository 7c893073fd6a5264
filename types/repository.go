package types

// FileMap maps a repository-relative path to its text content.
type FileMap map[string]string

// RemediationMap maps a repository-relative path to its remediated content.
type RemediationMap map[string]string

// Repository identifies a hosted repository by owner and name.
type Repository struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// BranchPublishRequest carries everything the publisher needs to create a branch
type BranchPublishRequest struct {
	Repository    Repository
	BaseBranch    string
	NewBranch     string
	Remediations  RemediationMap
	CommitMessage string
}
