package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"remediation-agent/types"
)

// Parameter names sent by the agent
const (
	ParamRepositoryURL     = "repository_url"
	ParamBranchName        = "branch_name"
	ParamExcludeExtensions = "file_extensions_to_exclude"
	ParamExcludeFolders    = "folders_to_exclude"
	ParamNewBranchName     = "new_remediated_branch_name"
)

// MissingParameterError reports a required key that was absent from the invocation.
type MissingParameterError struct {
	Key string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %s", e.Key)
}

// remediationRequest holds the parsed invocation parameters
type remediationRequest struct {
	RepositoryURL     string
	Branch            string
	NewBranch         string
	ExcludeExtensions []string
	ExcludeFolders    []string
}

// validateEnvelope checks the identifiers every response has to echo back.
func validateEnvelope(event types.Event) error {
	switch {
	case event.MessageVersion == "":
		return &MissingParameterError{Key: "messageVersion"}
	case event.Agent == nil:
		return &MissingParameterError{Key: "agent"}
	case event.ActionGroup == "":
		return &MissingParameterError{Key: "actionGroup"}
	case event.Function == "":
		return &MissingParameterError{Key: "function"}
	}
	return nil
}

func parseRequest(params []types.Parameter) (remediationRequest, error) {
	properties := make(map[string]string, len(params))
	for _, p := range params {
		properties[p.Name] = p.Value
	}

	required := func(key string) (string, error) {
		value := strings.TrimSpace(properties[key])
		if value == "" {
			return "", &MissingParameterError{Key: key}
		}
		return value, nil
	}

	var (
		req remediationRequest
		err error
	)
	if req.RepositoryURL, err = required(ParamRepositoryURL); err != nil {
		return req, err
	}
	if req.Branch, err = required(ParamBranchName); err != nil {
		return req, err
	}
	if req.NewBranch, err = required(ParamNewBranchName); err != nil {
		return req, err
	}
	req.ExcludeExtensions = parseList(properties[ParamExcludeExtensions])
	req.ExcludeFolders = parseList(properties[ParamExcludeFolders])
	return req, nil
}

// parseList accepts a JSON array of strings or a comma separated list.
// Blank items are dropped.
func parseList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var items []string
	if strings.HasPrefix(value, "[") {
		if err := json.Unmarshal([]byte(value), &items); err != nil {
			items = strings.Split(strings.Trim(value, "[]"), ",")
		}
	} else {
		items = strings.Split(value, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
