package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"remediation-agent/packages/handlers"
	"remediation-agent/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	excludedExts []string
}

func (s *stubPipeline) FetchContents(context.Context, types.Repository, string, []string) (types.FileMap, error) {
	return types.FileMap{"main.go": "package main", "README.md": "hi"}, nil
}

func (s *stubPipeline) Remediate(_ context.Context, files types.FileMap, exts []string) (types.RemediationMap, error) {
	s.excludedExts = exts
	return types.RemediationMap{"main.go": files["main.go"]}, nil
}

func (s *stubPipeline) PublishBranch(_ context.Context, req types.BranchPublishRequest) (string, error) {
	return req.NewBranch, nil
}

func TestRunLocal(t *testing.T) {
	stub := &stubPipeline{}
	h := handlers.NewInvocationHandler(stub, stub, stub, "Remediated code")

	var out bytes.Buffer
	require.NoError(t, runLocal(context.Background(), h, "testdata/event.json", &out))

	var resp types.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "remediation/acme-widgets", resp.Response.FunctionResponse.ResponseBody.Text.Body)
	assert.Equal(t, "code-remediation", resp.Response.ActionGroup)
	assert.Equal(t, []string{".md", ".txt", ".json"}, stub.excludedExts)
}

func TestRunLocalMissingFile(t *testing.T) {
	stub := &stubPipeline{}
	h := handlers.NewInvocationHandler(stub, stub, stub, "")
	err := runLocal(context.Background(), h, "testdata/absent.json", &bytes.Buffer{})
	require.Error(t, err)
}
