package repository

import (
	"context"
	"net/http/httptest"
	"net/url"
	"testing"

	"remediation-agent/packages/config"
	"remediation-agent/types"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryURL(t *testing.T) {
	tests := []struct {
		in   string
		want types.Repository
	}{
		{"https://github.com/acme/widgets", types.Repository{Owner: "acme", Name: "widgets"}},
		{"https://github.com/acme/widgets/", types.Repository{Owner: "acme", Name: "widgets"}},
		{"https://github.com/acme/widgets.git", types.Repository{Owner: "acme", Name: "widgets"}},
		{"https://github.com/acme/widgets/tree/main", types.Repository{Owner: "acme", Name: "widgets"}},
		{" acme/widgets ", types.Repository{Owner: "acme", Name: "widgets"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepositoryURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "acme/widgets", got.FullName())
		})
	}
}

func TestParseRepositoryURLRejectsIncompleteReferences(t *testing.T) {
	for _, in := range []string{"", "https://github.com/acme", "widgets", "https://github.com/"} {
		_, err := ParseRepositoryURL(in)
		assert.ErrorIs(t, err, ErrInvalidRepositoryURL, in)
	}
}

func TestNewClientEnterpriseURLs(t *testing.T) {
	cfg := config.Default()
	cfg.Secrets.GitHubToken = "ghp_test"
	cfg.GitHub.BaseURL = "https://ghe.example.com/api/v3"
	cfg.GitHub.UploadURL = "https://ghe.example.com/api/uploads/"

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", client.gh.BaseURL.String())
	assert.Equal(t, "https://ghe.example.com/api/uploads/", client.gh.UploadURL.String())
	assert.Equal(t, "Remediated code", client.CommitMessage())
}

// newTestClient points a go-github client at srv.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	gh := github.NewClient(srv.Client())
	baseURL, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = baseURL
	return NewClientWithGitHub(gh, "Remediated code")
}
