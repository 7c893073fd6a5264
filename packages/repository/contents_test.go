package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"remediation-agent/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	Type    string
	Path    string
	Content string
}

// contentsServer serves the contents API for acme/widgets from a flat list of entries.
func contentsServer(t *testing.T, entries []fakeEntry) (*httptest.Server, *[]string) {
	t.Helper()
	var listed []string

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := strings.CutPrefix(r.URL.Path, "/raw/"); ok {
			for _, e := range entries {
				if e.Type == "file" && e.Path == raw {
					_, _ = w.Write([]byte(e.Content))
					return
				}
			}
			http.NotFound(w, r)
			return
		}

		dir, ok := strings.CutPrefix(r.URL.Path, "/repos/acme/widgets/contents")
		if !ok {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		dir = strings.Trim(dir, "/")
		listed = append(listed, dir)

		var listing []map[string]any
		for _, e := range entries {
			parent := ""
			if i := strings.LastIndex(e.Path, "/"); i >= 0 {
				parent = e.Path[:i]
			}
			if parent != dir {
				continue
			}
			item := map[string]any{
				"type": e.Type,
				"name": e.Path[strings.LastIndex(e.Path, "/")+1:],
				"path": e.Path,
			}
			if e.Type == "file" {
				item["download_url"] = fmt.Sprintf("%s/raw/%s", srv.URL, e.Path)
			}
			listing = append(listing, item)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(listing))
	}))
	t.Cleanup(srv.Close)
	return srv, &listed
}

func TestFetchContentsSkipsExcludedFoldersAtEveryDepth(t *testing.T) {
	srv, listed := contentsServer(t, []fakeEntry{
		{Type: "file", Path: "main.py", Content: "print(1)"},
		{Type: "dir", Path: "node_modules"},
		{Type: "file", Path: "node_modules/lib.js", Content: "x"},
		{Type: "dir", Path: "src"},
		{Type: "file", Path: "src/app.py", Content: "app"},
		{Type: "dir", Path: "src/node_modules"},
		{Type: "file", Path: "src/node_modules/deep.js", Content: "deep"},
		{Type: "dir", Path: "src/pkg"},
		{Type: "file", Path: "src/pkg/util.py", Content: "util"},
		{Type: "dir", Path: "src/pkg/vendor"},
		{Type: "file", Path: "src/pkg/vendor/v.py", Content: "v"},
		{Type: "symlink", Path: "link"},
	})
	client := newTestClient(t, srv)

	files, err := client.FetchContents(context.Background(), types.Repository{Owner: "acme", Name: "widgets"}, "main", []string{"node_modules", "vendor"})
	require.NoError(t, err)

	want := types.FileMap{
		"main.py":         "print(1)",
		"src/app.py":      "app",
		"src/pkg/util.py": "util",
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("FetchContents() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"", "src", "src/pkg"}, *listed, "excluded folders must never be listed")
}

func TestFetchContentsMatchesFolderNameNotPath(t *testing.T) {
	srv, _ := contentsServer(t, []fakeEntry{
		{Type: "dir", Path: "docs"},
		{Type: "file", Path: "docs/guide.md", Content: "guide"},
		{Type: "dir", Path: "src"},
		{Type: "file", Path: "src/main.go", Content: "package main"},
	})
	client := newTestClient(t, srv)

	files, err := client.FetchContents(context.Background(), types.Repository{Owner: "acme", Name: "widgets"}, "main", []string{"src/main.go", "docs/"})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFetchContentsFailsFastOnListingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	client := newTestClient(t, srv)

	files, err := client.FetchContents(context.Background(), types.Repository{Owner: "acme", Name: "widgets"}, "main", nil)
	require.Error(t, err)
	assert.Nil(t, files)
}

func TestFetchContentsFailsFastOnDownloadError(t *testing.T) {
	srv, _ := contentsServer(t, []fakeEntry{
		{Type: "file", Path: "ok.py", Content: "ok"},
	})

	// The listing points at a download URL the contents fake does not serve.
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/repos/") {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `[{"type":"file","name":"gone.py","path":"gone.py","download_url":"%s/raw/gone.py"}]`, srv.URL)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(broken.Close)
	client := newTestClient(t, broken)

	files, err := client.FetchContents(context.Background(), types.Repository{Owner: "acme", Name: "widgets"}, "main", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.py")
	assert.Nil(t, files)
}
