package trigger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/resultwatch/internal/config"
)

func TestDisable(t *testing.T) {
	var method, path, auth, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		auth, accept = r.Header.Get("Authorization"), r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	g := NewGitHub(config.GitHubConfig{
		Token:        "ghp_x",
		Repository:   "someone/watch",
		WorkflowFile: "main.yml",
		APIURL:       server.URL,
	})
	require.NoError(t, g.Disable(context.Background()))

	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/repos/someone/watch/actions/workflows/main.yml/disable", path)
	require.Equal(t, "Bearer ghp_x", auth)
	require.Equal(t, "application/vnd.github+json", accept)
}

func TestDisableError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Resource not accessible by integration"}`))
	}))
	defer server.Close()

	g := NewGitHub(config.GitHubConfig{Token: "t", Repository: "a/b", WorkflowFile: "main.yml", APIURL: server.URL})
	err := g.Disable(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestDisableWithoutCredentials(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer server.Close()

	g := NewGitHub(config.GitHubConfig{WorkflowFile: "main.yml", APIURL: server.URL})
	require.NoError(t, g.Disable(context.Background()))
	require.False(t, hit)
}
