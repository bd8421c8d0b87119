package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubClientGetUsers(t *testing.T) {
	var gotPath, gotQ, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQ = r.URL.Query().Get("q")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, alicePage)
	}))
	defer srv.Close()

	c, err := NewGitHubClient(srv.URL+"/api/v3/search", srv.Client(), 0)
	require.NoError(t, err)

	page, err := c.GetUsers(context.Background(), "alice", 3)
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/search/users", gotPath)
	assert.Equal(t, "alice in:user", gotQ)
	assert.Equal(t, "3", gotPage)

	assert.Equal(t, 5, page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(1), page.Items[0].ID)
	assert.Equal(t, "alice1", page.Items[0].Handle)
	assert.Equal(t, "https://github.com/alice1", page.Items[0].ProfileURL)
	assert.Equal(t, "https://avatars.example.com/1", page.Items[0].AvatarURL)
	assert.Equal(t, "alice2", page.Items[1].Handle)
	assert.Empty(t, page.Items[1].Email)
}

func TestGitHubClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"message":"try later"}`)
	}))
	defer srv.Close()

	c, err := NewGitHubClient(srv.URL+"/search", srv.Client(), 0)
	require.NoError(t, err)

	_, err = c.GetUsers(context.Background(), "alice", 1)
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusServiceUnavailable, he.StatusCode)
	assert.Equal(t, "try later", he.Message)
}

func TestGitHubClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL + "/search"
	srv.Close()

	c, err := NewGitHubClient(base, nil, 0)
	require.NoError(t, err)

	_, err = c.GetUsers(context.Background(), "alice", 1)
	assert.True(t, IsNetworkError(err))
}
