package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/config"
	"usersearch/internal/domain"
)

type scriptedClient struct {
	calls int
	err   error
	page  *domain.SearchPage
}

func (s *scriptedClient) GetUsers(ctx context.Context, term string, page int) (*domain.SearchPage, error) {
	s.calls++
	return s.page, s.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &scriptedClient{err: &NetworkError{Op: "GET", URL: "x", Err: errors.New("connection refused")}}
	c := WithBreaker(inner, BreakerSettings{Name: "test", Timeout: time.Minute, MinRequests: 3, FailureRatio: 0.6})

	for i := 0; i < 3; i++ {
		_, err := c.GetUsers(context.Background(), "alice", 1)
		require.True(t, IsNetworkError(err))
	}

	_, err := c.GetUsers(context.Background(), "alice", 1)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the API")
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	inner := &scriptedClient{err: &HTTPError{StatusCode: http.StatusUnprocessableEntity, Status: "422 Unprocessable Entity"}}
	c := WithBreaker(inner, BreakerSettings{Name: "test", Timeout: time.Minute})

	for i := 0; i < 5; i++ {
		_, err := c.GetUsers(context.Background(), "alice", 1)
		assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))
	}
	assert.Equal(t, 5, inner.calls)
}

func TestBreakerPassesResults(t *testing.T) {
	want := &domain.SearchPage{Items: []domain.User{{ID: 1, Handle: "alice1"}}, TotalCount: 1}
	c := WithBreaker(&scriptedClient{page: want}, BreakerSettings{Name: "test"})

	got, err := c.GetUsers(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Breaker.Enabled = false

	c, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &RESTClient{}, c)

	cfg.API.Backend = config.BackendGitHub
	c, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &GitHubClient{}, c)

	cfg.Breaker.Enabled = true
	c, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &breakerClient{}, c)

	cfg.API.Backend = "soap"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
