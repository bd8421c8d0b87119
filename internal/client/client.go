// Package client talks to the remote user search API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"usersearch/internal/config"
	"usersearch/internal/domain"
)

// UserSearchClient fetches one page of users matching term.
// Pages are 1-based. Transport failures are reported as *NetworkError and
// non-2xx responses as *HTTPError.
type UserSearchClient interface {
	GetUsers(ctx context.Context, term string, page int) (*domain.SearchPage, error)
}

// qualifier restricts matches to the user's login/name
const qualifier = " in:user"

// searchTerm builds the q parameter sent to the API
func searchTerm(term string) string {
	return term + qualifier
}

// New builds the client selected by cfg.API.Backend, wrapped in a circuit
// breaker when cfg.Breaker.Enabled is set.
func New(cfg *config.Config, logger logrus.FieldLogger) (UserSearchClient, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	httpClient := &http.Client{Timeout: cfg.API.RequestTimeout()}

	var c UserSearchClient
	switch cfg.API.Backend {
	case config.BackendREST, "":
		c = NewRESTClient(cfg.API.BaseURL, httpClient, cfg.API.PerPage)
	case config.BackendGitHub:
		gh, err := NewGitHubClient(cfg.API.BaseURL, httpClient, cfg.API.PerPage)
		if err != nil {
			return nil, err
		}
		c = gh
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.API.Backend)
	}

	if !cfg.Breaker.Enabled {
		return c, nil
	}

	log := logger.WithField("component", "breaker")
	return WithBreaker(c, BreakerSettings{
		Name:         "user-search",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     parseDuration(cfg.Breaker.Interval),
		Timeout:      parseDuration(cfg.Breaker.Timeout),
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	}), nil
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
