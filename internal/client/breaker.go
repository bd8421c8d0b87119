package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"usersearch/internal/domain"
)

// BreakerSettings tunes WithBreaker. Zero values fall back to gobreaker's defaults.
type BreakerSettings struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	MinRequests   uint32
	FailureRatio  float64
	OnStateChange func(name string, from, to gobreaker.State)
}

type breakerClient struct {
	next UserSearchClient
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next in a circuit breaker. Once the failure ratio trips,
// calls fail with ErrCircuitOpen until the breaker half-opens again. Nothing
// is retried.
func WithBreaker(next UserSearchClient, s BreakerSettings) UserSearchClient {
	minRequests := s.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	ratio := s.FailureRatio
	if ratio == 0 {
		ratio = 0.6
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		},
		IsSuccessful:  countsAsSuccess,
		OnStateChange: s.OnStateChange,
	})

	return &breakerClient{next: next, cb: cb}
}

func (b *breakerClient) GetUsers(ctx context.Context, term string, page int) (*domain.SearchPage, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.GetUsers(ctx, term, page)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}
	return res.(*domain.SearchPage), nil
}

// countsAsSuccess keeps caller mistakes and cancellations from tripping the
// breaker. Client errors other than throttling say nothing about API health.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	code := StatusCode(err)
	if code >= 400 && code < 500 {
		return code != http.StatusForbidden && code != http.StatusTooManyRequests
	}
	return false
}
