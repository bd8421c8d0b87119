// Package search holds the pagination and search-state controller behind the
// user search screen.
package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"usersearch/internal/client"
	"usersearch/internal/domain"
	"usersearch/internal/eventbus"
)

var (
	// ErrInvalidPage is returned by SetPage for a cursor below 1
	ErrInvalidPage = errors.New("page must be >= 1")
	// ErrNoRequest is returned by Do when there is nothing to fetch
	ErrNoRequest = errors.New("no search request")
	// ErrStaleResponse is returned by Do when a newer request superseded req
	ErrStaleResponse = errors.New("search response superseded")
)

// Result is the outcome of Fetch, to be handed back to Resolve
type Result struct {
	Request Request
	Page    *domain.SearchPage
	Err     error
}

// Controller owns the search state and turns query and page changes into
// fetches against a UserSearchClient. Only the most recently issued fetch
// is ever applied.
type Controller struct {
	mu      sync.RWMutex
	state   State
	client  client.UserSearchClient
	bus     eventbus.EventBus
	log     logrus.FieldLogger
	timeout time.Duration
}

// Option configures a Controller
type Option func(*Controller)

// WithEventBus publishes search events on bus
func WithEventBus(bus eventbus.EventBus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = logger }
}

// WithTimeout bounds every fetch. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// NewController creates a controller in the initial state
func NewController(c client.UserSearchClient, opts ...Option) *Controller {
	ctrl := &Controller{
		state:  NewState(),
		client: c,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	ctrl.log = ctrl.log.WithField("component", "search")
	return ctrl
}

// State returns a snapshot safe to keep and render
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// SetQuery assigns the search term. The page cursor goes back to 1 and, for
// a non-empty term, the returned request fetches page 1. An empty term
// issues nothing and leaves results and flags as they were.
func (c *Controller) SetQuery(term string) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := c.dispatch(QuerySetAction{Query: term})
	if term == "" {
		c.publish(eventbus.QueryClearedEvent{})
	}
	return req
}

// SetPage moves the page cursor. A page above 1 is appended to the current
// results only when it is the page right after the last one received for
// the current query. Any other page, including one set while a new query's
// first page is still pending, is fetched as page 1 instead.
func (c *Controller) SetPage(page int) (*Request, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatch(PageSetAction{Page: page}), nil
}

// LoadMore requests the next page when there is an active query, the last
// page was not empty and nothing is in flight. After a failed fetch it asks
// for the failed page again instead of skipping past it.
func (c *Controller) LoadMore() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Query == "" || !s.HasMore || s.Loading {
		return nil
	}
	next := s.Page + 1
	if s.Error {
		next = s.Page
	}
	return c.dispatch(PageSetAction{Page: next})
}

// Refresh refetches page 1 of the current query, replacing the results
func (c *Controller) Refresh() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Query == "" {
		return nil
	}
	return c.dispatch(PageSetAction{Page: 1})
}

// Fetch performs req against the client. It does not touch controller
// state and may run on any goroutine.
func (c *Controller) Fetch(ctx context.Context, req *Request) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	page, err := c.client.GetUsers(ctx, req.Query, req.Page)

	fields := logrus.Fields{
		"token":    req.Token,
		"query":    req.Query,
		"page":     req.Page,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}
	if err != nil {
		fields["status"] = client.StatusCode(err)
		c.log.WithFields(fields).WithError(err).Warn("search request failed")
	} else {
		c.log.WithFields(fields).Debug("search request completed")
	}

	return Result{Request: *req, Page: page, Err: err}
}

// Resolve applies a fetch result. It reports false when the result belongs
// to a superseded request and was discarded.
func (c *Controller) Resolve(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := res.Request
	if IsStale(c.state, req.Token) {
		c.log.WithFields(logrus.Fields{
			"token":   req.Token,
			"pending": c.state.Pending,
			"query":   req.Query,
			"page":    req.Page,
		}).Debug("discarding stale search response")
		c.publish(eventbus.StaleResponseDiscardedEvent{
			Token:   req.Token,
			Pending: c.state.Pending,
			Query:   req.Query,
			Page:    req.Page,
		})
		return false
	}

	if res.Err != nil {
		c.dispatch(FetchFailedAction{Token: req.Token, Err: res.Err})
		c.publish(eventbus.SearchFailedEvent{Token: req.Token, Query: req.Query, Page: req.Page, Err: res.Err})
		return true
	}

	var items []domain.User
	total := 0
	if res.Page != nil {
		items = res.Page.Items
		total = res.Page.TotalCount
	}
	c.dispatch(FetchSucceededAction{Token: req.Token, Page: req.Page, Items: items, TotalCount: total})
	c.publish(eventbus.SearchCompletedEvent{
		Token:       req.Token,
		Query:       req.Query,
		Page:        req.Page,
		Received:    len(items),
		Accumulated: len(c.state.Results),
		TotalCount:  total,
	})
	return true
}

// Do fetches req and applies the result synchronously. It returns the
// fetch error, or ErrStaleResponse when the result was discarded.
func (c *Controller) Do(ctx context.Context, req *Request) error {
	if req == nil {
		return ErrNoRequest
	}
	res := c.Fetch(ctx, req)
	if !c.Resolve(res) {
		return ErrStaleResponse
	}
	return res.Err
}

// dispatch reduces a and, when a fetch is derived, marks it started.
// Callers hold c.mu.
func (c *Controller) dispatch(a Action) *Request {
	next, req := Reduce(c.state, a)
	c.state = next
	if req == nil {
		return nil
	}

	c.state, _ = Reduce(c.state, FetchStartedAction{Request: *req})
	c.log.WithFields(logrus.Fields{
		"token": req.Token,
		"query": req.Query,
		"page":  req.Page,
	}).Info("search started")
	c.publish(eventbus.SearchStartedEvent{Token: req.Token, Query: req.Query, Page: req.Page})
	return req
}

func (c *Controller) publish(e eventbus.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
