package search

import "usersearch/internal/domain"

// Action is an input to Reduce
type Action interface {
	Type() string
}

// QuerySetAction assigns the search term
type QuerySetAction struct {
	Query string
}

func (a QuerySetAction) Type() string { return "query_set" }

// PageSetAction moves the page cursor
type PageSetAction struct {
	Page int
}

func (a PageSetAction) Type() string { return "page_set" }

// FetchStartedAction records that Request has been sent
type FetchStartedAction struct {
	Request Request
}

func (a FetchStartedAction) Type() string { return "fetch_started" }

// FetchSucceededAction delivers a page for the request identified by Token
type FetchSucceededAction struct {
	Token      uint64
	Page       int
	Items      []domain.User
	TotalCount int
}

func (a FetchSucceededAction) Type() string { return "fetch_succeeded" }

// FetchFailedAction reports that the request identified by Token failed
type FetchFailedAction struct {
	Token uint64
	Err   error
}

func (a FetchFailedAction) Type() string { return "fetch_failed" }
