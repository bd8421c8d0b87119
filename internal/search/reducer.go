package search

import "usersearch/internal/domain"

// Reduce applies a to s and returns the next state together with the fetch
// that transition requires, if any. Reduce never mutates s.Results in place.
func Reduce(s State, a Action) (State, *Request) {
	switch a := a.(type) {
	case QuerySetAction:
		return onQueryChanged(s, a.Query)
	case PageSetAction:
		return onPageChanged(s, a.Page)
	case FetchStartedAction:
		return onFetchStarted(s, a.Request), nil
	case FetchSucceededAction:
		return onFetchSucceeded(s, a), nil
	case FetchFailedAction:
		return onFetchFailed(s, a), nil
	}
	return s, nil
}

// IsStale reports whether a response carrying token must be discarded
func IsStale(s State, token uint64) bool {
	return token == 0 || token != s.Pending
}

// onQueryChanged assigns the term and resets the cursor to page 1. A fetch
// of page 1 is derived unless the term is empty or the very same page-1
// fetch is already pending.
func onQueryChanged(s State, query string) (State, *Request) {
	if query != "" && query == s.Query && s.Page == 1 && s.Pending != 0 {
		return s, nil
	}

	s.Query = query
	s.Page = 1
	s.Pending = 0

	if query == "" {
		return s, nil
	}
	return issue(s)
}

// onPageChanged moves the cursor and derives a fetch of that page. A page
// above 1 is only appended when it directly follows the results held for the
// current query; otherwise the fetch restarts at page 1.
func onPageChanged(s State, page int) (State, *Request) {
	if page < 1 {
		return s, nil
	}

	s.Page = page
	s.Pending = 0

	if s.Query == "" {
		return s, nil
	}
	if page > 1 && !follows(s, page) {
		s.Page = 1
	}
	return issue(s)
}

// follows reports whether page extends the results held for s.Query
func follows(s State, page int) bool {
	return s.ResultsQuery == s.Query && page == s.ResultsPage+1
}

func issue(s State) (State, *Request) {
	s.Seq++
	return s, &Request{Token: s.Seq, Query: s.Query, Page: s.Page}
}

func onFetchStarted(s State, req Request) State {
	if req.Token != s.Seq || req.Query != s.Query || req.Page != s.Page {
		return s
	}
	s.Pending = req.Token
	s.Loading = true
	s.Error = false
	return s
}

func onFetchSucceeded(s State, a FetchSucceededAction) State {
	if IsStale(s, a.Token) {
		return s
	}

	var results []domain.User
	if a.Page > 1 {
		results = make([]domain.User, 0, len(s.Results)+len(a.Items))
		results = append(results, s.Results...)
	} else {
		results = make([]domain.User, 0, len(a.Items))
	}
	s.Results = append(results, a.Items...)
	s.ResultsQuery = s.Query
	s.ResultsPage = a.Page

	s.TotalCount = a.TotalCount
	s.Loading = false
	s.HasMore = len(a.Items) > 0
	s.Pending = 0
	return s
}

func onFetchFailed(s State, a FetchFailedAction) State {
	if IsStale(s, a.Token) {
		return s
	}
	s.Error = true
	s.Loading = false
	s.Pending = 0
	return s
}
