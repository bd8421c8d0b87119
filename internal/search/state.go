package search

import "usersearch/internal/domain"

// UnknownTotal is TotalCount before any page has been received
const UnknownTotal = -1

// State is everything the view layer may render
type State struct {
	Query      string        // current search term, "" means no active search
	Page       int           // 1-based page cursor
	Results    []domain.User // accumulated pages for Query, oldest first
	TotalCount int           // as reported by the API, UnknownTotal until known
	// Loading stays set when an empty term drops the in-flight fetch. It
	// only settles with the next fetch, so views ignore it without a Query.
	Loading bool
	Error   bool
	HasMore bool // the last received page was non-empty

	// ResultsQuery and ResultsPage name the query and last page Results
	// were built from. They lag Query and Page while a new page 1 is pending.
	ResultsQuery string
	ResultsPage  int

	// Seq is the last token issued. Pending is the token whose response
	// may still be applied, 0 when none. When Pending is set it always
	// belongs to a request for (Query, Page).
	Seq     uint64
	Pending uint64
}

// NewState returns the state of a freshly created controller
func NewState() State {
	return State{
		Page:       1,
		Results:    []domain.User{},
		TotalCount: UnknownTotal,
		Loading:    true,
		HasMore:    true,
	}
}

// Request is a fetch intent derived from a state transition
type Request struct {
	Token uint64
	Query string
	Page  int
}

// clone returns s with its own copy of Results
func (s State) clone() State {
	results := make([]domain.User, len(s.Results))
	copy(results, s.Results)
	s.Results = results
	return s
}
