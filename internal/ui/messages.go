package ui

import (
	"usersearch/internal/eventbus"
	"usersearch/internal/search"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// searchResultMsg carries a finished fetch back to the update loop
type searchResultMsg struct {
	result search.Result
}

// pagerClosedMsg is sent once the detail or help pager exits
type pagerClosedMsg struct {
	err error
}
