package input

import "usersearch/internal/search"

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	State  search.State
	Cursor int
}

// CurrentIndex returns the current selected index
func (c *ModelContext) CurrentIndex() int {
	return c.Cursor
}

// TotalItems returns the number of result rows
func (c *ModelContext) TotalItems() int {
	return len(c.State.Results)
}

// HasQuery returns true when a search term is active
func (c *ModelContext) HasQuery() bool {
	return c.State.Query != ""
}

func (c *ModelContext) HasMore() bool {
	return c.State.HasMore
}

func (c *ModelContext) Loading() bool {
	return c.State.Loading
}
