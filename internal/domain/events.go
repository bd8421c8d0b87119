package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchStarted          EventType = "SearchStarted"
	EventSearchCompleted        EventType = "SearchCompleted"
	EventSearchFailed           EventType = "SearchFailed"
	EventStaleResponseDiscarded EventType = "StaleResponseDiscarded"
	EventQueryCleared           EventType = "QueryCleared"
	EventConfigLoaded           EventType = "ConfigLoaded"
	EventConfigSaved            EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchStartedEvent is emitted when a page fetch is issued
type SearchStartedEvent struct {
	Token uint64
	Query string
	Page  int
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent is emitted when a page has been applied to the result set
type SearchCompletedEvent struct {
	Token       uint64
	Query       string
	Page        int
	Received    int // items on this page
	Accumulated int // items in the result set after applying
	TotalCount  int
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when the latest fetch fails
type SearchFailedEvent struct {
	Token uint64
	Query string
	Page  int
	Err   error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// StaleResponseDiscardedEvent is emitted when a response arrives for a superseded request
type StaleResponseDiscardedEvent struct {
	Token   uint64
	Pending uint64
	Query   string
	Page    int
}

func (e StaleResponseDiscardedEvent) Type() EventType { return EventStaleResponseDiscarded }

// QueryClearedEvent is emitted when the search term is set to empty
type QueryClearedEvent struct{}

func (e QueryClearedEvent) Type() EventType { return EventQueryCleared }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path    string
	BaseURL string
	Backend string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
