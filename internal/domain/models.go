package domain

// User is a normalized search hit. Only ID and Handle are guaranteed.
type User struct {
	ID         int64
	Handle     string
	Email      string
	Bio        string
	AvatarURL  string
	ProfileURL string
}

// SearchPage is one page of results as reported by the search API
type SearchPage struct {
	Items      []User
	TotalCount int
}
