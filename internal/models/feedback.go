package models

// FeedbackStatus tracks administrator handling of a suggestion.
type FeedbackStatus string

const (
	FeedbackNew      FeedbackStatus = "new"
	FeedbackRead     FeedbackStatus = "read"
	FeedbackArchived FeedbackStatus = "archived"
)

// Valid reports whether s is a known status.
func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackNew, FeedbackRead, FeedbackArchived:
		return true
	}
	return false
}

// FeedbackEntry is a free-text suggestion submitted by an account.
type FeedbackEntry struct {
	ID        string         `json:"id"`
	UserName  string         `json:"userName"`
	UserEmail string         `json:"userEmail"`
	Content   string         `json:"content"`
	Date      string         `json:"date"`
	Status    FeedbackStatus `json:"status"`
}
