package services

import "github.com/isdelr/talakhisi-be/internal/models"

// Record keys of the persisted layout. They match the keys the browser build
// used, so exported local-storage dumps can be loaded as-is.
const (
	SessionKey       = "talakhisi_session"
	AccountsKey      = "smart_summarizer_users"
	FeedbackKey      = "talakhisi_feedback"
	MessagesKey      = "talakhisi_app_messages"
	LibraryKeyPrefix = "lib_"
)

// LibraryKey is the record key of an account's library.
func LibraryKey(email string) string {
	return LibraryKeyPrefix + models.NormalizeEmail(email)
}
