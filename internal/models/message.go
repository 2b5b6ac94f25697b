package models

import "strings"

// BroadcastTarget is the recipient value addressing every account.
const BroadcastTarget = "all"

// MessageType is derived from the recipient when a message is created.
type MessageType string

const (
	MessagePrivate   MessageType = "private"
	MessageBroadcast MessageType = "broadcast"
)

// AppMessage is an administrator-authored message.
type AppMessage struct {
	ID      string      `json:"id"`
	From    string      `json:"from"`
	To      string      `json:"to"` // email or "all"
	Content string      `json:"content"`
	Date    string      `json:"date"`
	Type    MessageType `json:"type"`
}

// MessageTypeFor returns the type a message addressed to `to` gets.
func MessageTypeFor(to string) MessageType {
	if to == BroadcastTarget {
		return MessageBroadcast
	}
	return MessagePrivate
}

// IsFor reports whether the message is visible to the given account email.
func (m AppMessage) IsFor(email string) bool {
	if m.To == BroadcastTarget {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(m.To), strings.TrimSpace(email))
}
