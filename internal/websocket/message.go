package websocket

import (
	"encoding/json"

	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Actions carried by websocket messages.
const (
	ActionNewMessage = "new_message"
	ActionError      = "error"
	ActionPing       = "ping"
	ActionPong       = "pong"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return nil
	}
	return data
}

// NewErrorMessage builds an error event for one client.
func NewErrorMessage(text string) []byte {
	return encode(Message{Action: ActionError, Payload: map[string]string{"error": text}})
}

// NewMessageEvent builds the event pushed when an administrator message is sent.
func NewMessageEvent(msg models.AppMessage) []byte {
	return encode(Message{Action: ActionNewMessage, Payload: msg})
}

// NewPongMessage answers a client ping.
func NewPongMessage() []byte {
	return encode(Message{Action: ActionPong})
}
