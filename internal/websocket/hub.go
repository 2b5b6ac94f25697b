package websocket

import (
	"context"

	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
)

type delivery struct {
	email   string
	client  *Client
	message []byte
}

// Hub maintains the set of active clients and pushes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for every connected client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages for the clients of one account, or for one client.
	deliver chan delivery

	// A map of account emails to the clients logged in as that account.
	subscriptions map[string]map[*Client]bool

	count chan chan int
	done  chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte, 64),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		deliver:       make(chan delivery, 64),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		count:         make(chan chan int),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns when ctx is done,
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			if client.Email != "" {
				h.addSubscription(client, client.Email)
			}
			log.Info().Int("total_clients", len(h.clients)).Str("email", client.Email).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				h.send(client, message)
			}
		case d := <-h.deliver:
			if d.client != nil {
				if h.clients[d.client] {
					h.send(d.client, d.message)
				}
				continue
			}
			for client := range h.subscriptions[d.email] {
				h.send(client, d.message)
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// NotifyMessage pushes a persisted administrator message to its recipients:
// every client for a broadcast, the recipient's clients otherwise.
func (h *Hub) NotifyMessage(msg models.AppMessage) {
	event := NewMessageEvent(msg)
	if event == nil {
		return
	}
	if msg.Type == models.MessageBroadcast {
		select {
		case h.Broadcast <- event:
		case <-h.done:
		}
		return
	}
	select {
	case h.deliver <- delivery{email: models.NormalizeEmail(msg.To), message: event}:
	case <-h.done:
	}
}

func (h *Hub) reply(c *Client, message []byte) {
	select {
	case h.deliver <- delivery{client: c, message: message}:
	case <-h.done:
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients. It needs Run.
func (h *Hub) ClientCount() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}

// send queues a message; a client whose queue is full is dropped.
func (h *Hub) send(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Warn().Str("email", client.Email).Msg("Dropping slow websocket client")
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
}

func (h *Hub) addSubscription(client *Client, email string) {
	if h.subscriptions[email] == nil {
		h.subscriptions[email] = make(map[*Client]bool)
	}
	h.subscriptions[email][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for email, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, email)
			}
		}
	}
}
