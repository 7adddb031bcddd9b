package hub

import (
	"encoding/json"
	"log"
	"sync"
)

// Event types published after a committed mutation.
const (
	ListCreated       = "list.created"
	ListRenamed       = "list.renamed"
	ListDeleted       = "list.deleted"
	GameAdded         = "game.added"
	GameRemoved       = "game.removed"
	ReviewUpserted    = "review.upserted"
	ReviewDeleted     = "review.deleted"
	AccountRegistered = "account.registered"
	AccountUpdated    = "account.updated"
	AccountDeleted    = "account.deleted"
)

// Event represents a change to one profile's data.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client receives JSON-encoded events for the profiles it subscribed to.
type Client chan []byte

// Hub fans events out to the clients watching each username.
type Hub struct {
	profiles map[string]map[Client]bool
	mu       sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		profiles: make(map[string]map[Client]bool),
	}
}

// Subscribe adds a client to a profile's watchers.
func (h *Hub) Subscribe(username string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.profiles[username]; !ok {
		h.profiles[username] = make(map[Client]bool)
	}
	h.profiles[username][client] = true
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(username string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.profiles[username]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.profiles, username)
			}
		}
	}
}

// Broadcast sends an event to every client watching username and returns how
// many received it. Full client buffers drop the event rather than block the
// publisher.
func (h *Hub) Broadcast(username string, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.profiles[username]
	if !ok {
		return 0
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub: encode %s event: %v", event.Type, err)
		return 0
	}

	delivered := 0
	for client := range clients {
		select {
		case client <- messageBytes:
			delivered++
		default:
		}
	}
	if dropped := len(clients) - delivered; dropped > 0 {
		log.Printf("hub: dropped %s event for %d slow watcher(s) of %q", event.Type, dropped, username)
	}
	return delivered
}

// Watch subscribes a new client with the given buffer and returns it with a
// stop function that unsubscribes it.
func (h *Hub) Watch(username string, buffer int) (Client, func()) {
	client := make(Client, buffer)
	h.Subscribe(username, client)
	return client, func() { h.Unsubscribe(username, client) }
}

// Subscribers returns how many clients watch username.
func (h *Hub) Subscribers(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.profiles[username])
}
