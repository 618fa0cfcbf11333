package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Activity types pushed to club members.
const (
	ActivityPostCreated   = "post.created"
	ActivityThreadCreated = "thread.created"
	ActivityEventCreated  = "event.created"
	ActivityMemberJoined  = "member.joined"
)

// publishBuffer bounds activity queued while the hub is busy.
const publishBuffer = 256

// Activity is one notification sent to every client watching a club
type Activity struct {
	Type      string    `json:"type"`
	ClubID    uuid.UUID `json:"clubId"`
	ActorID   uuid.UUID `json:"actorId"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients per club and fans activity out to them
type Hub struct {
	// Registered clients organized by club ID
	clients map[uuid.UUID]map[*Client]struct{}

	broadcast  chan *Activity
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Guards clients for readers outside the run loop
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		broadcast:  make(chan *Activity, publishBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case activity := <-h.broadcast:
			h.broadcastActivity(activity)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Publish queues activity for the club's clients. It never blocks; activity
// is dropped when the queue is full or the hub has stopped.
func (h *Hub) Publish(clubID, actorID uuid.UUID, activityType string, payload any) {
	activity := &Activity{
		Type:      activityType,
		ClubID:    clubID,
		ActorID:   actorID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- activity:
	default:
		h.logger.Warn().Str("clubID", clubID.String()).Str("type", activityType).Msg("Activity queue full, dropping")
	}
}

// ClientCount returns the number of connected clients for a club
func (h *Hub) ClientCount(clubID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clubID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.clubID]; !ok {
		h.clients[client.clubID] = make(map[*Client]struct{})
	}
	h.clients[client.clubID][client] = struct{}{}

	h.logger.Info().
		Str("clubID", client.clubID.String()).
		Str("userID", client.userID.String()).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

// dropLocked removes the client and closes its send channel. Caller holds mu.
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.clubID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.clubID)
	}

	h.logger.Info().
		Str("clubID", client.clubID.String()).
		Str("userID", client.userID.String()).
		Msg("Client unregistered")
}

func (h *Hub) broadcastActivity(activity *Activity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[activity.ClubID]
	if !ok {
		return
	}

	data, err := json.Marshal(activity)
	if err != nil {
		h.logger.Error().Err(err).Str("clubID", activity.ClubID.String()).Msg("Failed to marshal activity")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer; its write pump closes the connection.
			h.dropLocked(client)
		}
	}

	h.logger.Debug().
		Str("clubID", activity.ClubID.String()).
		Str("type", activity.Type).
		Int("clientCount", len(clients)).
		Msg("Activity broadcast to club")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.dropLocked(client)
		}
	}
}
