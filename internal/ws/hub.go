package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "savora:events"

// Hub manages the reminder status feed: every connected client of a user
// receives that user's status-change events. Events travel through Redis
// Pub/Sub so a dispatcher on one instance reaches clients connected to
// another.
type Hub struct {
	// Map of userID -> set of client connections (one user can have multiple devices)
	clients map[uuid.UUID]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	rdb *redis.Client
}

// NewHub creates a new status-feed hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("✅ Status feed client connected: %s (connections: %d)", client.UserID, len(h.clients[client.UserID]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.UserID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}
	log.Printf("❌ Status feed client disconnected: %s", client.UserID)
}

// PublishReminderStatus fans a reminder status change out to the owning
// user's connections on every instance. Called by the dispatcher after each
// terminal transition.
func (h *Hub) PublishReminderStatus(ctx context.Context, event model.ReminderStatusEvent) {
	h.publish(ctx, event.UserID, &model.WSEvent{
		Type:    model.WSEventReminderStatus,
		Payload: event,
	})
}

// PublishPlanUpdated notifies a user's connections that a plan slot changed
func (h *Hub) PublishPlanUpdated(ctx context.Context, event model.PlanUpdatedEvent) {
	h.publish(ctx, event.UserID, &model.WSEvent{
		Type:    model.WSEventPlanUpdated,
		Payload: event,
	})
}

// targetedEvent wraps an event with its target user for Redis Pub/Sub
type targetedEvent struct {
	TargetUserID uuid.UUID      `json:"target_user_id"`
	Event        *model.WSEvent `json:"event"`
}

func (h *Hub) publish(ctx context.Context, userID uuid.UUID, event *model.WSEvent) {
	data, err := json.Marshal(targetedEvent{TargetUserID: userID, Event: event})
	if err != nil {
		log.Printf("Error marshaling event for Redis: %v", err)
		return
	}

	if err := h.rdb.Publish(ctx, redisChannel, data).Err(); err != nil {
		log.Printf("Error publishing event to Redis: %v", err)
	}
}

// sendToLocalUser delivers an event to a user's connections on this instance.
// Takes the write lock because a slow client is dropped from the set here.
func (h *Hub) sendToLocalUser(userID uuid.UUID, event *model.WSEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[userID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full, close connection
			close(client.send)
			delete(clients, client)
		}
	}
}

// subscribeRedis delivers cross-instance events to local clients
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Println("📡 Redis Pub/Sub subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			var targeted targetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &targeted); err != nil {
				log.Printf("Error unmarshaling Redis message: %v", err)
				continue
			}
			if targeted.TargetUserID != uuid.Nil && targeted.Event != nil {
				h.sendToLocalUser(targeted.TargetUserID, targeted.Event)
			}
		}
	}
}
