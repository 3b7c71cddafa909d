package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event is one live guide-session update fanned out to subscribers:
// location fixes, narration-played acknowledgements, session end.
type Event struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type Hub struct {
	id      string
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

// wireMessage is the redis pub/sub envelope. Origin lets an instance drop
// the echo of its own publishes; local clients already got the payload.
type wireMessage struct {
	Origin string `json:"origin"`
	Data   []byte `json:"data"`
}

type Client struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		id:      uuid.NewString(),
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(sessionID string) *Client {
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionClients, ok := h.clients[client.SessionID]; ok {
		delete(sessionClients, client)
		if len(sessionClients) == 0 {
			delete(h.clients, client.SessionID)
		}
	}
	close(client.Send)
}

// BroadcastEvent marshals the event and fans it out to local subscribers and
// through redis to other instances.
func (h *Hub) BroadcastEvent(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("stream: marshal event: %v", err)
		return
	}
	h.Broadcast(event.SessionID, payload)
}

func (h *Hub) Broadcast(sessionID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[sessionID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		wire, err := json.Marshal(wireMessage{Origin: h.id, Data: payload})
		if err != nil {
			log.Printf("stream: marshal wire message: %v", err)
			return
		}
		if err := h.redis.Publish(context.Background(), redisChannel(sessionID), wire).Err(); err != nil {
			log.Printf("stream: redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "guide:*:live")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var wire wireMessage
		if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
			log.Printf("stream: bad wire message on %s: %v", msg.Channel, err)
			continue
		}
		if wire.Origin == h.id {
			continue
		}
		sessionID := sessionIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[sessionID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- wire.Data:
			default:
			}
		}
	}
}

func redisChannel(sessionID string) string {
	return "guide:" + sessionID + ":live"
}

func sessionIDFromChannel(ch string) string {
	// guide:{session}:live
	const prefix = "guide:"
	const suffix = ":live"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
