package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Danielopol/Metrosocial/internal/metrics"
)

const redisChannel = "feed:events"

// Hub broadcasts post lifecycle events to every connected client.
// Delivery is best-effort: no backlog, no replay, no ack. A client
// connecting after an event was emitted never sees it; clients
// compensate with periodic refresh polling.
type Hub struct {
	id      string
	redis   *redis.Client
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Send chan []byte
}

// envelope tags cross-instance messages with the publishing hub's id so
// a hub never re-delivers its own publishes.
type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		id:      uuid.NewString(),
		redis:   redisClient,
		clients: map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register() *Client {
	client := &Client{
		Send: make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
}

// BroadcastAll delivers the payload to every connected client. Slow or
// disconnected clients are skipped rather than blocked on.
func (h *Hub) BroadcastAll(payload []byte) {
	metrics.EventsBroadcast.Inc()
	h.deliver(payload)

	if h.redis != nil {
		msg, err := json.Marshal(envelope{Origin: h.id, Payload: payload})
		if err != nil {
			log.Printf("stream: marshal envelope: %v", err)
			return
		}
		if err := h.redis.Publish(context.Background(), redisChannel, msg).Err(); err != nil {
			log.Printf("stream: redis publish error: %v", err)
		}
	}
}

func (h *Hub) deliver(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	pubsub := h.redis.Subscribe(context.Background(), redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("stream: bad envelope: %v", err)
			continue
		}
		if env.Origin == h.id {
			continue
		}
		h.deliver(env.Payload)
	}
}
