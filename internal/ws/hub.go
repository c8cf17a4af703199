package ws

import (
	"context"
	"encoding/json"
	"sync"

	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "thread_messages"

// Subscriber is a live-channel endpoint for one thread. Deliver must not
// block; a non-nil error marks the subscriber dead and the hub evicts it.
type Subscriber interface {
	Deliver(payload []byte) error
	Close()
}

// Hub is the process-wide registry of live subscribers keyed by thread ID.
// It holds no message history: a subscriber only sees payloads published
// after it subscribed. Construct one per process (or per test) and inject
// it; there is no package-level instance.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[Subscriber]struct{}

	// instanceID marks envelopes this process put on the bridge, so the
	// Run loop can skip its own echo and each subscriber receives exactly
	// one copy per publish.
	instanceID string

	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHub creates a new Hub. redisClient may be nil; the cross-instance
// bridge is then disabled and publishes stay process-local.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		subscribers: make(map[string]map[Subscriber]struct{}),
		instanceID:  uuid.New().String(),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Subscribe registers sub under threadID
func (h *Hub) Subscribe(threadID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[threadID] == nil {
		h.subscribers[threadID] = make(map[Subscriber]struct{})
	}
	h.subscribers[threadID][sub] = struct{}{}
}

// Unsubscribe removes sub from threadID's bucket. Calling it for an absent
// subscriber is a no-op: disconnect can race with publish-driven eviction.
// An emptied bucket is removed from the registry.
func (h *Hub) Unsubscribe(threadID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[threadID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, threadID)
	}
}

// Publish delivers payload to every current subscriber of threadID and,
// when Redis is configured, forwards it to other instances. Delivery is
// best-effort: a failed subscriber is evicted and closed, the rest still
// receive the payload.
func (h *Hub) Publish(threadID string, payload []byte) {
	h.publishLocal(threadID, payload)

	if h.redisClient != nil {
		data, err := h.envelope(threadID, payload)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).
				Str("thread_id", threadID).
				Msg("hub: payload not forwarded to bridge")
			return
		}
		h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
	}
}

// envelope wraps payload for the cross-instance bridge
func (h *Hub) envelope(threadID string, payload []byte) ([]byte, error) {
	return json.Marshal(&redisMessage{
		Origin:   h.instanceID,
		ThreadID: threadID,
		Payload:  payload,
	})
}

func (h *Hub) publishLocal(threadID string, payload []byte) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subscribers[threadID]))
	for sub := range h.subscribers[threadID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	var dead []Subscriber
	for _, sub := range subs {
		if err := sub.Deliver(payload); err != nil {
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		h.Unsubscribe(threadID, sub)
		sub.Close()
	}
}

// SubscriberCount returns the number of live subscribers for threadID
func (h *Hub) SubscriberCount(threadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[threadID])
}

type redisMessage struct {
	Origin   string          `json:"origin"`
	ThreadID string          `json:"thread_id"`
	Payload  json.RawMessage `json:"payload"`
}

// Run listens for payloads published by other instances. It returns when
// Stop is called. Safe to skip entirely when Redis is not configured.
func (h *Hub) Run() {
	if h.redisClient == nil {
		<-h.ctx.Done()
		return
	}

	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleBridge([]byte(msg.Payload))
		case <-h.ctx.Done():
			return
		}
	}
}

// handleBridge delivers a bridge envelope to local subscribers. Envelopes
// this instance originated are dropped: their local delivery already
// happened inside Publish, and delivering the echo would hand every
// subscriber a second copy.
func (h *Hub) handleBridge(data []byte) {
	var rm redisMessage
	if err := json.Unmarshal(data, &rm); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("hub: bad redis payload")
		return
	}
	if rm.Origin == h.instanceID {
		return
	}
	h.publishLocal(rm.ThreadID, rm.Payload)
}

// Stop shuts the hub down and closes every remaining subscriber
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	remaining := h.subscribers
	h.subscribers = make(map[string]map[Subscriber]struct{})
	h.mu.Unlock()

	for _, subs := range remaining {
		for sub := range subs {
			sub.Close()
		}
	}
}
