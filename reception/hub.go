package reception

import (
	"sync"

	"github.com/TheWaWaR/subotai/internal/logging"
)

// defaultBufferSize is the per-subscriber channel capacity used when a Hub
// is constructed without an explicit override.
const defaultBufferSize = 32

// Hub is a multi-producer, multi-consumer broadcast point: every Update
// published is delivered to every currently subscribed Receptions. A
// subscriber whose buffer is full misses the Update being published
// rather than blocking the publisher, since a node handling many
// peers cannot afford one slow consumer to stall delivery to the rest.
type Hub struct {
	mu          sync.Mutex
	subscribers map[int]chan Update
	nextID      int
	bufferSize  int
}

// NewHub creates an empty broadcast hub. bufferSize configures each
// subscriber's channel capacity; a value <= 0 falls back to
// defaultBufferSize.
func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		subscribers: make(map[int]chan Update),
		bufferSize:  bufferSize,
	}
}

// Publish delivers u to every current subscriber. Delivery to a single
// subscriber never blocks: if that subscriber's buffer is full, the Update
// is dropped for that subscriber only.
func (h *Hub) Publish(u Update) {
	logger := logging.New("reception", "Hub.Publish")

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- u:
		default:
			logger.WithField("subscriber", id).Warn("dropped update: subscriber buffer full")
		}
	}
}

// Shutdown publishes an UpdateShutdown event to every subscriber. It does
// not itself close the hub for further subscriptions.
func (h *Hub) Shutdown() {
	h.Publish(Update{Kind: UpdateShutdown})
}

// subscribe registers a new subscriber and returns its id and receive
// channel. The channel is closed when unsubscribe is later called with the
// same id.
func (h *Hub) subscribe() (int, chan Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Update, h.bufferSize)
	h.subscribers[id] = ch
	return id, ch
}

// unsubscribe removes a subscriber and closes its channel, unblocking any
// goroutine currently parked reading from it.
func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}
