package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// subscriberBuffer is the per-subscriber event backlog. A subscriber that
// falls this far behind is dropped rather than allowed to stall turn
// processing.
const subscriberBuffer = 16

// writeTimeout bounds a single event write to one WebSocket connection.
const writeTimeout = 10 * time.Second

// TurnHub fans processed-turn events out to WebSocket subscribers.
// Dashboards connect to /ws and receive one TurnEvent per processed turn.
type TurnHub struct {
	origins []string // Allowed Origin patterns for browser connections

	mu      sync.Mutex
	subs    map[chan TurnEvent]struct{}
	stopped bool
}

// NewTurnHub creates a hub that accepts browser connections from the given
// origin patterns.
func NewTurnHub(origins []string) *TurnHub {
	return &TurnHub{
		origins: origins,
		subs:    make(map[chan TurnEvent]struct{}),
	}
}

// Subscribe registers a new event stream. The channel is closed on
// Unsubscribe, on Stop, or when the subscriber falls too far behind.
func (h *TurnHub) Subscribe() chan TurnEvent {
	ch := make(chan TurnEvent, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes an event stream and closes it.
func (h *TurnHub) Unsubscribe(ch chan TurnEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Broadcast delivers a turn event to every subscriber. Subscribers with a
// full backlog are dropped; turn processing never blocks on a slow dashboard.
func (h *TurnHub) Broadcast(event TurnEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			delete(h.subs, ch)
			close(ch)
			log.Println("WebSocket subscriber too slow, dropped")
		}
	}
}

// Stop closes all subscriber streams. Subsequent Subscribe calls return a
// closed channel.
func (h *TurnHub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *TurnHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request to a WebSocket connection and streams turn
// events until the client disconnects or the hub stops.
func (h *TurnHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Inbound messages are ignored; reading only detects disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	events := h.Subscribe()
	defer h.Unsubscribe(events)

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal turn event: %v", err)
				continue
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancelWrite()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
