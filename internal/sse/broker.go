// Package sse pushes catalog changes to browsers over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/posts"
)

// Event types sent to clients.
const (
	EventPostsReloaded = "posts.reloaded"
	EventFeedUpdated   = "feed.updated"
)

const (
	clientBuffer      = 64
	historySize       = 32
	heartbeatInterval = 30 * time.Second
)

// Event is one message for every connected client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type message struct {
	id  string
	raw []byte
}

type subscription struct {
	ch     chan []byte
	lastID string
}

// Broker fans events out to connected clients and keeps the most recent
// messages so a reconnecting client can catch up from its Last-Event-ID.
//
// The run goroutine owns the client set, the history and the feed throttle;
// every exported method is a request on one of its channels.
type Broker struct {
	feedMin time.Duration

	subs    chan subscription
	unsubs  chan chan []byte
	events  chan Event
	reloads chan posts.ReloadResult
	counts  chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits feed.updated at most once per
// feedThrottle.
func NewBroker(feedThrottle time.Duration) *Broker {
	if feedThrottle <= 0 {
		feedThrottle = 2 * time.Second
	}
	b := &Broker{
		feedMin: feedThrottle,
		subs:    make(chan subscription),
		unsubs:  make(chan chan []byte),
		events:  make(chan Event, 256),
		reloads: make(chan posts.ReloadResult, 256),
		counts:  make(chan chan int),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.run()
	return b
}

func encode(event Event) (message, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return message{}, err
	}
	id := uuid.NewString()
	raw := fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", id, event.Type, payload)
	return message{id: id, raw: raw}, nil
}

// since returns the messages after lastID. An unknown id replays nothing:
// the client missed more than the history holds and should refetch.
func since(history []message, lastID string) []message {
	if lastID == "" {
		return nil
	}
	for i, m := range history {
		if m.id == lastID {
			return history[i+1:]
		}
	}
	return nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	history := make([]message, 0, historySize)
	var lastFeed time.Time

	send := func(ch chan []byte, raw []byte) {
		select {
		case ch <- raw:
		default:
			// slow client, drop
		}
	}

	broadcast := func(event Event) {
		msg, err := encode(event)
		if err != nil {
			return
		}
		if len(history) == historySize {
			history = append(history[:0], history[1:]...)
		}
		history = append(history, msg)
		for ch := range clients {
			send(ch, msg.raw)
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subs:
			clients[sub.ch] = struct{}{}
			for _, m := range since(history, sub.lastID) {
				send(sub.ch, m.raw)
			}

		case ch := <-b.unsubs:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.events:
			broadcast(event)

		case res := <-b.reloads:
			broadcast(Event{Type: EventPostsReloaded, Data: res})
			if len(res.Changed) == 0 && len(res.Removed) == 0 {
				continue
			}
			if now := time.Now(); now.Sub(lastFeed) >= b.feedMin {
				lastFeed = now
				broadcast(Event{Type: EventFeedUpdated, Data: map[string]int{"count": res.Count}})
			}

		case resp := <-b.counts:
			resp <- len(clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe adds a client that receives only new messages.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeFrom("")
}

// SubscribeFrom adds a client and first replays the retained messages sent
// after lastID.
func (b *Broker) SubscribeFrom(lastID string) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subs <- subscription{ch: ch, lastID: lastID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubs <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.counts <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- event:
	case <-b.stopped:
	}
}

// PublishReload announces a catalog reload. When posts were added, changed
// or removed a throttled feed.updated follows.
func (b *Broker) PublishReload(res posts.ReloadResult) {
	if b.closed.Load() {
		return
	}
	select {
	case b.reloads <- res:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeFrom(r.Header.Get("Last-Event-ID"))
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
		}
		flusher.Flush()
	}
}
