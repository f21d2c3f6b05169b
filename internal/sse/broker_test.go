package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/folio/internal/posts"
)

// lockedRecorder lets the test read the body while the handler writes.
type lockedRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *lockedRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *lockedRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "custom", Data: map[string]string{"id": "a"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.HasPrefix(s, "id: ") {
			t.Errorf("missing id line in %q", s)
		}
		if !strings.Contains(s, "\nevent: custom\n") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `data: {"id":"a"}`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishReload_FeedThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishReload(posts.ReloadResult{Count: 2, Changed: []string{"a"}, Removed: []string{}})
	b.PublishReload(posts.ReloadResult{Count: 2, Changed: []string{"b"}, Removed: []string{}})

	time.Sleep(50 * time.Millisecond)
	reloads, feeds := 0, 0
	for _, s := range drain(ch) {
		switch {
		case strings.Contains(s, "event: "+EventFeedUpdated):
			feeds++
		case strings.Contains(s, "event: "+EventPostsReloaded):
			reloads++
			if !strings.Contains(s, `"count":2`) {
				t.Errorf("reload payload = %q", s)
			}
		}
	}
	if reloads != 2 {
		t.Errorf("reload events = %d, want 2", reloads)
	}
	if feeds != 1 {
		t.Errorf("feed events = %d, want 1 (throttled)", feeds)
	}
}

func TestPublishReload_NoChangesNoFeedEvent(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishReload(posts.ReloadResult{Count: 3, Changed: []string{}, Removed: []string{}})
	time.Sleep(50 * time.Millisecond)

	for _, s := range drain(ch) {
		if strings.Contains(s, EventFeedUpdated) {
			t.Errorf("unexpected feed event: %q", s)
		}
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "x", Data: 1})
	b.Publish(Event{Type: "x", Data: 2})
	time.Sleep(50 * time.Millisecond)

	msgs := drain(ch)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages", len(msgs))
	}
	first, _, _ := strings.Cut(msgs[0], "\n")
	second, _, _ := strings.Cut(msgs[1], "\n")
	if first == second {
		t.Errorf("duplicate id line %q", first)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &lockedRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishReload(posts.ReloadResult{Count: 1, Changed: []string{"x"}, Removed: []string{}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, "event: posts.reloaded") {
		t.Errorf("handler output missing event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < clientBuffer+6; i++ {
		b.Publish(Event{Type: "test", Data: i})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	b.Publish(Event{Type: "x", Data: nil})
	b.PublishReload(posts.ReloadResult{})
}

func idOf(t *testing.T, msg string) string {
	t.Helper()
	line, _, _ := strings.Cut(msg, "\n")
	id, ok := strings.CutPrefix(line, "id: ")
	if !ok {
		t.Fatalf("message without id: %q", msg)
	}
	return id
}

func TestSubscribeFrom_ReplaysMissedMessages(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	first := b.Subscribe()
	b.Publish(Event{Type: "one", Data: 1})
	b.Publish(Event{Type: "two", Data: 2})
	b.Publish(Event{Type: "three", Data: 3})
	time.Sleep(50 * time.Millisecond)
	msgs := drain(first)
	b.Unsubscribe(first)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages", len(msgs))
	}

	again := b.SubscribeFrom(idOf(t, msgs[0]))
	defer b.Unsubscribe(again)
	time.Sleep(50 * time.Millisecond)

	replayed := drain(again)
	if len(replayed) != 2 {
		t.Fatalf("replayed %d messages, want 2", len(replayed))
	}
	if !strings.Contains(replayed[0], "event: two") || !strings.Contains(replayed[1], "event: three") {
		t.Errorf("replay order = %q", replayed)
	}
}

func TestSubscribeFrom_UnknownIDReplaysNothing(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	b.Publish(Event{Type: "one", Data: 1})
	time.Sleep(20 * time.Millisecond)

	ch := b.SubscribeFrom("not-a-real-id")
	defer b.Unsubscribe(ch)
	time.Sleep(20 * time.Millisecond)
	if msgs := drain(ch); len(msgs) != 0 {
		t.Errorf("unexpected replay: %q", msgs)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	watcher := b.Subscribe()
	var firstID string
	for i := 0; i < historySize+5; i++ {
		b.Publish(Event{Type: "n", Data: i})
		if i == 0 {
			time.Sleep(20 * time.Millisecond)
			firstID = idOf(t, drain(watcher)[0])
		}
	}
	b.Unsubscribe(watcher)
	time.Sleep(50 * time.Millisecond)

	ch := b.SubscribeFrom(firstID)
	defer b.Unsubscribe(ch)
	time.Sleep(20 * time.Millisecond)
	if msgs := drain(ch); len(msgs) != 0 {
		t.Errorf("id evicted from history should replay nothing, got %d", len(msgs))
	}
}
