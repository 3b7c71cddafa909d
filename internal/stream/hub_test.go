package stream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("session-1")
	defer hub.Unregister(client)

	payload := []byte("hello")
	hub.Broadcast("session-1", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("session-ev")
	defer hub.Unregister(client)

	hub.BroadcastEvent(Event{Type: "narration_played", SessionID: "session-ev", Payload: json.RawMessage(`{"event_id":"step-1"}`)})

	select {
	case msg := <-client.Send:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Type != "narration_played" || event.SessionID != "session-ev" {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for event")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch == "" {
		t.Fatalf("expected channel")
	}
	if sessionIDFromChannel(ch) != "abc" {
		t.Fatalf("unexpected session id")
	}
	if sessionIDFromChannel("bad") != "" {
		t.Fatalf("expected empty session id")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("session-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
}

func TestHubRedisCrossInstanceFanout(t *testing.T) {
	s := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientA.Close()
	clientB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientB.Close()

	hubA := NewHub(clientA)
	hubB := NewHub(clientB)

	localSub := hubA.Register("session-shared")
	defer hubA.Unregister(localSub)
	remoteSub := hubB.Register("session-shared")
	defer hubB.Unregister(remoteSub)

	// let both pattern subscriptions attach
	time.Sleep(100 * time.Millisecond)
	hubA.Broadcast("session-shared", []byte("pong"))

	select {
	case msg := <-remoteSub.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message on remote hub: %s", msg)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("cross-instance broadcast never reached the other hub")
	}

	// the publishing hub delivers to its own clients exactly once
	select {
	case msg := <-localSub.Send:
		if string(msg) != "pong" {
			t.Fatalf("unexpected message on local hub: %s", msg)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("local delivery missing")
	}
	select {
	case msg := <-localSub.Send:
		t.Fatalf("duplicate local delivery: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	clientNode := hub.Register("session-bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("session-bad", []byte("ping"))
}
