package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	defer hub.Unregister(client)

	hub.BroadcastAll([]byte("hello"))

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(nil)
	first := hub.Register()
	second := hub.Register()
	defer hub.Unregister(first)
	defer hub.Unregister(second)

	hub.BroadcastAll([]byte("everyone"))

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.Send:
			if string(msg) != "everyone" {
				t.Fatalf("unexpected message")
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for message")
		}
	}
}

func TestLateSubscriberMissesEvent(t *testing.T) {
	hub := NewHub(nil)
	hub.BroadcastAll([]byte("gone"))

	client := hub.Register()
	defer hub.Unregister(client)

	select {
	case <-client.Send:
		t.Fatalf("expected no replay for late subscriber")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	defer hub.Unregister(client)

	// fill the buffer without draining; further broadcasts must not block
	for i := 0; i < 100; i++ {
		hub.BroadcastAll([]byte("burst"))
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register()
	hub.Unregister(client)
	if _, ok := <-client.Send; ok {
		t.Fatalf("expected channel closed")
	}

	// repeated unregister is a no-op
	hub.Unregister(client)
}

func TestHubRedisBridge(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	hub := NewHub(rdb)
	client := hub.Register()
	defer hub.Unregister(client)

	hub.BroadcastAll([]byte("ping"))

	select {
	case msg := <-client.Send:
		if string(msg) != "ping" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for broadcast")
	}

	// a message published by another hub instance is forwarded
	time.Sleep(20 * time.Millisecond)
	env, _ := json.Marshal(envelope{Origin: "other-hub", Payload: []byte(`"pong"`)})
	if err := rdb.Publish(context.Background(), redisChannel, env).Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	select {
	case msg := <-client.Send:
		if string(msg) != `"pong"` {
			t.Fatalf("unexpected message from redis: %s", msg)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for redis message")
	}
}

func TestHubIgnoresOwnRedisEcho(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	hub := NewHub(rdb)
	client := hub.Register()
	defer hub.Unregister(client)

	time.Sleep(20 * time.Millisecond)
	hub.BroadcastAll([]byte("once"))

	// direct delivery
	select {
	case <-client.Send:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("timeout waiting for direct delivery")
	}

	// the redis echo of our own publish must not be delivered again
	select {
	case msg := <-client.Send:
		t.Fatalf("unexpected duplicate delivery: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer rdb.Close()

	hub := NewHub(rdb)
	client := hub.Register()
	defer hub.Unregister(client)

	hub.BroadcastAll([]byte("ping"))
}
