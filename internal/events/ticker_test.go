package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/outboundhq/dialer/internal/queue"
	"github.com/rs/zerolog"
)

func TestNewTicker(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)
	q := queue.New(time.Hour, logger)
	ticker := NewTicker(hub, q, 1*time.Second, logger)

	if ticker == nil {
		t.Fatal("expected ticker to be created")
	}

	if ticker.hub != hub {
		t.Error("ticker hub not set correctly")
	}

	if ticker.interval != 1*time.Second {
		t.Errorf("expected interval 1s, got %v", ticker.interval)
	}
}

func TestTickerBroadcastsQueueStatus(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)
	go hub.Run()

	client := &Client{
		id:   "observer",
		hub:  hub,
		send: make(chan []byte, 10),
	}
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	q := queue.New(time.Hour, logger)
	ticker := NewTicker(hub, q, 20*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ticker.Start(ctx)

	select {
	case msg := <-client.send:
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("invalid event JSON: %v", err)
		}
		if event.Type != "queue_status" {
			t.Errorf("expected queue_status event, got %s", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no queue status broadcast received")
	}
}

func TestTickerStopsOnContextCancel(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)
	go hub.Run()

	q := queue.New(time.Hour, logger)
	ticker := NewTicker(hub, q, 50*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool)
	go func() {
		ticker.Start(ctx)
		done <- true
	}()

	// Let it run for a bit
	time.Sleep(100 * time.Millisecond)

	// Cancel context
	cancel()

	// Wait for ticker to stop
	select {
	case <-done:
		// Success - ticker stopped
	case <-time.After(1 * time.Second):
		t.Error("ticker did not stop within timeout after context cancel")
	}
}
