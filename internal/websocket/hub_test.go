// EC Sentinel - Behavioral Anticheat Telemetry for FiveM Servers
// Copyright 2026 NRGG4B3
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/NRGG4B3/ec-sentinel

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"
)

type hubRun struct {
	err  error
	done chan struct{}
}

func newHubForTest(t *testing.T) (*Hub, context.CancelFunc, *hubRun) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	run := &hubRun{done: make(chan struct{})}
	go func() {
		run.err = hub.RunWithContext(ctx)
		close(run.done)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-run.done:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub, cancel, run
}

func waitForClientCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
}

func TestHubRegisterUnregister(t *testing.T) {
	hub, _, _ := newHubForTest(t)

	client := &Client{id: 1, hub: hub, send: make(chan Message, 256)}
	hub.Register <- client
	waitForClientCount(t, hub, 1)

	hub.Unregister <- client
	waitForClientCount(t, hub, 0)

	// Unregistering closes the client's send channel.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("send channel delivered a message instead of closing")
		}
	case <-time.After(2 * time.Second):
		t.Error("send channel not closed after unregister")
	}
}

func TestHubBroadcastDelivery(t *testing.T) {
	hub, _, _ := newHubForTest(t)

	client := &Client{id: 1, hub: hub, send: make(chan Message, 256)}
	hub.Register <- client
	waitForClientCount(t, hub, 1)

	hub.BroadcastJSON(MessageTypeDetection, map[string]string{"playerId": "p1"})

	select {
	case msg := <-client.send:
		if msg.Type != MessageTypeDetection {
			t.Errorf("message type = %q, want %q", msg.Type, MessageTypeDetection)
		}
		data, ok := msg.Data.(map[string]string)
		if !ok || data["playerId"] != "p1" {
			t.Errorf("message data = %v", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestHubDropsStalledClient(t *testing.T) {
	hub, _, _ := newHubForTest(t)

	// A send buffer of one that is never drained: the second broadcast
	// finds it full and evicts the client.
	stalled := &Client{id: 1, hub: hub, send: make(chan Message, 1)}
	hub.Register <- stalled
	waitForClientCount(t, hub, 1)

	hub.BroadcastJSON(MessageTypeStatsUpdate, nil)
	hub.BroadcastJSON(MessageTypeStatsUpdate, nil)
	waitForClientCount(t, hub, 0)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, cancel, run := newHubForTest(t)

	a := &Client{id: 1, hub: hub, send: make(chan Message, 256)}
	b := &Client{id: 2, hub: hub, send: make(chan Message, 256)}
	hub.Register <- a
	hub.Register <- b
	waitForClientCount(t, hub, 2)

	cancel()
	select {
	case <-run.done:
		if !errors.Is(run.err, context.Canceled) {
			t.Errorf("RunWithContext returned %v, want context.Canceled", run.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("client count after shutdown = %d, want 0", hub.GetClientCount())
	}
	for _, c := range []*Client{a, b} {
		select {
		case _, ok := <-c.send:
			if ok {
				t.Error("send channel delivered a message instead of closing")
			}
		default:
			t.Error("send channel not closed after shutdown")
		}
	}
}
