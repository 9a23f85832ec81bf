/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPublishSkipsUnboundAndClosedChannels(t *testing.T) {
	g, _, _ := newTestGame(t)
	id := g.Create()

	open, closed := newTestClient(), newTestClient()
	g.Join(id, "open", "Open", open)
	g.Join(id, "unbound", "Unbound", nil)
	g.Join(id, "closed", "Closed", closed)
	closed.close()
	drain(open)

	l := mustLobby(t, g, id)
	l.mu.Lock()
	sent := g.publishLocked(l)
	l.mu.Unlock()

	if sent != 1 {
		t.Errorf("Expected 1 recipient, got %d", sent)
	}
	if n := len(updatesIn(drain(open))); n != 1 {
		t.Errorf("Expected the open client to get 1 update, got %d", n)
	}
}

func TestPublishContinuesPastFullBuffer(t *testing.T) {
	g, _, _ := newTestGame(t)
	id := g.Create()

	full := &Client{send: make(chan any, 1)}
	after := newTestClient()

	g.Join(id, "full", "Full", full)
	g.Join(id, "after", "After", after)
	drain(after)

	l := mustLobby(t, g, id)
	l.mu.Lock()
	sent := g.publishLocked(l)
	l.mu.Unlock()

	if sent != 1 {
		t.Errorf("Expected only the client with room to receive, got %d", sent)
	}
	if n := len(updatesIn(drain(after))); n != 1 {
		t.Errorf("Expected 1 update behind the full client, got %d", n)
	}
	if !full.isOpen() {
		t.Error("A full buffer must not close the client")
	}
}

func TestSnapshotIsDetachedFromLobby(t *testing.T) {
	g, _, _ := newTestGame(t, "mountain")
	id := g.Create()

	g.Join(id, "p1", "Alice", nil)
	g.Join(id, "p2", "Bob", nil)
	g.Start(id)

	l := mustLobby(t, g, id)
	before := l.snapshot()

	g.Submit(id, "p1", "molehill")

	if before.Players[0].Lives != 3 {
		t.Errorf("Expected an earlier snapshot to keep 3 lives, got %d", before.Players[0].Lives)
	}
}

func TestUpdateMessageWireFormat(t *testing.T) {
	g, _, _ := newTestGame(t, "elephant")
	id := g.Create()

	g.Join(id, "p1", "Alice", nil)
	g.Join(id, "p2", "Bob", nil)
	g.Start(id)
	g.Submit(id, "p1", "elefant")

	sent := mustLobby(t, g, id).snapshot()

	data, err := json.Marshal(sent)
	if err != nil {
		t.Fatalf("Failed to marshal update: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal update: %v", err)
	}
	for _, key := range []string{"type", "players", "currentWord", "currentSpeller"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected key %q in %s", key, data)
		}
	}
	if raw["type"] != "update" {
		t.Errorf("Expected type %q, got %v", "update", raw["type"])
	}

	var received UpdateMessage
	if err := json.Unmarshal(data, &received); err != nil {
		t.Fatalf("Failed to decode update: %v", err)
	}

	want := []Player{
		{ID: "p1", Name: "Alice", Lives: 2},
		{ID: "p2", Name: "Bob", Lives: 3},
	}
	if !reflect.DeepEqual(received.Players, want) {
		t.Errorf("Expected players %+v, got %+v", want, received.Players)
	}
	if received.CurrentSpeller != "p2" || received.CurrentWord != "elephant" {
		t.Errorf("Expected (elephant, p2), got (%s, %s)", received.CurrentWord, received.CurrentSpeller)
	}
}
