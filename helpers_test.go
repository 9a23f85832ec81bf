/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"testing"
	"time"
)

// fixedWords hands out its words in order, wrapping around.
type fixedWords struct {
	mu    sync.Mutex
	words []string
	drawn int
}

func (f *fixedWords) Draw() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	w := f.words[f.drawn%len(f.words)]
	f.drawn++

	return w
}

func (f *fixedWords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.drawn
}

// manualScheduler collects scheduled callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (m *manualScheduler) after(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = append(m.pending, f)
	m.delays = append(m.delays, d)
}

func (m *manualScheduler) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending)
}

// fire runs every pending callback in scheduling order.
func (m *manualScheduler) fire() int {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, f := range pending {
		f()
	}

	return len(pending)
}

func testConfig() *Config {
	return &Config{
		bind:              "127.0.0.1",
		lives:             3,
		maxMessageSize:    512,
		port:              8080,
		rateLimitBurst:    50,
		rateLimitInterval: time.Second,
		wordDelay:         2 * time.Second,
	}
}

func newTestGame(t *testing.T, words ...string) (*Game, *fixedWords, *manualScheduler) {
	t.Helper()

	if len(words) == 0 {
		words = []string{"apple"}
	}

	supply := &fixedWords{words: words}
	sched := &manualScheduler{}

	g := newGame(testConfig(), supply)
	g.after = sched.after

	return g, supply, sched
}

func newTestClient() *Client {
	return &Client{send: make(chan any, 64)}
}

// drain returns every message queued on the client without blocking.
func drain(c *Client) []any {
	var msgs []any

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func updatesIn(msgs []any) []UpdateMessage {
	var updates []UpdateMessage

	for _, msg := range msgs {
		if u, ok := msg.(UpdateMessage); ok {
			updates = append(updates, u)
		}
	}

	return updates
}

func mustLobby(t *testing.T, g *Game, id string) *Lobby {
	t.Helper()

	l, ok := g.lobbies.Get(id)
	if !ok {
		t.Fatalf("Expected lobby %s to exist", id)
	}

	return l
}

func livesOf(u UpdateMessage, playerID string) int {
	for _, p := range u.Players {
		if p.ID == playerID {
			return p.Lives
		}
	}

	return -1
}
