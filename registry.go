/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"sync"
	"time"
)

const lobbyIDLength = 8

// Registry holds every live lobby, keyed by lobby ID, so each
// $path/$lobbyid is its own isolated game.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby
}

func newRegistry() *Registry {
	return &Registry{
		lobbies: make(map[string]*Lobby),
	}
}

// randomLobbyID returns n characters drawn uniformly from [A-Za-z0-9],
// discarding random bytes that would bias the modulo.
func randomLobbyID(n int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	const max = byte(255 - (256 % len(letters)))

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}

		for _, b := range buf {
			if b <= max {
				out = append(out, letters[int(b)%len(letters)])
				if len(out) == n {
					return string(out)
				}
			}
		}
	}

	return string(out)
}

// Create stores a new, empty lobby under an unused ID and returns the ID.
func (r *Registry) Create() string {
	for {
		id := randomLobbyID(lobbyIDLength)

		r.mu.Lock()
		if _, exists := r.lobbies[id]; !exists {
			r.lobbies[id] = newLobby(id)
			r.mu.Unlock()

			return id
		}
		r.mu.Unlock()
	}
}

func (r *Registry) Get(id string) (*Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.lobbies[id]

	return l, ok
}

// Remove deletes a lobby. Removing an unknown ID is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lobbies, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.lobbies)
}

// Reap ends and removes every lobby last active before cutoff for which
// connected reports false. It returns the IDs it removed.
func (r *Registry) Reap(cutoff time.Time, connected func(*Lobby) bool) []string {
	r.mu.RLock()
	candidates := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		candidates = append(candidates, l)
	}
	r.mu.RUnlock()

	var reaped []string

	for _, l := range candidates {
		l.mu.Lock()
		if l.state != stateEnded && l.lastActive.Before(cutoff) && !connected(l) {
			l.state = stateEnded
			r.Remove(l.id)
			reaped = append(reaped, l.id)
		}
		l.mu.Unlock()
	}

	return reaped
}
