/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"
)

type lobbyState int

const (
	statePending lobbyState = iota
	stateActive
	stateEnded
)

func (s lobbyState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateActive:
		return "active"
	case stateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Player is one participant of a lobby. Its field tags double as the
// wire format of the players list in update messages.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lives int    `json:"lives"`
}

// Lobby holds the authoritative state of a single game. Every field
// below mu is guarded by it.
type Lobby struct {
	id string

	mu sync.Mutex

	players        []Player // join order is turn order
	currentWord    string
	currentSpeller string
	state          lobbyState

	// round is bumped on start and whenever a word draw is scheduled, so
	// a draw that fires after a restart or a newer draw does nothing.
	round uint64

	createdAt  time.Time
	lastActive time.Time
}

func newLobby(id string) *Lobby {
	now := time.Now()

	return &Lobby{
		id:         id,
		players:    []Player{},
		state:      statePending,
		createdAt:  now,
		lastActive: now,
	}
}

func (l *Lobby) ID() string {
	return l.id
}

func (l *Lobby) touchLocked() {
	l.lastActive = time.Now()
}

func (l *Lobby) indexOfLocked(playerID string) int {
	for i, p := range l.players {
		if p.ID == playerID {
			return i
		}
	}

	return -1
}

// removePlayerLocked drops a player while preserving the order of the rest.
func (l *Lobby) removePlayerLocked(playerID string) bool {
	i := l.indexOfLocked(playerID)
	if i < 0 {
		return false
	}

	l.players = append(l.players[:i], l.players[i+1:]...)

	return true
}

// nextSpellerLocked returns the player after the current speller, wrapping
// around. If the current speller is no longer seated, the turn goes to the
// first player. It reports false when nobody is left to take the turn.
func (l *Lobby) nextSpellerLocked() (string, bool) {
	if len(l.players) == 0 {
		return "", false
	}

	i := l.indexOfLocked(l.currentSpeller)
	if i < 0 {
		return l.players[0].ID, true
	}

	return l.players[(i+1)%len(l.players)].ID, true
}

// snapshotLocked copies the externally visible state, so it can be handed
// to write pumps that encode it after the lock is released.
func (l *Lobby) snapshotLocked() UpdateMessage {
	players := make([]Player, len(l.players))
	copy(players, l.players)

	return UpdateMessage{
		Type:           "update",
		Players:        players,
		CurrentWord:    l.currentWord,
		CurrentSpeller: l.currentSpeller,
	}
}

func (l *Lobby) snapshot() UpdateMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshotLocked()
}
