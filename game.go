/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"strings"
	"time"
)

// Game ties the lobby registry, the connection directory and the word
// supply together, and applies player actions to lobbies.
//
// Every action takes the target lobby's lock for its whole duration,
// including the broadcast that follows it, so actions on one lobby never
// interleave. Broadcasts only queue onto client buffers; socket writes
// happen in each client's write pump.
type Game struct {
	cfg     *Config
	lobbies *Registry
	conns   *Directory
	words   WordSource

	// after runs f once d has elapsed. Tests replace it to fire
	// scheduled word draws by hand.
	after func(d time.Duration, f func())
}

func newGame(cfg *Config, words WordSource) *Game {
	return &Game{
		cfg:     cfg,
		lobbies: newRegistry(),
		conns:   newDirectory(),
		words:   words,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Create opens a new, empty lobby and returns its ID.
func (g *Game) Create() string {
	id := g.lobbies.Create()

	logf(g.cfg, "GAMES: Created lobby %s", id)

	return id
}

// Exists reports whether the lobby is live.
func (g *Game) Exists(lobbyID string) bool {
	_, ok := g.lobbies.Get(lobbyID)

	return ok
}

// IsEmpty reports whether nobody has joined the lobby yet.
func (g *Game) IsEmpty(lobbyID string) bool {
	l, ok := g.lobbies.Get(lobbyID)
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.players) == 0
}

// Join seats a player with full lives at the end of the turn order and,
// when c is non-nil, binds c as the player's push channel. Joining again
// with an ID that is already seated only renames the player and rebinds.
func (g *Game) Join(lobbyID, playerID, name string, c *Client) {
	if playerID == "" {
		return
	}

	l, ok := g.lobbies.Get(lobbyID)
	if !ok {
		logf(g.cfg, "GAMES: Ignoring join for unknown lobby %s", lobbyID)

		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == stateEnded {
		return
	}

	l.touchLocked()

	if i := l.indexOfLocked(playerID); i >= 0 {
		l.players[i].Name = name
	} else {
		l.players = append(l.players, Player{
			ID:    playerID,
			Name:  name,
			Lives: g.cfg.lives,
		})
		logf(g.cfg, "GAMES: Player %q joined %s", name, l.id)
	}

	if c != nil {
		g.conns.Bind(l.id, playerID, c)
		c.seat(l.id, playerID)
	}

	g.publishLocked(l)
}

// Start hands the first turn to the first player to have joined and draws
// the opening word. Starting a running lobby starts it over.
func (g *Game) Start(lobbyID string) {
	l, ok := g.lobbies.Get(lobbyID)
	if !ok {
		logf(g.cfg, "GAMES: Ignoring start for unknown lobby %s", lobbyID)

		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == stateEnded || len(l.players) == 0 {
		return
	}

	l.touchLocked()

	l.state = stateActive
	l.currentSpeller = l.players[0].ID
	l.currentWord = g.words.Draw()
	l.round++

	logf(g.cfg, "GAMES: Started lobby %s with %d players", l.id, len(l.players))

	g.publishLocked(l)
}

// Submit resolves the current speller's attempt. Anything from a player
// who does not hold the turn is discarded without touching the lobby.
func (g *Game) Submit(lobbyID, playerID, spelling string) {
	l, ok := g.lobbies.Get(lobbyID)
	if !ok {
		logf(g.cfg, "GAMES: Ignoring submission for unknown lobby %s", lobbyID)

		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateActive {
		return
	}

	i := l.indexOfLocked(playerID)
	if i < 0 {
		return
	}

	if playerID != l.currentSpeller {
		logf(g.cfg, "GAMES: Discarding out-of-turn submission from %q in %s", l.players[i].Name, l.id)

		return
	}

	l.touchLocked()

	if strings.EqualFold(spelling, l.currentWord) {
		logf(g.cfg, "GAMES: %q spelled %q correctly in %s", l.players[i].Name, l.currentWord, l.id)
	} else {
		l.players[i].Lives--
		logf(g.cfg, "GAMES: %q misspelled %q in %s (%d lives left)", l.players[i].Name, l.currentWord, l.id, l.players[i].Lives)

		if l.players[i].Lives <= 0 {
			g.eliminateLocked(l, playerID)

			if len(l.players) == 0 {
				g.endLocked(l)

				return
			}
		}
	}

	next, ok := l.nextSpellerLocked()
	if !ok {
		g.endLocked(l)

		return
	}
	l.currentSpeller = next

	g.publishLocked(l)
	g.scheduleDrawLocked(l)
}

// Leave is called when a connection goes away. The player keeps its seat;
// only the channel binding is released, and only if c still owns it.
func (g *Game) Leave(lobbyID, playerID string, c *Client) {
	if g.conns.UnbindClient(lobbyID, playerID, c) {
		logf(g.cfg, "GAMES: Player %s disconnected from %s", playerID, lobbyID)
	}
}

// eliminateLocked unseats a player and releases its channel, telling it
// why first.
func (g *Game) eliminateLocked(l *Lobby, playerID string) {
	l.removePlayerLocked(playerID)

	if c, ok := g.conns.ChannelFor(l.id, playerID); ok {
		c.trySend(NoticeMessage{
			Type:    "eliminated",
			Message: "You are out of lives.",
		})
	}
	g.conns.Unbind(l.id, playerID)

	logf(g.cfg, "GAMES: Player %s eliminated from %s", playerID, l.id)
}

// endLocked is the terminal transition: the lobby leaves the registry and
// every remaining binding is released.
func (g *Game) endLocked(l *Lobby) {
	l.state = stateEnded
	l.currentSpeller = ""

	g.lobbies.Remove(l.id)
	g.conns.UnbindLobby(l.id)

	logf(g.cfg, "GAMES: Lobby %s ended", l.id)
}

// scheduleDrawLocked arranges for a fresh word once the configured delay
// has passed. Only the lobby ID and round are captured; the lobby itself
// is looked up again when the timer fires.
func (g *Game) scheduleDrawLocked(l *Lobby) {
	l.round++

	id, round := l.id, l.round

	g.after(g.cfg.wordDelay, func() {
		g.drawNext(id, round)
	})
}

func (g *Game) drawNext(lobbyID string, round uint64) {
	l, ok := g.lobbies.Get(lobbyID)
	if !ok {
		logf(g.cfg, "GAMES: Skipping word draw for ended lobby %s", lobbyID)

		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateActive || l.round != round {
		return
	}

	l.currentWord = g.words.Draw()

	g.publishLocked(l)
}

// reapLoop periodically ends lobbies that have been idle longer than the
// session timeout and have nobody connected.
func (g *Game) reapLoop(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.sessionTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.reapIdle(time.Now().Add(-g.cfg.sessionTimeout))
		}
	}
}

func (g *Game) reapIdle(cutoff time.Time) []string {
	reaped := g.lobbies.Reap(cutoff, func(l *Lobby) bool {
		return g.conns.Connected(l.id) > 0
	})

	for _, id := range reaped {
		g.conns.UnbindLobby(id)
		logf(g.cfg, "GAMES: Reaped idle lobby %s", id)
	}

	return reaped
}
