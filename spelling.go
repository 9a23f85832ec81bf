/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Spelldown
//
// Players join a lobby and take turns spelling the word the game reads out.
// A wrong spelling costs a life; a player with no lives left is out. The
// lobby ends once nobody is left in it.
//
// Features:
// - WebSockets per lobby ID: /spelling/:lobby and /spelling/:lobby/ws
// - Players identified by cookie (playerID)
// - Turn order is join order; only the current speller may submit
// - Every change is pushed as a full "update" snapshot to the lobby's players
// - A short pause between a turn resolving and the next word being drawn
// - Idle, abandoned lobbies auto-reaped after a configurable timeout
// - Random 8-char lobby IDs via crypto/rand, with server-side collision check
// - In-browser QR code to share the lobby, backed by go-qrcode

package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const playerCookieName = "spelldown_id"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func playerIDFromRequest(r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	return ""
}

func newPlayerCookie() *http.Cookie {
	return &http.Cookie{
		Name:     playerCookieName,
		Value:    uuid.NewString(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func lobbyNotFound(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(http.StatusNotFound)

	_, _ = io.WriteString(w, newPage("Lobby not found", "Lobby not found"))
}

// redirectNewLobby creates a lobby and sends the browser to it.
func redirectNewLobby(cfg *Config, path string, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		lobbyID := g.Create()

		http.Redirect(w, r, cfg.prefix+path+"/"+lobbyID, http.StatusSeeOther)
	}
}

// redirectExistingLobby handles the join form on the home page.
func redirectExistingLobby(cfg *Config, path string, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		lobbyID := strings.TrimSpace(r.PostFormValue("lobbyId"))

		if !g.Exists(lobbyID) {
			logf(cfg, "GAMES: %s asked for unknown lobby %q", realIP(r), lobbyID)
			lobbyNotFound(cfg, w)

			return
		}

		http.Redirect(w, r, cfg.prefix+path+"/"+lobbyID, http.StatusSeeOther)
	}
}

func serveLobbyPage(cfg *Config, g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		lobbyID := ps.ByName("lobby")
		if !g.Exists(lobbyID) {
			lobbyNotFound(cfg, w)

			return
		}

		if playerIDFromRequest(r) == "" {
			http.SetCookie(w, newPlayerCookie())
		}

		if err := writeAsset(cfg, w, r, "assets/spelling/index.html"); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Lobby %s to %s in %s", lobbyID, realIP(r), time.Since(startTime).Round(time.Microsecond))
	}
}

// serveWS upgrades the connection and runs the client's pumps; the read
// pump runs on the handler goroutine until the socket closes.
func serveWS(cfg *Config, g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		lobbyID := ps.ByName("lobby")
		if !g.Exists(lobbyID) {
			http.Error(w, "Lobby not found", http.StatusNotFound)

			return
		}

		header := http.Header{}

		playerID := playerIDFromRequest(r)
		if playerID == "" {
			cookie := newPlayerCookie()
			playerID = cookie.Value
			header.Add("Set-Cookie", cookie.String())
		}

		conn, err := upgrader.Upgrade(w, r, header)
		if err != nil {
			logf(cfg, "GAMES: Websocket upgrade for %s failed: %v", realIP(r), err)

			return
		}

		client := newClient(cfg, conn, lobbyID, playerID)

		client.trySend(SessionInfoMessage{
			Type:     "session_info",
			LobbyID:  lobbyID,
			PlayerID: playerID,
			Host:     g.IsEmpty(lobbyID),
		})

		logf(cfg, "GAMES: %s connected to %s as %s", realIP(r), lobbyID, playerID)

		go client.writePump()
		client.readPump(g)
	}
}

// registerSpellingGame sets up routes so that:
//   - $path (GET or POST)     → creates a lobby and redirects to it
//   - $path/join (POST)       → redirects to the lobby named in the form
//   - $path/:lobby            → HTML client
//   - $path/:lobby/ws         → WebSocket for that lobby
//   - $path/:lobby/qr         → PNG QR code for that lobby URL
func registerSpellingGame(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, errs chan<- error) *Game {
	g := newGame(cfg, vocabulary)

	if cfg.sessionTimeout > 0 {
		go g.reapLoop(ctx)
	}

	mux.GET(cfg.prefix+path, redirectNewLobby(cfg, path, g))
	mux.POST(cfg.prefix+path, redirectNewLobby(cfg, path, g))
	mux.POST(cfg.prefix+path+"/join", redirectExistingLobby(cfg, path, g))

	mux.GET(cfg.prefix+path+"/:lobby", serveLobbyPage(cfg, g, errs))
	mux.GET(cfg.prefix+path+"/:lobby/ws", serveWS(cfg, g))
	mux.GET(cfg.prefix+path+"/:lobby/qr", serveQRCode(cfg, g))

	return g
}
