/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *Game) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := testConfig()
	cfg.sessionTimeout = 0

	errs := make(chan error, 16)
	go drainErrors(ctx, errs)

	mux, g := newRouter(ctx, cfg, errs)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, g
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "Ok\n" {
		t.Errorf("Expected 200 Ok, got %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on the health check")
	}
}

func TestCreateLobbyRedirects(t *testing.T) {
	srv, g := newTestServer(t)

	resp, err := noRedirectClient().Post(srv.URL+"/spelling", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	id := strings.TrimPrefix(loc, "/spelling/")
	if len(id) != lobbyIDLength {
		t.Fatalf("Expected a redirect to a new lobby, got %q", loc)
	}
	if !g.Exists(id) {
		t.Errorf("Expected lobby %s to be registered", id)
	}
}

func TestJoinForm(t *testing.T) {
	srv, g := newTestServer(t)
	id := g.Create()

	resp, err := noRedirectClient().PostForm(srv.URL+"/spelling/join", url.Values{"lobbyId": {" " + id + " "}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/spelling/"+id {
		t.Errorf("Expected a redirect to /spelling/%s, got %d %q", id, resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, err = noRedirectClient().PostForm(srv.URL+"/spelling/join", url.Values{"lobbyId": {"missing"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(body), "Lobby not found") {
		t.Errorf("Expected 404 Lobby not found, got %d", resp.StatusCode)
	}
}

func TestLobbyPage(t *testing.T) {
	srv, g := newTestServer(t)
	id := g.Create()

	resp, err := http.Get(srv.URL + "/spelling/" + id)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == playerCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("Expected the lobby page to assign a player cookie")
	}

	resp, err = http.Get(srv.URL + "/spelling/missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown lobby, got %d", resp.StatusCode)
	}
}

func TestQRCode(t *testing.T) {
	srv, g := newTestServer(t)
	id := g.Create()

	resp, err := http.Get(srv.URL + "/spelling/" + id + "/qr")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("Expected image/png, got %q", resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("Expected a PNG body")
	}
}

func dialLobby(t *testing.T, srv *httptest.Server, lobbyID, playerID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/spelling/" + lobbyID + "/ws"

	header := http.Header{}
	header.Set("Cookie", playerCookieName+"="+playerID)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readType[T any](t *testing.T, conn *websocket.Conn, want string) T {
	t.Helper()

	for {
		var raw map[string]any

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read %s: %v", want, err)
		}

		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("Invalid message %q: %v", data, err)
		}
		if raw["type"] != want {
			continue
		}

		var msg T
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Invalid %s message %q: %v", want, data, err)
		}

		return msg
	}
}

func TestWebSocketGameFlow(t *testing.T) {
	srv, g := newTestServer(t)
	id := g.Create()

	conn := dialLobby(t, srv, id, "alice-id")

	info := readType[SessionInfoMessage](t, conn, "session_info")
	if info.LobbyID != id || info.PlayerID != "alice-id" || !info.Host {
		t.Fatalf("Unexpected session info %+v", info)
	}

	if err := conn.WriteJSON(map[string]string{"type": "join", "playerName": "Alice"}); err != nil {
		t.Fatalf("Failed to send join: %v", err)
	}

	update := readType[UpdateMessage](t, conn, "update")
	if len(update.Players) != 1 || update.Players[0].Name != "Alice" || update.Players[0].Lives != 3 {
		t.Fatalf("Unexpected players after join: %+v", update.Players)
	}
	if update.CurrentSpeller != "" || update.CurrentWord != "" {
		t.Errorf("Expected no turn before start, got %+v", update)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Failed to send garbage: %v", err)
	}

	if err := conn.WriteJSON(map[string]string{"type": "start"}); err != nil {
		t.Fatalf("Failed to send start: %v", err)
	}

	update = readType[UpdateMessage](t, conn, "update")
	if update.CurrentSpeller != "alice-id" {
		t.Errorf("Expected alice-id to spell first, got %q", update.CurrentSpeller)
	}
	if !slices.Contains(vocabulary, update.CurrentWord) {
		t.Errorf("Expected a vocabulary word, got %q", update.CurrentWord)
	}
}

func TestWebSocketSecondPlayerIsNotHost(t *testing.T) {
	srv, g := newTestServer(t)
	id := g.Create()

	first := dialLobby(t, srv, id, "p1")
	readType[SessionInfoMessage](t, first, "session_info")

	if err := first.WriteJSON(map[string]string{"type": "join", "playerName": "One"}); err != nil {
		t.Fatalf("Failed to send join: %v", err)
	}
	readType[UpdateMessage](t, first, "update")

	second := dialLobby(t, srv, id, "p2")

	info := readType[SessionInfoMessage](t, second, "session_info")
	if info.Host {
		t.Error("Expected the second connection not to be host")
	}
}

func TestWebSocketUnknownLobby(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/spelling/missing/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Expected the dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %v", resp)
	}
}
