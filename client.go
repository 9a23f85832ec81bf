/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Client is one websocket connection. Its send channel is the push
// channel the directory hands out to the broadcaster.
type Client struct {
	conn     *websocket.Conn
	send     chan any
	lobbyID  string // lobby of the URL the socket was opened on
	playerID string // identity from the player cookie
	limiter  *rateLimiter

	mu     sync.Mutex
	closed bool
	seats  []bindingKey // players this connection has joined as
}

func newClient(cfg *Config, conn *websocket.Conn, lobbyID, playerID string) *Client {
	return &Client{
		conn:     conn,
		send:     make(chan any, sendBuffer),
		lobbyID:  lobbyID,
		playerID: playerID,
		limiter:  newRateLimiter(cfg.rateLimitBurst, cfg.rateLimitInterval),
	}
}

// trySend queues msg without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *Client) trySend(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops the write pump once it has flushed what is already queued.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.closed
}

func (c *Client) seat(lobbyID, playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := bindingKey{lobbyID, playerID}
	for _, s := range c.seats {
		if s == key {
			return
		}
	}
	c.seats = append(c.seats, key)
}

// release drops one seat and reports whether the connection is left
// without any, in which case it should be closed.
func (c *Client) release(lobbyID, playerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := bindingKey{lobbyID, playerID}
	for i, s := range c.seats {
		if s == key {
			c.seats = append(c.seats[:i], c.seats[i+1:]...)

			break
		}
	}

	return len(c.seats) == 0
}

func (c *Client) takeSeats() []bindingKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	seats := c.seats
	c.seats = nil

	return seats
}

func (c *Client) readPump(g *Game) {
	defer func() {
		for _, s := range c.takeSeats() {
			g.Leave(s.lobby, s.player, c)
		}
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(g.cfg.maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				logf(g.cfg, "GAMES: Message from %s exceeded %d bytes", c.playerID, g.cfg.maxMessageSize)
			case websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				logf(g.cfg, "GAMES: Connection for %s closed unexpectedly: %v", c.playerID, err)
			}

			return
		}

		if !c.limiter.allow() {
			logf(g.cfg, "GAMES: Rate limit exceeded for %s; discarding message", c.playerID)

			continue
		}

		act, err := decodeAction(data, c.lobbyID, c.playerID)
		if err != nil {
			logf(g.cfg, "GAMES: Dropping message from %s: %v", c.playerID, err)

			continue
		}

		act.apply(g, c)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
