/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "sync"

type bindingKey struct {
	lobby  string
	player string
}

// Directory maps a seated player to the websocket client that currently
// speaks for it. It is shared by all lobbies.
type Directory struct {
	mu       sync.RWMutex
	bindings map[bindingKey]*Client
}

func newDirectory() *Directory {
	return &Directory{
		bindings: make(map[bindingKey]*Client),
	}
}

// Bind registers c for the player, replacing any earlier binding.
func (d *Directory) Bind(lobbyID, playerID string, c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bindings[bindingKey{lobbyID, playerID}] = c
}

// Unbind removes the player's binding. Its client is closed unless the
// same connection is still seated as another player.
func (d *Directory) Unbind(lobbyID, playerID string) {
	d.mu.Lock()
	key := bindingKey{lobbyID, playerID}
	c, ok := d.bindings[key]
	delete(d.bindings, key)
	d.mu.Unlock()

	if ok && c.release(lobbyID, playerID) {
		c.close()
	}
}

// UnbindClient removes the player's binding only while it still points at
// c, so a dropped connection cannot tear down a newer one.
func (d *Directory) UnbindClient(lobbyID, playerID string, c *Client) bool {
	d.mu.Lock()
	key := bindingKey{lobbyID, playerID}
	current, ok := d.bindings[key]
	if !ok || current != c {
		d.mu.Unlock()

		return false
	}
	delete(d.bindings, key)
	d.mu.Unlock()

	if c.release(lobbyID, playerID) {
		c.close()
	}

	return true
}

// UnbindLobby releases every binding that belongs to the lobby, closing
// the clients that are left with no seat elsewhere.
func (d *Directory) UnbindLobby(lobbyID string) {
	d.mu.Lock()
	released := make(map[bindingKey]*Client)
	for key, c := range d.bindings {
		if key.lobby == lobbyID {
			delete(d.bindings, key)
			released[key] = c
		}
	}
	d.mu.Unlock()

	for key, c := range released {
		if c.release(key.lobby, key.player) {
			c.close()
		}
	}
}

func (d *Directory) ChannelFor(lobbyID, playerID string) (*Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.bindings[bindingKey{lobbyID, playerID}]

	return c, ok
}

// Connected counts the lobby's bindings whose clients are still open.
func (d *Directory) Connected(lobbyID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for key, c := range d.bindings {
		if key.lobby == lobbyID && c.isOpen() {
			n++
		}
	}

	return n
}
