/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"fmt"
)

// Messages coming from clients
type ClientMessage struct {
	Type       string  `json:"type"`                 // "join", "start", "submit"
	LobbyID    string  `json:"lobbyId,omitempty"`    // all
	PlayerID   string  `json:"playerId,omitempty"`   // join / submit
	PlayerName string  `json:"playerName,omitempty"` // join; any string, including empty
	Spelling   *string `json:"spelling,omitempty"`   // submit
}

// UpdateMessage carries the full lobby state after every change.
type UpdateMessage struct {
	Type           string   `json:"type"` // "update"
	Players        []Player `json:"players"`
	CurrentWord    string   `json:"currentWord"`
	CurrentSpeller string   `json:"currentSpeller"`
}

// SessionInfoMessage is sent immediately on connect so the client knows
// which identity the server assigned it.
type SessionInfoMessage struct {
	Type     string `json:"type"` // "session_info"
	LobbyID  string `json:"lobbyId"`
	PlayerID string `json:"playerId"`
	Host     bool   `json:"host"` // true while nobody has joined yet
}

// NoticeMessage is for one-off notifications ("eliminated", ...).
type NoticeMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// action is a validated inbound message, ready to be applied to a game.
type action interface {
	apply(g *Game, c *Client)
}

type joinAction struct {
	lobbyID  string
	playerID string
	name     string
}

func (a joinAction) apply(g *Game, c *Client) {
	g.Join(a.lobbyID, a.playerID, a.name, c)
}

type startAction struct {
	lobbyID string
}

func (a startAction) apply(g *Game, _ *Client) {
	g.Start(a.lobbyID)
}

type submitAction struct {
	lobbyID  string
	playerID string
	spelling string
}

func (a submitAction) apply(g *Game, _ *Client) {
	g.Submit(a.lobbyID, a.playerID, a.spelling)
}

// decodeAction parses and validates a raw message. An omitted lobbyId or
// playerId falls back to the identity of the connection it arrived on.
func decodeAction(data []byte, lobbyID, playerID string) (action, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if msg.LobbyID == "" {
		msg.LobbyID = lobbyID
	}
	if msg.PlayerID == "" {
		msg.PlayerID = playerID
	}

	if msg.LobbyID == "" {
		return nil, fmt.Errorf("%w: lobbyId", ErrMissingField)
	}

	switch msg.Type {
	case "join":
		if msg.PlayerID == "" {
			return nil, fmt.Errorf("%w: playerId", ErrMissingField)
		}
		return joinAction{lobbyID: msg.LobbyID, playerID: msg.PlayerID, name: msg.PlayerName}, nil
	case "start":
		return startAction{lobbyID: msg.LobbyID}, nil
	case "submit":
		if msg.PlayerID == "" {
			return nil, fmt.Errorf("%w: playerId", ErrMissingField)
		}
		if msg.Spelling == nil {
			return nil, fmt.Errorf("%w: spelling", ErrMissingField)
		}

		return submitAction{lobbyID: msg.LobbyID, playerID: msg.PlayerID, spelling: *msg.Spelling}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, msg.Type)
	}
}
