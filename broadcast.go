/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

// publishLocked pushes the lobby's current state to every seated player
// that has an open channel. Players without one are skipped; a failed
// send never holds up the others.
func (g *Game) publishLocked(l *Lobby) int {
	msg := l.snapshotLocked()

	sent := 0
	for _, p := range msg.Players {
		c, ok := g.conns.ChannelFor(l.id, p.ID)
		if !ok {
			continue
		}

		if c.trySend(msg) {
			sent++
		}
	}

	logf(g.cfg, "GAMES: Published state of %s to %d/%d players", l.id, sent, len(msg.Players))

	return sent
}
