/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"
)

// rateLimiter is a token bucket holding up to capacity tokens, refilled
// at capacity tokens per interval. The bucket is kept as elapsed-time
// credit in whole nanoseconds, and one token costs interval/capacity.
type rateLimiter struct {
	mu        sync.Mutex
	credit    time.Duration
	cost      time.Duration
	limit     time.Duration
	lastCheck time.Time
	now       func() time.Time
}

func newRateLimiter(capacity int, interval time.Duration) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	cost := max(interval/time.Duration(capacity), 1)
	limit := cost * time.Duration(capacity)

	return &rateLimiter{
		credit:    limit,
		cost:      cost,
		limit:     limit,
		lastCheck: time.Now(),
		now:       time.Now,
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastCheck)
	rl.lastCheck = now

	if elapsed > 0 {
		rl.credit = min(rl.limit, rl.credit+min(elapsed, rl.limit))
	}

	if rl.credit < rl.cost {
		return false
	}

	rl.credit -= rl.cost

	return true
}
