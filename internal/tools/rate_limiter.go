package tools

import (
	"fmt"
	"sync"
	"time"
)

// ToolRateLimiter is a sliding-window limiter keyed by caller (usually the
// agent id). It bounds how often one agent can hit the memory server through
// tools; hooks are not limited.
type ToolRateLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	max     int
	window  time.Duration
}

// NewToolRateLimiter allows max calls per window per key. max <= 0 returns nil
// (no limiting).
func NewToolRateLimiter(max int, window time.Duration) *ToolRateLimiter {
	if max <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ToolRateLimiter{
		windows: make(map[string][]time.Time),
		max:     max,
		window:  window,
	}
}

// Allow records a call for key, or returns an error if the window is full.
func (rl *ToolRateLimiter) Allow(key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entries := prune(rl.windows[key], now.Add(-rl.window))
	if len(entries) >= rl.max {
		rl.windows[key] = entries
		return fmt.Errorf("tool rate limit exceeded: %d calls per %s for %s", rl.max, rl.window, key)
	}
	rl.windows[key] = append(entries, now)
	return nil
}

// Cleanup drops keys whose calls have all left the window.
func (rl *ToolRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window)
	for key, entries := range rl.windows {
		entries = prune(entries, cutoff)
		if len(entries) == 0 {
			delete(rl.windows, key)
			continue
		}
		rl.windows[key] = entries
	}
}

// prune drops timestamps before cutoff; entries are in insertion order.
func prune(entries []time.Time, cutoff time.Time) []time.Time {
	start := 0
	for start < len(entries) && entries[start].Before(cutoff) {
		start++
	}
	return entries[start:]
}
