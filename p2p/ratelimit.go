package p2p

import (
	"sync"
	"time"
)

// rateLimits are the per-message-type sliding-window ceilings; message
// kinds with no entry here are unlimited.
var rateLimits = map[PayloadKind]int{
	KindPing:        60,
	KindBlock:       10,
	KindTransaction: 100,
}

const rateLimitWindow = time.Minute

// peerWindow is one peer's sliding-window counters, one per limited kind.
type peerWindow struct {
	timestamps map[PayloadKind][]time.Time
}

// RateLimiter enforces the per-peer/per-message-type sliding-window ceilings
// (Ping 60/min, Block 10/min, Transaction 100/min; unknown kinds pass).
type RateLimiter struct {
	mu    sync.Mutex
	peers map[string]*peerWindow
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{peers: make(map[string]*peerWindow)}
}

// Allow records an arrival of kind from peer at now and reports whether it
// is within the limit. Unlimited kinds always return true.
func (r *RateLimiter) Allow(peer string, kind PayloadKind, now time.Time) bool {
	limit, bounded := rateLimits[kind]
	if !bounded {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pw, ok := r.peers[peer]
	if !ok {
		pw = &peerWindow{timestamps: make(map[PayloadKind][]time.Time)}
		r.peers[peer] = pw
	}
	cutoff := now.Add(-rateLimitWindow)
	ts := pw.timestamps[kind]
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= limit {
		pw.timestamps[kind] = kept
		return false
	}
	pw.timestamps[kind] = append(kept, now)
	return true
}

// Forget drops all rate-limit state for a peer, called on disconnect/ban.
func (r *RateLimiter) Forget(peer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, peer)
}
