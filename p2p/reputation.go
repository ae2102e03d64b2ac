package p2p

import (
	"sync"
	"time"
)

const (
	initialReputation = 50
	banThreshold       = 20
	goodThreshold      = 60
	minReputation      = 0
	maxReputation      = 100

	defaultBanDuration = time.Hour
)

// PeerStatus is a peer's connection standing.
type PeerStatus int

const (
	StatusConnected PeerStatus = iota
	StatusDisconnected
	StatusBanned
)

func (s PeerStatus) String() string {
	switch s {
	case StatusConnected:
		return "Connected"
	case StatusBanned:
		return "Banned"
	default:
		return "Disconnected"
	}
}

// PeerRecord is one tracked peer's reputation and ban state.
type PeerRecord struct {
	ID         string
	Reputation int
	Status     PeerStatus
	BannedAt   time.Time
	BanUntil   time.Time
}

// ReputationTracker owns every known peer's score and ban state.
type ReputationTracker struct {
	mu          sync.Mutex
	peers       map[string]*PeerRecord
	banDuration time.Duration
}

func NewReputationTracker(banDuration time.Duration) *ReputationTracker {
	if banDuration <= 0 {
		banDuration = defaultBanDuration
	}
	return &ReputationTracker{peers: make(map[string]*PeerRecord), banDuration: banDuration}
}

func (r *ReputationTracker) record(id string) *PeerRecord {
	p, ok := r.peers[id]
	if !ok {
		p = &PeerRecord{ID: id, Reputation: initialReputation, Status: StatusConnected}
		r.peers[id] = p
	}
	return p
}

// Adjust applies delta to a peer's reputation, clamped to [0,100], and
// transitions to Banned if the result drops below the ban threshold.
func (r *ReputationTracker) Adjust(id string, delta int, now time.Time) PeerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.record(id)
	p.Reputation += delta
	if p.Reputation < minReputation {
		p.Reputation = minReputation
	}
	if p.Reputation > maxReputation {
		p.Reputation = maxReputation
	}
	if p.Reputation < banThreshold {
		p.Reputation = minReputation
		p.Status = StatusBanned
		p.BannedAt = now
		p.BanUntil = now.Add(r.banDuration)
	}
	return *p
}

// IsBanned reports whether id is currently under an active ban.
func (r *ReputationTracker) IsBanned(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	if !ok {
		return false
	}
	return p.Status == StatusBanned && now.Before(p.BanUntil)
}

// IsGoodStanding reports whether id's reputation meets the good threshold.
func (r *ReputationTracker) IsGoodStanding(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	return ok && p.Reputation >= goodThreshold
}

// ExpireBans clears the Banned status of any peer whose ban window has
// elapsed, resetting their reputation back to the initial value.
func (r *ReputationTracker) ExpireBans(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.peers {
		if p.Status == StatusBanned && !now.Before(p.BanUntil) {
			p.Status = StatusDisconnected
			p.Reputation = initialReputation
		}
	}
}

func (r *ReputationTracker) Get(id string) (PeerRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.peers[id]
	if !ok {
		return PeerRecord{}, false
	}
	return *p, true
}
