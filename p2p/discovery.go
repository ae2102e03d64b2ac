package p2p

import (
	"sync"
	"time"
)

const (
	maxDiscoveryRetries = 3
	minRetryInterval    = 60 * time.Second
	addressRetention    = 24 * time.Hour
)

// knownAddress is one discovered peer address and its dial history.
type knownAddress struct {
	Address    string
	FirstSeen  time.Time
	LastSeen   time.Time
	LastTry    time.Time
	Retries    int
	Bootstrap  bool
}

// Discovery tracks bootstrap and gossiped peer addresses, deciding which are
// due for a connection attempt: bootstrap addresses first, then others,
// each backed off at least minRetryInterval apart for up to
// maxDiscoveryRetries attempts, with stale entries aged out after
// addressRetention.
type Discovery struct {
	mu        sync.Mutex
	addrs     map[string]*knownAddress
	bootstrap []string
}

func NewDiscovery(bootstrap []string) *Discovery {
	d := &Discovery{addrs: make(map[string]*knownAddress), bootstrap: bootstrap}
	return d
}

// Seed registers the bootstrap addresses as known, marked Bootstrap so
// DueForDial prioritises them.
func (d *Discovery) Seed(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.bootstrap {
		d.addrs[a] = &knownAddress{Address: a, FirstSeen: now, LastSeen: now, Bootstrap: true}
	}
}

// Learn records an address discovered via gossip (PeerListResponse etc.).
func (d *Discovery) Learn(addr string, now time.Time) {
	if err := ValidateAddress(addr); err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.addrs[addr]; ok {
		existing.LastSeen = now
		return
	}
	d.addrs[addr] = &knownAddress{Address: addr, FirstSeen: now, LastSeen: now}
}

// DueForDial returns addresses eligible for a connection attempt right now:
// not yet exhausted (< maxDiscoveryRetries), not retried within
// minRetryInterval, bootstrap addresses ordered first.
func (d *Discovery) DueForDial(now time.Time) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var bootstrap, other []string
	for addr, ka := range d.addrs {
		if ka.Retries >= maxDiscoveryRetries {
			continue
		}
		if !ka.LastTry.IsZero() && now.Sub(ka.LastTry) < minRetryInterval {
			continue
		}
		if ka.Bootstrap {
			bootstrap = append(bootstrap, addr)
		} else {
			other = append(other, addr)
		}
	}
	return append(bootstrap, other...)
}

// RecordAttempt marks addr as just having been dialed, incrementing its
// retry count.
func (d *Discovery) RecordAttempt(addr string, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ka, ok := d.addrs[addr]; ok {
		ka.LastTry = now
		ka.Retries++
	}
}

// Prune drops addresses not seen within addressRetention, except the
// always-retained bootstrap set.
func (d *Discovery) Prune(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for addr, ka := range d.addrs {
		if ka.Bootstrap {
			continue
		}
		if now.Sub(ka.LastSeen) > addressRetention {
			delete(d.addrs, addr)
		}
	}
}

func (d *Discovery) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.addrs)
}
