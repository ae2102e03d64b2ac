package p2p

import (
	"sync"
	"time"

	"github.com/beacon-network/beacon/common"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/log"
)

// Config bundles the messaging core's tunables, sourced from the node's
// on-disk configuration.
type Config struct {
	ListenAddr        string
	Bootstrap         []string
	MaxPeers          int
	OutboundQueueSize int
	MaxPendingReqs    int
	RequestTimeout    time.Duration
	BanDuration       time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxPeers:          50,
		OutboundQueueSize: 1024,
		MaxPendingReqs:    256,
		RequestTimeout:    15 * time.Second,
		BanDuration:       defaultBanDuration,
	}
}

// Service is the P2P messaging core: it owns the peer table, the
// request/response correlation tracker, the rate limiter, the reputation
// tracker and the discovery address book, and applies the spec's admission
// policy (size ceiling, rate limit, ban check) uniformly regardless of
// which transport delivered a message.
type Service struct {
	cfg Config
	log log.Logger

	mu    sync.RWMutex
	peers map[common.NodeId]*Peer

	pending     *PendingTracker
	rateLimiter *RateLimiter
	reputation  *ReputationTracker
	discovery   *Discovery
}

func New(cfg Config, nodeID common.NodeId) *Service {
	return &Service{
		cfg:         cfg,
		log:         log.New("module", "p2p"),
		peers:       make(map[common.NodeId]*Peer),
		pending:     NewPendingTracker(cfg.MaxPendingReqs, cfg.RequestTimeout),
		rateLimiter: NewRateLimiter(),
		reputation:  NewReputationTracker(cfg.BanDuration),
		discovery:   NewDiscovery(cfg.Bootstrap),
	}
}

// AddPeer admits a newly connected peer, rejecting it if it is currently
// banned or the peer table is already at MaxPeers.
func (s *Service) AddPeer(id common.NodeId, addr string, now time.Time) (*Peer, error) {
	if s.reputation.IsBanned(string(id), now) {
		return nil, beaconerrors.New(beaconerrors.PermissionDenied, "peer is banned")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.peers) >= s.cfg.MaxPeers {
		return nil, beaconerrors.New(beaconerrors.RateLimitExceeded, "peer table full")
	}
	p := NewPeer(id, addr, s.cfg.OutboundQueueSize)
	s.peers[id] = p
	s.log.Info("peer connected", "id", id, "addr", addr)
	return p, nil
}

// RemovePeer drops a disconnected peer and its rate-limit state.
func (s *Service) RemovePeer(id common.NodeId) {
	s.mu.Lock()
	delete(s.peers, id)
	s.mu.Unlock()
	s.rateLimiter.Forget(string(id))
}

func (s *Service) Peer(id common.NodeId) (*Peer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	return p, ok
}

func (s *Service) PeerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.peers)
}

// Admit applies the uniform inbound policy: ban check, then sliding-window
// rate limit for the message's kind. A failed rate-limit check docks
// reputation; the caller should disconnect once a peer is Banned.
func (s *Service) Admit(id common.NodeId, kind PayloadKind, now time.Time) error {
	if s.reputation.IsBanned(string(id), now) {
		return beaconerrors.New(beaconerrors.PermissionDenied, "peer is banned")
	}
	if !s.rateLimiter.Allow(string(id), kind, now) {
		s.reputation.Adjust(string(id), -5, now)
		return beaconerrors.New(beaconerrors.RateLimitExceeded, "rate limit exceeded")
	}
	return nil
}

// Reward nudges a peer's reputation up for useful behavior (valid block,
// valid transaction, timely response), clamped to the maximum.
func (s *Service) Reward(id common.NodeId, delta int, now time.Time) {
	s.reputation.Adjust(string(id), delta, now)
}

// Penalize nudges a peer's reputation down for bad behavior (invalid
// block/transaction, malformed message), possibly triggering a ban.
func (s *Service) Penalize(id common.NodeId, delta int, now time.Time) {
	s.reputation.Adjust(string(id), -delta, now)
}

// Broadcast enqueues msg for delivery to every connected peer at the given
// priority, skipping peers already known to have the item when dedupKey is
// non-nil.
func (s *Service) Broadcast(msg *ProtocolMessage, priority Priority, dedupKey *common.Hash) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.peers {
		if dedupKey != nil {
			switch msg.Payload.Kind {
			case KindBlock:
				if p.KnowsBlock(*dedupKey) {
					continue
				}
				p.MarkKnownBlock(*dedupKey)
			case KindTransaction:
				if p.KnowsTx(*dedupKey) {
					continue
				}
				p.MarkKnownTx(*dedupKey)
			}
		}
		p.Send(msg, priority, 0)
	}
}

// RegisterRequest records a new outstanding request to peer, returning its
// request id for inclusion in the outgoing BlockRequest/TransactionRequest.
func (s *Service) RegisterRequest(peer common.NodeId, kind PayloadKind, now time.Time) (string, error) {
	return s.pending.Register(string(peer), kind, now)
}

// ResolveRequest matches an inbound response's request_id back to its
// pending entry.
func (s *Service) ResolveRequest(requestID string) (*PendingRequest, bool) {
	return s.pending.Resolve(requestID)
}

// MaintenanceTick runs the periodic housekeeping the spec calls for: expired
// request sweep, ban expiry, and discovery address pruning. Callers run
// this on a fixed interval (e.g. every 30s) from the node's main loop.
func (s *Service) MaintenanceTick(now time.Time) {
	for _, r := range s.pending.SweepExpired(now) {
		s.log.Debug("request timed out", "request_id", r.RequestID, "peer", r.Peer, "kind", r.Kind)
	}
	s.reputation.ExpireBans(now)
	s.discovery.Prune(now)
}

// Discovery exposes the address book for the dial loop.
func (s *Service) Discovery() *Discovery { return s.discovery }
