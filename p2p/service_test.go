package p2p

import (
	"testing"
	"time"

	"github.com/beacon-network/beacon/common"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxPeers = 2
	return cfg
}

func TestAddPeerAndLookup(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	p, err := s.AddPeer("peer1", "10.0.0.1:9000", now)
	if err != nil {
		t.Fatalf("add peer: %v", err)
	}
	if p.ID != "peer1" {
		t.Fatalf("expected peer id to be set, got %v", p.ID)
	}
	if got, ok := s.Peer("peer1"); !ok || got != p {
		t.Fatalf("expected Peer lookup to find the added peer")
	}
	if s.PeerCount() != 1 {
		t.Fatalf("expected peer count 1, got %d", s.PeerCount())
	}
}

func TestAddPeerRejectsWhenFull(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	if _, err := s.AddPeer("peer1", "10.0.0.1:9000", now); err != nil {
		t.Fatalf("add peer1: %v", err)
	}
	if _, err := s.AddPeer("peer2", "10.0.0.2:9000", now); err != nil {
		t.Fatalf("add peer2: %v", err)
	}
	if _, err := s.AddPeer("peer3", "10.0.0.3:9000", now); err == nil {
		t.Fatalf("expected adding a third peer past MaxPeers to fail")
	}
}

func TestAddPeerRejectsBanned(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	s.Penalize("peer1", 100, now)
	if _, err := s.AddPeer("peer1", "10.0.0.1:9000", now); err == nil {
		t.Fatalf("expected adding a banned peer to fail")
	}
}

func TestRemovePeerClearsState(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	if _, err := s.AddPeer("peer1", "10.0.0.1:9000", now); err != nil {
		t.Fatalf("add peer: %v", err)
	}
	s.RemovePeer("peer1")
	if _, ok := s.Peer("peer1"); ok {
		t.Fatalf("expected peer to be removed")
	}
	if s.PeerCount() != 0 {
		t.Fatalf("expected peer count 0 after removal, got %d", s.PeerCount())
	}
}

func TestAdmitRejectsBannedPeer(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	s.Penalize("peer1", 100, now)
	if err := s.Admit("peer1", KindPing, now); err == nil {
		t.Fatalf("expected Admit to reject a banned peer")
	}
}

func TestAdmitEnforcesRateLimitAndDocksReputation(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	for i := 0; i < 60; i++ {
		if err := s.Admit("peer1", KindPing, now); err != nil {
			t.Fatalf("unexpected rejection at iteration %d: %v", i, err)
		}
	}
	if err := s.Admit("peer1", KindPing, now); err == nil {
		t.Fatalf("expected the 61st ping within a minute to be rate limited")
	}
	rec, ok := s.reputation.Get("peer1")
	if !ok || rec.Reputation >= initialReputation {
		t.Fatalf("expected reputation to be docked after a rate limit violation, got %+v", rec)
	}
}

func TestRewardAndPenalizeAdjustReputation(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	s.Reward("peer1", 10, now)
	rec, _ := s.reputation.Get("peer1")
	if rec.Reputation != initialReputation+10 {
		t.Fatalf("expected reward to raise reputation, got %d", rec.Reputation)
	}
	s.Penalize("peer1", 10, now)
	rec, _ = s.reputation.Get("peer1")
	if rec.Reputation != initialReputation {
		t.Fatalf("expected penalize to lower reputation back down, got %d", rec.Reputation)
	}
}

func TestBroadcastSkipsPeersThatKnowTheItem(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	p, err := s.AddPeer("peer1", "10.0.0.1:9000", now)
	if err != nil {
		t.Fatalf("add peer: %v", err)
	}
	var h common.Hash
	h[0] = 0x01
	p.MarkKnownBlock(h)

	msg := &ProtocolMessage{Version: 1, Payload: Payload{Kind: KindBlock}}
	s.Broadcast(msg, PriorityNormal, &h)
	if p.Queue.Len() != 0 {
		t.Fatalf("expected a peer that already knows the block to be skipped, queue len %d", p.Queue.Len())
	}
}

func TestBroadcastDeliversToUnawarePeers(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	p, err := s.AddPeer("peer1", "10.0.0.1:9000", now)
	if err != nil {
		t.Fatalf("add peer: %v", err)
	}
	var h common.Hash
	h[0] = 0x02
	msg := &ProtocolMessage{Version: 1, Payload: Payload{Kind: KindBlock}}
	s.Broadcast(msg, PriorityNormal, &h)
	if p.Queue.Len() != 1 {
		t.Fatalf("expected the message to be enqueued for an unaware peer, queue len %d", p.Queue.Len())
	}
}

func TestRegisterAndResolveRequest(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	id, err := s.RegisterRequest("peer1", KindBlockRequest, now)
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	req, ok := s.ResolveRequest(id)
	if !ok || req.Peer != "peer1" {
		t.Fatalf("expected resolved request to match, got %+v ok=%v", req, ok)
	}
}

func TestMaintenanceTickExpiresBansAndSweepsRequests(t *testing.T) {
	s := New(testConfig(), "node1")
	now := time.Now()
	s.Penalize("peer1", 100, now)
	id, err := s.RegisterRequest("peer2", KindBlockRequest, now)
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	s.MaintenanceTick(now.Add(2 * s.cfg.BanDuration))
	if s.reputation.IsBanned("peer1", now.Add(2*s.cfg.BanDuration)) {
		t.Fatalf("expected ban to be expired after MaintenanceTick")
	}
	if _, ok := s.ResolveRequest(id); ok {
		t.Fatalf("expected the timed-out request to be swept by MaintenanceTick")
	}
}
