package p2p

import (
	"sync"
	"time"

	"github.com/holiman/bloomfilter/v2"

	"github.com/beacon-network/beacon/common"
)

// maxKnownBlocks and maxKnownTxs size the approximate membership filters used to avoid
// re-gossiping a block or transaction back to the peer that sent it.
const (
	maxKnownBlocks = 1024
	maxKnownTxs    = 32768
	knownFilterK   = 4
)

// Peer is one connected remote node's session state: its outbound queue and
// the dedup filters that keep gossip from looping back.
type Peer struct {
	ID      common.NodeId
	Addr    string
	Queue   *OutboundQueue
	Version uint32

	mu         sync.Mutex
	knownTxs   *bloomfilter.Filter
	knownBlock *bloomfilter.Filter
}

func NewPeer(id common.NodeId, addr string, queueCapacity int) *Peer {
	txFilter, _ := bloomfilter.NewOptimal(maxKnownTxs, 0.001)
	blockFilter, _ := bloomfilter.NewOptimal(maxKnownBlocks, 0.001)
	return &Peer{
		ID:         id,
		Addr:       addr,
		Queue:      NewOutboundQueue(queueCapacity),
		knownTxs:   txFilter,
		knownBlock: blockFilter,
	}
}

// hashKey adapts a common.Hash to bloomfilter's hash.Hash64 key interface.
type hashKey uint64

func (h hashKey) Sum64() uint64 { return uint64(h) }

func hashOf(h common.Hash) hashKey {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(h[i])
	}
	return hashKey(v)
}

// MarkKnownTx records that this peer has (or will) seen tx h, so a
// subsequent gossip round skips re-sending it.
func (p *Peer) MarkKnownTx(h common.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.knownTxs.Add(hashOf(h))
}

func (p *Peer) KnowsTx(h common.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.knownTxs.Contains(hashOf(h))
}

func (p *Peer) MarkKnownBlock(h common.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.knownBlock.Add(hashOf(h))
}

func (p *Peer) KnowsBlock(h common.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.knownBlock.Contains(hashOf(h))
}

// Send enqueues msg for delivery at the given priority with an optional
// time-to-live after which it's dropped unsent.
func (p *Peer) Send(msg *ProtocolMessage, priority Priority, ttl time.Duration) {
	out := &OutboundMessage{Peer: p.ID, Message: msg, Priority: priority}
	if ttl > 0 {
		out.Deadline = time.Now().Add(ttl)
	}
	p.Queue.Enqueue(out)
}
