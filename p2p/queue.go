package p2p

import (
	"container/heap"
	"sync"
	"time"

	"github.com/beacon-network/beacon/common"
)

// Priority orders outbound delivery; higher values are dequeued first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// OutboundMessage is a queued send with an optional expiry.
type OutboundMessage struct {
	Peer     common.NodeId
	Message  *ProtocolMessage
	Priority Priority
	Deadline time.Time // zero means "no expiry"

	seq int // insertion order, for FIFO within a priority tier
}

func (m *OutboundMessage) expired(now time.Time) bool {
	return !m.Deadline.IsZero() && now.After(m.Deadline)
}

// pqHeap is a container/heap.Interface ordering by (priority desc, seq asc).
type pqHeap []*OutboundMessage

func (h pqHeap) Len() int { return len(h) }
func (h pqHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}
func (h pqHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pqHeap) Push(x any)   { *h = append(*h, x.(*OutboundMessage)) }
func (h *pqHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// OutboundQueue is a bounded, priority-ordered send queue. When full, a new
// enqueue drops the single oldest lowest-priority entry rather than
// rejecting the new message; DeliveryFailures counts every message dropped
// this way (full-drop or expired-at-dequeue).
type OutboundQueue struct {
	mu       sync.Mutex
	h        pqHeap
	capacity int
	nextSeq  int

	DeliveryFailures uint64
}

func NewOutboundQueue(capacity int) *OutboundQueue {
	return &OutboundQueue{capacity: capacity}
}

// Enqueue adds a message, evicting the lowest-priority/oldest entry if the
// queue is at capacity.
func (q *OutboundQueue) Enqueue(msg *OutboundMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	msg.seq = q.nextSeq
	q.nextSeq++
	if len(q.h) >= q.capacity {
		q.evictWorst()
	}
	heap.Push(&q.h, msg)
}

// evictWorst drops the lowest-priority, oldest-enqueued message. Caller
// holds q.mu.
func (q *OutboundQueue) evictWorst() {
	if len(q.h) == 0 {
		return
	}
	worst := 0
	for i := 1; i < len(q.h); i++ {
		if q.h[i].Priority < q.h[worst].Priority ||
			(q.h[i].Priority == q.h[worst].Priority && q.h[i].seq < q.h[worst].seq) {
			worst = i
		}
	}
	heap.Remove(&q.h, worst)
	q.DeliveryFailures++
}

// Dequeue pops the highest-priority message, skipping (and counting as
// failures) any already past their deadline. Returns nil if empty.
func (q *OutboundQueue) Dequeue(now time.Time) *OutboundMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.h) > 0 {
		msg := heap.Pop(&q.h).(*OutboundMessage)
		if msg.expired(now) {
			q.DeliveryFailures++
			continue
		}
		return msg
	}
	return nil
}

func (q *OutboundQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
