package p2p

import (
	"sync"
	"time"

	"github.com/google/uuid"

	beaconerrors "github.com/beacon-network/beacon/errors"
)

// PendingRequest tracks a request awaiting its response.
type PendingRequest struct {
	RequestID string
	Peer      string
	Kind      PayloadKind
	Sent      time.Time
	Deadline  time.Time
}

// PendingTracker bounds the number of outstanding requests and sweeps timed
// out entries, grounded on the request/response correlation design in the
// messaging core.
type PendingTracker struct {
	mu       sync.Mutex
	maxSize  int
	timeout  time.Duration
	requests map[string]*PendingRequest
}

func NewPendingTracker(maxSize int, timeout time.Duration) *PendingTracker {
	return &PendingTracker{
		maxSize:  maxSize,
		timeout:  timeout,
		requests: make(map[string]*PendingRequest),
	}
}

// Register creates and stores a new pending request, returning its id.
func (t *PendingTracker) Register(peer string, kind PayloadKind, now time.Time) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) >= t.maxSize {
		return "", beaconerrors.New(beaconerrors.RateLimitExceeded, "too many pending requests")
	}
	id := uuid.NewString()
	t.requests[id] = &PendingRequest{
		RequestID: id,
		Peer:      peer,
		Kind:      kind,
		Sent:      now,
		Deadline:  now.Add(t.timeout),
	}
	return id, nil
}

// Resolve removes and returns the pending request matching requestID, if
// any, so a caller can match a response to its originating request.
func (t *PendingTracker) Resolve(requestID string) (*PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.requests[requestID]
	if ok {
		delete(t.requests, requestID)
	}
	return r, ok
}

// SweepExpired removes and returns every request past its deadline as of
// now, for periodic timeout handling.
func (t *PendingTracker) SweepExpired(now time.Time) []*PendingRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	var expired []*PendingRequest
	for id, r := range t.requests {
		if now.After(r.Deadline) {
			expired = append(expired, r)
			delete(t.requests, id)
		}
	}
	return expired
}

func (t *PendingTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
