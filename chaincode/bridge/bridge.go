// Package bridge implements C6: the chaincode bridge service. It holds
// three mutable slots guarded by a reader-writer lock (current_context,
// events, state_changes) and exposes the RPC operations chaincode
// subprocesses call through, writing state changes through to C5.
package bridge

import (
	"strings"
	"sync"

	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/log"
	"github.com/beacon-network/beacon/storage/statestore"
)

// Context is the per-transaction execution context seeded before a
// chaincode subprocess spawns.
type Context struct {
	TransactionId string
	ChannelId     string
	Creator       []byte
	Timestamp     int64
	ChaincodeId   string
}

// Operation tags a state-change log entry.
type Operation string

const (
	OpPut    Operation = "PUT"
	OpDelete Operation = "DELETE"
)

// StateChange is one entry of the ordered state-change log.
type StateChange struct {
	Key       string
	Value     []byte
	Operation Operation
}

// Event is one entry of the ordered event log.
type Event struct {
	Name    string
	Payload []byte
}

// Bridge is the bidirectional RPC-addressable service. One instance
// serves exactly one in-flight transaction at a time (§4.6); parallel
// chaincode execution requires one bridge per executor slot, which is how
// the executor (C7) actually uses this type — see executor.Pool.
type Bridge struct {
	mu sync.RWMutex

	ctx          *Context
	events       []Event
	stateChanges []StateChange

	state *statestore.Store
	log   log.Logger
}

func New(state *statestore.Store) *Bridge {
	return &Bridge{state: state, log: log.New("module", "bridge")}
}

// SetContext sets the context slot and clears events/state_changes, per
// the C7 contract: called before subprocess spawn.
func (b *Bridge) SetContext(ctx Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = &ctx
	b.events = nil
	b.stateChanges = nil
}

// ClearContext clears the context slot, called after harvest.
func (b *Bridge) ClearContext() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = nil
}

// Harvest collects events and state-changes. Must only be called after the
// subprocess has exited, establishing happens-before with the last RPC
// append (§5).
func (b *Bridge) Harvest() ([]Event, []StateChange) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	events := make([]Event, len(b.events))
	copy(events, b.events)
	changes := make([]StateChange, len(b.stateChanges))
	copy(changes, b.stateChanges)
	return events, changes
}

func (b *Bridge) requireContext() (*Context, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ctx == nil {
		return nil, beaconerrors.New(beaconerrors.Internal, "FailedPrecondition: no active context")
	}
	return b.ctx, nil
}

// GetState reads world state through C5.
func (b *Bridge) GetState(key string) ([]byte, bool, error) {
	if _, err := b.requireContext(); err != nil {
		return nil, false, err
	}
	return b.state.Get(key)
}

// PutState appends a PUT to state_changes and writes through to C5; on C5
// failure it returns a non-fatal failure but still records the attempted
// change, since the change log is the authoritative execution record and
// §4.10's batch commit decides whether to apply it.
func (b *Bridge) PutState(key string, value []byte) error {
	if _, err := b.requireContext(); err != nil {
		return err
	}
	b.mu.Lock()
	b.stateChanges = append(b.stateChanges, StateChange{Key: key, Value: value, Operation: OpPut})
	b.mu.Unlock()

	if err := b.state.Put(key, value); err != nil {
		b.log.Warn("bridge put_state write-through failed", "key", key, "err", err)
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return nil
}

// DeleteState appends a DELETE to state_changes, same rationale as
// PutState.
func (b *Bridge) DeleteState(key string) error {
	if _, err := b.requireContext(); err != nil {
		return err
	}
	b.mu.Lock()
	b.stateChanges = append(b.stateChanges, StateChange{Key: key, Operation: OpDelete})
	b.mu.Unlock()

	if err := b.state.Delete(key); err != nil {
		b.log.Warn("bridge delete_state write-through failed", "key", key, "err", err)
		return beaconerrors.Wrap(beaconerrors.Storage, err)
	}
	return nil
}

// GetStateByRange delegates to C5's half-open range scan.
func (b *Bridge) GetStateByRange(start, end string) ([]statestore.OrderedEntry, error) {
	if _, err := b.requireContext(); err != nil {
		return nil, err
	}
	return b.state.GetRange(start, end)
}

// GetStateByPartialCompositeKey builds prefix = object_type followed by
// each key separated by U+0000, then queries via C5 get_with_prefix.
func (b *Bridge) GetStateByPartialCompositeKey(objectType string, keys []string) ([]statestore.OrderedEntry, error) {
	if _, err := b.requireContext(); err != nil {
		return nil, err
	}
	parts := append([]string{objectType}, keys...)
	prefix := strings.Join(parts, " ")
	return b.state.GetWithPrefix(prefix)
}

func (b *Bridge) GetTransactionId() (string, error) {
	ctx, err := b.requireContext()
	if err != nil {
		return "", err
	}
	return ctx.TransactionId, nil
}

func (b *Bridge) GetChannelId() (string, error) {
	ctx, err := b.requireContext()
	if err != nil {
		return "", err
	}
	return ctx.ChannelId, nil
}

func (b *Bridge) GetCreator() ([]byte, error) {
	ctx, err := b.requireContext()
	if err != nil {
		return nil, err
	}
	return ctx.Creator, nil
}

func (b *Bridge) GetTransactionTimestamp() (int64, error) {
	ctx, err := b.requireContext()
	if err != nil {
		return 0, err
	}
	return ctx.Timestamp, nil
}

// SetEvent appends to the events log.
func (b *Bridge) SetEvent(name string, payload []byte) error {
	if _, err := b.requireContext(); err != nil {
		return err
	}
	b.mu.Lock()
	b.events = append(b.events, Event{Name: name, Payload: payload})
	b.mu.Unlock()
	return nil
}

// LogLevel mirrors the RPC's numeric level encoding.
type LogLevel int

const (
	LogDebug LogLevel = 0
	LogInfo  LogLevel = 1
	LogWarn  LogLevel = 2
	LogError LogLevel = 3
)

// LogMessage forwards to host logging at the given level; anything other
// than 0-3 maps to Info.
func (b *Bridge) LogMessage(level LogLevel, msg string) {
	switch level {
	case LogDebug:
		b.log.Debug(msg, "source", "chaincode")
	case LogWarn:
		b.log.Warn(msg, "source", "chaincode")
	case LogError:
		b.log.Error(msg, "source", "chaincode")
	default:
		b.log.Info(msg, "source", "chaincode")
	}
}

// InvokeChaincode returns Unimplemented in this spec's scope (cross-
// chaincode invocation is an explicit Non-goal).
func (b *Bridge) InvokeChaincode(string, string, []string) ([]byte, error) {
	return nil, beaconerrors.New(beaconerrors.Internal, "Unimplemented: invoke_chaincode")
}
