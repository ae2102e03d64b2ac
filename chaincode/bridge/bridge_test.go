package bridge

import (
	"bytes"
	"testing"

	"github.com/beacon-network/beacon/kv"
	"github.com/beacon-network/beacon/storage/statestore"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	e, err := kv.Open(t.TempDir(), kv.DefaultConfig)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return New(statestore.New(e))
}

func TestRequiresContextBeforeStateOps(t *testing.T) {
	b := newTestBridge(t)
	if _, _, err := b.GetState("k"); err == nil {
		t.Fatalf("expected GetState without a context to fail")
	}
	if err := b.PutState("k", []byte("v")); err == nil {
		t.Fatalf("expected PutState without a context to fail")
	}
}

func TestPutStateWritesThroughAndLogsChange(t *testing.T) {
	b := newTestBridge(t)
	b.SetContext(Context{TransactionId: "tx1", ChaincodeId: "token"})

	if err := b.PutState("balance:alice", []byte("100")); err != nil {
		t.Fatalf("put state: %v", err)
	}
	v, found, err := b.GetState("balance:alice")
	if err != nil || !found || !bytes.Equal(v, []byte("100")) {
		t.Fatalf("expected write-through to be immediately visible, got %s found=%v err=%v", v, found, err)
	}

	_, changes := b.Harvest()
	if len(changes) != 1 || changes[0].Key != "balance:alice" || changes[0].Operation != OpPut {
		t.Fatalf("expected one PUT change logged, got %+v", changes)
	}
}

func TestDeleteStateLogsChange(t *testing.T) {
	b := newTestBridge(t)
	b.SetContext(Context{TransactionId: "tx1"})
	if err := b.PutState("k", []byte("v")); err != nil {
		t.Fatalf("put state: %v", err)
	}
	if err := b.DeleteState("k"); err != nil {
		t.Fatalf("delete state: %v", err)
	}
	_, found, err := b.GetState("k")
	if err != nil || found {
		t.Fatalf("expected key to be gone after delete, found=%v err=%v", found, err)
	}
	_, changes := b.Harvest()
	if len(changes) != 2 || changes[1].Operation != OpDelete {
		t.Fatalf("expected PUT then DELETE logged in order, got %+v", changes)
	}
}

func TestSetContextClearsPriorLogs(t *testing.T) {
	b := newTestBridge(t)
	b.SetContext(Context{TransactionId: "tx1"})
	if err := b.PutState("k", []byte("v")); err != nil {
		t.Fatalf("put state: %v", err)
	}
	if err := b.SetEvent("Transfer", []byte("10")); err != nil {
		t.Fatalf("set event: %v", err)
	}
	b.SetContext(Context{TransactionId: "tx2"})
	events, changes := b.Harvest()
	if len(events) != 0 || len(changes) != 0 {
		t.Fatalf("expected a fresh context to clear prior events/changes, got %d events %d changes", len(events), len(changes))
	}
}

func TestGetStateByPartialCompositeKeyUsesNullSeparator(t *testing.T) {
	b := newTestBridge(t)
	b.SetContext(Context{TransactionId: "tx1"})
	if err := b.PutState("asset\x00widget\x00001", []byte("red")); err != nil {
		t.Fatalf("put state: %v", err)
	}
	if err := b.PutState("asset\x00widget\x00002", []byte("blue")); err != nil {
		t.Fatalf("put state: %v", err)
	}
	if err := b.PutState("asset\x00gadget\x00001", []byte("green")); err != nil {
		t.Fatalf("put state: %v", err)
	}

	entries, err := b.GetStateByPartialCompositeKey("asset", []string{"widget"})
	if err != nil {
		t.Fatalf("get by partial composite key: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries under the widget composite prefix, got %d: %+v", len(entries), entries)
	}
}

func TestContextAccessors(t *testing.T) {
	b := newTestBridge(t)
	b.SetContext(Context{TransactionId: "tx1", ChannelId: "ch1", Creator: []byte("alice"), Timestamp: 42})
	id, err := b.GetTransactionId()
	if err != nil || id != "tx1" {
		t.Fatalf("expected tx1, got %s err=%v", id, err)
	}
	ch, err := b.GetChannelId()
	if err != nil || ch != "ch1" {
		t.Fatalf("expected ch1, got %s err=%v", ch, err)
	}
	creator, err := b.GetCreator()
	if err != nil || !bytes.Equal(creator, []byte("alice")) {
		t.Fatalf("expected alice, got %s err=%v", creator, err)
	}
	ts, err := b.GetTransactionTimestamp()
	if err != nil || ts != 42 {
		t.Fatalf("expected 42, got %d err=%v", ts, err)
	}
}

func TestInvokeChaincodeUnimplemented(t *testing.T) {
	b := newTestBridge(t)
	if _, err := b.InvokeChaincode("other", "fn", nil); err == nil {
		t.Fatalf("expected cross-chaincode invocation to be unimplemented")
	}
}

func TestClearContextThenOpsFail(t *testing.T) {
	b := newTestBridge(t)
	b.SetContext(Context{TransactionId: "tx1"})
	b.ClearContext()
	if _, _, err := b.GetState("k"); err == nil {
		t.Fatalf("expected GetState to fail once context is cleared")
	}
}
