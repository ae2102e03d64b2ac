package executor

import (
	"context"
	"testing"
	"time"

	"github.com/beacon-network/beacon/chaincode/bridge"
	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/core"
	"github.com/beacon-network/beacon/kv"
	"github.com/beacon-network/beacon/storage/statestore"
)

func newTestExecutor(t *testing.T, maxConcurrent int) *Executor {
	t.Helper()
	e, err := kv.Open(t.TempDir(), kv.DefaultConfig)
	if err != nil {
		t.Fatalf("open engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	b := bridge.New(statestore.New(e))
	cfg := Config{ChaincodeDir: t.TempDir(), ExecutionTimeout: time.Second, MaxConcurrent: maxConcurrent}
	return New(cfg, b)
}

func TestExecuteRejectsUnknownBinary(t *testing.T) {
	ex := newTestExecutor(t, 4)
	tx := &core.Transaction{
		Id:    common.NewTxId(),
		Type:  core.TxInvoke,
		Input: core.Input{ChaincodeId: "does-not-exist", Function: "run"},
	}
	if _, err := ex.Execute(tx, nil); err == nil {
		t.Fatalf("expected execution against a missing chaincode binary to fail")
	}
	if ex.ActiveCount() != 0 {
		t.Fatalf("expected active count to return to 0 after a failed execution, got %d", ex.ActiveCount())
	}
}

func TestExecuteRejectsOverConcurrencyLimit(t *testing.T) {
	ex := newTestExecutor(t, 0)
	tx := &core.Transaction{
		Id:    common.NewTxId(),
		Type:  core.TxInvoke,
		Input: core.Input{ChaincodeId: "whatever", Function: "run"},
	}
	if _, err := ex.Execute(tx, nil); err == nil {
		t.Fatalf("expected execution to be rejected when max_concurrent is 0")
	}
}

func TestJanitorStopsOnContextCancel(t *testing.T) {
	ex := newTestExecutor(t, 4)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ex.Janitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Janitor to return promptly after context cancellation")
	}
}
