// Package executor implements C7: chaincode subprocess lifecycle, bounded
// concurrency, and result assembly over the bridge (C6).
package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beacon-network/beacon/chaincode/bridge"
	"github.com/beacon-network/beacon/core"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/log"
	"github.com/beacon-network/beacon/metrics"
)

// Config mirrors the chaincode.* configuration options from spec.md §6.
type Config struct {
	ChaincodeDir     string
	ExecutionTimeout time.Duration
	MaxConcurrent    int
	GRPCAddr         string
	DebugLogging     bool
}

// ExecutionResult is C7's execute() output.
type ExecutionResult struct {
	Status       int
	Payload      []byte
	Message      string
	Events       []bridge.Event
	StateChanges []bridge.StateChange
}

type running struct {
	executionID string
	cmd         *exec.Cmd
	started     time.Time
}

// Executor runs chaincode subprocesses against a single bridge instance.
// Parallel execution is achieved by pooling one Executor (and one bridge)
// per concurrency slot; see Pool.
type Executor struct {
	cfg    Config
	bridge *bridge.Bridge
	log    log.Logger

	activeMu    sync.Mutex
	activeCount int

	runMu   sync.Mutex
	running map[string]*running

	active *metrics.Gauge
}

func New(cfg Config, b *bridge.Bridge) *Executor {
	return &Executor{
		cfg:     cfg,
		bridge:  b,
		log:     log.New("module", "executor"),
		running: make(map[string]*running),
		active:  metrics.NewGauge(),
	}
}

func binaryName(chaincodeID string) string {
	if runtime.GOOS == "windows" {
		return chaincodeID + ".exe"
	}
	return chaincodeID
}

// Execute runs a single transaction's chaincode end to end, per §4.7's
// seven-step algorithm.
func (e *Executor) Execute(tx *core.Transaction, creator []byte) (*ExecutionResult, error) {
	// 1. Admission.
	e.activeMu.Lock()
	if e.activeCount >= e.cfg.MaxConcurrent {
		e.activeMu.Unlock()
		return nil, beaconerrors.New(beaconerrors.Chaincode, "max concurrent reached")
	}
	e.activeCount++
	e.active.Update(int64(e.activeCount))
	e.activeMu.Unlock()

	executionID := uuid.NewString()
	defer e.cleanup(executionID)

	// 2. Binary resolution.
	binPath := filepath.Join(e.cfg.ChaincodeDir, binaryName(string(tx.Input.ChaincodeId)))
	info, err := os.Stat(binPath)
	if err != nil || info.IsDir() {
		return nil, beaconerrors.Newf(beaconerrors.NotFound, "chaincode binary not found: %s", binPath)
	}

	// 3. Seed bridge.
	e.bridge.SetContext(bridge.Context{
		TransactionId: string(tx.Id),
		ChannelId:     "beacon",
		Creator:       creator,
		Timestamp:     tx.Timestamp / 1000,
		ChaincodeId:   string(tx.Input.ChaincodeId),
	})

	// 4. Spawn.
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ExecutionTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, binPath, tx.Input.Args...)
	cmd.Dir = e.cfg.ChaincodeDir
	cmd.Stdin = nil
	cmd.Env = append(os.Environ(),
		"BEACON_GRPC_ADDRESS="+e.cfg.GRPCAddr,
		"BEACON_TRANSACTION_ID="+string(tx.Id),
		"BEACON_CHAINCODE_ID="+string(tx.Input.ChaincodeId),
		"BEACON_FUNCTION="+tx.Input.Function,
		"BEACON_EXECUTION_ID="+executionID,
	)
	var stdout, stderr []byte
	outPipe, _ := cmd.StdoutPipe()
	errPipe, _ := cmd.StderrPipe()

	if err := cmd.Start(); err != nil {
		e.bridge.ClearContext()
		return nil, beaconerrors.Wrap(beaconerrors.Chaincode, err)
	}

	e.runMu.Lock()
	e.running[executionID] = &running{executionID: executionID, cmd: cmd, started: time.Now()}
	e.runMu.Unlock()

	var wg sync.WaitGroup
	if outPipe != nil {
		wg.Add(1)
		go func() { defer wg.Done(); stdout, _ = readAll(outPipe) }()
	}
	if errPipe != nil {
		wg.Add(1)
		go func() { defer wg.Done(); stderr, _ = readAll(errPipe) }()
	}
	wg.Wait()

	// 5. Wait with timeout.
	waitErr := cmd.Wait()
	status := exitStatus(waitErr)
	if ctx.Err() == context.DeadlineExceeded {
		e.bridge.ClearContext()
		return nil, beaconerrors.New(beaconerrors.Chaincode, "execution timed out")
	}

	if e.cfg.DebugLogging {
		e.log.Debug("chaincode exited", "chaincode", tx.Input.ChaincodeId, "status", status,
			"stdout", string(stdout), "stderr", string(stderr))
	}

	// 6. Harvest.
	events, changes := e.bridge.Harvest()
	msg := "Success"
	if status != 0 {
		msg = "Failed"
	}
	result := &ExecutionResult{
		Status:       status,
		Payload:      []byte{},
		Message:      msg,
		Events:       events,
		StateChanges: changes,
	}

	// 7. Cleanup (context clear happens here; active_count/running-set
	// decrement happens in the deferred e.cleanup above).
	e.bridge.ClearContext()
	return result, nil
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}

func readAll(r interface{ Read([]byte) (int, error) }) ([]byte, error) {
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := r.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			return buf, nil
		}
	}
}

func (e *Executor) cleanup(executionID string) {
	e.runMu.Lock()
	delete(e.running, executionID)
	e.runMu.Unlock()

	e.activeMu.Lock()
	e.activeCount--
	e.active.Update(int64(e.activeCount))
	e.activeMu.Unlock()
}

// ActiveCount returns the current number of admitted, in-flight
// executions.
func (e *Executor) ActiveCount() int {
	e.activeMu.Lock()
	defer e.activeMu.Unlock()
	return e.activeCount
}

// Janitor periodically scans the running-set and kills any execution
// whose start time is older than execution_timeout, in case the normal
// context-timeout path above was bypassed (e.g. a hung Wait on a
// defunct process).
func (e *Executor) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweepStale()
		}
	}
}

func (e *Executor) sweepStale() {
	now := time.Now()
	e.runMu.Lock()
	var stale []*running
	for _, r := range e.running {
		if now.Sub(r.started) > e.cfg.ExecutionTimeout {
			stale = append(stale, r)
		}
	}
	e.runMu.Unlock()
	for _, r := range stale {
		e.log.Warn("janitor killing stale chaincode execution", "execution_id", r.executionID)
		if r.cmd.Process != nil {
			_ = r.cmd.Process.Kill()
		}
		e.runMu.Lock()
		delete(e.running, r.executionID)
		e.runMu.Unlock()
	}
}
