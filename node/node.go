package node

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/beacon-network/beacon/chaincode/bridge"
	"github.com/beacon-network/beacon/chaincode/executor"
	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/consensus/poa"
	"github.com/beacon-network/beacon/core"
	"github.com/beacon-network/beacon/crypto"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/kv"
	"github.com/beacon-network/beacon/log"
	"github.com/beacon-network/beacon/p2p"
	"github.com/beacon-network/beacon/storage/blockstore"
	"github.com/beacon-network/beacon/storage/statestore"
	"github.com/beacon-network/beacon/storage/txstore"
)

const maintenanceInterval = 30 * time.Second

// Node is the C10 orchestrator: it wires C2 through C9 together and
// implements the submission/query surface and the commit protocol.
type Node struct {
	cfg Config
	log log.Logger

	engine *kv.Engine
	blocks *blockstore.Store
	txs    *txstore.Store
	state  *statestore.Store

	consensus *poa.Authority
	bridge    *bridge.Bridge
	bridgeSrv *http.Server
	executor  *executor.Executor
	network   *p2p.Service

	validatorKey crypto.PrivateKey

	mu      sync.Mutex
	pending []*core.Transaction

	shutdown chan struct{}
	done     chan struct{}
}

// New performs the lifecycle's first four steps: initialise directories,
// open C2, construct C3/C4/C5, and run C3.initialize.
func New(cfg Config) (*Node, error) {
	dbDir := filepath.Join(cfg.Node.DataDir, "db")
	if err := os.MkdirAll(filepath.Join(cfg.Node.DataDir, "keys"), 0o755); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Io, err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.Node.DataDir, "logs"), 0o755); err != nil {
		return nil, beaconerrors.Wrap(beaconerrors.Io, err)
	}

	engine, err := kv.Open(dbDir, kv.Config{
		CacheSizeMB:   cfg.Storage.CacheSizeMB,
		WriteBufferMB: cfg.Storage.WriteBufferSizeMB,
		MaxOpenFiles:  cfg.Storage.MaxOpenFiles,
		CompressionOn: true,
	})
	if err != nil {
		return nil, err
	}

	blocks := blockstore.New(engine)
	txs := txstore.New(engine)
	state := statestore.New(engine)

	if _, err := blocks.Initialize(cfg.Network.NetworkID, time.Now().UnixMilli()); err != nil {
		engine.Close()
		return nil, err
	}

	var validatorKey crypto.PrivateKey
	if cfg.Consensus.IsValidator && cfg.Security.ValidatorKey != "" {
		validatorKey, err = LoadValidatorKey(cfg.Security.ValidatorKey)
		if err != nil {
			engine.Close()
			return nil, err
		}
	}

	consensus := poa.New(cfg.validatorIDs(), common.NodeId(cfg.Node.ID), blocks)

	b := bridge.New(state)
	exec := executor.New(executor.Config{
		ChaincodeDir:     filepath.Join(cfg.Node.DataDir, "chaincode"),
		ExecutionTimeout: cfg.executionTimeout(),
		MaxConcurrent:    cfg.Chaincode.MaxConcurrent,
		GRPCAddr:         cfg.Chaincode.GRPCAddr,
	}, b)

	netCfg := p2p.DefaultConfig()
	netCfg.ListenAddr = cfg.Network.ListenAddr
	netCfg.Bootstrap = cfg.Network.BootstrapPeers
	netCfg.MaxPeers = cfg.Network.MaxConnections
	network := p2p.New(netCfg, common.NodeId(cfg.Node.ID))

	var bridgeSrv *http.Server
	if cfg.Chaincode.GRPCAddr != "" {
		bridgeSrv = &http.Server{Addr: cfg.Chaincode.GRPCAddr, Handler: bridge.NewServer(b)}
	}

	return &Node{
		cfg:          cfg,
		log:          log.New("module", "node", "id", cfg.Node.ID),
		engine:       engine,
		blocks:       blocks,
		txs:          txs,
		state:        state,
		consensus:    consensus,
		bridge:       b,
		bridgeSrv:    bridgeSrv,
		executor:     exec,
		network:      network,
		validatorKey: validatorKey,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// SubmitTransaction validates and queues a transaction for the next
// proposed block. Per the query surface table, a structurally invalid
// transaction is rejected with InvalidTransaction.
func (n *Node) SubmitTransaction(tx *core.Transaction, verifyingKey crypto.PublicKey) error {
	if err := tx.Validate(verifyingKey); err != nil {
		return beaconerrors.Wrap(beaconerrors.InvalidTransaction, err)
	}
	n.mu.Lock()
	n.pending = append(n.pending, tx)
	n.mu.Unlock()

	if n.network != nil {
		msg := &p2p.ProtocolMessage{Version: 1, Timestamp: time.Now().UnixMilli(), Payload: p2p.Payload{Kind: p2p.KindTransaction, Transaction: tx}}
		h := tx.Hash
		n.network.Broadcast(msg, p2p.PriorityNormal, &h)
	}
	return nil
}

// drainPending removes and returns every currently queued transaction.
func (n *Node) drainPending() []*core.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

// ProposeBlock runs the commit protocol in full: execute every pending
// transaction in order, build the block, and commit it in one atomic
// write_batch per §4.10.
func (n *Node) ProposeBlock() (*core.Block, error) {
	if !n.consensus.CanCreateBlocks() {
		return nil, beaconerrors.New(beaconerrors.Consensus, "not a validator")
	}
	txs := n.drainPending()
	if len(txs) == 0 {
		return nil, nil
	}

	results := make([]*core.TransactionResult, len(txs))
	for i, tx := range txs {
		res, err := n.executeOne(tx)
		if err != nil {
			n.log.Warn("chaincode execution failed", "tx", tx.Id, "err", err)
			res = &core.TransactionResult{Status: -1, Error: err.Error()}
		}
		results[i] = res
	}

	b, err := n.consensus.CreateBlock(txs, n.validatorID(), time.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	b.TransactionResults = results
	b.Finalize()

	if err := n.commit(b, txs, results); err != nil {
		return nil, err
	}
	n.consensus.Advance()

	if n.network != nil {
		msg := &p2p.ProtocolMessage{Version: 1, Timestamp: time.Now().UnixMilli(), Payload: p2p.Payload{Kind: p2p.KindBlock, Block: b}}
		h := b.Hash
		n.network.Broadcast(msg, p2p.PriorityHigh, &h)
	}
	return b, nil
}

func (n *Node) validatorID() common.ValidatorId {
	st := n.consensus.GetState()
	return st.CurrentValidator
}

// executeOne runs a single transaction's chaincode, deriving the creator
// bytes from its From address.
func (n *Node) executeOne(tx *core.Transaction) (*core.TransactionResult, error) {
	res, err := n.executor.Execute(tx, []byte(tx.From))
	if err != nil {
		return nil, err
	}
	status := core.StatusSuccess
	if res.Status != 0 {
		status = core.StatusFailed
	}
	tr := &core.TransactionResult{
		Status:       status,
		GasUsed:      0,
		ReturnValue:  res.Payload,
		Error:        "",
		StateChanges: map[string][]byte{},
	}
	if res.Status != 0 {
		tr.Error = res.Message
	}
	for _, ev := range res.Events {
		tr.Events = append(tr.Events, core.Event{EventType: ev.Name, Data: ev.Payload})
	}
	// Only record state-changes here for bookkeeping (commit() decides
	// apply/drop per §4.10's status!=0 rule using res.StateChanges
	// directly, not tr.StateChanges, since tr.StateChanges must reflect
	// only what the node actually applies).
	if res.Status == 0 {
		for _, c := range res.StateChanges {
			if c.Operation == bridge.OpPut {
				tr.StateChanges[c.Key] = c.Value
			} else {
				tr.StateChanges[c.Key] = nil
			}
		}
	}
	return tr, nil
}

// commit builds and writes the single atomic batch spanning C3, C4 and C5,
// in the order §4.10 fixes: state-changes, then block records, then
// tx/result/pointer records.
func (n *Node) commit(b *core.Block, txs []*core.Transaction, results []*core.TransactionResult) error {
	batch := n.engine.NewBatch()

	// State-changes: only applied for transactions whose chaincode result
	// status==0, per §4.10's "drop on non-zero exit" rule. executeOne
	// already condensed the bridge's raw PUT/DELETE log into
	// result.StateChanges only for status==0 transactions.
	var touchedState [][]byte
	for _, res := range results {
		if res.Status != core.StatusSuccess {
			continue
		}
		var changes []statestore.Change
		for k, v := range res.StateChanges {
			changes = append(changes, statestore.Change{Key: k, Value: v, Delete: v == nil})
		}
		touchedState = append(touchedState, n.state.StageChanges(batch, changes)...)
	}

	n.blocks.StageBlock(batch, b)

	for i, tx := range txs {
		n.txs.StageWithResult(batch, tx, results[i], b.Header.Index, uint64(i))
	}
	if err := n.txs.StageCount(batch, uint64(len(txs))); err != nil {
		return err
	}

	if err := batch.Write(); err != nil {
		return err
	}
	n.state.InvalidateCache(touchedState)
	n.blocks.CacheBlock(b)
	return nil
}

// Query surface (§6).

func (n *Node) GetBlockByIndex(i common.BlockIndex) (*core.Block, error) { return n.blocks.GetByIndex(i) }
func (n *Node) GetBlockByHash(h common.Hash) (*core.Block, error)        { return n.blocks.GetByHash(h) }
func (n *Node) GetTransaction(id common.TxId) (*core.Transaction, error) { return n.txs.Get(id) }
func (n *Node) GetTransactionResult(id common.TxId) (*core.TransactionResult, error) {
	return n.txs.GetResult(id)
}
func (n *Node) GetState(key string) ([]byte, bool, error) { return n.state.Get(key) }

// GetLatestBlocks returns up to limit blocks (1..=100) starting offset back
// from the tip.
func (n *Node) GetLatestBlocks(limit int, offset int) ([]*core.Block, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	count, err := n.blocks.BlockCount()
	if err != nil || count == 0 {
		return nil, err
	}
	start := int64(count) - 1 - int64(offset) - int64(limit) + 1
	if start < 0 {
		start = 0
	}
	return n.blocks.GetRange(common.BlockIndex(start), limit)
}

type BlockchainInfo struct {
	Latest      *core.Block
	TotalBlocks uint64
	NetworkID   string
}

func (n *Node) GetBlockchainInfo() (*BlockchainInfo, error) {
	latest, err := n.blocks.Latest()
	if err != nil {
		return nil, err
	}
	count, err := n.blocks.BlockCount()
	if err != nil {
		return nil, err
	}
	return &BlockchainInfo{Latest: latest, TotalBlocks: count, NetworkID: n.cfg.Network.NetworkID}, nil
}

func (n *Node) QueryStateRange(start, end string, limit int) ([]statestore.OrderedEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	entries, err := n.state.GetRange(start, end)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (n *Node) InvokeChaincode(chaincodeID, function string, args []string) (*executor.ExecutionResult, error) {
	tx := &core.Transaction{
		Id:   common.NewTxId(),
		Type: core.TxInvoke,
		Input: core.Input{
			ChaincodeId: common.ChaincodeId(chaincodeID),
			Function:    function,
			Args:        args,
		},
		Timestamp: time.Now().UnixMilli(),
	}
	return n.executor.Execute(tx, nil)
}

// Run enters the main loop: periodic block proposal (if a validator),
// network maintenance, and graceful shutdown on SIGINT/SIGTERM.
func (n *Node) Run(ctx context.Context, blockInterval time.Duration) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	execCtx, cancelExec := context.WithCancel(ctx)
	go n.executor.Janitor(execCtx, n.cfg.executionTimeout())

	if n.bridgeSrv != nil {
		go func() {
			if err := n.bridgeSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				n.log.Error("bridge server stopped", "err", err)
			}
		}()
	}

	blockTicker := time.NewTicker(blockInterval)
	maintTicker := time.NewTicker(maintenanceInterval)
	defer blockTicker.Stop()
	defer maintTicker.Stop()
	defer close(n.done)
	defer cancelExec()

	n.log.Info("node started", "listen_addr", n.cfg.Network.ListenAddr)
	for {
		select {
		case <-ctx.Done():
			n.log.Info("node shutting down (context cancelled)")
			return
		case <-n.shutdown:
			n.log.Info("node shutting down (explicit stop)")
			return
		case sig := <-sigCh:
			n.log.Info("node shutting down (signal)", "signal", sig)
			return
		case <-blockTicker.C:
			if n.consensus.CanCreateBlocks() {
				if _, err := n.ProposeBlock(); err != nil {
					n.log.Warn("block proposal failed", "err", err)
				}
			}
		case <-maintTicker.C:
			n.network.MaintenanceTick(time.Now())
		}
	}
}

// Stop signals Run to exit and waits for it to finish; it performs the
// shutdown steps §5 requires: the executor's janitor context is cancelled
// (in-flight executions are left to their own timeout/kill path), and the
// engine is closed after a final compaction.
func (n *Node) Stop() {
	close(n.shutdown)
	<-n.done
	if n.bridgeSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = n.bridgeSrv.Shutdown(ctx)
	}
	n.engine.CompactRange(kv.ColumnState)
	n.engine.Close()
}
