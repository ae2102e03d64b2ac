// Package poa implements C8: the Proof-of-Authority consensus variant —
// a fixed ordered validator list, turn tracking, and block proposal
// grounded on the real storage tip rather than a placeholder.
package poa

import (
	"github.com/beacon-network/beacon/common"
	"github.com/beacon-network/beacon/core"
	beaconerrors "github.com/beacon-network/beacon/errors"
	"github.com/beacon-network/beacon/storage/blockstore"
)

// State summarises the consensus view for get_state().
type State struct {
	CurrentValidator common.ValidatorId
	NextValidator    common.ValidatorId
	ValidatorCount   int
	IsSynced         bool
}

// Authority is the PoA consensus engine. It is deliberately narrow — the
// design notes call for consensus to be polymorphic over
// {validate_block, create_block, can_create_blocks, get_state}; this type
// implements exactly that capability set so a future BFT variant can sit
// behind the same shape.
type Authority struct {
	validators   []common.ValidatorId
	currentIndex int
	nodeID       common.NodeId
	blocks       *blockstore.Store
}

func New(validators []common.ValidatorId, nodeID common.NodeId, blocks *blockstore.Store) *Authority {
	return &Authority{validators: validators, nodeID: nodeID, blocks: blocks}
}

// ValidateBlock performs consensus-level validation. Per §4.8, this spec
// accepts any structurally valid block; richer variants would additionally
// require the block's validator to be the expected current validator and
// verify the block's own signature.
func (a *Authority) ValidateBlock(b *core.Block) bool {
	return b != nil
}

// CanCreateBlocks reports whether this node's id is in the validator list.
func (a *Authority) CanCreateBlocks() bool {
	for _, v := range a.validators {
		if string(v) == string(a.nodeID) {
			return true
		}
	}
	return false
}

// GetState reports the current/next validator, count and sync status.
func (a *Authority) GetState() State {
	if len(a.validators) == 0 {
		return State{}
	}
	next := (a.currentIndex + 1) % len(a.validators)
	return State{
		CurrentValidator: a.validators[a.currentIndex],
		NextValidator:    a.validators[next],
		ValidatorCount:   len(a.validators),
		IsSynced:         true,
	}
}

// Advance moves the turn to the next validator, called by the orchestrator
// after a block is committed.
func (a *Authority) Advance() {
	if len(a.validators) == 0 {
		return
	}
	a.currentIndex = (a.currentIndex + 1) % len(a.validators)
}

// CreateBlock builds a Block whose previous_hash is the latest stored
// block's hash and whose index is one past the tip — wired to the real
// storage tip, unlike the reference implementation's hardcoded
// index=0/previous_hash=zeros placeholder.
func (a *Authority) CreateBlock(txs []*core.Transaction, validator common.ValidatorId, nowMillis int64) (*core.Block, error) {
	if !a.CanCreateBlocks() {
		return nil, beaconerrors.New(beaconerrors.Consensus, "not a validator")
	}
	tip, err := a.blocks.Latest()
	if err != nil {
		return nil, err
	}
	var index common.BlockIndex
	var prevHash common.Hash
	if tip != nil {
		index = tip.Header.Index + 1
		prevHash = tip.Hash
	}
	b := &core.Block{
		Header: core.Header{
			Index:        index,
			PreviousHash: prevHash,
			Timestamp:    nowMillis,
			Validator:    validator,
			Version:      1,
			Metadata:     map[string]string{},
		},
		Transactions: txs,
	}
	b.Finalize()
	return b, nil
}
