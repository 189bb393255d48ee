package app

import (
	"fmt"
	"strconv"

	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/crypto"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/proxy"
	"github.com/mosaicnetworks/agpu/src/registry"
	"github.com/mosaicnetworks/agpu/src/store"
	"github.com/sirupsen/logrus"
)

// Tables owned by the application.
const (
	AppStateTable  = "appstate"
	SnapshotsTable = "snapshots"
)

const appScope = 0

// status is the persisted summary of the applied blocks.
type status struct {
	StateHash  []byte `json:"state_hash"`
	BlockIndex int    `json:"block_index"`
}

// State implements proxy.ProxyHandler on top of the contract.
type State struct {
	store     store.Store
	contract  *contract.Contract
	stateHash []byte
	lastBlock int
	logger    *logrus.Entry
}

// NewState loads the application status from s. A fresh store starts with
// an empty state hash and no block.
func NewState(s store.Store, self ledger.Name, logger *logrus.Entry) (*State, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	state := &State{
		store:     s,
		contract:  contract.NewContract(self, logger),
		stateHash: []byte{},
		lastBlock: -1,
		logger:    logger,
	}

	st := &status{}
	err := store.View(s, func(txn store.Txn) error {
		found, err := store.GetRecord(txn, AppStateTable, appScope, 0, st)
		if found {
			state.stateHash = st.StateHash
			state.lastBlock = st.BlockIndex
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("loading app state: %w", err)
	}

	return state, nil
}

// Contract returns the account the contract is deployed on.
func (a *State) Contract() ledger.Name {
	return a.contract.Self()
}

// StateHash returns the hash of all executed transactions so far.
func (a *State) StateHash() []byte {
	return a.stateHash
}

// LastBlockIndex returns the index of the last applied block, or -1.
func (a *State) LastBlockIndex() int {
	return a.lastBlock
}

/*******************************************************************************
Implement ProxyHandler
*******************************************************************************/

// CommitHandler applies the transactions of block in order and returns one
// receipt per transaction. Only executed transactions contribute to the state
// hash. The whole block is written in one store transaction, together with
// the application status and the snapshot of the block; when that write
// fails nothing of the block is kept.
func (a *State) CommitHandler(block ledger.Block) (proxy.CommitResponse, error) {
	a.logger.WithFields(logrus.Fields{
		"index": block.Index,
		"txs":   len(block.Transactions),
	}).Debug("CommitBlock")

	if block.Index <= a.lastBlock {
		return proxy.CommitResponse{}, fmt.Errorf("block %d already applied, last is %d", block.Index, a.lastBlock)
	}

	txn := a.store.NewTxn(true)
	defer txn.Discard()

	hash := a.stateHash
	receipts := make([]ledger.Receipt, len(block.Transactions))

	for i, tx := range block.Transactions {
		receipt, err := a.applyTx(txn, block, i, tx)
		if err != nil {
			return proxy.CommitResponse{}, fmt.Errorf("block %d tx %d: %w", block.Index, i, err)
		}
		receipts[i] = receipt
		if receipt.Status == ledger.StatusExecuted {
			hash = crypto.ChainHash(hash, tx)
		}
	}

	block.StateHash = hash

	st := &status{StateHash: hash, BlockIndex: block.Index}
	snapshot := &proxy.Snapshot{Block: block, Receipts: receipts}

	if err := store.SetRecord(txn, AppStateTable, appScope, 0, st); err != nil {
		return proxy.CommitResponse{}, fmt.Errorf("saving app state: %w", err)
	}
	if err := store.SetRecord(txn, SnapshotsTable, appScope, uint64(block.Index), snapshot); err != nil {
		return proxy.CommitResponse{}, fmt.Errorf("saving snapshot: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return proxy.CommitResponse{}, fmt.Errorf("committing block %d: %w", block.Index, err)
	}

	a.stateHash = hash
	a.lastBlock = block.Index

	return proxy.CommitResponse{
		StateHash: hash,
		Receipts:  receipts,
	}, nil
}

// SnapshotHandler returns the record kept of a committed block.
func (a *State) SnapshotHandler(blockIndex int) (*proxy.Snapshot, error) {
	a.logger.WithField("block", blockIndex).Debug("GetSnapshot")

	if blockIndex < 0 {
		return nil, cm.NewStoreErr(SnapshotsTable, cm.KeyNotFound, strconv.Itoa(blockIndex))
	}

	snapshot := &proxy.Snapshot{}
	var found bool
	err := store.View(a.store, func(txn store.Txn) error {
		var err error
		found, err = store.GetRecord(txn, SnapshotsTable, appScope, uint64(blockIndex), snapshot)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, cm.NewStoreErr(SnapshotsTable, cm.KeyNotFound, strconv.Itoa(blockIndex))
	}

	return snapshot, nil
}

/*******************************************************************************
Transactions
*******************************************************************************/

// applyTx runs one transaction in a nested transaction of the block. A
// transaction that fails is discarded and reported in its receipt. The error
// is for failures of the block transaction itself.
func (a *State) applyTx(blockTxn store.Txn, block ledger.Block, index int, tx []byte) (ledger.Receipt, error) {
	receipt := ledger.Receipt{Index: index, Status: ledger.StatusExecuted}

	var act ledger.Action
	if err := act.Unmarshal(tx); err != nil {
		return a.failed(receipt, fmt.Errorf("decoding transaction: %w", err), contract.ParamError), nil
	}

	txn := store.NewNestedTxn(blockTxn)
	defer txn.Discard()

	var inline []ledger.Action

	if registry.IsSystemAction(&act) {
		if err := registry.ApplySystem(txn, &act, block.Timestamp); err != nil {
			return a.failed(receipt, err, contract.CodeOf(err)), nil
		}
	} else {
		ctx := &contract.Context{
			Txn:      txn,
			Accounts: registry.NewAccounts(txn),
			Sites:    registry.NewSites(txn),
			Now:      block.Timestamp,
			Action:   act,
		}

		res, err := a.contract.Apply(ctx)
		if err != nil {
			return a.failed(receipt, err, contract.CodeOf(err)), nil
		}
		inline = res.Inline
	}

	if err := txn.Commit(); err != nil {
		return receipt, err
	}

	receipt.Inline = inline

	a.logger.WithFields(logrus.Fields{
		"block":   block.Index,
		"tx":      index,
		"account": act.Account,
		"action":  act.Name,
		"inline":  len(inline),
	}).Debug("Executed")

	return receipt, nil
}

func (a *State) failed(receipt ledger.Receipt, err error, code contract.Code) ledger.Receipt {
	receipt.Status = ledger.StatusFailed
	receipt.Code = int(code)
	receipt.Error = err.Error()

	a.logger.WithFields(logrus.Fields{
		"tx":    receipt.Index,
		"error": err,
	}).Debug("Failed")

	return receipt
}
