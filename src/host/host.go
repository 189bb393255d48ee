package host

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/config"
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/proxy"
	"github.com/mosaicnetworks/agpu/src/registry"
	"github.com/mosaicnetworks/agpu/src/store"
	"github.com/sirupsen/logrus"
)

// Tables owned by the host.
const (
	BlocksTable    = "blocks"
	ReceiptsTable  = "receipts"
	HostStateTable = "hoststate"
)

const hostScope = 0

// hostState is the persisted position of the block log.
type hostState struct {
	Genesis        bool                `json:"genesis"`
	LastBlockIndex int                 `json:"last_block_index"`
	LastTimestamp  ledger.TimePointSec `json:"last_timestamp"`
	LastStateHash  []byte              `json:"last_state_hash"`
	Executed       uint64              `json:"executed"`
	Failed         uint64              `json:"failed"`
}

// Host sequences transactions into blocks and commits them to the
// application.
type Host struct {
	conf  *config.Config
	proxy proxy.AppProxy
	store store.Store
	timer *ControlTimer
	clock func() time.Time

	mu      sync.RWMutex
	state   hostState
	pending [][]byte
	running bool

	shutdownCh   chan struct{}
	doneCh       chan struct{}
	shutdownOnce sync.Once

	logger *logrus.Entry
}

// NewHost creates a host over an application proxy and the store that keeps
// the block log. Init must be called before Run.
func NewHost(conf *config.Config, appProxy proxy.AppProxy, s store.Store) *Host {
	return &Host{
		conf:       conf,
		proxy:      appProxy,
		store:      s,
		timer:      NewHeartbeatTimer(),
		clock:      time.Now,
		state:      hostState{LastBlockIndex: -1},
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
		logger:     conf.Logger().WithField("component", "host"),
	}
}

// Init loads the position of the block log. On an empty database it seeds the
// genesis records and, when configured, commits the genesis block holding the
// init action of the contract.
func (h *Host) Init() error {
	err := store.View(h.store, func(txn store.Txn) error {
		_, err := store.GetRecord(txn, HostStateTable, hostScope, 0, &h.state)
		return err
	})
	if err != nil {
		return fmt.Errorf("loading host state: %w", err)
	}

	if err := h.reconcile(); err != nil {
		return err
	}

	if h.state.Genesis {
		h.logger.WithFields(logrus.Fields{
			"last_block_index": h.state.LastBlockIndex,
			"executed":         h.state.Executed,
		}).Debug("Bootstrapped")
		return nil
	}

	return h.genesis()
}

func (h *Host) genesis() error {
	now := h.timestamp()

	records, err := h.conf.GenesisRecords(now)
	if err != nil {
		return err
	}
	err = store.Update(h.store, func(txn store.Txn) error {
		return registry.Seed(txn, records, now)
	})
	if err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"accounts": len(records.Accounts),
		"sites":    len(records.Sites),
	}).Info("Genesis records")

	params, err := h.conf.InitParams()
	if err != nil {
		return err
	}

	h.state.Genesis = true

	if params == nil {
		return h.saveState()
	}

	self, err := h.conf.ContractAccount()
	if err != nil {
		return err
	}
	act, err := ledger.NewAction(self, contract.ActInit, []ledger.Name{self}, params)
	if err != nil {
		return err
	}
	tx, err := act.Marshal()
	if err != nil {
		return err
	}

	_, receipts, err := h.commit([][]byte{tx})
	if err != nil {
		return fmt.Errorf("genesis block: %w", err)
	}
	if receipts[0].Status != ledger.StatusExecuted {
		return fmt.Errorf("genesis init: %s", receipts[0].Error)
	}

	return nil
}

// Run is the block production loop. It returns after Shutdown.
func (h *Host) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer close(h.doneCh)

	go h.timer.Run(0)

	h.logger.WithField("heartbeat", h.conf.HeartbeatTimeout).Debug("Run")

	for {
		select {
		case tx := <-h.proxy.SubmitCh():
			h.mu.Lock()
			h.pending = append(h.pending, tx)
			size := len(h.pending)
			h.mu.Unlock()

			if h.conf.MaxBlockTxs > 0 && size >= h.conf.MaxBlockTxs {
				h.timer.Stop()
				h.commitPending()
			} else if size == 1 {
				h.timer.Reset(h.conf.HeartbeatTimeout)
			}
		case <-h.timer.TickCh():
			h.commitPending()
		case <-h.shutdownCh:
			return
		}
	}
}

func (h *Host) commitPending() {
	h.mu.Lock()
	txs := h.pending
	h.pending = nil
	h.mu.Unlock()

	if len(txs) == 0 {
		return
	}

	if _, _, err := h.commit(txs); err != nil {
		h.logger.WithError(err).WithField("txs", len(txs)).Error("Committing block")
	}
}

// commit builds the next block from txs, commits it to the application and
// appends it to the block log with its receipts.
func (h *Host) commit(txs [][]byte) (*ledger.Block, []ledger.Receipt, error) {
	if err := h.reconcile(); err != nil {
		return nil, nil, err
	}

	block := ledger.NewBlock(h.GetLastBlockIndex()+1, h.timestamp(), txs)

	resp, err := h.proxy.CommitBlock(*block)
	if err != nil {
		return nil, nil, err
	}
	if len(resp.Receipts) != len(txs) {
		return nil, nil, fmt.Errorf("block %d: %d receipts for %d transactions", block.Index, len(resp.Receipts), len(txs))
	}

	block.StateHash = resp.StateHash

	if err := h.record(block, resp.Receipts); err != nil {
		return nil, nil, fmt.Errorf("saving block %d: %w", block.Index, err)
	}

	h.logger.WithFields(logrus.Fields{
		"index":      block.Index,
		"timestamp":  block.Timestamp,
		"txs":        len(txs),
		"state_hash": cm.EncodeToString(resp.StateHash),
	}).Debug("Committed block")

	return block, resp.Receipts, nil
}

// record appends a block the application has committed to the block log and
// moves the host state past it.
func (h *Host) record(block *ledger.Block, receipts []ledger.Receipt) error {
	h.mu.RLock()
	next := h.state
	h.mu.RUnlock()

	next.Genesis = true
	next.LastBlockIndex = block.Index
	next.LastTimestamp = block.Timestamp
	next.LastStateHash = block.StateHash
	for _, r := range receipts {
		if r.Status == ledger.StatusExecuted {
			next.Executed++
		} else {
			next.Failed++
		}
	}

	err := store.Update(h.store, func(txn store.Txn) error {
		if err := store.SetRecord(txn, BlocksTable, hostScope, uint64(block.Index), block); err != nil {
			return err
		}
		if err := store.SetRecord(txn, ReceiptsTable, hostScope, uint64(block.Index), receipts); err != nil {
			return err
		}
		return store.SetRecord(txn, HostStateTable, hostScope, 0, &next)
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.state = next
	h.mu.Unlock()

	return nil
}

// reconcile copies into the block log the blocks the application committed
// after the last logged one. They are left behind when saving a block fails
// or the process stops after the application committed it.
func (h *Host) reconcile() error {
	for {
		index := h.GetLastBlockIndex() + 1

		snapshot, err := h.proxy.GetSnapshot(index)
		if cm.IsStore(err, cm.KeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading snapshot %d: %w", index, err)
		}
		if snapshot.Block.Index != index {
			return fmt.Errorf("snapshot %d holds block %d", index, snapshot.Block.Index)
		}

		if err := h.record(&snapshot.Block, snapshot.Receipts); err != nil {
			return fmt.Errorf("recovering block %d: %w", index, err)
		}

		h.logger.WithFields(logrus.Fields{
			"index": index,
			"txs":   len(snapshot.Block.Transactions),
		}).Warn("Recovered block from application")
	}
}

func (h *Host) saveState() error {
	h.mu.RLock()
	st := h.state
	h.mu.RUnlock()

	return store.Update(h.store, func(txn store.Txn) error {
		return store.SetRecord(txn, HostStateTable, hostScope, 0, &st)
	})
}

// timestamp is the block time of the next block. Block times never go
// backwards.
func (h *Host) timestamp() ledger.TimePointSec {
	ts := ledger.NewTimePointSec(h.clock())

	h.mu.RLock()
	defer h.mu.RUnlock()
	if ts < h.state.LastTimestamp {
		return h.state.LastTimestamp
	}
	return ts
}

/*******************************************************************************
Queries
*******************************************************************************/

// GetBlock returns a committed block.
func (h *Host) GetBlock(index int) (*ledger.Block, error) {
	block := &ledger.Block{}
	if err := h.getRecord(BlocksTable, index, block); err != nil {
		return nil, err
	}
	return block, nil
}

// GetReceipts returns the receipts of a committed block, one per
// transaction.
func (h *Host) GetReceipts(index int) ([]ledger.Receipt, error) {
	receipts := []ledger.Receipt{}
	if err := h.getRecord(ReceiptsTable, index, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (h *Host) getRecord(table string, index int, v interface{}) error {
	if index < 0 {
		return cm.NewStoreErr(table, cm.KeyNotFound, strconv.Itoa(index))
	}
	return store.View(h.store, func(txn store.Txn) error {
		found, err := store.GetRecord(txn, table, hostScope, uint64(index), v)
		if err != nil {
			return err
		}
		if !found {
			return cm.NewStoreErr(table, cm.KeyNotFound, strconv.Itoa(index))
		}
		return nil
	})
}

// GetSnapshot returns the application's record of a committed block.
func (h *Host) GetSnapshot(index int) (*proxy.Snapshot, error) {
	return h.proxy.GetSnapshot(index)
}

// GetLastBlockIndex returns the index of the last committed block, or -1.
func (h *Host) GetLastBlockIndex() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state.LastBlockIndex
}

// GetStats returns stats about the host.
func (h *Host) GetStats() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	state := "Stopped"
	if h.running {
		state = "Running"
	}

	s := map[string]string{
		"last_block_index": strconv.Itoa(h.state.LastBlockIndex),
		"last_block_time":  h.state.LastTimestamp.String(),
		"state_hash":       cm.EncodeToString(h.state.LastStateHash),
		"executed_txs":     strconv.FormatUint(h.state.Executed, 10),
		"failed_txs":       strconv.FormatUint(h.state.Failed, 10),
		"transaction_pool": strconv.Itoa(len(h.pending)),
		"heartbeat":        h.conf.HeartbeatTimeout.String(),
		"contract":         h.conf.Contract,
		"state":            state,
	}
	return s
}

// Done is closed when Shutdown is called.
func (h *Host) Done() <-chan struct{} {
	return h.shutdownCh
}

// Shutdown stops the block production loop and closes the store. Pending
// transactions that did not make it into a block are dropped.
func (h *Host) Shutdown() {
	h.shutdownOnce.Do(func() {
		h.logger.Debug("Shutdown")

		close(h.shutdownCh)

		h.mu.Lock()
		running := h.running
		h.mu.Unlock()
		if running {
			<-h.doneCh
		}

		h.timer.Shutdown()

		h.mu.Lock()
		h.running = false
		h.mu.Unlock()

		if err := h.store.Close(); err != nil {
			h.logger.WithError(err).Error("Closing store")
		}
	})
}
