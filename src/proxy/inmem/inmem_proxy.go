package inmem

import (
	"context"

	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/proxy"
	"github.com/sirupsen/logrus"
)

// InmemProxy implements the AppProxy interface natively
type InmemProxy struct {
	handler  proxy.ProxyHandler
	submitCh chan []byte
	logger   *logrus.Entry
}

// NewInmemProxy instantiates an InmemProxy from a set of handlers.
// If no logger, a new one is created
func NewInmemProxy(handler proxy.ProxyHandler,
	logger *logrus.Entry) *InmemProxy {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &InmemProxy{
		handler:  handler,
		submitCh: make(chan []byte),
		logger:   logger,
	}
}

/*******************************************************************************
* SubmitTx                                                                     *
*******************************************************************************/

// SubmitTx is called by the App to submit a transaction to the host. It blocks
// until the host has taken the transaction or ctx is done.
func (p *InmemProxy) SubmitTx(ctx context.Context, tx []byte) error {
	// the caller may reuse its buffer once we return
	t := make([]byte, len(tx))

	copy(t, tx)

	select {
	case p.submitCh <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

/*******************************************************************************
* Implement AppProxy Interface                                                 *
*******************************************************************************/

// SubmitCh returns the channel of raw transactions
func (p *InmemProxy) SubmitCh() chan []byte {
	return p.submitCh
}

// CommitBlock calls the commitHandler
func (p *InmemProxy) CommitBlock(block ledger.Block) (proxy.CommitResponse, error) {
	commitResponse, err := p.handler.CommitHandler(block)

	p.logger.WithFields(logrus.Fields{
		"index":    block.Index,
		"txs":      len(block.Transactions),
		"receipts": len(commitResponse.Receipts),
		"err":      err,
	}).Debug("InmemProxy.CommitBlock")

	return commitResponse, err
}

// GetSnapshot calls the snapshotHandler
func (p *InmemProxy) GetSnapshot(blockIndex int) (*proxy.Snapshot, error) {
	snapshot, err := p.handler.SnapshotHandler(blockIndex)

	p.logger.WithFields(logrus.Fields{
		"block": blockIndex,
		"err":   err,
	}).Debug("InmemProxy.GetSnapshot")

	return snapshot, err
}
