package proxy

import (
	"context"

	"github.com/mosaicnetworks/agpu/src/ledger"
)

// AppProxy is the host side of the application connection.
type AppProxy interface {
	SubmitCh() chan []byte
	CommitBlock(block ledger.Block) (CommitResponse, error)
	GetSnapshot(blockIndex int) (*Snapshot, error)
}

// Submitter is the client side of the application connection. SubmitTx
// queues a raw transaction and fails when ctx is done first.
type Submitter interface {
	SubmitTx(ctx context.Context, tx []byte) error
}
