package proxy

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
)

// ProxyHandler encapsulates callbacks to be called by the InmemProxy. The
// application implements these handlers to process the blocks produced by
// the host.
type ProxyHandler interface {
	// CommitHandler is called when the host commits a block to the
	// application. A transaction that fails is reported in its receipt; an
	// error is only returned when the block itself could not be applied, in
	// which case none of it is.
	CommitHandler(block ledger.Block) (response CommitResponse, err error)

	// SnapshotHandler returns the record the application kept of a committed
	// block. An unknown block is a KeyNotFound StoreErr.
	SnapshotHandler(blockIndex int) (snapshot *Snapshot, err error)
}
