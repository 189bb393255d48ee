package proxy

import "github.com/mosaicnetworks/agpu/src/ledger"

// CommitResponse is the outcome of a committed block.
type CommitResponse struct {
	StateHash []byte
	Receipts  []ledger.Receipt
}

// Snapshot is the application's record of a committed block: the block with
// the state hash reached after it, and one receipt per transaction.
type Snapshot struct {
	Block    ledger.Block     `json:"block"`
	Receipts []ledger.Receipt `json:"receipts"`
}
