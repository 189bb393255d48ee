package ledger

import (
	"bytes"
	"encoding/json"

	"github.com/mosaicnetworks/agpu/src/crypto"
)

// Block is an ordered batch of raw transactions. Every transaction is an
// encoded Action.
type Block struct {
	Index        int
	Timestamp    TimePointSec
	StateHash    []byte
	Transactions [][]byte
}

// NewBlock creates a block without state hash.
func NewBlock(index int, timestamp TimePointSec, txs [][]byte) *Block {
	return &Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
	}
}

// Marshal returns the JSON encoding of the block.
func (b *Block) Marshal() ([]byte, error) {
	bf := bytes.NewBuffer([]byte{})
	enc := json.NewEncoder(bf)
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return bf.Bytes(), nil
}

// Unmarshal decodes a JSON encoded block.
func (b *Block) Unmarshal(data []byte) error {
	dec := json.NewDecoder(bytes.NewBuffer(data))
	return dec.Decode(b)
}

// Hash returns the SHA256 of the block encoding.
func (b *Block) Hash() ([]byte, error) {
	data, err := b.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(data), nil
}

// Receipt status values.
const (
	StatusExecuted = "executed"
	StatusFailed   = "failed"
)

// Receipt is the outcome of one transaction of a block. Inline holds the
// actions the application asked the host to perform, such as outbound token
// transfers.
type Receipt struct {
	Index  int      `json:"index"`
	Status string   `json:"status"`
	Code   int      `json:"code,omitempty"`
	Error  string   `json:"error,omitempty"`
	Inline []Action `json:"inline,omitempty"`
}
