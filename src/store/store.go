package store

import (
	"bytes"
	"fmt"
	"strconv"

	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/ugorji/go/codec"
)

// Store is an interface for backend stores.
type Store interface {
	// NewTxn opens a transaction. Writes are only allowed when update is true.
	NewTxn(update bool) Txn
	// Close closes the underlying database.
	Close() error
	// StorePath returns the filepath of the underlying database.
	StorePath() string
}

// Txn is a transaction over a Store.
type Txn interface {
	// Get returns the raw record under table/scope/key, or a KeyNotFound
	// StoreErr.
	Get(table string, scope, key uint64) ([]byte, error)
	// Set inserts or replaces a record.
	Set(table string, scope, key uint64, val []byte) error
	// Delete removes a record. Deleting a missing record is not an error.
	Delete(table string, scope, key uint64) error
	// Scan calls fn for every record of a table scope in ascending key order.
	Scan(table string, scope uint64, fn func(key uint64, val []byte) error) error
	// Commit applies the writes of the transaction.
	Commit() error
	// Discard drops the transaction. It is safe to call after Commit.
	Discard()
}

// View runs fn inside a read-only transaction.
func View(s Store, fn func(txn Txn) error) error {
	txn := s.NewTxn(false)
	defer txn.Discard()
	return fn(txn)
}

// Update runs fn inside a write transaction and commits it when fn succeeds.
func Update(s Store, fn func(txn Txn) error) error {
	txn := s.NewTxn(true)
	defer txn.Discard()
	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

/*******************************************************************************
Keys
*******************************************************************************/

func scopePrefix(table string, scope uint64) []byte {
	return []byte(fmt.Sprintf("%s_%016x_", table, scope))
}

func recordKey(table string, scope, key uint64) []byte {
	return []byte(fmt.Sprintf("%s_%016x_%016x", table, scope, key))
}

func primaryKey(k []byte) (uint64, error) {
	if len(k) < 16 {
		return 0, fmt.Errorf("malformed record key %q", k)
	}
	return strconv.ParseUint(string(k[len(k)-16:]), 16, 64)
}

func keyString(scope, key uint64) string {
	return fmt.Sprintf("%d/%d", scope, key)
}

/*******************************************************************************
Records
*******************************************************************************/

func newHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

// Encode returns the canonical JSON encoding of v.
func Encode(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, newHandle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Decode decodes data produced by Encode into v.
func Decode(data []byte, v interface{}) error {
	dec := codec.NewDecoder(bytes.NewBuffer(data), newHandle())
	return dec.Decode(v)
}

// GetRecord decodes the record under table/scope/key into v. It returns false
// without error when the record does not exist.
func GetRecord(txn Txn, table string, scope, key uint64, v interface{}) (bool, error) {
	data, err := txn.Get(table, scope, key)
	if cm.IsStore(err, cm.KeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := Decode(data, v); err != nil {
		return false, fmt.Errorf("decoding %s %s: %w", table, keyString(scope, key), err)
	}
	return true, nil
}

// SetRecord encodes v and stores it under table/scope/key.
func SetRecord(txn Txn, table string, scope, key uint64, v interface{}) error {
	data, err := Encode(v)
	if err != nil {
		return fmt.Errorf("encoding %s %s: %w", table, keyString(scope, key), err)
	}
	return txn.Set(table, scope, key, data)
}
