package store

import (
	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/sirupsen/logrus"
)

// BadgerStore implements the Store interface on top of a Badger database.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens an existing database or creates a new one if nothing is
// found in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithTruncate(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithField("ns", "badger"))
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// NewTxn implements the Store interface.
func (s *BadgerStore) NewTxn(update bool) Txn {
	return &badgerTxn{txn: s.db.NewTransaction(update)}
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath returns the full path of the underlying Badger database directory.
func (s *BadgerStore) StorePath() string {
	return s.path
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) Get(table string, scope, key uint64) ([]byte, error) {
	item, err := t.txn.Get(recordKey(table, scope, key))
	if err != nil {
		return nil, mapError(err, table, keyString(scope, key))
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(table string, scope, key uint64, val []byte) error {
	err := t.txn.Set(recordKey(table, scope, key), val)
	return mapError(err, table, keyString(scope, key))
}

func (t *badgerTxn) Delete(table string, scope, key uint64) error {
	err := t.txn.Delete(recordKey(table, scope, key))
	return mapError(err, table, keyString(scope, key))
}

func (t *badgerTxn) Scan(table string, scope uint64, fn func(key uint64, val []byte) error) error {
	it := t.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := scopePrefix(table, scope)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()

		pk, err := primaryKey(item.Key())
		if err != nil {
			return err
		}

		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if err := fn(pk, v); err != nil {
			return err
		}
	}
	return nil
}

func (t *badgerTxn) Commit() error {
	return t.txn.Commit()
}

func (t *badgerTxn) Discard() {
	t.txn.Discard()
}

func mapError(err error, table, key string) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return cm.NewStoreErr(table, cm.KeyNotFound, key)
	case badger.ErrReadOnlyTxn:
		return cm.NewStoreErr(table, cm.ReadOnly, key)
	}
	return err
}
