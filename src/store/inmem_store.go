package store

import (
	"bytes"
	"sort"
	"sync"

	cm "github.com/mosaicnetworks/agpu/src/common"
)

// InmemStore implements the Store interface with an in-memory map. Write
// transactions buffer their changes and apply them atomically on Commit.
type InmemStore struct {
	sync.RWMutex
	records map[string][]byte
	closed  bool
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		records: make(map[string][]byte),
	}
}

// NewTxn implements the Store interface.
func (s *InmemStore) NewTxn(update bool) Txn {
	return &inmemTxn{
		store:   s,
		update:  update,
		writes:  make(map[string][]byte),
		deletes: make(map[string]bool),
	}
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	return nil
}

// StorePath implements the Store interface. An InmemStore has no path.
func (s *InmemStore) StorePath() string {
	return ""
}

type inmemTxn struct {
	store   *InmemStore
	update  bool
	writes  map[string][]byte
	deletes map[string]bool
	done    bool
}

func (t *inmemTxn) Get(table string, scope, key uint64) ([]byte, error) {
	k := string(recordKey(table, scope, key))

	if t.deletes[k] {
		return nil, cm.NewStoreErr(table, cm.KeyNotFound, keyString(scope, key))
	}
	if v, ok := t.writes[k]; ok {
		return copyBytes(v), nil
	}

	t.store.RLock()
	defer t.store.RUnlock()

	if t.store.closed {
		return nil, cm.NewStoreErr(table, cm.Closed, keyString(scope, key))
	}

	v, ok := t.store.records[k]
	if !ok {
		return nil, cm.NewStoreErr(table, cm.KeyNotFound, keyString(scope, key))
	}
	return copyBytes(v), nil
}

func (t *inmemTxn) Set(table string, scope, key uint64, val []byte) error {
	if !t.update {
		return cm.NewStoreErr(table, cm.ReadOnly, keyString(scope, key))
	}
	k := string(recordKey(table, scope, key))
	delete(t.deletes, k)
	t.writes[k] = copyBytes(val)
	return nil
}

func (t *inmemTxn) Delete(table string, scope, key uint64) error {
	if !t.update {
		return cm.NewStoreErr(table, cm.ReadOnly, keyString(scope, key))
	}
	k := string(recordKey(table, scope, key))
	delete(t.writes, k)
	t.deletes[k] = true
	return nil
}

func (t *inmemTxn) Scan(table string, scope uint64, fn func(key uint64, val []byte) error) error {
	prefix := scopePrefix(table, scope)

	merged := make(map[string][]byte)

	t.store.RLock()
	for k, v := range t.store.records {
		if bytes.HasPrefix([]byte(k), prefix) {
			merged[k] = v
		}
	}
	t.store.RUnlock()

	for k, v := range t.writes {
		if bytes.HasPrefix([]byte(k), prefix) {
			merged[k] = v
		}
	}
	for k := range t.deletes {
		delete(merged, k)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		pk, err := primaryKey([]byte(k))
		if err != nil {
			return err
		}
		if err := fn(pk, copyBytes(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

func (t *inmemTxn) Commit() error {
	if t.done || !t.update {
		return nil
	}

	t.store.Lock()
	defer t.store.Unlock()

	if t.store.closed {
		return cm.NewStoreErr("txn", cm.Closed, "commit")
	}

	for k := range t.deletes {
		delete(t.store.records, k)
	}
	for k, v := range t.writes {
		t.store.records[k] = v
	}

	t.done = true
	return nil
}

func (t *inmemTxn) Discard() {
	t.done = true
	t.writes = nil
	t.deletes = nil
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
