package store

import (
	"sort"

	cm "github.com/mosaicnetworks/agpu/src/common"
)

// NewNestedTxn opens a transaction layered over parent. Its writes are seen by
// its own reads and reach parent on Commit. Discard drops them and leaves
// parent untouched.
func NewNestedTxn(parent Txn) Txn {
	return &nestedTxn{
		parent: parent,
		writes: make(map[string]*nestedWrite),
	}
}

type nestedWrite struct {
	table   string
	scope   uint64
	key     uint64
	val     []byte
	deleted bool
}

type nestedTxn struct {
	parent Txn
	writes map[string]*nestedWrite
	done   bool
}

func (t *nestedTxn) Get(table string, scope, key uint64) ([]byte, error) {
	if w, ok := t.writes[string(recordKey(table, scope, key))]; ok {
		if w.deleted {
			return nil, cm.NewStoreErr(table, cm.KeyNotFound, keyString(scope, key))
		}
		return copyBytes(w.val), nil
	}
	return t.parent.Get(table, scope, key)
}

func (t *nestedTxn) Set(table string, scope, key uint64, val []byte) error {
	if t.done {
		return cm.NewStoreErr(table, cm.Closed, keyString(scope, key))
	}
	t.writes[string(recordKey(table, scope, key))] = &nestedWrite{
		table: table,
		scope: scope,
		key:   key,
		val:   copyBytes(val),
	}
	return nil
}

func (t *nestedTxn) Delete(table string, scope, key uint64) error {
	if t.done {
		return cm.NewStoreErr(table, cm.Closed, keyString(scope, key))
	}
	t.writes[string(recordKey(table, scope, key))] = &nestedWrite{
		table:   table,
		scope:   scope,
		key:     key,
		deleted: true,
	}
	return nil
}

func (t *nestedTxn) Scan(table string, scope uint64, fn func(key uint64, val []byte) error) error {
	merged := make(map[uint64][]byte)

	err := t.parent.Scan(table, scope, func(key uint64, val []byte) error {
		merged[key] = val
		return nil
	})
	if err != nil {
		return err
	}

	for _, w := range t.writes {
		if w.table != table || w.scope != scope {
			continue
		}
		if w.deleted {
			delete(merged, w.key)
		} else {
			merged[w.key] = w.val
		}
	}

	keys := make([]uint64, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		if err := fn(k, copyBytes(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

// Commit writes the buffered changes into the parent transaction in key
// order. The parent still has to be committed.
func (t *nestedTxn) Commit() error {
	if t.done {
		return nil
	}

	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		w := t.writes[k]
		var err error
		if w.deleted {
			err = t.parent.Delete(w.table, w.scope, w.key)
		} else {
			err = t.parent.Set(w.table, w.scope, w.key, w.val)
		}
		if err != nil {
			return err
		}
	}

	t.done = true
	t.writes = nil
	return nil
}

func (t *nestedTxn) Discard() {
	t.done = true
	t.writes = nil
}
