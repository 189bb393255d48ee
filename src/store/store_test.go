package store

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	cm "github.com/mosaicnetworks/agpu/src/common"
)

type record struct {
	ID    uint64
	Label string
}

func initBadgerStore(t *testing.T) *BadgerStore {
	dir, err := ioutil.TempDir("", "badger")
	if err != nil {
		t.Fatal(err)
	}

	store, err := NewBadgerStore(dir, cm.NewTestEntry(t, cm.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}

	return store
}

func removeBadgerStore(store *BadgerStore, t *testing.T) {
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(store.path); err != nil {
		t.Fatal(err)
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("inmem", func(t *testing.T) {
		fn(t, NewInmemStore())
	})
	t.Run("badger", func(t *testing.T) {
		s := initBadgerStore(t)
		defer removeBadgerStore(s, t)
		fn(t, s)
	})
}

func TestGetSetDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		err := Update(s, func(txn Txn) error {
			return SetRecord(txn, "items", 7, 1, &record{ID: 1, Label: "one"})
		})
		if err != nil {
			t.Fatal(err)
		}

		var got record
		err = View(s, func(txn Txn) error {
			found, err := GetRecord(txn, "items", 7, 1, &got)
			if !found {
				t.Fatal("record should be found")
			}
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, record{ID: 1, Label: "one"}) {
			t.Fatalf("record should be %v, not %v", record{ID: 1, Label: "one"}, got)
		}

		// same key in another scope is another record
		err = View(s, func(txn Txn) error {
			_, err := txn.Get("items", 8, 1)
			if !cm.IsStore(err, cm.KeyNotFound) {
				t.Fatalf("expected KeyNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		err = Update(s, func(txn Txn) error {
			return txn.Delete("items", 7, 1)
		})
		if err != nil {
			t.Fatal(err)
		}

		err = View(s, func(txn Txn) error {
			found, err := GetRecord(txn, "items", 7, 1, &got)
			if found {
				t.Fatal("record should be deleted")
			}
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
	})
}

func TestDiscardDropsWrites(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		txn := s.NewTxn(true)
		if err := txn.Set("items", 0, 1, []byte("x")); err != nil {
			t.Fatal(err)
		}

		// writes are visible inside the transaction
		if v, err := txn.Get("items", 0, 1); err != nil || string(v) != "x" {
			t.Fatalf("expected own write, got %q %v", v, err)
		}
		txn.Discard()

		err := View(s, func(txn Txn) error {
			_, err := txn.Get("items", 0, 1)
			if !cm.IsStore(err, cm.KeyNotFound) {
				t.Fatalf("discarded write should not be visible, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	})
}

func TestScanOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		err := Update(s, func(txn Txn) error {
			for _, k := range []uint64{300, 2, 17, 1 << 40} {
				if err := SetRecord(txn, "items", 5, k, &record{ID: k}); err != nil {
					return err
				}
			}
			// other table and other scope must not leak into the scan
			if err := SetRecord(txn, "items", 6, 1, &record{ID: 1}); err != nil {
				return err
			}
			return SetRecord(txn, "itemsx", 5, 1, &record{ID: 1})
		})
		if err != nil {
			t.Fatal(err)
		}

		txn := s.NewTxn(true)
		defer txn.Discard()

		// pending writes and deletes take part in the scan
		if err := txn.Delete("items", 5, 17); err != nil {
			t.Fatal(err)
		}
		if err := SetRecord(txn, "items", 5, 3, &record{ID: 3}); err != nil {
			t.Fatal(err)
		}

		keys := []uint64{}
		err = txn.Scan("items", 5, func(key uint64, val []byte) error {
			var r record
			if err := Decode(val, &r); err != nil {
				return err
			}
			if r.ID != key {
				t.Fatalf("record %d stored under key %d", r.ID, key)
			}
			keys = append(keys, key)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}

		expected := []uint64{2, 3, 300, 1 << 40}
		if !reflect.DeepEqual(keys, expected) {
			t.Fatalf("keys should be %v, not %v", expected, keys)
		}
	})
}

func TestReadOnlyTxn(t *testing.T) {
	s := NewInmemStore()
	txn := s.NewTxn(false)
	defer txn.Discard()

	if err := txn.Set("items", 0, 1, []byte("x")); !cm.IsStore(err, cm.ReadOnly) {
		t.Fatalf("expected ReadOnly, got %v", err)
	}
}

func TestBadgerReopen(t *testing.T) {
	s := initBadgerStore(t)
	path := s.StorePath()

	err := Update(s, func(txn Txn) error {
		return SetRecord(txn, "items", 1, 9, &record{ID: 9, Label: "persisted"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewBadgerStore(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer removeBadgerStore(s, t)

	var got record
	err = View(s, func(txn Txn) error {
		_, err := GetRecord(txn, "items", 1, 9, &got)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "persisted" {
		t.Fatalf("label should be persisted, not %q", got.Label)
	}
}
