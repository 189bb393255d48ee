// Package store implements the keyed record store the application state lives
// in.
//
// Records are addressed by a table name, a 64 bit scope and a 64 bit primary
// key. All reads and writes go through a Txn. A write Txn buffers its changes
// until Commit, and Discard drops them, which is what gives every application
// transaction its all-or-nothing behaviour.
//
// There are two implementations. InmemStore keeps everything in a map and is
// used in tests and when persistence is disabled. BadgerStore persists records
// in a Badger database.
package store
