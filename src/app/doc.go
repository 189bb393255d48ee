// Package app is the application side of the ledger: it applies the blocks
// committed by the host to the node sale contract.
//
// Every transaction of a block is an encoded ledger.Action and runs in its own
// store transaction. A failing action leaves no trace in the tables and is
// reported in its receipt; the block carries on with the next transaction.
package app
