// Package proxy defines AppProxy: the interface between the ledger host and
// an application.
//
// The host hands ordered blocks of raw transactions to the application and
// reads back a CommitResponse carrying the resulting state hash and one
// receipt per transaction. The only implementation is InmemProxy, which calls
// a ProxyHandler natively so that the application runs in the same process.
package proxy
