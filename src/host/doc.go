// Package host implements a single-sequencer ledger host.
//
// The host collects the raw transactions submitted through its AppProxy,
// cuts them into blocks on a heartbeat, hands every block to the application
// and keeps the block log and the receipts in the store. There is no
// consensus: the host is the only writer and blocks are final as soon as the
// application has committed them.
package host
