// Package ledger defines the primitives shared by the application and its host:
// account names, symbols and assets, second-precision timestamps, actions,
// blocks and receipts.
//
// Names
//
// An account Name is a 64 bit integer with a base-32 text form made of the
// characters ".12345abcdefghijklmnopqrstuvwxyz". Up to 12 characters use 5 bits
// each and a 13th character may use the remaining 4 bits. Tables are keyed by
// the integer value, so two spellings that map to the same integer are the same
// account.
//
// Assets
//
// An Asset is an integer amount of the smallest unit of a Symbol. The Symbol
// carries the precision, so "10.000000 MUSDT" is the amount 10000000 with
// precision 6.
package ledger
