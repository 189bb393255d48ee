// Package service exposes the ledger over HTTP: transaction submission, the
// block log and read-only views of the contract tables. Responses are JSON.
package service
