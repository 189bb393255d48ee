// Package registry keeps the host-side records the contract consults but does
// not own: the set of existing accounts and the mining-site ranking published
// by the mining application. Both are plain store tables read inside the same
// transaction as the contract invocation.
package registry
