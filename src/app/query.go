package app

import (
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/registry"
	"github.com/mosaicnetworks/agpu/src/store"
)

// View runs fn with a contract Reader over a read-only transaction.
func (a *State) View(fn func(r *contract.Reader) error) error {
	return store.View(a.store, func(txn store.Txn) error {
		return fn(contract.NewReader(txn, a.contract.Self()))
	})
}

// Global ...
func (a *State) Global() (g *contract.Global, err error) {
	err = a.View(func(r *contract.Reader) error {
		g, err = r.Global()
		return err
	})
	return g, err
}

// Node ...
func (a *State) Node(nodeID uint64) (n *contract.Node, found bool, err error) {
	err = a.View(func(r *contract.Reader) error {
		n, found, err = r.Node(nodeID)
		return err
	})
	return n, found, err
}

// Nodes ...
func (a *State) Nodes() (nodes []*contract.Node, err error) {
	err = a.View(func(r *contract.Reader) error {
		nodes, err = r.Nodes()
		return err
	})
	return nodes, err
}

// Invite ...
func (a *State) Invite(user ledger.Name) (i *contract.Invite, found bool, err error) {
	err = a.View(func(r *contract.Reader) error {
		i, found, err = r.Invite(user)
		return err
	})
	return i, found, err
}

// Orders ...
func (a *State) Orders(user ledger.Name) (orders []*contract.Order, err error) {
	err = a.View(func(r *contract.Reader) error {
		orders, err = r.Orders(user)
		return err
	})
	return orders, err
}

// NodeTotals ...
func (a *State) NodeTotals(user ledger.Name) (totals []*contract.NodeTotal, err error) {
	err = a.View(func(r *contract.Reader) error {
		totals, err = r.NodeTotals(user)
		return err
	})
	return totals, err
}

// Site returns the mining-site ranking row of account.
func (a *State) Site(account ledger.Name) (site *registry.MiningSite, found bool, err error) {
	err = store.View(a.store, func(txn store.Txn) error {
		site, found, err = registry.NewSites(txn).Get(account)
		return err
	})
	return site, found, err
}

// Accounts returns every registered account.
func (a *State) Accounts() (accounts []*registry.Account, err error) {
	err = store.View(a.store, func(txn store.Txn) error {
		accounts, err = registry.NewAccounts(txn).List()
		return err
	})
	return accounts, err
}
