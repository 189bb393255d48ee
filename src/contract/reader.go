package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// Reader reads the contract tables outside of an invocation.
type Reader struct {
	d db
}

// NewReader returns a Reader over txn for the contract deployed on self.
func NewReader(txn store.Txn, self ledger.Name) *Reader {
	return &Reader{d: db{txn: txn, self: self}}
}

// Global returns the configuration, or the defaults before init.
func (r *Reader) Global() (*Global, error) {
	return r.d.getGlobal()
}

// Node returns a node by id.
func (r *Reader) Node(nodeID uint64) (*Node, bool, error) {
	return r.d.getNode(nodeID)
}

// Nodes returns all nodes by ascending id.
func (r *Reader) Nodes() ([]*Node, error) {
	nodes := []*Node{}
	err := r.d.txn.Scan(NodesTable, uint64(r.d.self), func(key uint64, val []byte) error {
		n := &Node{}
		if err := store.Decode(val, n); err != nil {
			return err
		}
		nodes = append(nodes, n)
		return nil
	})
	return nodes, err
}

// Invite returns the invite record of user.
func (r *Reader) Invite(user ledger.Name) (*Invite, bool, error) {
	return r.d.getInvite(user)
}

// Orders returns the orders of user by ascending id.
func (r *Reader) Orders(user ledger.Name) ([]*Order, error) {
	orders := []*Order{}
	err := r.d.txn.Scan(OrdersTable, uint64(user), func(key uint64, val []byte) error {
		o := &Order{}
		if err := store.Decode(val, o); err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	return orders, err
}

// NodeTotal returns the running total of user on a node.
func (r *Reader) NodeTotal(user ledger.Name, nodeID uint64) (*NodeTotal, bool, error) {
	return r.d.getNodeTotal(user, nodeID)
}

// NodeTotals returns all running totals of user.
func (r *Reader) NodeTotals(user ledger.Name) ([]*NodeTotal, error) {
	totals := []*NodeTotal{}
	err := r.d.txn.Scan(NodeTotalTable, uint64(user), func(key uint64, val []byte) error {
		t := &NodeTotal{}
		if err := store.Decode(val, t); err != nil {
			return err
		}
		totals = append(totals, t)
		return nil
	})
	return totals, err
}
