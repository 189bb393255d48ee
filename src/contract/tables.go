package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// Table names.
const (
	GlobalTable    = "global"
	NodesTable     = "nodes"
	NodeTotalTable = "nodetotals"
	InvitesTable   = "invites"
	OrdersTable    = "orders"
)

// Node status values.
var (
	StatusEnable  = ledger.MustParseName("enable")
	StatusDisable = ledger.MustParseName("disable")
)

// Node is a purchasable sale slot. Scope: contract account.
type Node struct {
	NodeID     uint64              `json:"node_id"`
	Price      ledger.Asset        `json:"price"`
	MaxSale    uint64              `json:"max_sale"`
	TotalSaled uint64              `json:"total_saled"`
	Status     ledger.Name         `json:"status"`
	StartTime  ledger.TimePointSec `json:"start_time"`
	CreateTime ledger.TimePointSec `json:"create_time"`
	UpdateTime ledger.TimePointSec `json:"update_time"`
}

// NodeTotal counts the purchases of one user on one node. Scope: user.
type NodeTotal struct {
	NodeID     uint64              `json:"node_id"`
	Total      uint64              `json:"total"`
	CreateTime ledger.TimePointSec `json:"create_time"`
	UpdateTime ledger.TimePointSec `json:"update_time"`
}

// Invite is the invite graph edge of a user. Scope: contract account.
type Invite struct {
	User        ledger.Name         `json:"user"`
	Inviter     ledger.Name         `json:"inviter"`
	InviteCount uint64              `json:"invite_count"`
	CreateTime  ledger.TimePointSec `json:"create_time"`
	UpdateTime  ledger.TimePointSec `json:"update_time"`
}

// Order is a settled purchase. Scope: user.
type Order struct {
	OrderID    uint64              `json:"order_id"`
	NodeID     uint64              `json:"node_id"`
	User       ledger.Name         `json:"user"`
	Inviter    ledger.Name         `json:"inviter"`
	Price      ledger.Asset        `json:"price"`
	CreateTime ledger.TimePointSec `json:"create_time"`
}

// db gives typed access to the contract tables inside one transaction.
type db struct {
	txn  store.Txn
	self ledger.Name
}

func (d db) getGlobal() (*Global, error) {
	g := NewGlobal()
	if _, err := store.GetRecord(d.txn, GlobalTable, uint64(d.self), 0, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (d db) setGlobal(g *Global) error {
	return store.SetRecord(d.txn, GlobalTable, uint64(d.self), 0, g)
}

func (d db) getNode(nodeID uint64) (*Node, bool, error) {
	n := &Node{}
	found, err := store.GetRecord(d.txn, NodesTable, uint64(d.self), nodeID, n)
	return n, found, err
}

func (d db) setNode(n *Node) error {
	return store.SetRecord(d.txn, NodesTable, uint64(d.self), n.NodeID, n)
}

func (d db) delNode(nodeID uint64) error {
	return d.txn.Delete(NodesTable, uint64(d.self), nodeID)
}

func (d db) getInvite(user ledger.Name) (*Invite, bool, error) {
	i := &Invite{}
	found, err := store.GetRecord(d.txn, InvitesTable, uint64(d.self), uint64(user), i)
	return i, found, err
}

func (d db) setInvite(i *Invite) error {
	return store.SetRecord(d.txn, InvitesTable, uint64(d.self), uint64(i.User), i)
}

func (d db) delInvite(user ledger.Name) error {
	return d.txn.Delete(InvitesTable, uint64(d.self), uint64(user))
}

func (d db) getOrder(user ledger.Name, orderID uint64) (*Order, bool, error) {
	o := &Order{}
	found, err := store.GetRecord(d.txn, OrdersTable, uint64(user), orderID, o)
	return o, found, err
}

func (d db) setOrder(o *Order) error {
	return store.SetRecord(d.txn, OrdersTable, uint64(o.User), o.OrderID, o)
}

func (d db) delOrder(user ledger.Name, orderID uint64) error {
	return d.txn.Delete(OrdersTable, uint64(user), orderID)
}

func (d db) getNodeTotal(user ledger.Name, nodeID uint64) (*NodeTotal, bool, error) {
	t := &NodeTotal{}
	found, err := store.GetRecord(d.txn, NodeTotalTable, uint64(user), nodeID, t)
	return t, found, err
}

func (d db) setNodeTotal(user ledger.Name, t *NodeTotal) error {
	return store.SetRecord(d.txn, NodeTotalTable, uint64(user), t.NodeID, t)
}
