package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/sirupsen/logrus"
)

// buy records an order of user on a node whose inventory has already been
// taken, and bumps the user's running total for that node.
func (c *Contract) buy(ctx *Context, g *Global, d db, nodeID uint64, user ledger.Name, quantity ledger.Asset) error {
	invite, found, err := d.getInvite(user)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "user invite not found: %s", user)
	}

	orderID := g.nextOrderID()
	_, found, err = d.getOrder(user, orderID)
	if err != nil {
		return err
	}
	if found {
		return errorf(RecordFound, "order found: %d", orderID)
	}

	order := &Order{
		OrderID:    orderID,
		NodeID:     nodeID,
		User:       user,
		Inviter:    invite.Inviter,
		Price:      quantity,
		CreateTime: ctx.Now,
	}
	if err := d.setOrder(order); err != nil {
		return err
	}

	total, found, err := d.getNodeTotal(user, nodeID)
	if err != nil {
		return err
	}
	if !found {
		total = &NodeTotal{
			NodeID:     nodeID,
			Total:      1,
			CreateTime: ctx.Now,
			UpdateTime: ctx.Now,
		}
	} else {
		total.Total++
		total.UpdateTime = ctx.Now
	}

	c.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"node_id":  nodeID,
		"user":     user,
		"inviter":  invite.Inviter,
		"total":    total.Total,
	}).Debug("Buy")

	return d.setNodeTotal(user, total)
}

// checkSaleable verifies that quantity pays exactly one unit of an enabled
// node with inventory left.
func checkSaleable(g *Global, node *Node, quantity ledger.Asset) error {
	if quantity.Symbol != g.PaymentSymbol {
		return errorf(SymbolMismatch, "invalid usdt symbol: %s", quantity.Symbol.Code)
	}
	if quantity.Amount != node.Price.Amount {
		return errorf(QuantityInvalid, "invalid quantity: %s", quantity)
	}
	if node.Status != StatusEnable {
		return errorf(ParamError, "node not enable: %d", node.NodeID)
	}
	return nil
}

func checkInventory(node *Node) error {
	if node.TotalSaled+1 > node.MaxSale {
		return errorf(Oversized, "node saled count exceeded: %d", node.MaxSale)
	}
	return nil
}

// AddOrder creates an order without payment. It takes inventory like a
// purchase would.
func (c *Contract) AddOrder(ctx *Context, g *Global, nodeID uint64, user ledger.Name, quantity ledger.Asset) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if nodeID == 0 {
		return errorf(ParamError, "invalid node_id: %d", nodeID)
	}
	if err := ctx.requireAccount(user, "user"); err != nil {
		return err
	}
	if !quantity.IsValid() || quantity.Amount <= 0 {
		return errorf(QuantityInvalid, "invalid quantity")
	}

	d := c.db(ctx.Txn)

	node, err := c.requireNode(d, nodeID)
	if err != nil {
		return err
	}
	if err := checkSaleable(g, node, quantity); err != nil {
		return err
	}
	if err := checkInventory(node); err != nil {
		return err
	}

	node.TotalSaled++
	node.UpdateTime = ctx.Now
	if err := d.setNode(node); err != nil {
		return err
	}

	return c.buy(ctx, g, d, nodeID, user, quantity)
}

// DelOrder removes an order of user and takes one unit off the user's running
// total for the node. Node inventory is not given back.
func (c *Contract) DelOrder(ctx *Context, g *Global, orderID uint64, user ledger.Name) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if orderID == 0 {
		return errorf(ParamError, "invalid order_id: %d", orderID)
	}
	if err := ctx.requireAccount(user, "user"); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	order, found, err := d.getOrder(user, orderID)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "order not found: %d", orderID)
	}

	_, found, err = d.getInvite(user)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "user invite not found: %s", user)
	}

	total, found, err := d.getNodeTotal(user, order.NodeID)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "node total not found: %d", order.NodeID)
	}
	if total.Total == 0 {
		return errorf(InvariantViolation, "node total of %s on node %d would drop below zero", user, order.NodeID)
	}

	if err := d.delOrder(user, orderID); err != nil {
		return err
	}

	total.Total--
	total.UpdateTime = ctx.Now

	c.logger.WithFields(logrus.Fields{
		"order_id": orderID,
		"node_id":  order.NodeID,
		"user":     user,
		"total":    total.Total,
	}).Debug("DelOrder")

	return d.setNodeTotal(user, total)
}
