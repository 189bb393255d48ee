package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/sirupsen/logrus"
)

func validateNodeParams(ctx *Context, price ledger.Asset, maxSale uint64, startTime uint32) error {
	if !price.IsValid() || price.Amount <= 0 {
		return errorf(ParamError, "invalid price")
	}
	if maxSale == 0 {
		return errorf(ParamError, "invalid max_sale: %d", maxSale)
	}
	if ledger.TimePointSec(startTime) < ctx.Now {
		return errorf(ParamError, "start_time must be in the future")
	}
	return nil
}

// AddNode creates an enabled node with the next node id.
func (c *Contract) AddNode(ctx *Context, g *Global, price ledger.Asset, maxSale uint64, startTime uint32) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if err := validateNodeParams(ctx, price, maxSale, startTime); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	nodeID := g.nextNodeID()
	_, found, err := d.getNode(nodeID)
	if err != nil {
		return err
	}
	if found {
		return errorf(RecordFound, "node found: %d", nodeID)
	}

	node := &Node{
		NodeID:     nodeID,
		Price:      price,
		MaxSale:    maxSale,
		TotalSaled: 0,
		Status:     StatusEnable,
		StartTime:  ledger.TimePointSec(startTime),
		CreateTime: ctx.Now,
		UpdateTime: ctx.Now,
	}

	c.logger.WithFields(logrus.Fields{
		"node_id":  nodeID,
		"price":    price,
		"max_sale": maxSale,
	}).Debug("AddNode")

	return d.setNode(node)
}

// SetNode updates the price, cap and start time of a node. The sale count and
// the status are left alone.
func (c *Contract) SetNode(ctx *Context, g *Global, nodeID uint64, price ledger.Asset, maxSale uint64, startTime uint32) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if nodeID == 0 {
		return errorf(ParamError, "invalid node_id: %d", nodeID)
	}
	if err := validateNodeParams(ctx, price, maxSale, startTime); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	node, err := c.requireNode(d, nodeID)
	if err != nil {
		return err
	}

	node.Price = price
	node.MaxSale = maxSale
	node.StartTime = ledger.TimePointSec(startTime)
	node.UpdateTime = ctx.Now

	return d.setNode(node)
}

// DelNode removes a disabled node.
func (c *Contract) DelNode(ctx *Context, g *Global, nodeID uint64) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if nodeID == 0 {
		return errorf(ParamError, "invalid node_id: %d", nodeID)
	}

	d := c.db(ctx.Txn)

	node, err := c.requireNode(d, nodeID)
	if err != nil {
		return err
	}
	if node.Status != StatusDisable {
		return errorf(ParamError, "node is enable: %d", nodeID)
	}

	c.logger.WithField("node_id", nodeID).Debug("DelNode")

	return d.delNode(nodeID)
}

// SetTotalSale overrides the sale count of a node. The value is not checked
// against max_sale: this is the administrative escape hatch for repairing
// inventory, and it can leave a node oversold.
func (c *Contract) SetTotalSale(ctx *Context, g *Global, nodeID uint64, totalSaled uint64) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if nodeID == 0 {
		return errorf(ParamError, "invalid node_id: %d", nodeID)
	}
	if totalSaled == 0 {
		return errorf(ParamError, "invalid total_saled: %d", totalSaled)
	}

	d := c.db(ctx.Txn)

	node, err := c.requireNode(d, nodeID)
	if err != nil {
		return err
	}

	if totalSaled > node.MaxSale {
		c.logger.WithFields(logrus.Fields{
			"node_id":     nodeID,
			"total_saled": totalSaled,
			"max_sale":    node.MaxSale,
		}).Warn("SetTotalSale above max_sale")
	}

	node.TotalSaled = totalSaled
	node.UpdateTime = ctx.Now

	return d.setNode(node)
}

// SetNodeState enables or disables a node.
func (c *Contract) SetNodeState(ctx *Context, g *Global, nodeID uint64, status ledger.Name) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if nodeID == 0 {
		return errorf(ParamError, "invalid node_id: %d", nodeID)
	}
	if status != StatusEnable && status != StatusDisable {
		return errorf(ParamError, "invalid state: %s", status)
	}

	d := c.db(ctx.Txn)

	node, err := c.requireNode(d, nodeID)
	if err != nil {
		return err
	}

	node.Status = status
	node.UpdateTime = ctx.Now

	return d.setNode(node)
}

func (c *Contract) requireNode(d db, nodeID uint64) (*Node, error) {
	node, found, err := d.getNode(nodeID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errorf(RecordNotFound, "node not found: %d", nodeID)
	}
	return node, nil
}
