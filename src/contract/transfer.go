package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/sirupsen/logrus"
)

// OnTransfer handles a token transfer notification. Transfers that are not
// deposits into the contract account are ignored. A deposit must carry a memo
// command; for "buy" the funds are forwarded to the bank and one unit of the
// node is sold to the sender.
func (c *Contract) OnTransfer(ctx *Context, g *Global, t ledger.Transfer) error {
	if t.From == c.self || t.To != c.self {
		return nil
	}

	if err := ctx.requireAccount(t.From, "from"); err != nil {
		return err
	}
	if err := ctx.requireAccount(t.To, "to"); err != nil {
		return err
	}
	if !t.Quantity.IsValid() || t.Quantity.Amount <= 0 {
		return errorf(QuantityInvalid, "invalid quantity")
	}

	cmd, err := ParseMemo(t.Memo)
	if err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	node, err := c.requireNode(d, cmd.Target())
	if err != nil {
		return err
	}

	switch cmd := cmd.(type) {
	case BuyCommand:
		return c.settleBuy(ctx, g, d, node, t)
	default:
		c.logger.WithField("command", cmd).Debug("OnTransfer unknown command")
		return errorf(MemoFormatError, "invalid action name")
	}
}

func (c *Contract) settleBuy(ctx *Context, g *Global, d db, node *Node, t ledger.Transfer) error {
	issuer := ctx.firstReceiver()
	if issuer != g.PaymentIssuer {
		return errorf(ParamError, "invalid usdt contract: %s", g.PaymentIssuer)
	}
	if err := checkSaleable(g, node, t.Quantity); err != nil {
		return err
	}
	if node.StartTime >= ctx.Now {
		return errorf(ParamError, "node not start: %d", node.NodeID)
	}
	if err := checkInventory(node); err != nil {
		return err
	}

	forward, err := ledger.NewAction(issuer, ledger.TransferAction, []ledger.Name{c.self}, ledger.Transfer{
		From:     c.self,
		To:       g.Bank,
		Quantity: t.Quantity,
		Memo:     t.Memo,
	})
	if err != nil {
		return err
	}
	ctx.sendInline(forward)

	node.TotalSaled++
	node.UpdateTime = ctx.Now
	if err := d.setNode(node); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"from":        t.From,
		"quantity":    t.Quantity,
		"node_id":     node.NodeID,
		"total_saled": node.TotalSaled,
	}).Debug("OnTransfer buy")

	return c.buy(ctx, g, d, node.NodeID, t.From, t.Quantity)
}
