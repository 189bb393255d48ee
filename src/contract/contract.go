package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
	"github.com/sirupsen/logrus"
)

// Action names.
var (
	ActInit         = ledger.MustParseName("init")
	ActAddNode      = ledger.MustParseName("addnode")
	ActSetNode      = ledger.MustParseName("setnode")
	ActDelNode      = ledger.MustParseName("delnode")
	ActSetTotalSale = ledger.MustParseName("settotalsale")
	ActSetNodeState = ledger.MustParseName("setnodestate")
	ActSignup       = ledger.MustParseName("signup")
	ActSignBind     = ledger.MustParseName("signbind")
	ActSignEdit     = ledger.MustParseName("signedit")
	ActSignDel      = ledger.MustParseName("signdel")
	ActAddOrder     = ledger.MustParseName("addorder")
	ActDelOrder     = ledger.MustParseName("delorder")
)

// InitParams ...
type InitParams struct {
	Admin         ledger.Name   `json:"admin"`
	Bank          ledger.Name   `json:"bank"`
	PaymentIssuer ledger.Name   `json:"usdt_contract"`
	PaymentSymbol ledger.Symbol `json:"usdt_symbol"`
}

// NodeParams is the data of addnode and setnode. NodeID is ignored by
// addnode.
type NodeParams struct {
	NodeID    uint64       `json:"node_id,omitempty"`
	Price     ledger.Asset `json:"price"`
	MaxSale   uint64       `json:"max_sale"`
	StartTime uint32       `json:"start_time"`
}

// NodeIDParams ...
type NodeIDParams struct {
	NodeID uint64 `json:"node_id"`
}

// TotalSaleParams ...
type TotalSaleParams struct {
	NodeID     uint64 `json:"node_id"`
	TotalSaled uint64 `json:"total_saled"`
}

// NodeStateParams ...
type NodeStateParams struct {
	NodeID uint64      `json:"node_id"`
	Status ledger.Name `json:"status"`
}

// SignParams is the data of signup, signbind and signedit.
type SignParams struct {
	User    ledger.Name `json:"user"`
	Inviter ledger.Name `json:"inviter"`
}

// UserParams ...
type UserParams struct {
	User ledger.Name `json:"user"`
}

// AddOrderParams ...
type AddOrderParams struct {
	NodeID   uint64       `json:"node_id"`
	User     ledger.Name  `json:"user"`
	Quantity ledger.Asset `json:"quantity"`
}

// DelOrderParams ...
type DelOrderParams struct {
	OrderID uint64      `json:"order_id"`
	User    ledger.Name `json:"user"`
}

// Contract is the node sale state machine deployed on the self account.
type Contract struct {
	self   ledger.Name
	logger *logrus.Entry
}

// NewContract ...
func NewContract(self ledger.Name, logger *logrus.Entry) *Contract {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Contract{
		self:   self,
		logger: logger.WithField("contract", self.String()),
	}
}

// Self returns the contract account.
func (c *Contract) Self() ledger.Name {
	return c.self
}

func (c *Contract) db(txn store.Txn) db {
	return db{txn: txn, self: c.self}
}

// Apply runs ctx.Action. The Global configuration is loaded first and
// written back after the operation succeeds. On error nothing must be
// committed: the caller discards ctx.Txn.
func (c *Contract) Apply(ctx *Context) (*Result, error) {
	d := c.db(ctx.Txn)

	g, err := d.getGlobal()
	if err != nil {
		return nil, err
	}

	ctx.inline = nil

	if err := c.dispatch(ctx, g); err != nil {
		c.logger.WithFields(logrus.Fields{
			"account": ctx.Action.Account,
			"action":  ctx.Action.Name,
			"error":   err,
		}).Debug("Apply failed")
		return nil, err
	}

	if err := d.setGlobal(g); err != nil {
		return nil, err
	}

	return &Result{Inline: ctx.inline}, nil
}

func (c *Contract) dispatch(ctx *Context, g *Global) error {
	act := &ctx.Action

	if act.Account != c.self {
		// notification from another contract
		if act.Name != ledger.TransferAction {
			return nil
		}
		var p ledger.Transfer
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.OnTransfer(ctx, g, p)
	}

	switch act.Name {
	case ActInit:
		var p InitParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.Init(ctx, g, p.Admin, p.Bank, p.PaymentIssuer, p.PaymentSymbol)
	case ActAddNode:
		var p NodeParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.AddNode(ctx, g, p.Price, p.MaxSale, p.StartTime)
	case ActSetNode:
		var p NodeParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.SetNode(ctx, g, p.NodeID, p.Price, p.MaxSale, p.StartTime)
	case ActDelNode:
		var p NodeIDParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.DelNode(ctx, g, p.NodeID)
	case ActSetTotalSale:
		var p TotalSaleParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.SetTotalSale(ctx, g, p.NodeID, p.TotalSaled)
	case ActSetNodeState:
		var p NodeStateParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.SetNodeState(ctx, g, p.NodeID, p.Status)
	case ActSignup, ActSignBind, ActSignEdit:
		var p SignParams
		if err := decode(act, &p); err != nil {
			return err
		}
		switch act.Name {
		case ActSignup:
			return c.Signup(ctx, g, p.User, p.Inviter)
		case ActSignBind:
			return c.SignBind(ctx, g, p.User, p.Inviter)
		default:
			return c.SignEdit(ctx, g, p.User, p.Inviter)
		}
	case ActSignDel:
		var p UserParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.SignDel(ctx, g, p.User)
	case ActAddOrder:
		var p AddOrderParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.AddOrder(ctx, g, p.NodeID, p.User, p.Quantity)
	case ActDelOrder:
		var p DelOrderParams
		if err := decode(act, &p); err != nil {
			return err
		}
		return c.DelOrder(ctx, g, p.OrderID, p.User)
	}

	return errorf(ParamError, "unknown action: %s", act.Name)
}

func decode(act *ledger.Action, v interface{}) error {
	if err := act.DecodeData(v); err != nil {
		return errorf(ParamError, "invalid %s data: %v", act.Name, err)
	}
	return nil
}
