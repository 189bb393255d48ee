package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
)

// DefaultInvitePeriod is the invite period of a fresh configuration.
const DefaultInvitePeriod = 10

// Global is the configuration singleton of the contract. It is loaded at the
// start of every invocation and handed to the operation, which may change it.
type Global struct {
	Admin         ledger.Name   `json:"admin"`
	Bank          ledger.Name   `json:"bank"`
	PaymentIssuer ledger.Name   `json:"usdt_contract"`
	PaymentSymbol ledger.Symbol `json:"usdt_symbol"`
	NodeID        uint64        `json:"node_id"`
	OrderID       uint64        `json:"order_id"`
	InvitePeriod  uint64        `json:"invite_period"`
}

// NewGlobal returns the configuration used before init has been called.
func NewGlobal() *Global {
	return &Global{InvitePeriod: DefaultInvitePeriod}
}

// nextNodeID allocates a node id. Ids start at 1 and are never reused.
func (g *Global) nextNodeID() uint64 {
	g.NodeID++
	return g.NodeID
}

// nextOrderID allocates an order id. Ids start at 1 and are never reused.
func (g *Global) nextOrderID() uint64 {
	g.OrderID++
	return g.OrderID
}

// Init sets the admin, bank and payment token of the contract. Only the
// contract account may call it. Calling it again overwrites the previous
// configuration but keeps the id counters.
func (c *Contract) Init(ctx *Context, g *Global, admin, bank, paymentIssuer ledger.Name, paymentSymbol ledger.Symbol) error {
	if err := ctx.requireAuth(c.self); err != nil {
		return err
	}

	if err := ctx.requireAccount(admin, "admin"); err != nil {
		return err
	}
	if err := ctx.requireAccount(bank, "bank"); err != nil {
		return err
	}
	if err := ctx.requireAccount(paymentIssuer, "usdt_contract"); err != nil {
		return err
	}
	if !paymentSymbol.IsValid() {
		return errorf(ParamError, "invalid usdt_symbol: %s", paymentSymbol.Code)
	}

	g.Admin = admin
	g.Bank = bank
	g.PaymentIssuer = paymentIssuer
	g.PaymentSymbol = paymentSymbol

	c.logger.WithField("admin", admin).WithField("bank", bank).Info("Init")

	return nil
}
