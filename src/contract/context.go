package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// Accounts tells whether an account exists on the ledger.
type Accounts interface {
	IsAccount(account ledger.Name) (bool, error)
}

// Site is the part of an external mining-site ranking the invite graph cares
// about.
type Site struct {
	Account ledger.Name
	Level   uint16
}

// Eligibility is the read-only ranking oracle that decides whether an account
// may be credited as an inviter.
type Eligibility interface {
	Site(account ledger.Name) (Site, bool, error)
}

// Context carries everything a single invocation runs against: the store
// transaction, the host collaborators, the block time and the action itself.
type Context struct {
	Txn      store.Txn
	Accounts Accounts
	Sites    Eligibility
	Now      ledger.TimePointSec
	Action   ledger.Action

	inline []ledger.Action
}

// Result is the outcome of a successful invocation.
type Result struct {
	// Inline holds the actions the host must execute on behalf of the
	// contract, in order.
	Inline []ledger.Action
}

func (ctx *Context) hasAuth(account ledger.Name) bool {
	return ctx.Action.HasAuth(account)
}

func (ctx *Context) requireAuth(account ledger.Name) error {
	if !ctx.hasAuth(account) {
		return errorf(MissingAuth, "missing authority of %s", account)
	}
	return nil
}

// firstReceiver is the account whose action triggered the notification.
func (ctx *Context) firstReceiver() ledger.Name {
	return ctx.Action.Account
}

func (ctx *Context) requireAccount(account ledger.Name, role string) error {
	ok, err := ctx.Accounts.IsAccount(account)
	if err != nil {
		return err
	}
	if !ok {
		return errorf(AccountInvalid, "%s not found: %s", role, account)
	}
	return nil
}

func (ctx *Context) sendInline(act ledger.Action) {
	ctx.inline = append(ctx.inline, act)
}
