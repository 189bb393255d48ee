package contract

import (
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/sirupsen/logrus"
)

func (c *Contract) checkPair(ctx *Context, user, inviter ledger.Name) error {
	if err := ctx.requireAccount(user, "user"); err != nil {
		return err
	}
	if err := ctx.requireAccount(inviter, "inviter"); err != nil {
		return err
	}
	if user == inviter {
		return errorf(ParamError, "user and inviter is same")
	}
	return nil
}

// checkEligible asks the ranking oracle whether inviter may take new
// invitees.
func (c *Contract) checkEligible(ctx *Context, inviter ledger.Name) error {
	site, found, err := ctx.Sites.Site(inviter)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "invalid inviter")
	}
	if site.Account != inviter {
		return errorf(ParamError, "inviter not match")
	}
	if site.Level == 0 {
		return errorf(ParamError, "invalid inviter level")
	}
	return nil
}

// creditInviter checks an inviter that is not the bank and returns its invite
// record with the count incremented. Nothing is written.
func (c *Contract) creditInviter(ctx *Context, d db, inviter ledger.Name) (*Invite, error) {
	if err := c.checkEligible(ctx, inviter); err != nil {
		return nil, err
	}

	invite, found, err := d.getInvite(inviter)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errorf(RecordNotFound, "inviter not exist: %s", inviter)
	}

	invite.InviteCount++
	invite.UpdateTime = ctx.Now
	return invite, nil
}

func (c *Contract) requireNoInvite(d db, user ledger.Name) error {
	_, found, err := d.getInvite(user)
	if err != nil {
		return err
	}
	if found {
		return errorf(RecordFound, "user invite is exist: %s", user)
	}
	return nil
}

func newInvite(ctx *Context, user, inviter ledger.Name, count uint64) *Invite {
	return &Invite{
		User:        user,
		Inviter:     inviter,
		InviteCount: count,
		CreateTime:  ctx.Now,
		UpdateTime:  ctx.Now,
	}
}

// Signup registers user under inviter. The user or the admin may call it. An
// inviter other than the bank must be ranked by the oracle with a positive
// level and must already be registered.
func (c *Contract) Signup(ctx *Context, g *Global, user, inviter ledger.Name) error {
	if !ctx.hasAuth(user) && !ctx.hasAuth(g.Admin) {
		return errorf(MissingAuth, "missing authority of %s", user)
	}
	if err := c.checkPair(ctx, user, inviter); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	if err := c.requireNoInvite(d, user); err != nil {
		return err
	}

	var parent *Invite
	if inviter != g.Bank {
		var err error
		if parent, err = c.creditInviter(ctx, d, inviter); err != nil {
			return err
		}
	}

	if err := d.setInvite(newInvite(ctx, user, inviter, 0)); err != nil {
		return err
	}
	if parent != nil {
		if err := d.setInvite(parent); err != nil {
			return err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"user":    user,
		"inviter": inviter,
	}).Debug("Signup")

	return nil
}

// SignBind registers user under inviter for administrative onboarding. The
// oracle is not consulted, and an unregistered inviter is registered under
// the bank on the fly with a count of one.
func (c *Contract) SignBind(ctx *Context, g *Global, user, inviter ledger.Name) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if err := c.checkPair(ctx, user, inviter); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	if err := c.requireNoInvite(d, user); err != nil {
		return err
	}

	if err := d.setInvite(newInvite(ctx, user, inviter, 0)); err != nil {
		return err
	}

	if inviter == g.Bank {
		return nil
	}

	parent, found, err := d.getInvite(inviter)
	if err != nil {
		return err
	}
	if !found {
		parent = newInvite(ctx, inviter, g.Bank, 1)
	} else {
		parent.InviteCount++
		parent.UpdateTime = ctx.Now
	}

	c.logger.WithFields(logrus.Fields{
		"user":    user,
		"inviter": inviter,
		"created": !found,
	}).Debug("SignBind")

	return d.setInvite(parent)
}

// SignEdit moves user under a new inviter, moving one unit of invite count
// from the old inviter to the new one. The bank keeps no count.
func (c *Contract) SignEdit(ctx *Context, g *Global, user, inviter ledger.Name) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if err := c.checkPair(ctx, user, inviter); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	invite, found, err := d.getInvite(user)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "user invite not exist: %s", user)
	}
	oldInviter := invite.Inviter

	var oldParent *Invite
	if oldInviter != g.Bank {
		oldParent, found, err = d.getInvite(oldInviter)
		if err != nil {
			return err
		}
		if !found {
			return errorf(RecordNotFound, "user old invite not exist: %s", oldInviter)
		}
		if oldInviter == inviter {
			return errorf(ParamError, "user.inviter and inviter is same")
		}
		if oldParent.InviteCount == 0 {
			return errorf(InvariantViolation, "invite_count of %s would drop below zero", oldInviter)
		}
		oldParent.InviteCount--
		oldParent.UpdateTime = ctx.Now
	}

	var newParent *Invite
	if inviter != g.Bank {
		if newParent, err = c.creditInviter(ctx, d, inviter); err != nil {
			return err
		}
	}

	invite.Inviter = inviter
	invite.UpdateTime = ctx.Now
	if err := d.setInvite(invite); err != nil {
		return err
	}
	if oldParent != nil {
		if err := d.setInvite(oldParent); err != nil {
			return err
		}
	}
	if newParent != nil {
		if err := d.setInvite(newParent); err != nil {
			return err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"user":        user,
		"old_inviter": oldInviter,
		"inviter":     inviter,
	}).Debug("SignEdit")

	return nil
}

// SignDel removes the invite record of user. The former inviter keeps its
// count.
func (c *Contract) SignDel(ctx *Context, g *Global, user ledger.Name) error {
	if err := ctx.requireAuth(g.Admin); err != nil {
		return err
	}
	if err := ctx.requireAccount(user, "user"); err != nil {
		return err
	}

	d := c.db(ctx.Txn)

	_, found, err := d.getInvite(user)
	if err != nil {
		return err
	}
	if !found {
		return errorf(RecordNotFound, "user invite is not exist: %s", user)
	}

	c.logger.WithField("user", user).Debug("SignDel")

	return d.delInvite(user)
}
