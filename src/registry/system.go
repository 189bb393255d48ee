package registry

import (
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// SystemAccount receives the account management actions.
var SystemAccount = ledger.MustParseName("amax")

// System action names. newaccount is sent to SystemAccount, setlevel to
// MiningApp; each needs the authority of the account it is sent to.
var (
	ActNewAccount = ledger.MustParseName("newaccount")
	ActSetLevel   = ledger.MustParseName("setlevel")
)

// NewAccountParams ...
type NewAccountParams struct {
	Name ledger.Name `json:"name"`
}

// SetLevelParams ...
type SetLevelParams struct {
	Account ledger.Name `json:"account"`
	Level   uint16      `json:"level"`
}

// IsSystemAction reports whether act is handled by ApplySystem.
func IsSystemAction(act *ledger.Action) bool {
	return act.Account == SystemAccount || act.Account == MiningApp
}

// ApplySystem runs a system action inside txn.
func ApplySystem(txn store.Txn, act *ledger.Action, now ledger.TimePointSec) error {
	if !act.HasAuth(act.Account) {
		return contract.Errorf(contract.MissingAuth, "missing authority of %s", act.Account)
	}

	switch {
	case act.Account == SystemAccount && act.Name == ActNewAccount:
		var p NewAccountParams
		if err := act.DecodeData(&p); err != nil {
			return contract.Errorf(contract.ParamError, "invalid %s data: %v", act.Name, err)
		}
		return newAccount(txn, p.Name, now)
	case act.Account == MiningApp && act.Name == ActSetLevel:
		var p SetLevelParams
		if err := act.DecodeData(&p); err != nil {
			return contract.Errorf(contract.ParamError, "invalid %s data: %v", act.Name, err)
		}
		return setLevel(txn, p.Account, p.Level, now)
	}

	return contract.Errorf(contract.ParamError, "unknown action %s on %s", act.Name, act.Account)
}

func newAccount(txn store.Txn, name ledger.Name, now ledger.TimePointSec) error {
	if name.IsEmpty() {
		return contract.Errorf(contract.ParamError, "empty account name")
	}

	accounts := NewAccounts(txn)
	exists, err := accounts.IsAccount(name)
	if err != nil {
		return err
	}
	if exists {
		return contract.Errorf(contract.RecordFound, "account already exists: %s", name)
	}
	return accounts.Create(name, now)
}

func setLevel(txn store.Txn, account ledger.Name, level uint16, now ledger.TimePointSec) error {
	exists, err := NewAccounts(txn).IsAccount(account)
	if err != nil {
		return err
	}
	if !exists {
		return contract.Errorf(contract.AccountInvalid, "account not found: %s", account)
	}
	return NewSites(txn).SetLevel(account, level, now)
}
