package registry

import (
	"testing"

	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

func systemAction(t *testing.T, account, name, auth ledger.Name, data interface{}) *ledger.Action {
	act, err := ledger.NewAction(account, name, []ledger.Name{auth}, data)
	if err != nil {
		t.Fatal(err)
	}
	return &act
}

func applySystem(t *testing.T, s store.Store, act *ledger.Action) error {
	t.Helper()
	if !IsSystemAction(act) {
		t.Fatalf("%s on %s should be a system action", act.Name, act.Account)
	}
	return store.Update(s, func(txn store.Txn) error {
		return ApplySystem(txn, act, now)
	})
}

func TestApplySystem(t *testing.T) {
	s := store.NewInmemStore()

	cases := []struct {
		name string
		act  *ledger.Action
		code contract.Code
	}{
		{"level before account", systemAction(t, MiningApp, ActSetLevel, MiningApp, SetLevelParams{Account: alice, Level: 1}), contract.AccountInvalid},
		{"newaccount without authority", systemAction(t, SystemAccount, ActNewAccount, alice, NewAccountParams{Name: alice}), contract.MissingAuth},
		{"newaccount", systemAction(t, SystemAccount, ActNewAccount, SystemAccount, NewAccountParams{Name: alice}), 0},
		{"newaccount twice", systemAction(t, SystemAccount, ActNewAccount, SystemAccount, NewAccountParams{Name: alice}), contract.RecordFound},
		{"empty account", systemAction(t, SystemAccount, ActNewAccount, SystemAccount, NewAccountParams{}), contract.ParamError},
		{"setlevel by system", systemAction(t, MiningApp, ActSetLevel, SystemAccount, SetLevelParams{Account: alice, Level: 1}), contract.MissingAuth},
		{"setlevel", systemAction(t, MiningApp, ActSetLevel, MiningApp, SetLevelParams{Account: alice, Level: 2}), 0},
		{"setlevel on system account", systemAction(t, SystemAccount, ActSetLevel, SystemAccount, SetLevelParams{Account: alice, Level: 2}), contract.ParamError},
	}

	for _, c := range cases {
		err := applySystem(t, s, c.act)
		if c.code == 0 {
			if err != nil {
				t.Fatalf("%s: %v", c.name, err)
			}
			continue
		}
		if !contract.IsCode(err, c.code) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.code, err)
		}
	}

	err := store.View(s, func(txn store.Txn) error {
		accounts, err := NewAccounts(txn).List()
		if err != nil {
			return err
		}
		if len(accounts) != 1 || accounts[0].Name != alice {
			t.Fatalf("unexpected accounts %+v", accounts)
		}

		site, found, err := NewSites(txn).Site(alice)
		if err != nil {
			return err
		}
		if !found || site.Level != 2 {
			t.Fatalf("unexpected site %+v", site)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	act := systemAction(t, alice, ActNewAccount, alice, NewAccountParams{Name: bob})
	if IsSystemAction(act) {
		t.Fatal("actions on user accounts are not system actions")
	}
}
