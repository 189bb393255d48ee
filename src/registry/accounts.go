package registry

import (
	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// AccountsTable holds one record per existing account.
const AccountsTable = "accounts"

// hostScope is the scope of tables owned by the host itself.
const hostScope = 0

// Account is an account known to the ledger.
type Account struct {
	Name       ledger.Name         `json:"name"`
	CreateTime ledger.TimePointSec `json:"create_time"`
}

// Accounts answers account existence queries from a store transaction.
type Accounts struct {
	txn store.Txn
}

// NewAccounts ...
func NewAccounts(txn store.Txn) *Accounts {
	return &Accounts{txn: txn}
}

// IsAccount implements contract.Accounts.
func (a *Accounts) IsAccount(name ledger.Name) (bool, error) {
	if name.IsEmpty() {
		return false, nil
	}
	_, err := a.txn.Get(AccountsTable, hostScope, uint64(name))
	if cm.IsStore(err, cm.KeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the account record of name.
func (a *Accounts) Get(name ledger.Name) (*Account, bool, error) {
	acct := &Account{}
	found, err := store.GetRecord(a.txn, AccountsTable, hostScope, uint64(name), acct)
	return acct, found, err
}

// Create registers name. Registering an existing account keeps its original
// creation time.
func (a *Accounts) Create(name ledger.Name, now ledger.TimePointSec) error {
	_, found, err := a.Get(name)
	if err != nil || found {
		return err
	}
	return store.SetRecord(a.txn, AccountsTable, hostScope, uint64(name), &Account{
		Name:       name,
		CreateTime: now,
	})
}

// List returns all accounts by ascending name value.
func (a *Accounts) List() ([]*Account, error) {
	accounts := []*Account{}
	err := a.txn.Scan(AccountsTable, hostScope, func(key uint64, val []byte) error {
		acct := &Account{}
		if err := store.Decode(val, acct); err != nil {
			return err
		}
		accounts = append(accounts, acct)
		return nil
	})
	return accounts, err
}
