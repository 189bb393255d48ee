package registry

import (
	"fmt"

	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// Genesis lists the records a fresh ledger starts with.
type Genesis struct {
	Accounts []ledger.Name
	Sites    []*MiningSite
}

// Seed writes the genesis records inside txn. Every site account is also
// registered as an account.
func Seed(txn store.Txn, g Genesis, now ledger.TimePointSec) error {
	accounts := NewAccounts(txn)
	for _, name := range g.Accounts {
		if name.IsEmpty() {
			return fmt.Errorf("genesis: empty account name")
		}
		if err := accounts.Create(name, now); err != nil {
			return fmt.Errorf("genesis account %s: %w", name, err)
		}
	}

	sites := NewSites(txn)
	for _, site := range g.Sites {
		if err := accounts.Create(site.Account, now); err != nil {
			return fmt.Errorf("genesis account %s: %w", site.Account, err)
		}
		if err := sites.Put(site); err != nil {
			return fmt.Errorf("genesis site %s: %w", site.Account, err)
		}
	}

	return nil
}
