package app

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/crypto"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/registry"
	"github.com/mosaicnetworks/agpu/src/store"
)

var (
	self   = ledger.MustParseName("agpucontract")
	admin  = ledger.MustParseName("admin")
	bank   = ledger.MustParseName("bank")
	issuer = ledger.MustParseName("amax.mtoken")
	alice  = ledger.MustParseName("alice")
	bob    = ledger.MustParseName("bob")
)

const t0 = ledger.TimePointSec(1700000000)

func newTestState(t *testing.T) (*State, store.Store) {
	s := store.NewInmemStore()

	genesis := registry.Genesis{
		Accounts: []ledger.Name{self, admin, bank, issuer, alice, bob},
	}
	if err := store.Update(s, func(txn store.Txn) error { return registry.Seed(txn, genesis, t0) }); err != nil {
		t.Fatal(err)
	}

	state, err := NewState(s, self, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}
	return state, s
}

func tx(t *testing.T, account, name, auth ledger.Name, data interface{}) []byte {
	act, err := ledger.NewAction(account, name, []ledger.Name{auth}, data)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := act.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func setupTxs(t *testing.T) [][]byte {
	return [][]byte{
		tx(t, self, contract.ActInit, self, contract.InitParams{
			Admin:         admin,
			Bank:          bank,
			PaymentIssuer: issuer,
			PaymentSymbol: ledger.NewSymbol("MUSDT", 6),
		}),
		tx(t, self, contract.ActAddNode, admin, contract.NodeParams{
			Price:     ledger.MustParseAsset("10.000000 MUSDT"),
			MaxSale:   1,
			StartTime: uint32(t0),
		}),
		tx(t, self, contract.ActSignup, alice, contract.SignParams{User: alice, Inviter: bank}),
		tx(t, self, contract.ActSignup, bob, contract.SignParams{User: bob, Inviter: bank}),
	}
}

func payTx(t *testing.T, from ledger.Name, memo string) []byte {
	return tx(t, issuer, ledger.TransferAction, from, ledger.Transfer{
		From:     from,
		To:       self,
		Quantity: ledger.MustParseAsset("10.000000 MUSDT"),
		Memo:     memo,
	})
}

func TestCommitHandler(t *testing.T) {
	state, _ := newTestState(t)

	txs := setupTxs(t)
	resp, err := state.CommitHandler(*ledger.NewBlock(0, t0, txs))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range resp.Receipts {
		if r.Status != ledger.StatusExecuted {
			t.Fatalf("tx %d failed: %s", r.Index, r.Error)
		}
	}

	expected := []byte{}
	for _, raw := range txs {
		expected = crypto.ChainHash(expected, raw)
	}
	if !bytes.Equal(resp.StateHash, expected) {
		t.Fatalf("StateHash should be %x, not %x", expected, resp.StateHash)
	}

	pays := [][]byte{
		payTx(t, alice, "buy:1"),
		payTx(t, bob, "buy:1"),
		[]byte("not an action"),
	}
	resp, err = state.CommitHandler(*ledger.NewBlock(1, t0.Add(1), pays))
	if err != nil {
		t.Fatal(err)
	}

	if len(resp.Receipts) != 3 {
		t.Fatalf("expected 3 receipts, got %d", len(resp.Receipts))
	}

	r := resp.Receipts[0]
	if r.Status != ledger.StatusExecuted || len(r.Inline) != 1 {
		t.Fatalf("unexpected receipt %+v", r)
	}

	r = resp.Receipts[1]
	if r.Status != ledger.StatusFailed || r.Code != int(contract.Oversized) {
		t.Fatalf("bob should be refused with Oversized, got %+v", r)
	}

	r = resp.Receipts[2]
	if r.Status != ledger.StatusFailed || r.Code != int(contract.ParamError) {
		t.Fatalf("garbage should fail with ParamError, got %+v", r)
	}

	// only executed transactions move the hash
	expected = crypto.ChainHash(expected, pays[0])
	if !bytes.Equal(resp.StateHash, expected) {
		t.Fatalf("StateHash should be %x, not %x", expected, resp.StateHash)
	}

	n, found, err := state.Node(1)
	if err != nil {
		t.Fatal(err)
	}
	if !found || n.TotalSaled != 1 {
		t.Fatalf("unexpected node %+v", n)
	}

	orders, err := state.Orders(bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 0 {
		t.Fatal("bob should have no order")
	}

	totals, err := state.NodeTotals(alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 1 || totals[0].Total != 1 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestCommitHandlerRejectsOldBlock(t *testing.T) {
	state, _ := newTestState(t)

	if _, err := state.CommitHandler(*ledger.NewBlock(0, t0, setupTxs(t))); err != nil {
		t.Fatal(err)
	}
	if _, err := state.CommitHandler(*ledger.NewBlock(0, t0, nil)); err == nil {
		t.Fatal("replaying block 0 should fail")
	}
}

func TestStateReload(t *testing.T) {
	state, s := newTestState(t)

	resp, err := state.CommitHandler(*ledger.NewBlock(0, t0, setupTxs(t)))
	if err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewState(s, self, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(reloaded.StateHash(), resp.StateHash) {
		t.Fatalf("StateHash should be %x, not %x", resp.StateHash, reloaded.StateHash())
	}
	if reloaded.LastBlockIndex() != 0 {
		t.Fatalf("LastBlockIndex should be 0, not %d", reloaded.LastBlockIndex())
	}

	g, err := reloaded.Global()
	if err != nil {
		t.Fatal(err)
	}
	if g.Admin != admin || g.NodeID != 1 {
		t.Fatalf("unexpected global %+v", g)
	}
}

func TestSnapshot(t *testing.T) {
	state, _ := newTestState(t)

	txs := setupTxs(t)
	resp, err := state.CommitHandler(*ledger.NewBlock(0, t0, txs))
	if err != nil {
		t.Fatal(err)
	}

	snapshot, err := state.SnapshotHandler(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(snapshot.Block.StateHash, resp.StateHash) {
		t.Fatalf("snapshot hash should be %x, not %x", resp.StateHash, snapshot.Block.StateHash)
	}
	if snapshot.Block.Index != 0 || snapshot.Block.Timestamp != t0 || len(snapshot.Block.Transactions) != len(txs) {
		t.Fatalf("unexpected snapshot block %+v", snapshot.Block)
	}
	if len(snapshot.Receipts) != len(txs) || snapshot.Receipts[0].Status != ledger.StatusExecuted {
		t.Fatalf("unexpected snapshot receipts %+v", snapshot.Receipts)
	}

	for _, i := range []int{-1, 5} {
		if _, err := state.SnapshotHandler(i); !common.IsStore(err, common.KeyNotFound) {
			t.Fatalf("snapshot %d: expected KeyNotFound, got %v", i, err)
		}
	}
}

// failingStore fails the commit of write transactions while fail is set.
type failingStore struct {
	store.Store
	fail bool
}

func (s *failingStore) NewTxn(update bool) store.Txn {
	return &failingTxn{Txn: s.Store.NewTxn(update), store: s}
}

type failingTxn struct {
	store.Txn
	store *failingStore
}

func (t *failingTxn) Commit() error {
	if t.store.fail {
		return errors.New("disk full")
	}
	return t.Txn.Commit()
}

func TestCommitHandlerWriteFailure(t *testing.T) {
	_, s := newTestState(t)
	fs := &failingStore{Store: s}

	state, err := NewState(fs, self, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}

	fs.fail = true
	if _, err := state.CommitHandler(*ledger.NewBlock(0, t0, setupTxs(t))); err == nil {
		t.Fatal("commit should fail")
	}

	// nothing of the block was kept
	if state.LastBlockIndex() != -1 || len(state.StateHash()) != 0 {
		t.Fatalf("state moved: last %d hash %x", state.LastBlockIndex(), state.StateHash())
	}
	g, err := state.Global()
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeID != 0 || !g.Admin.IsEmpty() {
		t.Fatalf("contract state of the failed block was kept: %+v", g)
	}
	if _, err := state.SnapshotHandler(0); !common.IsStore(err, common.KeyNotFound) {
		t.Fatalf("expected no snapshot, got %v", err)
	}

	// the same block goes through once the store recovers
	fs.fail = false
	resp, err := state.CommitHandler(*ledger.NewBlock(0, t0, setupTxs(t)))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range resp.Receipts {
		if r.Status != ledger.StatusExecuted {
			t.Fatalf("tx %d failed: %s", r.Index, r.Error)
		}
	}
}

func TestSystemActions(t *testing.T) {
	state, _ := newTestState(t)

	carol := ledger.MustParseName("carol")
	dave := ledger.MustParseName("dave")
	erin := ledger.MustParseName("erin")

	newAccount := func(name, auth ledger.Name) []byte {
		return tx(t, registry.SystemAccount, registry.ActNewAccount, auth, registry.NewAccountParams{Name: name})
	}
	signup := func(user, inviter, auth ledger.Name) []byte {
		return tx(t, self, contract.ActSignup, auth, contract.SignParams{User: user, Inviter: inviter})
	}

	txs := append(setupTxs(t),
		newAccount(carol, registry.SystemAccount),
		tx(t, registry.MiningApp, registry.ActSetLevel, registry.MiningApp, registry.SetLevelParams{Account: carol, Level: 1}),
		signup(carol, bank, carol),
		signup(dave, carol, bob),
		newAccount(dave, alice),
		newAccount(dave, registry.SystemAccount),
		signup(dave, carol, dave),
		newAccount(erin, registry.SystemAccount),
		signup(erin, alice, erin),
	)

	resp, err := state.CommitHandler(*ledger.NewBlock(0, t0, txs))
	if err != nil {
		t.Fatal(err)
	}

	codes := make([]int, len(resp.Receipts))
	for i, r := range resp.Receipts {
		codes[i] = r.Code
	}
	expected := []int{
		0, 0, 0, 0, // setup
		0, 0, 0, // carol onboarded and ranked
		int(contract.MissingAuth), // bob signs for dave
		int(contract.MissingAuth), // alice creates an account
		0, 0, // dave joins under carol
		0,
		int(contract.RecordNotFound), // alice has no ranking row
	}
	if !reflect.DeepEqual(codes, expected) {
		t.Fatalf("receipt codes should be %v, not %v", expected, codes)
	}

	accounts, err := state.Accounts()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 9 {
		t.Fatalf("expected 9 accounts, got %d", len(accounts))
	}

	site, found, err := state.Site(carol)
	if err != nil {
		t.Fatal(err)
	}
	if !found || site.Level != 1 || site.CreatedAt != t0 {
		t.Fatalf("unexpected site %+v", site)
	}

	invite, found, err := state.Invite(carol)
	if err != nil {
		t.Fatal(err)
	}
	if !found || invite.InviteCount != 1 {
		t.Fatalf("carol should have invited dave, got %+v", invite)
	}
}
