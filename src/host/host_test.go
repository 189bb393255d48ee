package host

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/app"
	"github.com/mosaicnetworks/agpu/src/config"
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/proxy/inmem"
	"github.com/mosaicnetworks/agpu/src/store"
	"github.com/sirupsen/logrus"
)

var (
	self   = ledger.MustParseName(config.DefaultContract)
	admin  = ledger.MustParseName("admin")
	bank   = ledger.MustParseName("bank")
	issuer = ledger.MustParseName("amax.mtoken")
	alice  = ledger.MustParseName("alice")
	bob    = ledger.MustParseName("bob")
)

const t0 = 1700000000

type testHost struct {
	*Host
	proxy *inmem.InmemProxy
	state *app.State
	now   int64
}

func (h *testHost) setTime(sec int64) {
	atomic.StoreInt64(&h.now, sec)
}

func testConfig(t *testing.T) *config.Config {
	conf := config.NewTestConfig(t, logrus.InfoLevel)
	conf.Genesis = config.Genesis{
		Accounts: []string{"admin", "bank", "amax.mtoken", "alice", "bob"},
		Sites:    []config.SiteConfig{{Account: "alice", Level: 1}},
		Init: &config.InitConfig{
			Admin:         "admin",
			Bank:          "bank",
			PaymentIssuer: "amax.mtoken",
			PaymentSymbol: "6,MUSDT",
		},
	}
	return conf
}

func newTestHost(t *testing.T, conf *config.Config, s store.Store) *testHost {
	state, err := app.NewState(s, self, conf.Logger())
	if err != nil {
		t.Fatal(err)
	}

	p := inmem.NewInmemProxy(state, conf.Logger())

	h := &testHost{
		Host:  NewHost(conf, p, s),
		proxy: p,
		state: state,
		now:   t0,
	}
	h.clock = func() time.Time {
		return time.Unix(atomic.LoadInt64(&h.now), 0)
	}

	if err := h.Init(); err != nil {
		t.Fatal(err)
	}
	return h
}

func rawTx(t *testing.T, account, name, auth ledger.Name, data interface{}) []byte {
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

func (h *testHost) submit(t *testing.T, account, name, auth ledger.Name, data interface{}) {
	act, err := ledger.NewAction(account, name, []ledger.Name{auth}, data)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := act.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if err := h.proxy.SubmitTx(context.Background(), raw); err != nil {
		t.Fatal(err)
	}
}

func (h *testHost) waitBlock(t *testing.T, index int) {
	timeout := time.After(5 * time.Second)
	for h.GetLastBlockIndex() < index {
		select {
		case <-timeout:
			t.Fatalf("timeout waiting for block %d, last is %d", index, h.GetLastBlockIndex())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGenesis(t *testing.T) {
	h := newTestHost(t, testConfig(t), store.NewInmemStore())
	defer h.Shutdown()

	if h.GetLastBlockIndex() != 0 {
		t.Fatalf("genesis block should be committed, last index is %d", h.GetLastBlockIndex())
	}

	block, err := h.GetBlock(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(block.Transactions) != 1 || block.Timestamp != t0 {
		t.Fatalf("unexpected genesis block %+v", block)
	}

	receipts, err := h.GetReceipts(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(receipts) != 1 || receipts[0].Status != ledger.StatusExecuted {
		t.Fatalf("unexpected genesis receipts %+v", receipts)
	}

	g, err := h.state.Global()
	if err != nil {
		t.Fatal(err)
	}
	if g.Admin != admin || g.Bank != bank || g.PaymentIssuer != issuer {
		t.Fatalf("unexpected global %+v", g)
	}

	site, found, err := h.state.Site(alice)
	if err != nil {
		t.Fatal(err)
	}
	if !found || site.Level != 1 {
		t.Fatalf("alice site should be seeded, got %+v", site)
	}

	if _, err := h.GetBlock(1); !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("block 1 should not exist, got %v", err)
	}
}

func TestRunSale(t *testing.T) {
	h := newTestHost(t, testConfig(t), store.NewInmemStore())
	defer h.Shutdown()

	go h.Run()

	h.submit(t, self, contract.ActAddNode, admin, contract.NodeParams{
		Price:     ledger.MustParseAsset("10.000000 MUSDT"),
		MaxSale:   1,
		StartTime: t0,
	})
	h.submit(t, self, contract.ActSignup, alice, contract.SignParams{User: alice, Inviter: bank})
	h.submit(t, self, contract.ActSignup, bob, contract.SignParams{User: bob, Inviter: alice})
	h.waitBlock(t, 1)

	h.setTime(t0 + 1)

	for _, from := range []ledger.Name{bob, alice} {
		h.submit(t, issuer, ledger.TransferAction, from, ledger.Transfer{
			From:     from,
			To:       self,
			Quantity: ledger.MustParseAsset("10.000000 MUSDT"),
			Memo:     "buy:1",
		})
	}

	last := h.GetLastBlockIndex()
	timeout := time.After(5 * time.Second)
	for {
		stats := h.GetStats()
		if stats["executed_txs"] == "5" && stats["failed_txs"] == "1" {
			break
		}
		select {
		case <-timeout:
			t.Fatalf("timeout waiting for payments, stats %v", stats)
		case <-time.After(5 * time.Millisecond):
		}
	}

	var receipts []ledger.Receipt
	for i := last; i <= h.GetLastBlockIndex(); i++ {
		r, err := h.GetReceipts(i)
		if err != nil {
			t.Fatal(err)
		}
		receipts = append(receipts, r...)
	}
	tail := receipts[len(receipts)-2:]
	if tail[0].Status != ledger.StatusExecuted || len(tail[0].Inline) != 1 {
		t.Fatalf("bob should buy, got %+v", tail[0])
	}
	if tail[1].Code != int(contract.Oversized) {
		t.Fatalf("alice should be refused with Oversized, got %+v", tail[1])
	}

	orders, err := h.state.Orders(bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].Inviter != alice {
		t.Fatalf("unexpected orders %+v", orders)
	}

	if stats := h.GetStats(); stats["state"] != "Running" || stats["transaction_pool"] != "0" {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestMaxBlockTxs(t *testing.T) {
	conf := testConfig(t)
	conf.MaxBlockTxs = 2
	conf.HeartbeatTimeout = time.Hour

	h := newTestHost(t, conf, store.NewInmemStore())
	defer h.Shutdown()

	go h.Run()

	for _, u := range []ledger.Name{alice, bob} {
		h.submit(t, self, contract.ActSignup, u, contract.SignParams{User: u, Inviter: bank})
	}
	h.waitBlock(t, 1)

	block, err := h.GetBlock(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(block.Transactions) != 2 {
		t.Fatalf("block 1 should hold 2 transactions, not %d", len(block.Transactions))
	}
}

func TestBootstrap(t *testing.T) {
	conf := testConfig(t)
	dir := t.TempDir()

	s, err := store.NewBadgerStore(dir, conf.Logger())
	if err != nil {
		t.Fatal(err)
	}
	h := newTestHost(t, conf, s)
	go h.Run()

	h.submit(t, self, contract.ActSignup, alice, contract.SignParams{User: alice, Inviter: bank})
	h.waitBlock(t, 1)
	stateHash := h.GetStats()["state_hash"]
	h.Shutdown()

	s, err = store.NewBadgerStore(dir, conf.Logger())
	if err != nil {
		t.Fatal(err)
	}
	h = newTestHost(t, conf, s)
	defer h.Shutdown()

	// genesis is not replayed
	if h.GetLastBlockIndex() != 1 {
		t.Fatalf("last block should be 1, not %d", h.GetLastBlockIndex())
	}
	if got := h.GetStats()["state_hash"]; got != stateHash {
		t.Fatalf("state hash should be %s, not %s", stateHash, got)
	}
	if got := cm.EncodeToString(h.state.StateHash()); got != stateHash {
		t.Fatalf("app state hash should be %s, not %s", stateHash, got)
	}

	i, found, err := h.state.Invite(alice)
	if err != nil {
		t.Fatal(err)
	}
	if !found || i.Inviter != bank {
		t.Fatalf("unexpected invite %+v", i)
	}
}

// blockLogFailure fails the commit of transactions that write to the block
// log, failures times.
type blockLogFailure struct {
	store.Store
	failures int
}

func (s *blockLogFailure) NewTxn(update bool) store.Txn {
	return &blockLogTxn{Txn: s.Store.NewTxn(update), store: s}
}

type blockLogTxn struct {
	store.Txn
	store  *blockLogFailure
	blocks bool
}

func (t *blockLogTxn) Set(table string, scope, key uint64, val []byte) error {
	if table == BlocksTable {
		t.blocks = true
	}
	return t.Txn.Set(table, scope, key, val)
}

func (t *blockLogTxn) Commit() error {
	if t.blocks && t.store.failures > 0 {
		t.store.failures--
		return errors.New("disk full")
	}
	return t.Txn.Commit()
}

func TestBlockLogFailure(t *testing.T) {
	conf := testConfig(t)
	inner := store.NewInmemStore()
	s := &blockLogFailure{Store: inner}

	h := newTestHost(t, conf, s)
	defer h.Shutdown()

	addNode := rawTx(t, self, contract.ActAddNode, admin, contract.NodeParams{
		Price:     ledger.MustParseAsset("10.000000 MUSDT"),
		MaxSale:   1,
		StartTime: t0,
	})

	s.failures = 1
	if _, _, err := h.commit([][]byte{addNode}); err == nil {
		t.Fatal("saving block 1 should fail")
	}

	// the application kept block 1, the log did not
	if h.GetLastBlockIndex() != 0 || h.state.LastBlockIndex() != 1 {
		t.Fatalf("host last %d, app last %d", h.GetLastBlockIndex(), h.state.LastBlockIndex())
	}

	signup := rawTx(t, self, contract.ActSignup, alice, contract.SignParams{User: alice, Inviter: bank})
	block, receipts, err := h.commit([][]byte{signup})
	if err != nil {
		t.Fatal(err)
	}
	if block.Index != 2 || len(receipts) != 1 || receipts[0].Status != ledger.StatusExecuted {
		t.Fatalf("unexpected block %d receipts %+v", block.Index, receipts)
	}

	recovered, err := h.GetBlock(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recovered.Transactions) != 1 || string(recovered.Transactions[0]) != string(addNode) {
		t.Fatalf("unexpected recovered block %+v", recovered)
	}
	r, err := h.GetReceipts(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(r) != 1 || r[0].Status != ledger.StatusExecuted {
		t.Fatalf("unexpected recovered receipts %+v", r)
	}

	if stats := h.GetStats(); stats["last_block_index"] != "2" || stats["executed_txs"] != "3" {
		t.Fatalf("unexpected stats %v", stats)
	}

	n, found, err := h.state.Node(1)
	if err != nil {
		t.Fatal(err)
	}
	if !found || n.NodeID != 1 {
		t.Fatalf("unexpected node %+v", n)
	}
}

func TestBlockLogFailureRestart(t *testing.T) {
	conf := testConfig(t)
	inner := store.NewInmemStore()
	s := &blockLogFailure{Store: inner}

	h := newTestHost(t, conf, s)

	signup := rawTx(t, self, contract.ActSignup, alice, contract.SignParams{User: alice, Inviter: bank})

	s.failures = 1
	if _, _, err := h.commit([][]byte{signup}); err == nil {
		t.Fatal("saving block 1 should fail")
	}

	// a new host over the same store picks block 1 up on Init
	restarted := newTestHost(t, conf, inner)
	defer restarted.Shutdown()

	if restarted.GetLastBlockIndex() != 1 {
		t.Fatalf("last block should be 1, not %d", restarted.GetLastBlockIndex())
	}
	if got, want := restarted.GetStats()["state_hash"], cm.EncodeToString(restarted.state.StateHash()); got != want {
		t.Fatalf("state hash should be %s, not %s", want, got)
	}

	snapshot, err := restarted.GetSnapshot(1)
	if err != nil {
		t.Fatal(err)
	}
	block, err := restarted.GetBlock(1)
	if err != nil {
		t.Fatal(err)
	}
	if block.Timestamp != snapshot.Block.Timestamp || string(block.StateHash) != string(snapshot.Block.StateHash) {
		t.Fatalf("block log %+v does not match snapshot %+v", block, snapshot.Block)
	}
}
