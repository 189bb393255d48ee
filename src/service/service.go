package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	cm "github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/app"
	"github.com/mosaicnetworks/agpu/src/host"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/proxy"
	"github.com/sirupsen/logrus"
)

// maxTxSize bounds the body of POST /tx.
const maxTxSize = 64 * 1024

// DefaultSubmitTimeout is how long POST /tx waits for the host to take a
// transaction.
const DefaultSubmitTimeout = 5 * time.Second

// Service ...
type Service struct {
	bindAddress   string
	host          *host.Host
	state         *app.State
	submitter     proxy.Submitter
	submitTimeout time.Duration
	mux           *http.ServeMux
	logger        *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, h *host.Host, state *app.State, submitter proxy.Submitter, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress:   bindAddress,
		host:          h,
		state:         state,
		submitter:     submitter,
		submitTimeout: DefaultSubmitTimeout,
		mux:           http.NewServeMux(),
		logger:        logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the ServeMux of the
// service.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering API handlers")
	s.mux.HandleFunc("/tx", s.makeHandler(s.SubmitTx))
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	s.mux.HandleFunc("/block/", s.makeHandler(s.GetBlock))
	s.mux.HandleFunc("/receipts/", s.makeHandler(s.GetReceipts))
	s.mux.HandleFunc("/snapshot/", s.makeHandler(s.GetSnapshot))
	s.mux.HandleFunc("/accounts", s.makeHandler(s.GetAccounts))
	s.mux.HandleFunc("/site/", s.makeHandler(s.GetSite))
	s.mux.HandleFunc("/global", s.makeHandler(s.GetGlobal))
	s.mux.HandleFunc("/nodes", s.makeHandler(s.GetNodes))
	s.mux.HandleFunc("/node/", s.makeHandler(s.GetNode))
	s.mux.HandleFunc("/invite/", s.makeHandler(s.GetInvite))
	s.mux.HandleFunc("/orders/", s.makeHandler(s.GetOrders))
	s.mux.HandleFunc("/nodetotals/", s.makeHandler(s.GetNodeTotals))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the http handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving API")

	err := http.ListenAndServe(s.bindAddress, s.mux)
	if err != nil {
		s.logger.Error(err)
	}
}

/*******************************************************************************
Transactions
*******************************************************************************/

// SubmitTx decodes a JSON action from the request body and queues it for the
// next block. The outcome is found in the receipts of that block. When the
// host does not take the transaction in time, or is shut down, it answers
// 503.
func (s *Service) SubmitTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTxSize+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > maxTxSize {
		http.Error(w, "transaction too large", http.StatusRequestEntityTooLarge)
		return
	}

	var act ledger.Action
	if err := act.Unmarshal(body); err != nil {
		s.logger.WithError(err).Debug("Decoding transaction")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := act.Marshal()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.submitTimeout)
	defer cancel()

	go func() {
		select {
		case <-s.host.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.submitter.SubmitTx(ctx, tx); err != nil {
		s.logger.WithError(err).Debug("Submitting transaction")
		http.Error(w, "host is not accepting transactions", http.StatusServiceUnavailable)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"account": act.Account,
		"action":  act.Name,
	}).Debug("Submitted transaction")

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}

/*******************************************************************************
Host
*******************************************************************************/

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.host.GetStats())
}

// GetBlock ...
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	blockIndex, ok := s.intParam(w, r, "/block/")
	if !ok {
		return
	}

	block, err := s.host.GetBlock(blockIndex)
	if err != nil {
		s.fail(w, err, "Retrieving block %d", blockIndex)
		return
	}

	writeJSON(w, http.StatusOK, block)
}

// GetReceipts ...
func (s *Service) GetReceipts(w http.ResponseWriter, r *http.Request) {
	blockIndex, ok := s.intParam(w, r, "/receipts/")
	if !ok {
		return
	}

	receipts, err := s.host.GetReceipts(blockIndex)
	if err != nil {
		s.fail(w, err, "Retrieving receipts %d", blockIndex)
		return
	}

	writeJSON(w, http.StatusOK, receipts)
}

// GetSnapshot ...
func (s *Service) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	blockIndex, ok := s.intParam(w, r, "/snapshot/")
	if !ok {
		return
	}

	snapshot, err := s.host.GetSnapshot(blockIndex)
	if err != nil {
		s.fail(w, err, "Retrieving snapshot %d", blockIndex)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

/*******************************************************************************
Registry
*******************************************************************************/

// GetAccounts ...
func (s *Service) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.state.Accounts()
	if err != nil {
		s.fail(w, err, "Retrieving accounts")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// GetSite ...
func (s *Service) GetSite(w http.ResponseWriter, r *http.Request) {
	account, ok := s.nameParam(w, r, "/site/")
	if !ok {
		return
	}

	site, found, err := s.state.Site(account)
	if err != nil {
		s.fail(w, err, "Retrieving site %s", account)
		return
	}
	if !found {
		http.Error(w, "site not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, site)
}

/*******************************************************************************
Contract tables
*******************************************************************************/

// GetGlobal ...
func (s *Service) GetGlobal(w http.ResponseWriter, r *http.Request) {
	g, err := s.state.Global()
	if err != nil {
		s.fail(w, err, "Retrieving global")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GetNodes ...
func (s *Service) GetNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.state.Nodes()
	if err != nil {
		s.fail(w, err, "Retrieving nodes")
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}

// GetNode ...
func (s *Service) GetNode(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Path[len("/node/"):]

	nodeID, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	node, found, err := s.state.Node(nodeID)
	if err != nil {
		s.fail(w, err, "Retrieving node %d", nodeID)
		return
	}
	if !found {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// GetInvite ...
func (s *Service) GetInvite(w http.ResponseWriter, r *http.Request) {
	user, ok := s.nameParam(w, r, "/invite/")
	if !ok {
		return
	}

	invite, found, err := s.state.Invite(user)
	if err != nil {
		s.fail(w, err, "Retrieving invite %s", user)
		return
	}
	if !found {
		http.Error(w, "invite not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, invite)
}

// GetOrders ...
func (s *Service) GetOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := s.nameParam(w, r, "/orders/")
	if !ok {
		return
	}

	orders, err := s.state.Orders(user)
	if err != nil {
		s.fail(w, err, "Retrieving orders %s", user)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetNodeTotals ...
func (s *Service) GetNodeTotals(w http.ResponseWriter, r *http.Request) {
	user, ok := s.nameParam(w, r, "/nodetotals/")
	if !ok {
		return
	}

	totals, err := s.state.NodeTotals(user)
	if err != nil {
		s.fail(w, err, "Retrieving node totals %s", user)
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

/*******************************************************************************
Helpers
*******************************************************************************/

func (s *Service) intParam(w http.ResponseWriter, r *http.Request, prefix string) (int, bool) {
	param := r.URL.Path[len(prefix):]

	i, err := strconv.Atoi(param)
	if err != nil {
		s.logger.WithError(err).Debugf("Parsing parameter %s", param)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return i, true
}

func (s *Service) nameParam(w http.ResponseWriter, r *http.Request, prefix string) (ledger.Name, bool) {
	param := strings.TrimPrefix(r.URL.Path, prefix)

	name, err := ledger.ParseName(param)
	if err != nil || name.IsEmpty() {
		if err == nil {
			err = errEmptyName
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return name, true
}

func (s *Service) fail(w http.ResponseWriter, err error, format string, args ...interface{}) {
	if cm.IsStore(err, cm.KeyNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.WithError(err).Errorf(format, args...)

	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}
