// Package agpu assembles a ledger node: the store, the node sale application
// behind an in-memory proxy, the host that sequences blocks, and the optional
// HTTP service.
package agpu

import (
	"fmt"

	"github.com/mosaicnetworks/agpu/src/app"
	"github.com/mosaicnetworks/agpu/src/config"
	"github.com/mosaicnetworks/agpu/src/host"
	"github.com/mosaicnetworks/agpu/src/proxy/inmem"
	"github.com/mosaicnetworks/agpu/src/service"
	"github.com/mosaicnetworks/agpu/src/store"
)

// Engine is a ledger node.
type Engine struct {
	Config  *config.Config
	Store   store.Store
	State   *app.State
	Proxy   *inmem.InmemProxy
	Host    *host.Host
	Service *service.Service
}

// NewEngine ...
func NewEngine(conf *config.Config) *Engine {
	return &Engine{
		Config: conf,
	}
}

func (e *Engine) initStore() error {
	if !e.Config.Store {
		e.Store = store.NewInmemStore()

		e.Config.Logger().Debug("created new in-mem store")

		return nil
	}

	e.Config.Logger().WithField("path", e.Config.DatabaseDir).Debug("Attempting to load or create database")

	s, err := store.NewBadgerStore(e.Config.DatabaseDir, e.Config.Logger().WithField("component", "badger"))
	if err != nil {
		return err
	}
	e.Store = s

	return nil
}

func (e *Engine) initApp() error {
	self, err := e.Config.ContractAccount()
	if err != nil {
		return err
	}

	state, err := app.NewState(e.Store, self, e.Config.Logger().WithField("component", "app"))
	if err != nil {
		return err
	}

	e.State = state
	e.Proxy = inmem.NewInmemProxy(state, e.Config.Logger().WithField("component", "proxy"))

	return nil
}

func (e *Engine) initHost() error {
	e.Host = host.NewHost(e.Config, e.Proxy, e.Store)

	if err := e.Host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host: %s", err)
	}

	return nil
}

func (e *Engine) initService() error {
	if !e.Config.NoService {
		e.Service = service.NewService(e.Config.ServiceAddr,
			e.Host,
			e.State,
			e.Proxy,
			e.Config.Logger().WithField("component", "service"))
	}
	return nil
}

// Init opens the store and builds the components. A fresh store receives the
// genesis block.
func (e *Engine) Init() error {
	if err := e.initStore(); err != nil {
		return err
	}

	if err := e.initApp(); err != nil {
		return err
	}

	if err := e.initHost(); err != nil {
		return err
	}

	if err := e.initService(); err != nil {
		return err
	}

	return nil
}

// Run starts the service in the background and runs the host loop. It
// returns after Shutdown.
func (e *Engine) Run() {
	if e.Service != nil {
		go e.Service.Serve()
	}

	e.Host.Run()
}

// Shutdown stops the host and closes the store.
func (e *Engine) Shutdown() {
	if e.Host != nil {
		e.Host.Shutdown()
	}
}
