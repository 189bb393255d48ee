package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/agpu/src/common"
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/registry"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultConfigName is the base name of the configuration file in the
	// data directory.
	DefaultConfigName = "agpu"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel         = "debug"
	DefaultServiceAddr      = "127.0.0.1:8000"
	DefaultHeartbeatTimeout = 500 * time.Millisecond
	DefaultMaxBlockTxs      = 1000
	DefaultStore            = false
	DefaultNoService        = false
	DefaultContract         = "agpucontract"
)

// Config contains all the configuration properties of an agpu node.
type Config struct {
	// DataDir is the top-level directory containing configuration and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// HeartbeatTimeout is how long the host collects transactions before it
	// cuts a block.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// MaxBlockTxs caps the number of transactions of a block. A full buffer is
	// committed without waiting for the heartbeat.
	MaxBlockTxs int `mapstructure:"max-block-txs"`

	// Store activates persistant storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Contract is the account the node sale contract is deployed on.
	Contract string `mapstructure:"contract"`

	// Genesis is applied when the node starts on an empty database.
	Genesis Genesis `mapstructure:"genesis"`

	logger *logrus.Logger
}

// Genesis is the configuration form of the records a fresh ledger starts
// with.
type Genesis struct {
	Accounts []string     `mapstructure:"accounts"`
	Sites    []SiteConfig `mapstructure:"sites"`
	Init     *InitConfig  `mapstructure:"init"`
}

// SiteConfig is a mining-site ranking row.
type SiteConfig struct {
	Account string `mapstructure:"account"`
	Level   uint16 `mapstructure:"level"`
}

// InitConfig holds the parameters of the init action the contract account
// runs in the genesis block.
type InitConfig struct {
	Admin         string `mapstructure:"admin"`
	Bank          string `mapstructure:"bank"`
	PaymentIssuer string `mapstructure:"usdt_contract"`
	PaymentSymbol string `mapstructure:"usdt_symbol"`
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:          DefaultDataDir(),
		LogLevel:         DefaultLogLevel,
		NoService:        DefaultNoService,
		ServiceAddr:      DefaultServiceAddr,
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		MaxBlockTxs:      DefaultMaxBlockTxs,
		Store:            DefaultStore,
		DatabaseDir:      DefaultDatabaseDir(),
		Contract:         DefaultContract,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.HeartbeatTimeout = 10 * time.Millisecond
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// ContractAccount parses Contract.
func (c *Config) ContractAccount() (ledger.Name, error) {
	name, err := ledger.ParseName(c.Contract)
	if err != nil {
		return 0, fmt.Errorf("contract: %w", err)
	}
	if name.IsEmpty() {
		return 0, fmt.Errorf("contract: empty account")
	}
	return name, nil
}

// GenesisRecords converts the genesis section into registry records. The
// contract account is always registered.
func (c *Config) GenesisRecords(now ledger.TimePointSec) (registry.Genesis, error) {
	self, err := c.ContractAccount()
	if err != nil {
		return registry.Genesis{}, err
	}

	g := registry.Genesis{Accounts: []ledger.Name{self}}

	for _, a := range c.Genesis.Accounts {
		name, err := ledger.ParseName(a)
		if err != nil {
			return registry.Genesis{}, fmt.Errorf("genesis accounts: %w", err)
		}
		g.Accounts = append(g.Accounts, name)
	}

	for _, s := range c.Genesis.Sites {
		name, err := ledger.ParseName(s.Account)
		if err != nil {
			return registry.Genesis{}, fmt.Errorf("genesis sites: %w", err)
		}
		g.Sites = append(g.Sites, registry.NewMiningSite(name, s.Level, now))
	}

	return g, nil
}

// InitParams converts the genesis init section. It returns nil when the
// section is absent.
func (c *Config) InitParams() (*contract.InitParams, error) {
	i := c.Genesis.Init
	if i == nil {
		return nil, nil
	}

	p := &contract.InitParams{}
	var err error
	if p.Admin, err = ledger.ParseName(i.Admin); err != nil {
		return nil, fmt.Errorf("genesis init admin: %w", err)
	}
	if p.Bank, err = ledger.ParseName(i.Bank); err != nil {
		return nil, fmt.Errorf("genesis init bank: %w", err)
	}
	if p.PaymentIssuer, err = ledger.ParseName(i.PaymentIssuer); err != nil {
		return nil, fmt.Errorf("genesis init usdt_contract: %w", err)
	}
	if p.PaymentSymbol, err = ledger.ParseSymbol(i.PaymentSymbol); err != nil {
		return nil, fmt.Errorf("genesis init usdt_symbol: %w", err)
	}
	return p, nil
}

// Logger returns a formatted logrus Entry, with prefix set to "agpu".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "agpu")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level agpu config
// based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".AGPU")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "AGPU")
		} else {
			return filepath.Join(home, ".agpu")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
