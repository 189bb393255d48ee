package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mosaicnetworks/agpu/src/agpu"
	"github.com/mosaicnetworks/agpu/src/config"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts an agpu node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runAGPU,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runAGPU(cmd *cobra.Command, args []string) error {
	engine := agpu.NewEngine(&_config.AGPU)

	if err := engine.Init(); err != nil {
		_config.AGPU.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		_config.AGPU.Logger().Info("Shutting down")
		engine.Shutdown()
	}()

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.AGPU.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.AGPU.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().Bool("log-files", _config.LogFile, "Also write info and debug logs to files in the datadir")

	// Service
	cmd.Flags().Bool("no-service", _config.AGPU.NoService, "Disable HTTP service")
	cmd.Flags().StringP("service-listen", "s", _config.AGPU.ServiceAddr, "Listen IP:Port for HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.AGPU.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.AGPU.DatabaseDir, "Dabatabase directory")

	// Host configuration
	cmd.Flags().Duration("heartbeat", _config.AGPU.HeartbeatTimeout, "Time between blocks")
	cmd.Flags().Int("max-block-txs", _config.AGPU.MaxBlockTxs, "Max number of transactions in a block")
	cmd.Flags().String("contract", _config.AGPU.Contract, "Account of the node sale contract")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.AGPU.SetDataDir(_config.AGPU.DataDir)

	if _config.LogFile {
		addFileHooks(_config.AGPU.Logger().Logger, _config.AGPU.DataDir)
	}

	logFields := logrus.Fields{
		"agpu.DataDir":          _config.AGPU.DataDir,
		"agpu.ServiceAddr":      _config.AGPU.ServiceAddr,
		"agpu.NoService":        _config.AGPU.NoService,
		"agpu.Store":            _config.AGPU.Store,
		"agpu.LogLevel":         _config.AGPU.LogLevel,
		"agpu.HeartbeatTimeout": _config.AGPU.HeartbeatTimeout,
		"agpu.MaxBlockTxs":      _config.AGPU.MaxBlockTxs,
		"agpu.Contract":         _config.AGPU.Contract,
		"agpu.GenesisAccounts":  len(_config.AGPU.Genesis.Accounts),
		"agpu.GenesisSites":     len(_config.AGPU.Genesis.Sites),
	}

	if _config.AGPU.Store {
		logFields["agpu.DatabaseDir"] = _config.AGPU.DatabaseDir
	}

	_config.AGPU.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/agpu.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigName) // name of config file (without extension)
	viper.AddConfigPath(_config.AGPU.DataDir)     // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.AGPU.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.AGPU.Logger().Debugf("No config file found in: %s", _config.AGPU.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

// addFileHooks sends info and debug entries to agpu_info.log and
// agpu_debug.log in dir, next to the normal output.
func addFileHooks(logger *logrus.Logger, dir string) {
	pathMap := lfshook.PathMap{}

	infoPath := filepath.Join(dir, "agpu_info.log")
	if f, err := os.OpenFile(infoPath, os.O_CREATE|os.O_WRONLY, 0666); err != nil {
		logger.Infof("Failed to open %s file, using default stderr", infoPath)
	} else {
		f.Close()
		pathMap[logrus.InfoLevel] = infoPath
	}

	debugPath := filepath.Join(dir, "agpu_debug.log")
	if f, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY, 0666); err != nil {
		logger.Infof("Failed to open %s file, using default stderr", debugPath)
	} else {
		f.Close()
		pathMap[logrus.DebugLevel] = debugPath
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))
}
