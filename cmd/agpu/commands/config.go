package commands

import (
	"github.com/mosaicnetworks/agpu/src/config"
)

//CLIConfig contains configuration for the Run command
type CLIConfig struct {
	AGPU    config.Config `mapstructure:",squash"`
	LogFile bool          `mapstructure:"log-files"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		AGPU:    *config.NewDefaultConfig(),
		LogFile: false,
	}
}
