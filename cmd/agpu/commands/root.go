package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for agpu
var RootCmd = &cobra.Command{
	Use:              "agpu",
	Short:            "node sale ledger",
	TraverseChildren: true,
}
