package commands

import (
	"fmt"

	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/spf13/cobra"
)

// MemoCmd decodes a transfer memo the way the contract does
var MemoCmd = &cobra.Command{
	Use:   "memo [memo]",
	Short: "Decode a payment memo",
	Args:  cobra.ExactArgs(1),
	RunE:  decodeMemo,
}

func decodeMemo(cmd *cobra.Command, args []string) error {
	memoCmd, err := contract.ParseMemo(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch c := memoCmd.(type) {
	case contract.BuyCommand:
		fmt.Fprintf(out, "command: buy\nnode_id: %d\n", c.NodeID)
	case contract.UnknownCommand:
		fmt.Fprintf(out, "command: %q (unknown)\nnode_id: %d\n", c.Name.String(), c.NodeID)
	}
	return nil
}
