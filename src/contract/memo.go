package contract

import (
	"strings"

	"github.com/mosaicnetworks/agpu/src/ledger"
)

// Command is a payment instruction decoded from a transfer memo.
type Command interface {
	// Target is the node the command refers to.
	Target() uint64
}

// BuyCommand buys one unit of a node.
type BuyCommand struct {
	NodeID uint64
}

// Target implements Command.
func (c BuyCommand) Target() uint64 { return c.NodeID }

// UnknownCommand is a well-formed memo with an unrecognized command name.
type UnknownCommand struct {
	Name   ledger.Name
	NodeID uint64
}

// Target implements Command.
func (c UnknownCommand) Target() uint64 { return c.NodeID }

var buyCommand = ledger.MustParseName("buy")

// ParseMemo decodes "<command>:<node_id>[:...]". The command is an account
// style name, so "buy." is "buy" and "BUY" is not a name at all. The node id
// is read like C atoi: leading digits only, and 0 when there are none. A memo
// with fewer than two fields, or whose command is not a valid name, fails
// with MemoFormatError.
func ParseMemo(memo string) (Command, error) {
	params := strings.Split(memo, ":")
	if len(params) < 2 {
		return nil, errorf(MemoFormatError, "invalid memo")
	}

	name, err := ledger.ParseName(params[0])
	if err != nil {
		return nil, errorf(MemoFormatError, "invalid memo command: %v", err)
	}

	nodeID := atoi(params[1])

	switch name {
	case buyCommand:
		return BuyCommand{NodeID: nodeID}, nil
	default:
		return UnknownCommand{Name: name, NodeID: nodeID}, nil
	}
}

// atoi skips leading white space, accepts one sign and reads decimal digits
// up to the first other character. Negative values wrap like a C cast.
func atoi(s string) uint64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	var n uint64
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + uint64(s[i]-'0')
	}

	if neg {
		return -n
	}
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
