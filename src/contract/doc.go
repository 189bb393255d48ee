// Package contract implements the node sale application: a state machine that
// sells fixed-price nodes, keeps an invite graph of users and their inviters,
// and settles orders paid for with token transfers.
//
// Every invocation is one Action applied through Contract.Apply against a
// store transaction. Apply loads the Global configuration, runs the operation
// and writes Global back. Any error aborts the invocation, and the caller is
// expected to discard the transaction so that none of its writes survive.
//
// Payments arrive as transfer notifications: a transfer action executed by a
// token contract whose recipient is the contract account. The memo selects
// the command, currently only "buy:<node_id>".
package contract
