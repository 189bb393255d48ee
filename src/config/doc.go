// Package config defines the configuration of an agpu ledger node.
//
// Regardless of how the node is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. The command line
// reads an optional agpu.toml (or .yaml, .json) from Config.DataDir, and flags
// override the values found there. The genesis section of that file lists the
// accounts, mining-site rankings and init parameters a fresh ledger starts
// with:
//
//  [genesis]
//  accounts = ["admin", "bank", "amax.mtoken", "alice"]
//
//  [genesis.init]
//  admin = "admin"
//  bank = "bank"
//  usdt_contract = "amax.mtoken"
//  usdt_symbol = "6,MUSDT"
//
//  [[genesis.sites]]
//  account = "alice"
//  level = 1
package config
