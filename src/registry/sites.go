package registry

import (
	"github.com/mosaicnetworks/agpu/src/contract"
	"github.com/mosaicnetworks/agpu/src/ledger"
	"github.com/mosaicnetworks/agpu/src/store"
)

// MiningSitesTable is the ranking table published by the mining application.
const MiningSitesTable = "usermisite"

// MiningApp is the account that owns the ranking table.
var MiningApp = ledger.MustParseName("acpuminedapp")

// RewardSymbol is the symbol of MiningSite.ClaimedReward.
var RewardSymbol = ledger.NewSymbol("ACPU", 8)

// MiningSite is the ranking row of one account. Only Account and Level are
// consulted by the invite graph; the other fields are carried as published.
type MiningSite struct {
	Account          ledger.Name         `json:"account"`
	Level            uint16              `json:"level"`
	PersonalNum      uint64              `json:"personal_num"`
	MainForceNum     uint64              `json:"main_force_num"`
	MainForceAccount ledger.Name         `json:"main_force_account"`
	AssistNum        uint64              `json:"assist_num"`
	AssistMemberNum  uint64              `json:"assist_member_num"`
	TeamTotalNum     uint64              `json:"team_total_num"`
	TotalNum         uint64              `json:"total_num"`
	ClaimedReward    ledger.Asset        `json:"claimed_reward"`
	CreatedAt        ledger.TimePointSec `json:"created_at"`
	UpdatedAt        ledger.TimePointSec `json:"updated_at"`
	UpgradedAt       ledger.TimePointSec `json:"upgraded_at"`
}

// NewMiningSite returns an empty ranking row of account at the given level.
func NewMiningSite(account ledger.Name, level uint16, now ledger.TimePointSec) *MiningSite {
	return &MiningSite{
		Account:       account,
		Level:         level,
		ClaimedReward: ledger.NewAsset(0, RewardSymbol),
		CreatedAt:     now,
		UpdatedAt:     now,
		UpgradedAt:    now,
	}
}

// Sites reads the ranking table from a store transaction. It is the
// eligibility oracle of the invite graph.
type Sites struct {
	txn store.Txn
}

// NewSites ...
func NewSites(txn store.Txn) *Sites {
	return &Sites{txn: txn}
}

// Get returns the full ranking row stored under account.
func (s *Sites) Get(account ledger.Name) (*MiningSite, bool, error) {
	site := &MiningSite{}
	found, err := store.GetRecord(s.txn, MiningSitesTable, uint64(MiningApp), uint64(account), site)
	return site, found, err
}

// Site implements contract.Eligibility.
func (s *Sites) Site(account ledger.Name) (contract.Site, bool, error) {
	site, found, err := s.Get(account)
	if err != nil || !found {
		return contract.Site{}, false, err
	}
	return contract.Site{Account: site.Account, Level: site.Level}, true, nil
}

// Put publishes a ranking row, replacing the previous one.
func (s *Sites) Put(site *MiningSite) error {
	return store.SetRecord(s.txn, MiningSitesTable, uint64(MiningApp), uint64(site.Account), site)
}

// SetLevel changes the level of a ranking row, creating it when missing.
func (s *Sites) SetLevel(account ledger.Name, level uint16, now ledger.TimePointSec) error {
	site, found, err := s.Get(account)
	if err != nil {
		return err
	}
	if !found {
		return s.Put(NewMiningSite(account, level, now))
	}
	if site.Level != level {
		site.Level = level
		site.UpgradedAt = now
	}
	site.UpdatedAt = now
	return s.Put(site)
}
