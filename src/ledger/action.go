package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrEmptyAuthority is returned when an action lists the empty name among its
// authorizations.
var ErrEmptyAuthority = errors.New("empty name in authorization")

// Action is a call of the named action on the Account contract, authorized by
// the listed accounts. Data holds the JSON encoded action parameters.
type Action struct {
	Account       Name            `json:"account"`
	Name          Name            `json:"name"`
	Authorization []Name          `json:"authorization"`
	Data          json.RawMessage `json:"data"`
}

// NewAction encodes data and returns the corresponding Action.
func NewAction(account, name Name, auth []Name, data interface{}) (Action, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Account:       account,
		Name:          name,
		Authorization: auth,
		Data:          raw,
	}, nil
}

// HasAuth reports whether account signed the action. The empty name never
// has authority.
func (a *Action) HasAuth(account Name) bool {
	if account.IsEmpty() {
		return false
	}
	for _, p := range a.Authorization {
		if p == account {
			return true
		}
	}
	return false
}

// DecodeData decodes the action parameters into v.
func (a *Action) DecodeData(v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(a.Data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Marshal returns the JSON encoding of the action.
func (a *Action) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// Unmarshal decodes a JSON encoded action.
func (a *Action) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, a); err != nil {
		return err
	}
	for _, p := range a.Authorization {
		if p.IsEmpty() {
			return ErrEmptyAuthority
		}
	}
	return nil
}

// Transfer is the data of a token transfer action.
type Transfer struct {
	From     Name   `json:"from"`
	To       Name   `json:"to"`
	Quantity Asset  `json:"quantity"`
	Memo     string `json:"memo"`
}

// TransferAction is the name of the token transfer action.
var TransferAction = MustParseName("transfer")
