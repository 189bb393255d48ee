package ledger

import (
	"encoding/json"
	"testing"
)

func TestNameRoundTrip(t *testing.T) {
	for _, s := range []string{"a", "bank", "agpucontract", "acpuminedapp", "amax.mtoken", "zzzzzzzzzzzzj", "1.2.3"} {
		n, err := ParseName(s)
		if err != nil {
			t.Fatalf("ParseName(%q): %v", s, err)
		}
		if n.String() != s {
			t.Fatalf("name should print as %q, not %q", s, n.String())
		}
	}
}

func TestNameValue(t *testing.T) {
	// "eosio" is a well known constant of the encoding
	n := MustParseName("eosio")
	if uint64(n) != 6138663577826885632 {
		t.Fatalf("unexpected value %d for eosio", uint64(n))
	}
}

func TestParseNameErrors(t *testing.T) {
	for _, s := range []string{"UPPER", "toolongname1234", "has space", "abc6", "aaaaaaaaaaaak"} {
		if _, err := ParseName(s); err == nil {
			t.Fatalf("ParseName(%q) should fail", s)
		}
	}
}

func TestNameJSON(t *testing.T) {
	type wrapper struct {
		User Name `json:"user"`
	}
	data, err := json.Marshal(wrapper{User: MustParseName("alice")})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"user":"alice"}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"user":"bob"}`), &w); err != nil {
		t.Fatal(err)
	}
	if w.User != MustParseName("bob") {
		t.Fatalf("user should be bob, not %s", w.User)
	}
}
