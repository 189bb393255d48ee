package ledger

import (
	"testing"
)

func TestParseAsset(t *testing.T) {
	cases := []struct {
		in     string
		amount int64
		sym    Symbol
	}{
		{"10.00 USDT", 1000, NewSymbol("USDT", 2)},
		{"10.000000 MUSDT", 10000000, NewSymbol("MUSDT", 6)},
		{"3 NODE", 3, NewSymbol("NODE", 0)},
		{"-0.5 A", -5, NewSymbol("A", 1)},
	}

	for _, c := range cases {
		a, err := ParseAsset(c.in)
		if err != nil {
			t.Fatalf("ParseAsset(%q): %v", c.in, err)
		}
		if a.Amount != c.amount || a.Symbol != c.sym {
			t.Fatalf("ParseAsset(%q) should be %d %v, not %d %v", c.in, c.amount, c.sym, a.Amount, a.Symbol)
		}
		if a.String() != c.in {
			t.Fatalf("asset should print as %q, not %q", c.in, a.String())
		}
	}
}

func TestParseAssetErrors(t *testing.T) {
	for _, s := range []string{"10.00", "abc USDT", "1.0 usdt", "1.0 TOOLONGSYM", "1.0 USDT extra"} {
		if _, err := ParseAsset(s); err == nil {
			t.Fatalf("ParseAsset(%q) should fail", s)
		}
	}
}

func TestSymbol(t *testing.T) {
	s, err := ParseSymbol("6,MUSDT")
	if err != nil {
		t.Fatal(err)
	}
	if s != NewSymbol("MUSDT", 6) {
		t.Fatalf("unexpected symbol %v", s)
	}
	if s.String() != "6,MUSDT" {
		t.Fatalf("symbol should print as 6,MUSDT, not %s", s)
	}

	if NewSymbol("", 2).IsValid() || NewSymbol("USDT", 19).IsValid() || NewSymbol("US1", 2).IsValid() {
		t.Fatal("invalid symbols should not validate")
	}
}

func TestZeroSymbolRoundTrip(t *testing.T) {
	var s Symbol
	text, _ := s.MarshalText()

	var back Symbol
	if err := back.UnmarshalText(text); err != nil {
		t.Fatal(err)
	}
	if back != s {
		t.Fatalf("zero symbol should round-trip, got %v", back)
	}
}
