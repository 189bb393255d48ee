package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest absolute amount an Asset may hold.
const MaxAmount = int64(1)<<62 - 1

// MaxPrecision is the largest number of decimals a Symbol may carry.
const MaxPrecision = 18

// Symbol is a token code together with its precision.
type Symbol struct {
	Precision uint8
	Code      string
}

// NewSymbol returns the symbol for code with the given precision.
func NewSymbol(code string, precision uint8) Symbol {
	return Symbol{Precision: precision, Code: code}
}

// ParseSymbol parses the "precision,CODE" form, for example "6,MUSDT". It does
// not validate the code; the zero Symbol round-trips as "0,".
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("symbol %q: expected precision,CODE", s)
	}
	p, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 8)
	if err != nil {
		return Symbol{}, fmt.Errorf("symbol %q: %v", s, err)
	}
	return Symbol{Precision: uint8(p), Code: strings.TrimSpace(parts[1])}, nil
}

// IsValid reports whether the code is 1 to 7 upper-case letters and the
// precision is within MaxPrecision.
func (s Symbol) IsValid() bool {
	if len(s.Code) == 0 || len(s.Code) > 7 || s.Precision > MaxPrecision {
		return false
	}
	for i := 0; i < len(s.Code); i++ {
		if s.Code[i] < 'A' || s.Code[i] > 'Z' {
			return false
		}
	}
	return true
}

func (s Symbol) String() string {
	return fmt.Sprintf("%d,%s", s.Precision, s.Code)
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbol) UnmarshalText(text []byte) error {
	v, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Asset is an amount of a Symbol expressed in its smallest unit.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// NewAsset returns an asset of amount units of sym.
func NewAsset(amount int64, sym Symbol) Asset {
	return Asset{Amount: amount, Symbol: sym}
}

// ParseAsset parses the "AMOUNT CODE" form. The number of decimals in AMOUNT
// sets the precision, so "10.00 USDT" has precision 2 and amount 1000.
func ParseAsset(s string) (Asset, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("asset %q: expected AMOUNT CODE", s)
	}

	var precision uint8
	if dot := strings.IndexByte(fields[0], '.'); dot >= 0 {
		precision = uint8(len(fields[0]) - dot - 1)
	}

	d, err := decimal.NewFromString(fields[0])
	if err != nil {
		return Asset{}, fmt.Errorf("asset %q: %v", s, err)
	}

	units := d.Shift(int32(precision))
	if !units.Equal(units.Truncate(0)) || units.Abs().GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return Asset{}, fmt.Errorf("asset %q: amount out of range", s)
	}

	a := Asset{Amount: units.IntPart(), Symbol: Symbol{Precision: precision, Code: fields[1]}}
	if !a.Symbol.IsValid() {
		return Asset{}, fmt.Errorf("asset %q: invalid symbol", s)
	}
	return a, nil
}

// MustParseAsset is like ParseAsset but panics on invalid input.
func MustParseAsset(s string) Asset {
	a, err := ParseAsset(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsValid reports whether the amount is in range and the symbol is valid.
func (a Asset) IsValid() bool {
	return a.Amount >= -MaxAmount && a.Amount <= MaxAmount && a.Symbol.IsValid()
}

// Decimal returns the amount scaled by the symbol precision.
func (a Asset) Decimal() decimal.Decimal {
	return decimal.New(a.Amount, -int32(a.Symbol.Precision))
}

func (a Asset) String() string {
	return a.Decimal().StringFixed(int32(a.Symbol.Precision)) + " " + a.Symbol.Code
}

// MarshalText implements encoding.TextMarshaler.
func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Asset) UnmarshalText(text []byte) error {
	v, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
