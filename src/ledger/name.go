package ledger

import (
	"fmt"
	"strings"
)

const nameCharmap = ".12345abcdefghijklmnopqrstuvwxyz"

// Name is an account or action name.
type Name uint64

// ParseName converts the text form of a name into a Name. It fails on strings
// longer than 13 characters, on characters outside the name alphabet, and when
// the 13th character does not fit in 4 bits.
func ParseName(s string) (Name, error) {
	if len(s) > 13 {
		return 0, fmt.Errorf("name %q is too long", s)
	}

	var value uint64
	for i := 0; i < len(s); i++ {
		c, ok := charToValue(s[i])
		if !ok {
			return 0, fmt.Errorf("name %q: character %q is not in allowed character set", s, s[i])
		}
		if i < 12 {
			value |= (c & 0x1f) << uint(64-5*(i+1))
			continue
		}
		if c > 0x0f {
			return 0, fmt.Errorf("name %q: thirteenth character cannot be a letter that comes after j", s)
		}
		value |= c
	}

	return Name(value), nil
}

// MustParseName is like ParseName but panics on invalid input. It is meant
// for constants and tests.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

func charToValue(c byte) (uint64, bool) {
	switch {
	case c == '.':
		return 0, true
	case c >= '1' && c <= '5':
		return uint64(c-'1') + 1, true
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 6, true
	}
	return 0, false
}

// String returns the text form of the name with trailing dots removed.
func (n Name) String() string {
	str := make([]byte, 13)
	tmp := uint64(n)
	for i := 0; i <= 12; i++ {
		if i == 0 {
			str[12-i] = nameCharmap[tmp&0x0f]
			tmp >>= 4
		} else {
			str[12-i] = nameCharmap[tmp&0x1f]
			tmp >>= 5
		}
	}
	return strings.TrimRight(string(str), ".")
}

// IsEmpty reports whether n is the zero name.
func (n Name) IsEmpty() bool {
	return n == 0
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	v, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}
