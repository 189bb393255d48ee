package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeToString returns the UPPERCASE hex representation of hexBytes with the
// 0X prefix. State hashes are rendered this way in logs and stats.
func EncodeToString(hexBytes []byte) string {
	return fmt.Sprintf("0X%X", hexBytes)
}

// DecodeFromString converts a hex string with an optional 0X prefix to a byte
// slice.
func DecodeFromString(hexString string) ([]byte, error) {
	if strings.HasPrefix(hexString, "0X") || strings.HasPrefix(hexString, "0x") {
		hexString = hexString[2:]
	}
	return hex.DecodeString(hexString)
}
