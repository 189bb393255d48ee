package crypto

import (
	"crypto/sha256"
)

// SHA256 returns the SHA256 hash of the data.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ChainHash folds data into a running hash: SHA256(prev || SHA256(data)). An
// empty prev starts a new chain.
func ChainHash(prev []byte, data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(prev)
	hasher.Write(SHA256(data))
	return hasher.Sum(nil)
}
