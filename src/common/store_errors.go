package common

import "fmt"

// StoreErrType enumerates the failures of the keyed record store.
type StoreErrType uint32

const (
	// KeyNotFound is returned when no record exists under a key.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when an insert hits an existing key.
	KeyAlreadyExists
	// Closed is returned when the store has been closed.
	Closed
	// ReadOnly is returned on writes through a read-only transaction.
	ReadOnly
)

// StoreErr identifies the table and key of a failed store operation.
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr ...
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error ...
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case Closed:
		m = "Closed"
	case ReadOnly:
		m = "Read Only"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that its code matches
// the provided StoreErr code.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
