package selling

import (
	"errors"
	"fmt"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
	ErrStoreWrite   = errors.New("could not write to the record store")
)

// StoreError reports a failed write under the surface policy
type StoreError struct {
	Err       error
	Operation string
	Key       string
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %s", e.Operation, e.Key, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Err.Error())
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}
