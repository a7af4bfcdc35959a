package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery          = errors.New("not valid query parameters")
	ErrNonNumericPagingValue = errors.New("paging value is not numeric")
	ErrStoreExecution        = errors.New("store execution failed")
	ErrNotFound              = errors.New("object not found")
)

// QueryError reports which query key rejected the request.
type QueryError struct {
	Key   string
	Value string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Key)
	}
	return fmt.Sprintf("%v: %s=%q", e.Err, e.Key, e.Value)
}

func (e *QueryError) Unwrap() error { return e.Err }

func storeFailure(op, collection string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStoreExecution, op, collection, err)
}
