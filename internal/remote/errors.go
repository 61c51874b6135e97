package remote

import (
	"errors"
	"fmt"
)

// ErrNoBackup means no backup file exists in the app-private folder.
var ErrNoBackup = errors.New("no backup file found")

// OpError wraps a cloud provider failure with the operation that caused it.
// Nothing is retried at this layer; the caller decides.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err) }

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	return &OpError{Op: op, Err: err}
}
