// Package repository holds the MySQL-backed stores: credentials, catalog and
// orders.  The sentinel values below let handlers tell failure kinds apart
// with errors.Is; anything not listed is a plain storage failure.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned by UserRepo.Create when the username is
// already taken.  Handlers translate it into HTTP 409.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrEmptyOrder and ErrInvalidQuantity reject an order before any row is
// written.  ErrInvalidCustomer covers a zero customer id.
var (
	ErrEmptyOrder      = errors.New("order has no line items")
	ErrInvalidQuantity = errors.New("line item quantity must be positive")
	ErrInvalidCustomer = errors.New("order has no customer")
)

// TxFailedError reports a failure inside a write transaction.  By the time
// it is returned a rollback has already been attempted; RollbackErr records
// the outcome of that attempt but never replaces Err.
type TxFailedError struct {
	Op          string // step that failed, e.g. "insert order line"
	Err         error
	RollbackErr error
}

func (e *TxFailedError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("transaction failed at %s: %v (rollback: %v)", e.Op, e.Err, e.RollbackErr)
	}
	return fmt.Sprintf("transaction failed at %s: %v", e.Op, e.Err)
}

func (e *TxFailedError) Unwrap() error { return e.Err }
