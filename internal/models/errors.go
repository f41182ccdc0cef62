package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrDuplicateTransaction indicates a ledger row with the same reference number already exists
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrDuplicateAccount indicates an account already exists for the owner
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")
)
