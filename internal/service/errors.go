package service

import "fmt"

// ErrorKind classifies a ServiceError for transport mapping. Exactly one
// kind applies to every failure crossing the engine boundary.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindPrecondition ErrorKind = "precondition_failed"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindIntegrity    ErrorKind = "integrity"
)

// ServiceError represents a business logic error with a kind and code.
// Message is short and safe to show to the end user; store-level detail
// stays in Err and is only logged.
type ServiceError struct {
	Err     error
	Message string
	Code    string
	Kind    ErrorKind
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidAmount         = "invalid_amount"
	ErrCodeInvalidPINFormat      = "invalid_pin_format"
	ErrCodeInvalidCredential     = "invalid_credential"
	ErrCodeRequiresPIN           = "requires_pin"
	ErrCodeInsufficientFunds     = "insufficient_funds"
	ErrCodeInsufficientCash      = "insufficient_cash"
	ErrCodeAccountFrozen         = "account_frozen"
	ErrCodeSessionConflict       = "session_conflict"
	ErrCodeInvalidTarget         = "invalid_target"
	ErrCodeTransactionInProgress = "transaction_in_progress"
	ErrCodeAccountExists         = "account_exists"
	ErrCodeAccountNotFound       = "account_not_found"
	ErrCodeRecipientNotFound     = "recipient_not_found"
	ErrCodeLoanNotFound          = "loan_not_found"
	ErrCodeLoanOutOfRange        = "loan_out_of_range"
	ErrCodeDuplicateLoan         = "duplicate_loan"
	ErrCodeLoanAlreadyProcessed  = "loan_already_processed"
	ErrCodeCardLimitReached      = "card_limit_reached"
	ErrCodeTransactionFailed     = "transaction_failed"
	ErrCodeInternalError         = "internal_error"
)

// errInternal wraps a store-level failure. The user-visible message is kept
// generic so implementation detail does not leak across the boundary.
func errInternal(err error) *ServiceError {
	return &ServiceError{
		Kind:    KindIntegrity,
		Code:    ErrCodeTransactionFailed,
		Message: "transaction failed",
		Err:     err,
	}
}
