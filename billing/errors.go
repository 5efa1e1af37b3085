package billing

import "errors"

// The engine's error taxonomy. Validation errors are caller mistakes,
// conflict errors mean the caller's view of state is stale, resource errors
// mean the request cannot be satisfied. Every failure leaves persisted state
// untouched (full transaction rollback); none are retried internally.
var (
	// Validation
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidDiscount = errors.New("discount must be between zero and the total to pay")
	ErrInvalidPayment  = errors.New("payment must be between zero and the net total")
	ErrInvalidAmount   = errors.New("session amount must not be negative")
	ErrEmptySession    = errors.New("session has no line items")

	// Conflict
	ErrAlreadyInvoiced  = errors.New("session already has an invoice")
	ErrCustomerMismatch = errors.New("sessions belong to different customers")
	ErrOverPayment      = errors.New("payment exceeds the outstanding balance")

	// Resource
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
)
