package domain

import "errors"

// Every business operation fails with one of these, possibly wrapped with %w.
// The REST layer owns the mapping to HTTP statuses.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidState        = errors.New("invalid state for requested transition")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrValidation          = errors.New("validation failed")
)
