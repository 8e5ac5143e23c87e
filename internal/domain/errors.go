package domain

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrMalformedAmount   = errors.New("malformed amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
	ErrInconsistentState = errors.New("internal state inconsistency")
)
