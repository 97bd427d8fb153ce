package domain

import "errors"

var (
	// ErrAccountNotFound indicates the sender or receiver does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates the sender's balance cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidAmount indicates a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSelfTransfer indicates sender and receiver are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
	// ErrInvalidRequest indicates a transfer request failed field validation.
	ErrInvalidRequest = errors.New("invalid transfer request")
	// ErrInvalidPayload indicates a QR/NFC payload is malformed or not a payment.
	ErrInvalidPayload = errors.New("invalid payment payload")
	// ErrProcessingFailed indicates a failure after the pending transaction was
	// recorded. The transaction is settled as failed, never silently dropped.
	ErrProcessingFailed = errors.New("transfer processing failed")
	// ErrTransactionSettled indicates an attempt to change a terminal status.
	ErrTransactionSettled = errors.New("transaction already settled")
	// ErrTransactionNotFound indicates an unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")
)
