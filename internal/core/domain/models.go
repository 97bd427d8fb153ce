package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account represents a registered user's wallet.
// Balance is stored in minor units (cents) and is never negative.
// Only the transfer engine writes to Balance.
type Account struct {
	ID        uuid.UUID `json:"id"`
	OwnerName string    `json:"owner_name"`
	Email     string    `json:"email"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Terminal reports whether the status allows no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type TransactionType string

const (
	TypeTransfer   TransactionType = "transfer"
	TypeNFC        TransactionType = "nfc"
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
)

// Transaction records one movement of money. It is created as pending,
// settles exactly once to completed or failed, and is immutable after that.
// Deposits carry a zero SenderID and withdrawals a zero ReceiverID because
// the money enters or leaves the system rather than another account.
type Transaction struct {
	ID          uuid.UUID         `json:"id"`
	SenderID    uuid.UUID         `json:"sender_id"`
	ReceiverID  uuid.UUID         `json:"receiver_id"`
	Amount      int64             `json:"amount"`
	Description string            `json:"description"`
	Type        TransactionType   `json:"transaction_type"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TransferRequest is the canonical payment intent handed to the engine.
// Every entry point (manual form, QR scan, NFC tap) normalizes into this.
// It is never persisted.
type TransferRequest struct {
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	Amount      int64
	Description string
	Type        TransactionType
}

// Validate checks a request before the engine touches any state.
func (r TransferRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	if r.SenderID == uuid.Nil || r.ReceiverID == uuid.Nil {
		return fmt.Errorf("%w: sender and receiver are required", ErrInvalidRequest)
	}
	if r.SenderID == r.ReceiverID {
		return ErrSelfTransfer
	}
	switch r.Type {
	case TypeTransfer, TypeNFC:
		return nil
	default:
		return fmt.Errorf("%w: unsupported transaction type %q", ErrInvalidRequest, r.Type)
	}
}
