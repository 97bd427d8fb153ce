package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// Store is the ledger store contract the core is written against.
// It deliberately exposes no cross-document transaction: the engine must
// work with get-by-id, single-document inserts and conditional updates.
// AdjustBalance and SettleTransaction are the two conditional updates the
// correctness of the engine rests on.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, ownerName, email string) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// AdjustBalance applies delta to the account balance as one atomic
	// read-modify-write. It returns ErrInsufficientFunds when the result
	// would be negative and never clamps or blindly overwrites.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error

	// Transactions
	// InsertTransaction assigns the id and returns it. Status and
	// CreatedAt are taken from txn.
	InsertTransaction(ctx context.Context, txn *domain.Transaction) (uuid.UUID, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// SettleTransaction moves a pending transaction to a terminal status.
	// It fails with ErrTransactionSettled if the transaction is already
	// terminal; a terminal status can never change again.
	SettleTransaction(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
	// HistoryByAccount returns transactions where the account is sender or
	// receiver, newest first.
	HistoryByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Transaction, error)
	// CompletedBySender / CompletedByReceiver return completed transactions
	// within [start, end] inclusive, used by the statistics aggregator.
	CompletedBySender(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error)
	CompletedByReceiver(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error)
	// PendingOlderThan returns transactions still pending at cutoff, for
	// the settler sweep.
	PendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Transaction, error)

	// API keys
	SaveAPIKey(ctx context.Context, accountID uuid.UUID, keyHash, keyPrefix string) error
	AccountIDForKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error)

	// Idempotency records
	IdempotencyRecord(ctx context.Context, key string) (status int, body []byte, err error)
	SaveIdempotencyRecord(ctx context.Context, key string, status int, body []byte) error

	// Webhook jobs
	EnqueueWebhook(ctx context.Context, url string, payload []byte) error
	NextWebhookJob(ctx context.Context) (*WebhookJob, error)
	CompleteWebhookJob(ctx context.Context, id uuid.UUID) error
	RetryWebhookJob(ctx context.Context, id uuid.UUID, nextRun time.Time) error
	FailWebhookJob(ctx context.Context, id uuid.UUID) error
}

// WebhookJob is one queued delivery attempt owned by the webhook worker.
type WebhookJob struct {
	ID       uuid.UUID
	URL      string
	Payload  []byte
	Attempts int
}

var (
	// ErrNoJob is returned by NextWebhookJob when no job is due.
	ErrNoJob = errors.New("no webhook job due")
	// ErrNoRecord is returned by IdempotencyRecord on a cache miss.
	ErrNoRecord = errors.New("no idempotency record")
)
