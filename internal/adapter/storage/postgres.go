package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// PostgresStore implements Store on top of pgx. Every contract operation is
// a single statement: the engine never gets a cross-document transaction,
// matching the constraint the three-phase settlement is designed around.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateAccount(ctx context.Context, ownerName, email string) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (owner_name, email, balance)
		VALUES ($1, $2, 0)
		RETURNING id, owner_name, email, balance, created_at
	`
	var acc domain.Account
	err := s.db.QueryRow(ctx, query, ownerName, email).Scan(
		&acc.ID, &acc.OwnerName, &acc.Email, &acc.Balance, &acc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, owner_name, email, balance, created_at FROM accounts WHERE id = $1`
	var acc domain.Account
	err := s.db.QueryRow(ctx, query, id).Scan(
		&acc.ID, &acc.OwnerName, &acc.Email, &acc.Balance, &acc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// AdjustBalance is the store's atomic read-modify-write. The WHERE clause
// makes the update conditional on the resulting balance staying non-negative,
// so a concurrent debit can never overdraw or lose an update.
func (s *PostgresStore) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0`,
		delta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrAccountNotFound
	}
	return domain.ErrInsufficientFunds
}

func (s *PostgresStore) InsertTransaction(ctx context.Context, txn *domain.Transaction) (uuid.UUID, error) {
	query := `
		INSERT INTO transactions (sender_id, receiver_id, amount, description, transaction_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id uuid.UUID
	err := s.db.QueryRow(ctx, query,
		nullableID(txn.SenderID), nullableID(txn.ReceiverID),
		txn.Amount, txn.Description, txn.Type, txn.Status, txn.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, sender_id, receiver_id, amount, description, transaction_type, status, created_at
		FROM transactions WHERE id = $1
	`
	txn, err := scanTransaction(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, err
}

// SettleTransaction only matches rows still pending, so a terminal status
// can never be overwritten no matter how often it is called.
func (s *PostgresStore) SettleTransaction(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	if !status.Terminal() {
		return domain.ErrTransactionSettled
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`,
		status, id, domain.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTransactionNotFound
	}
	return domain.ErrTransactionSettled
}

func (s *PostgresStore) HistoryByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, sender_id, receiver_id, amount, description, transaction_type, status, created_at
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *PostgresStore) CompletedBySender(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	return s.completedByField(ctx, "sender_id", accountID, start, end)
}

func (s *PostgresStore) CompletedByReceiver(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	return s.completedByField(ctx, "receiver_id", accountID, start, end)
}

func (s *PostgresStore) completedByField(ctx context.Context, field string, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT id, sender_id, receiver_id, amount, description, transaction_type, status, created_at
		FROM transactions
		WHERE %s = $1 AND status = $2 AND created_at >= $3 AND created_at <= $4
		ORDER BY created_at ASC
	`, field)
	rows, err := s.db.Query(ctx, query, accountID, domain.StatusCompleted, start, end)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *PostgresStore) PendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT id, sender_id, receiver_id, amount, description, transaction_type, status, created_at
		FROM transactions
		WHERE status = $1 AND created_at < $2
	`
	rows, err := s.db.Query(ctx, query, domain.StatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *PostgresStore) SaveAPIKey(ctx context.Context, accountID uuid.UUID, keyHash, keyPrefix string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO api_keys (account_id, key_hash, key_prefix) VALUES ($1, $2, $3)`,
		accountID, keyHash, keyPrefix)
	if err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) AccountIDForKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT account_id FROM api_keys WHERE key_hash = $1`, keyHash).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *PostgresStore) IdempotencyRecord(ctx context.Context, key string) (int, []byte, error) {
	var status int
	var body []byte
	err := s.db.QueryRow(ctx,
		`SELECT response_status, response_body FROM idempotency_keys WHERE key_id = $1`,
		key).Scan(&status, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, ErrNoRecord
	}
	if err != nil {
		return 0, nil, err
	}
	return status, body, nil
}

func (s *PostgresStore) SaveIdempotencyRecord(ctx context.Context, key string, status int, body []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO idempotency_keys (key_id, response_status, response_body) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		key, status, body)
	return err
}

func (s *PostgresStore) EnqueueWebhook(ctx context.Context, url string, payload []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO webhook_jobs (url, payload) VALUES ($1, $2)`,
		url, payload)
	return err
}

func (s *PostgresStore) NextWebhookJob(ctx context.Context) (*WebhookJob, error) {
	query := `
		SELECT id, url, payload, attempts
		FROM webhook_jobs
		WHERE status = 'pending' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`
	var job WebhookJob
	err := s.db.QueryRow(ctx, query).Scan(&job.ID, &job.URL, &job.Payload, &job.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *PostgresStore) CompleteWebhookJob(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE webhook_jobs SET status = 'completed' WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) RetryWebhookJob(ctx context.Context, id uuid.UUID, nextRun time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE webhook_jobs SET status = 'pending', attempts = attempts + 1, next_run_at = $2 WHERE id = $1`,
		id, nextRun)
	return err
}

func (s *PostgresStore) FailWebhookJob(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE webhook_jobs SET status = 'failed' WHERE id = $1`, id)
	return err
}

// Deposits and withdrawals have one zero-valued party; store those as NULL
// so the foreign keys stay honest.
func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var txn domain.Transaction
	var sender, receiver *uuid.UUID
	err := row.Scan(&txn.ID, &sender, &receiver, &txn.Amount, &txn.Description, &txn.Type, &txn.Status, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	if sender != nil {
		txn.SenderID = *sender
	}
	if receiver != nil {
		txn.ReceiverID = *receiver
	}
	return &txn, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var out []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *txn)
	}
	return out, rows.Err()
}
