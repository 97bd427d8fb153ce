package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// MemoryStore is an in-process Store used when DATABASE_URL is not set
// (local development) and throughout the tests. It honors the same
// conditional-update semantics as the Postgres store.
type MemoryStore struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction
	apiKeys      map[string]uuid.UUID
	idempotency  map[string]idemRecord
	jobs         []*memJob
}

type idemRecord struct {
	status int
	body   []byte
}

type memJob struct {
	id       uuid.UUID
	url      string
	payload  []byte
	attempts int
	status   string
	nextRun  time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[uuid.UUID]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		apiKeys:      make(map[string]uuid.UUID),
		idempotency:  make(map[string]idemRecord),
	}
}

func (s *MemoryStore) CreateAccount(ctx context.Context, ownerName, email string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &domain.Account{
		ID:        uuid.New(),
		OwnerName: ownerName,
		Email:     email,
		Balance:   0,
		CreatedAt: time.Now().UTC(),
	}
	s.accounts[acc.ID] = acc
	return copyAccount(acc), nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(acc), nil
}

func (s *MemoryStore) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if acc.Balance+delta < 0 {
		return domain.ErrInsufficientFunds
	}
	acc.Balance += delta
	return nil
}

func (s *MemoryStore) InsertTransaction(ctx context.Context, txn *domain.Transaction) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *txn
	stored.ID = uuid.New()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.transactions[stored.ID] = &stored
	return stored.ID, nil
}

func (s *MemoryStore) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	out := *txn
	return &out, nil
}

func (s *MemoryStore) SettleTransaction(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !status.Terminal() {
		return domain.ErrTransactionSettled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if txn.Status.Terminal() {
		return domain.ErrTransactionSettled
	}
	txn.Status = status
	return nil
}

func (s *MemoryStore) HistoryByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range s.transactions {
		if txn.SenderID == accountID || txn.ReceiverID == accountID {
			out = append(out, *txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CompletedBySender(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	return s.completedByDirection(ctx, accountID, start, end, false)
}

func (s *MemoryStore) CompletedByReceiver(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	return s.completedByDirection(ctx, accountID, start, end, true)
}

func (s *MemoryStore) completedByDirection(ctx context.Context, accountID uuid.UUID, start, end time.Time, receiver bool) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range s.transactions {
		party := txn.SenderID
		if receiver {
			party = txn.ReceiverID
		}
		if party != accountID || txn.Status != domain.StatusCompleted {
			continue
		}
		if txn.CreatedAt.Before(start) || txn.CreatedAt.After(end) {
			continue
		}
		out = append(out, *txn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) PendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, txn := range s.transactions {
		if txn.Status == domain.StatusPending && txn.CreatedAt.Before(cutoff) {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveAPIKey(ctx context.Context, accountID uuid.UUID, keyHash, keyPrefix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys[keyHash] = accountID
	return nil
}

func (s *MemoryStore) AccountIDForKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.apiKeys[keyHash]
	if !ok {
		return uuid.Nil, domain.ErrAccountNotFound
	}
	return id, nil
}

func (s *MemoryStore) IdempotencyRecord(ctx context.Context, key string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.idempotency[key]
	if !ok {
		return 0, nil, ErrNoRecord
	}
	return rec.status, rec.body, nil
}

func (s *MemoryStore) SaveIdempotencyRecord(ctx context.Context, key string, status int, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.idempotency[key]; exists {
		return nil
	}
	s.idempotency[key] = idemRecord{status: status, body: append([]byte(nil), body...)}
	return nil
}

func (s *MemoryStore) EnqueueWebhook(ctx context.Context, url string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &memJob{
		id:      uuid.New(),
		url:     url,
		payload: append([]byte(nil), payload...),
		status:  "pending",
		nextRun: time.Now().UTC(),
	})
	return nil
}

func (s *MemoryStore) NextWebhookJob(ctx context.Context) (*WebhookJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, j := range s.jobs {
		if j.status == "pending" && !j.nextRun.After(now) {
			return &WebhookJob{ID: j.id, URL: j.url, Payload: j.payload, Attempts: j.attempts}, nil
		}
	}
	return nil, ErrNoJob
}

func (s *MemoryStore) CompleteWebhookJob(ctx context.Context, id uuid.UUID) error {
	return s.setJobStatus(ctx, id, "completed", nil)
}

func (s *MemoryStore) RetryWebhookJob(ctx context.Context, id uuid.UUID, nextRun time.Time) error {
	return s.setJobStatus(ctx, id, "pending", &nextRun)
}

func (s *MemoryStore) FailWebhookJob(ctx context.Context, id uuid.UUID) error {
	return s.setJobStatus(ctx, id, "failed", nil)
}

func (s *MemoryStore) setJobStatus(ctx context.Context, id uuid.UUID, status string, nextRun *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.id != id {
			continue
		}
		j.status = status
		if nextRun != nil {
			j.attempts++
			j.nextRun = *nextRun
		}
		return nil
	}
	return ErrNoJob
}

func copyAccount(acc *domain.Account) *domain.Account {
	out := *acc
	return &out
}
