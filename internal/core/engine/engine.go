// Package engine implements the ledger transaction engine: it validates,
// records and settles every movement of money between accounts.
//
// The store offers no cross-document atomic commit, so a transfer runs as a
// three-phase settlement: record a pending transaction, apply the debit and
// then the credit as conditional single-document updates, and finally move
// the transaction to a terminal status. The only reachable partial-failure
// state is "debit applied, credit not applied"; it is surfaced as a failed
// transaction whose recorded amount is the evidence an out-of-band
// reconciliation needs.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// DefaultOpTimeout bounds each store operation. A store call that does not
// answer within it fails that phase instead of hanging the transfer.
const DefaultOpTimeout = 5 * time.Second

type Engine struct {
	store      storage.Store
	webhookURL string
	opTimeout  time.Duration
}

// New builds an engine over the given store. webhookURL may be empty, in
// which case no events are queued.
func New(store storage.Store, webhookURL string) *Engine {
	return &Engine{
		store:      store,
		webhookURL: webhookURL,
		opTimeout:  DefaultOpTimeout,
	}
}

// Transfer validates and executes one funds movement. On success it returns
// the id of the completed transaction. After the pending record is created
// the transfer always reaches a terminal status, even if the caller's
// context is cancelled mid-flight.
func (e *Engine) Transfer(ctx context.Context, req domain.TransferRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	// Pre-mutation checks. Nothing is written until all of them pass.
	sender, err := e.getAccount(ctx, req.SenderID)
	if err != nil {
		return uuid.Nil, err
	}
	if sender.Balance < req.Amount {
		slog.Info("transfer rejected: insufficient funds",
			"sender_id", req.SenderID,
			"balance", domain.FormatAmount(sender.Balance),
			"requested", domain.FormatAmount(req.Amount),
		)
		return uuid.Nil, domain.ErrInsufficientFunds
	}
	if _, err := e.getAccount(ctx, req.ReceiverID); err != nil {
		return uuid.Nil, err
	}

	// Phase 1: record the intent. The pending transaction is what makes
	// any later failure visible instead of silent.
	id, err := e.insertPending(ctx, &domain.Transaction{
		SenderID:    req.SenderID,
		ReceiverID:  req.ReceiverID,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        req.Type,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: could not record transaction: %v", domain.ErrProcessingFailed, err)
	}

	// The caller may walk away now; the transaction still has to settle.
	ctx = context.WithoutCancel(ctx)

	// Phase 2: debit, then credit. Strictly sequenced so a debit failure
	// prevents the credit. The debit is the store's conditional adjust,
	// not an overwrite of the balance read above, so a concurrent spend
	// of the same funds fails here instead of losing an update.
	if err := e.adjust(ctx, req.SenderID, -req.Amount); err != nil {
		e.settle(ctx, id, domain.StatusFailed)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return id, domain.ErrInsufficientFunds
		}
		return id, fmt.Errorf("%w: debit: %v", domain.ErrProcessingFailed, err)
	}
	if err := e.adjust(ctx, req.ReceiverID, req.Amount); err != nil {
		// The applied debit is not reversed. The failed transaction
		// records the amount for out-of-band reconciliation.
		e.settle(ctx, id, domain.StatusFailed)
		return id, fmt.Errorf("%w: credit: %v", domain.ErrProcessingFailed, err)
	}

	// Phase 3: terminal status.
	if err := e.settle(ctx, id, domain.StatusCompleted); err != nil {
		// Both balance updates are applied; the record stays pending and
		// the settler sweep will resolve it.
		return id, fmt.Errorf("%w: settlement: %v", domain.ErrProcessingFailed, err)
	}

	slog.Info("transfer completed",
		"transaction_id", id,
		"sender_id", req.SenderID,
		"receiver_id", req.ReceiverID,
		"amount", req.Amount,
		"type", req.Type,
	)
	e.notify(ctx, "transfer.completed", id, req.SenderID, req.ReceiverID, req.Amount, req.Type)
	return id, nil
}

// Deposit credits external money into an account, recorded as a deposit
// transaction with no sender.
func (e *Engine) Deposit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (uuid.UUID, error) {
	return e.external(ctx, accountID, amount, description, domain.TypeDeposit)
}

// Withdraw debits money out of the system. The conditional adjust enforces
// no-overdraft even under concurrent withdrawals.
func (e *Engine) Withdraw(ctx context.Context, accountID uuid.UUID, amount int64, description string) (uuid.UUID, error) {
	return e.external(ctx, accountID, amount, description, domain.TypeWithdrawal)
}

func (e *Engine) external(ctx context.Context, accountID uuid.UUID, amount int64, description string, txType domain.TransactionType) (uuid.UUID, error) {
	if amount <= 0 {
		return uuid.Nil, domain.ErrInvalidAmount
	}
	if description == "" {
		return uuid.Nil, fmt.Errorf("%w: description is required", domain.ErrInvalidRequest)
	}
	acc, err := e.getAccount(ctx, accountID)
	if err != nil {
		return uuid.Nil, err
	}

	txn := &domain.Transaction{
		Amount:      amount,
		Description: description,
		Type:        txType,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	delta := amount
	if txType == domain.TypeWithdrawal {
		if acc.Balance < amount {
			return uuid.Nil, domain.ErrInsufficientFunds
		}
		txn.SenderID = accountID
		delta = -amount
	} else {
		txn.ReceiverID = accountID
	}

	id, err := e.insertPending(ctx, txn)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: could not record transaction: %v", domain.ErrProcessingFailed, err)
	}

	ctx = context.WithoutCancel(ctx)

	if err := e.adjust(ctx, accountID, delta); err != nil {
		e.settle(ctx, id, domain.StatusFailed)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return id, domain.ErrInsufficientFunds
		}
		return id, fmt.Errorf("%w: %v", domain.ErrProcessingFailed, err)
	}
	if err := e.settle(ctx, id, domain.StatusCompleted); err != nil {
		return id, fmt.Errorf("%w: settlement: %v", domain.ErrProcessingFailed, err)
	}

	slog.Info("external movement completed", "transaction_id", id, "account_id", accountID, "amount", amount, "type", txType)
	return id, nil
}

func (e *Engine) getAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	cctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	return e.store.GetAccount(cctx, id)
}

func (e *Engine) insertPending(ctx context.Context, txn *domain.Transaction) (uuid.UUID, error) {
	cctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	return e.store.InsertTransaction(cctx, txn)
}

func (e *Engine) adjust(ctx context.Context, accountID uuid.UUID, delta int64) error {
	cctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	return e.store.AdjustBalance(cctx, accountID, delta)
}

func (e *Engine) settle(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	cctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	if err := e.store.SettleTransaction(cctx, id, status); err != nil {
		slog.Error("failed to settle transaction", "transaction_id", id, "status", status, "error", err)
		return err
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, event string, txnID, senderID, receiverID uuid.UUID, amount int64, txType domain.TransactionType) {
	if e.webhookURL == "" {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event": event,
		"data": map[string]any{
			"transaction_id":   txnID,
			"sender_id":        senderID,
			"receiver_id":      receiverID,
			"amount":           amount,
			"currency":         domain.Currency,
			"transaction_type": txType,
			"timestamp":        time.Now().UTC(),
		},
	})
	if err != nil {
		slog.Error("failed to marshal webhook payload", "error", err)
		return
	}
	cctx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	if err := e.store.EnqueueWebhook(cctx, e.webhookURL, payload); err != nil {
		// Delivery is best-effort; the transfer result never depends on it.
		slog.Error("failed to queue webhook", "error", err, "transaction_id", txnID)
	}
}
