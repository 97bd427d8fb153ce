// Package stats derives spend/income summaries from the ledger.
package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// Reader is the slice of the ledger store the aggregator needs. Both query
// methods return completed transactions only, within [start, end] inclusive.
type Reader interface {
	CompletedBySender(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error)
	CompletedByReceiver(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error)
}

// Statistics summarizes an account's activity over a window.
//
// Categories merges inbound and outbound amounts under one key per
// transaction type: an incoming 300 "transfer" and an outgoing 50 "transfer"
// both land in Categories["transfer"]. Income and expenses are NOT split per
// category; that matches the product's historical accounting.
type Statistics struct {
	TotalIncome       int64                            `json:"total_income"`
	TotalExpenses     int64                            `json:"total_expenses"`
	TotalTransactions int                              `json:"total_transactions"`
	Categories        map[domain.TransactionType]int64 `json:"categories"`
}

type Aggregator struct {
	store Reader
}

func NewAggregator(store Reader) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate is a pure function of the completed-transaction set in range:
// no side effects, safe to recompute on demand.
func (a *Aggregator) Aggregate(ctx context.Context, accountID uuid.UUID, start, end time.Time) (*Statistics, error) {
	var credits, debits []domain.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		credits, err = a.store.CompletedByReceiver(gctx, accountID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		debits, err = a.store.CompletedBySender(gctx, accountID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Statistics{Categories: make(map[domain.TransactionType]int64)}
	for _, txn := range credits {
		out.TotalIncome += txn.Amount
		out.Categories[txn.Type] += txn.Amount
		out.TotalTransactions++
	}
	for _, txn := range debits {
		out.TotalExpenses += txn.Amount
		out.Categories[txn.Type] += txn.Amount
		out.TotalTransactions++
	}
	return out, nil
}
