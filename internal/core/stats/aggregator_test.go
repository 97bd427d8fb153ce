package stats

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

func seedTransaction(t *testing.T, store *storage.MemoryStore, txn domain.Transaction) {
	t.Helper()
	if _, err := store.InsertTransaction(context.Background(), &txn); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}
}

func TestAggregateWeekWindow(t *testing.T) {
	store := storage.NewMemoryStore()
	account := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()

	// One incoming completed transfer of 300 and one outgoing completed
	// NFC payment of 50 within the last 7 days.
	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 300,
		Description: "rent share", Type: domain.TypeTransfer,
		Status: domain.StatusCompleted, CreatedAt: now.Add(-48 * time.Hour),
	})
	seedTransaction(t, store, domain.Transaction{
		SenderID: account, ReceiverID: other, Amount: 50,
		Description: "coffee", Type: domain.TypeNFC,
		Status: domain.StatusCompleted, CreatedAt: now.Add(-24 * time.Hour),
	})

	agg := NewAggregator(store)
	got, err := agg.Aggregate(context.Background(), account, now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	want := &Statistics{
		TotalIncome:       300,
		TotalExpenses:     50,
		TotalTransactions: 2,
		Categories: map[domain.TransactionType]int64{
			domain.TypeTransfer: 300,
			domain.TypeNFC:      50,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregateMergesDirectionsPerCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	account := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()

	// Inbound and outbound amounts of the same type land in one bucket.
	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 200,
		Description: "in", Type: domain.TypeTransfer,
		Status: domain.StatusCompleted, CreatedAt: now.Add(-time.Hour),
	})
	seedTransaction(t, store, domain.Transaction{
		SenderID: account, ReceiverID: other, Amount: 75,
		Description: "out", Type: domain.TypeTransfer,
		Status: domain.StatusCompleted, CreatedAt: now.Add(-time.Hour),
	})

	agg := NewAggregator(store)
	got, err := agg.Aggregate(context.Background(), account, now.AddDate(0, 0, -1), now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if got.Categories[domain.TypeTransfer] != 275 {
		t.Errorf("categories[transfer] = %d, want 275 (income and expense merged)", got.Categories[domain.TypeTransfer])
	}
	if got.TotalIncome != 200 || got.TotalExpenses != 75 {
		t.Errorf("income/expenses = %d/%d, want 200/75", got.TotalIncome, got.TotalExpenses)
	}
}

func TestAggregateExcludesNonCompletedAndOutOfRange(t *testing.T) {
	store := storage.NewMemoryStore()
	account := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -7)

	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 100,
		Description: "pending", Type: domain.TypeTransfer,
		Status: domain.StatusPending, CreatedAt: now.Add(-time.Hour),
	})
	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 100,
		Description: "failed", Type: domain.TypeTransfer,
		Status: domain.StatusFailed, CreatedAt: now.Add(-time.Hour),
	})
	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 100,
		Description: "ancient", Type: domain.TypeTransfer,
		Status: domain.StatusCompleted, CreatedAt: now.AddDate(0, 0, -30),
	})
	// Exactly on the boundaries: both inclusive.
	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 10,
		Description: "at start", Type: domain.TypeTransfer,
		Status: domain.StatusCompleted, CreatedAt: start,
	})
	seedTransaction(t, store, domain.Transaction{
		SenderID: other, ReceiverID: account, Amount: 20,
		Description: "at end", Type: domain.TypeTransfer,
		Status: domain.StatusCompleted, CreatedAt: now,
	})

	agg := NewAggregator(store)
	got, err := agg.Aggregate(context.Background(), account, start, now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if got.TotalIncome != 30 || got.TotalTransactions != 2 {
		t.Errorf("income = %d, transactions = %d; want 30 and 2", got.TotalIncome, got.TotalTransactions)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	account := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		seedTransaction(t, store, domain.Transaction{
			SenderID: account, ReceiverID: other, Amount: int64(10 * (i + 1)),
			Description: "spend", Type: domain.TypeTransfer,
			Status: domain.StatusCompleted, CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}

	agg := NewAggregator(store)
	first, err := agg.Aggregate(context.Background(), account, now.AddDate(0, 0, -1), now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	second, err := agg.Aggregate(context.Background(), account, now.AddDate(0, 0, -1), now)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs: %+v vs %+v", first, second)
	}
}

func TestAggregateEmptyWindow(t *testing.T) {
	store := storage.NewMemoryStore()
	agg := NewAggregator(store)

	got, err := agg.Aggregate(context.Background(), uuid.New(), time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if got.TotalIncome != 0 || got.TotalExpenses != 0 || got.TotalTransactions != 0 || len(got.Categories) != 0 {
		t.Errorf("empty window produced %+v", got)
	}
}
