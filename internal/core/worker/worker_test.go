package worker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/adapter/storage"
	"github.com/caotrungduc03/banking-app/internal/core/domain"
	"github.com/caotrungduc03/banking-app/internal/core/notifications"
)

func TestSweepFailsStalePending(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	stale, _ := store.InsertTransaction(ctx, &domain.Transaction{
		SenderID: uuid.New(), ReceiverID: uuid.New(), Amount: 10,
		Description: "orphaned", Type: domain.TypeTransfer,
		Status: domain.StatusPending, CreatedAt: now.Add(-10 * time.Minute),
	})
	fresh, _ := store.InsertTransaction(ctx, &domain.Transaction{
		SenderID: uuid.New(), ReceiverID: uuid.New(), Amount: 10,
		Description: "in flight", Type: domain.TypeTransfer,
		Status: domain.StatusPending, CreatedAt: now,
	})
	done, _ := store.InsertTransaction(ctx, &domain.Transaction{
		SenderID: uuid.New(), ReceiverID: uuid.New(), Amount: 10,
		Description: "done", Type: domain.TypeTransfer,
		Status: domain.StatusPending, CreatedAt: now.Add(-10 * time.Minute),
	})
	if err := store.SettleTransaction(ctx, done, domain.StatusCompleted); err != nil {
		t.Fatalf("settle: %v", err)
	}

	sweep(store)

	for _, tc := range []struct {
		id   uuid.UUID
		want domain.TransactionStatus
	}{
		{stale, domain.StatusFailed},
		{fresh, domain.StatusPending},
		{done, domain.StatusCompleted},
	} {
		txn, err := store.GetTransaction(ctx, tc.id)
		if err != nil {
			t.Fatalf("GetTransaction: %v", err)
		}
		if txn.Status != tc.want {
			t.Errorf("transaction %s status = %q, want %q", tc.id, txn.Status, tc.want)
		}
	}
}

func TestDispatchDeliversSignedWebhook(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Webhook-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := storage.NewMemoryStore()
	ctx := context.Background()
	payload := []byte(`{"event":"transfer.completed"}`)
	if err := store.EnqueueWebhook(ctx, srv.URL, payload); err != nil {
		t.Fatalf("EnqueueWebhook: %v", err)
	}

	dispatch(store, "shh")

	if string(gotBody) != string(payload) {
		t.Errorf("delivered body = %q", gotBody)
	}
	if want := notifications.Sign(payload, "shh"); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
	if _, err := store.NextWebhookJob(ctx); !errors.Is(err, storage.ErrNoJob) {
		t.Errorf("job not marked completed: %v", err)
	}
}

func TestDispatchReschedulesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := storage.NewMemoryStore()
	ctx := context.Background()
	if err := store.EnqueueWebhook(ctx, srv.URL, []byte(`{}`)); err != nil {
		t.Fatalf("EnqueueWebhook: %v", err)
	}

	dispatch(store, "shh")

	// Backoff pushed the retry into the future, so nothing is due now.
	if _, err := store.NextWebhookJob(ctx); !errors.Is(err, storage.ErrNoJob) {
		t.Errorf("failed job still due immediately: %v", err)
	}
}
