package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "0.00 TZS"},
		{5, "0.05 TZS"},
		{1050, "10.50 TZS"},
		{123450, "1,234.50 TZS"},
		{100000000, "1,000,000.00 TZS"},
		{-1050, "-10.50 TZS"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.minor); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.minor, got, tt.want)
		}
	}
}

func TestTransferRequestValidate(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	valid := TransferRequest{SenderID: a, ReceiverID: b, Amount: 10, Description: "x", Type: TypeTransfer}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*TransferRequest)
		wantErr error
	}{
		{"zero amount", func(r *TransferRequest) { r.Amount = 0 }, ErrInvalidAmount},
		{"blank description", func(r *TransferRequest) { r.Description = " " }, ErrInvalidRequest},
		{"nil sender", func(r *TransferRequest) { r.SenderID = uuid.Nil }, ErrInvalidRequest},
		{"self transfer", func(r *TransferRequest) { r.ReceiverID = a }, ErrSelfTransfer},
		{"deposit type", func(r *TransferRequest) { r.Type = TypeDeposit }, ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if err := req.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed and failed must be terminal")
	}
}
