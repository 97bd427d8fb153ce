package decoder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

func TestQRDecode(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	raw := []byte(fmt.Sprintf(
		`{"type":"payment","receiverId":"%s","amount":25,"description":"coffee","timestamp":1735000000}`,
		receiver))

	req, err := QR{}.Decode(sender, raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.SenderID != sender {
		t.Errorf("sender = %s, want the authenticated caller %s", req.SenderID, sender)
	}
	if req.ReceiverID != receiver || req.Amount != 25 || req.Description != "coffee" {
		t.Errorf("request = %+v", req)
	}
	if req.Type != domain.TypeTransfer {
		t.Errorf("type = %q, want %q", req.Type, domain.TypeTransfer)
	}
}

func TestNFCDecodeSetsNFCType(t *testing.T) {
	receiver := uuid.New()
	raw := []byte(fmt.Sprintf(
		`{"type":"payment","receiverId":"%s","amount":100,"description":"tap"}`,
		receiver))

	req, err := NFC{}.Decode(uuid.New(), raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.Type != domain.TypeNFC {
		t.Errorf("type = %q, want %q", req.Type, domain.TypeNFC)
	}
}

func TestPayloadDecodeRejections(t *testing.T) {
	receiver := uuid.New()

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `scan me`},
		{"wrong type", fmt.Sprintf(`{"type":"invoice","receiverId":"%s","amount":25,"description":"x"}`, receiver)},
		{"missing type", fmt.Sprintf(`{"receiverId":"%s","amount":25,"description":"x"}`, receiver)},
		{"missing receiver", `{"type":"payment","amount":25,"description":"x"}`},
		{"garbage receiver", `{"type":"payment","receiverId":"not-a-uuid","amount":25,"description":"x"}`},
		{"zero amount", fmt.Sprintf(`{"type":"payment","receiverId":"%s","amount":0,"description":"x"}`, receiver)},
		{"negative amount", fmt.Sprintf(`{"type":"payment","receiverId":"%s","amount":-5,"description":"x"}`, receiver)},
		{"fractional amount", fmt.Sprintf(`{"type":"payment","receiverId":"%s","amount":9.99,"description":"x"}`, receiver)},
		{"missing description", fmt.Sprintf(`{"type":"payment","receiverId":"%s","amount":25}`, receiver)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (QR{}).Decode(uuid.New(), []byte(tt.raw)); !errors.Is(err, domain.ErrInvalidPayload) {
				t.Errorf("err = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestPayloadDecodeIgnoresUnknownFields(t *testing.T) {
	receiver := uuid.New()
	raw := []byte(fmt.Sprintf(
		`{"type":"payment","receiverId":"%s","amount":25,"description":"x","color":"teal","v":2}`,
		receiver))

	if _, err := (QR{}).Decode(uuid.New(), raw); err != nil {
		t.Errorf("unknown fields must be ignored, got %v", err)
	}
}

func TestPayloadSenderNeverTrustedFromPayload(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	// A hostile payload claiming a different sender.
	raw := []byte(fmt.Sprintf(
		`{"type":"payment","receiverId":"%s","amount":25,"description":"x","senderId":"%s"}`,
		receiver, uuid.New()))

	req, err := QR{}.Decode(sender, raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.SenderID != sender {
		t.Errorf("sender = %s, want the authenticated caller %s", req.SenderID, sender)
	}
}

func TestFormDecode(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()

	raw := []byte(fmt.Sprintf(`{"receiver_id":"%s","amount":1500,"description":"rent"}`, receiver))
	req, err := Form{}.Decode(sender, raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if req.SenderID != sender || req.ReceiverID != receiver || req.Amount != 1500 {
		t.Errorf("request = %+v", req)
	}
	if req.Type != domain.TypeTransfer {
		t.Errorf("type = %q, want %q", req.Type, domain.TypeTransfer)
	}
}

func TestFormDecodeRejections(t *testing.T) {
	receiver := uuid.New()

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"not json", `hello`, domain.ErrInvalidRequest},
		{"bad receiver", `{"receiver_id":"nope","amount":10,"description":"x"}`, domain.ErrInvalidRequest},
		{"zero amount", fmt.Sprintf(`{"receiver_id":"%s","amount":0,"description":"x"}`, receiver), domain.ErrInvalidAmount},
		{"empty description", fmt.Sprintf(`{"receiver_id":"%s","amount":10,"description":""}`, receiver), domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (Form{}).Decode(uuid.New(), []byte(tt.raw)); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
