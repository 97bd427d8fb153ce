package decoder

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// paymentPayload is the wire shape carried by QR codes and NFC text
// records. Unknown fields are ignored; missing required fields reject the
// payload.
type paymentPayload struct {
	Type        string `json:"type"`
	ReceiverID  string `json:"receiverId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}

// QR decodes the text payload of a scanned payment QR code.
type QR struct{}

func (QR) Decode(senderID uuid.UUID, raw []byte) (domain.TransferRequest, error) {
	return decodePayload(senderID, raw, domain.TypeTransfer)
}

// NFC decodes the text record read from a payment NFC tag. Same payload
// shape and validation as QR; only the resulting transaction type differs.
type NFC struct{}

func (NFC) Decode(senderID uuid.UUID, raw []byte) (domain.TransferRequest, error) {
	return decodePayload(senderID, raw, domain.TypeNFC)
}

func decodePayload(senderID uuid.UUID, raw []byte, txType domain.TransactionType) (domain.TransferRequest, error) {
	var p paymentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.TransferRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if p.Type != "payment" {
		return domain.TransferRequest{}, fmt.Errorf("%w: type must be \"payment\", got %q", domain.ErrInvalidPayload, p.Type)
	}
	receiverID, err := uuid.Parse(p.ReceiverID)
	if err != nil {
		return domain.TransferRequest{}, fmt.Errorf("%w: bad receiver id", domain.ErrInvalidPayload)
	}
	if p.Amount <= 0 {
		return domain.TransferRequest{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidPayload)
	}
	if p.Description == "" {
		return domain.TransferRequest{}, fmt.Errorf("%w: description is required", domain.ErrInvalidPayload)
	}
	return domain.TransferRequest{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Amount:      p.Amount,
		Description: p.Description,
		Type:        txType,
	}, nil
}
