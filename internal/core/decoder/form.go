package decoder

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

// formInput is the body of a manual transfer submitted through the app's
// send-money form. The input is already structurally typed; only field
// validation happens here.
type formInput struct {
	ReceiverID  string `json:"receiver_id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// Form decodes a manual transfer form submission.
type Form struct{}

func (Form) Decode(senderID uuid.UUID, raw []byte) (domain.TransferRequest, error) {
	var in formInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return domain.TransferRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	receiverID, err := uuid.Parse(in.ReceiverID)
	if err != nil {
		return domain.TransferRequest{}, fmt.Errorf("%w: bad receiver id", domain.ErrInvalidRequest)
	}
	if in.Amount <= 0 {
		return domain.TransferRequest{}, domain.ErrInvalidAmount
	}
	if in.Description == "" {
		return domain.TransferRequest{}, fmt.Errorf("%w: description is required", domain.ErrInvalidRequest)
	}
	return domain.TransferRequest{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Amount:      in.Amount,
		Description: in.Description,
		Type:        domain.TypeTransfer,
	}, nil
}
