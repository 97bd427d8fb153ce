// Package decoder turns external payment signals into canonical transfer
// requests. Three sources exist (manual form, scanned QR code, NFC tag read)
// and they all normalize to the same domain.TransferRequest so the engine
// has a single entry point. Decoders never touch the ledger store, and the
// sender id always comes from the authenticated caller, never from the
// payload.
package decoder

import (
	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/domain"
)

type Decoder interface {
	Decode(senderID uuid.UUID, raw []byte) (domain.TransferRequest, error)
}
