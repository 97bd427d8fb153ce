package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/caotrungduc03/banking-app/internal/core/auth"
	"github.com/caotrungduc03/banking-app/internal/core/decoder"
	"github.com/caotrungduc03/banking-app/internal/core/domain"
	"github.com/caotrungduc03/banking-app/internal/core/engine"
)

type TransferHandler struct {
	Engine *engine.Engine
	Auth   auth.Authenticator
}

// Transfer executes a manual transfer submitted through the send-money form.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	return h.decodeAndTransfer(c, decoder.Form{})
}

// TransferQR executes a transfer from a scanned QR payment code.
// The request body is the raw text payload of the code.
func (h *TransferHandler) TransferQR(c *fiber.Ctx) error {
	return h.decodeAndTransfer(c, decoder.QR{})
}

// TransferNFC executes a tap-to-pay transfer from an NFC tag read. The
// sender must pass biometric verification before any money moves.
func (h *TransferHandler) TransferNFC(c *fiber.Ctx) error {
	senderID, ok := callerID(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	verified, err := h.Auth.Verify(c.Context(), senderID)
	if err != nil {
		slog.Error("Biometric verification error", "error", err, "account_id", senderID)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "Verification unavailable"})
	}
	if !verified {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Biometric verification failed"})
	}

	return h.decodeAndTransfer(c, decoder.NFC{})
}

func (h *TransferHandler) decodeAndTransfer(c *fiber.Ctx, dec decoder.Decoder) error {
	senderID, ok := callerID(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req, err := dec.Decode(senderID, c.Body())
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   reasonFor(err),
		})
	}

	id, err := h.Engine.Transfer(c.Context(), req)
	return writeTransferResult(c, id, err)
}

// DepositRequest and WithdrawRequest move money in and out of the system.
type DepositRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *TransferHandler) Deposit(c *fiber.Ctx) error {
	accountID, ok := callerID(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Description == "" {
		req.Description = "Manual deposit"
	}

	id, err := h.Engine.Deposit(c.Context(), accountID, req.Amount, req.Description)
	return writeTransferResult(c, id, err)
}

func (h *TransferHandler) Withdraw(c *fiber.Ctx) error {
	accountID, ok := callerID(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Description == "" {
		req.Description = "Manual withdrawal"
	}

	id, err := h.Engine.Withdraw(c.Context(), accountID, req.Amount, req.Description)
	return writeTransferResult(c, id, err)
}

func callerID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("account_id").(uuid.UUID)
	return id, ok
}

// writeTransferResult maps engine results to the wire shape
// {success, transaction_id?, error?}.
func writeTransferResult(c *fiber.Ctx, id uuid.UUID, err error) error {
	if err == nil {
		return c.JSON(fiber.Map{
			"success":        true,
			"transaction_id": id,
		})
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrProcessingFailed):
		status = http.StatusInternalServerError
	}

	body := fiber.Map{
		"success": false,
		"error":   reasonFor(err),
	}
	// A failure after the pending insert still has a transaction id; the
	// failed record is the caller's evidence.
	if id != uuid.Nil {
		body["transaction_id"] = id
	}
	return c.Status(status).JSON(body)
}

// reasonFor turns the error taxonomy into the human-readable strings the
// clients display.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "Account not found"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "Cannot transfer to the same account"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Amount must be positive"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "Invalid payment payload"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "Invalid transfer request"
	case errors.Is(err, domain.ErrProcessingFailed):
		return "Transfer processing failed"
	default:
		return "Transfer failed"
	}
}
