package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType defines the nature of a ledger entry.
type TransactionType string

const (
	TransactionTypeNumberPurchase   TransactionType = "number_purchase"
	TransactionTypeCreditTopUp      TransactionType = "credit_top_up"
	TransactionTypeRefund           TransactionType = "refund"
	TransactionTypeManualAdjustment TransactionType = "manual_adjustment"
)

// Transaction is an append-only ledger entry. Amount is negative for debits.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description,omitempty"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}
