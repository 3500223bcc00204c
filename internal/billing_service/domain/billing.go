package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceClass selects which per-number price applies to a purchase.
type PriceClass string

const (
	PriceClassLocal    PriceClass = "local"
	PriceClassTollFree PriceClass = "toll_free"
)

// Billing is the per-account balance and price sheet.
type Billing struct {
	AccountID           uuid.UUID       `json:"account_id"`
	Balance             decimal.Decimal `json:"balance"`
	Currency            string          `json:"currency"`
	LocalNumberPrice    decimal.Decimal `json:"local_number_price"`
	TollFreeNumberPrice decimal.Decimal `json:"toll_free_number_price"`
	ExternalCustomerID  *string         `json:"external_customer_id,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

var (
	DefaultLocalNumberPrice    = decimal.NewFromInt(3)
	DefaultTollFreeNumberPrice = decimal.NewFromInt(5)
)

// NewBilling returns a zero-balance record with the default price sheet.
func NewBilling(accountID uuid.UUID, currency string) *Billing {
	return &Billing{
		AccountID:           accountID,
		Balance:             decimal.Zero,
		Currency:            currency,
		LocalNumberPrice:    DefaultLocalNumberPrice,
		TollFreeNumberPrice: DefaultTollFreeNumberPrice,
		UpdatedAt:           time.Now().UTC(),
	}
}

// UnitPrice returns the price of one number of the given class.
func (b *Billing) UnitPrice(class PriceClass) (decimal.Decimal, error) {
	switch class {
	case PriceClassLocal:
		return b.LocalNumberPrice, nil
	case PriceClassTollFree:
		return b.TollFreeNumberPrice, nil
	default:
		return decimal.Zero, ErrUnknownPriceClass
	}
}

// CanAfford reports whether the balance covers amount.
func (b *Billing) CanAfford(amount decimal.Decimal) bool {
	return b.Balance.GreaterThanOrEqual(amount)
}
