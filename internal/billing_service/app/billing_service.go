package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/billing_service/repository"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BillingService struct {
	db                database.DB
	billingRepo       repository.BillingRepository
	transactionRepo   repository.TransactionRepository
	paymentIntentRepo repository.PaymentIntentRepository
	paymentGateway    domain.PaymentGatewayAdapter
	defaultCurrency   string
	logger            *slog.Logger
}

func NewBillingService(
	db database.DB,
	billingRepo repository.BillingRepository,
	transactionRepo repository.TransactionRepository,
	paymentIntentRepo repository.PaymentIntentRepository,
	paymentGateway domain.PaymentGatewayAdapter,
	defaultCurrency string,
	logger *slog.Logger,
) *BillingService {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &BillingService{
		db:                db,
		billingRepo:       billingRepo,
		transactionRepo:   transactionRepo,
		paymentIntentRepo: paymentIntentRepo,
		paymentGateway:    paymentGateway,
		defaultCurrency:   defaultCurrency,
		logger:            logger.With("service", "billing"),
	}
}

// EnsureAccount creates the billing row for a new account. Existing rows are left untouched.
func (s *BillingService) EnsureAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.billingRepo.Create(ctx, s.db, domain.NewBilling(accountID, s.defaultCurrency))
}

func (s *BillingService) GetBilling(ctx context.Context, accountID uuid.UUID) (*domain.Billing, error) {
	return s.billingRepo.Get(ctx, s.db, accountID)
}

// UnitPrice returns the account's price for one number of the given class.
func (s *BillingService) UnitPrice(ctx context.Context, q database.Querier, accountID uuid.UUID, class domain.PriceClass) (decimal.Decimal, error) {
	b, err := s.billingRepo.Get(ctx, q, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.UnitPrice(class)
}

// EnsureSufficientBalance is the pre-flight check run before any carrier call is made.
func (s *BillingService) EnsureSufficientBalance(ctx context.Context, q database.Querier, accountID uuid.UUID, class domain.PriceClass, quantity int) error {
	b, err := s.billingRepo.Get(ctx, q, accountID)
	if err != nil {
		return err
	}
	price, err := b.UnitPrice(class)
	if err != nil {
		return err
	}
	if !b.CanAfford(price.Mul(decimal.NewFromInt(int64(quantity)))) {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// ChargeForNumbers records a single number_purchase ledger entry for quantity numbers and
// decrements the balance. It must run inside the caller's transaction; the billing row is
// locked for the remainder of it. A zero quantity records nothing.
func (s *BillingService) ChargeForNumbers(ctx context.Context, q database.Querier, accountID uuid.UUID, class domain.PriceClass, quantity int, reference string) (*domain.Transaction, error) {
	if quantity == 0 {
		return nil, nil
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidAmount
	}

	b, err := s.billingRepo.GetForUpdate(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	price, err := b.UnitPrice(class)
	if err != nil {
		return nil, err
	}
	total := price.Mul(decimal.NewFromInt(int64(quantity)))
	if !b.CanAfford(total) {
		s.logger.WarnContext(ctx, "Insufficient balance for number purchase",
			"account_id", accountID, "balance", b.Balance.String(), "cost", total.String())
		return nil, domain.ErrInsufficientBalance
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		AccountID:     accountID,
		Type:          domain.TransactionTypeNumberPurchase,
		Amount:        total.Neg(),
		Quantity:      quantity,
		UnitPrice:     price,
		Currency:      b.Currency,
		Description:   fmt.Sprintf("Purchase of %d %s number(s)", quantity, class),
		BalanceBefore: b.Balance,
		BalanceAfter:  b.Balance.Sub(total),
		CreatedAt:     time.Now().UTC(),
	}
	if reference != "" {
		txn.ReferenceID = &reference
	}
	if err := s.applyTransaction(ctx, q, txn); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Charged for numbers", "account_id", accountID, "quantity", quantity,
		"amount", total.String(), "balance_after", txn.BalanceAfter.String())
	return txn, nil
}

func (s *BillingService) applyTransaction(ctx context.Context, q database.Querier, txn *domain.Transaction) error {
	if err := s.transactionRepo.Create(ctx, q, txn); err != nil {
		return fmt.Errorf("recording transaction: %w", err)
	}
	if err := s.billingRepo.UpdateBalance(ctx, q, txn.AccountID, txn.BalanceAfter); err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	return nil
}

// Credit adds amount to the balance in its own transaction.
func (s *BillingService) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType, description, reference string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	var txn *domain.Transaction
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		txn, err = s.credit(ctx, tx, accountID, amount, txType, description, reference)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *BillingService) credit(ctx context.Context, q database.Querier, accountID uuid.UUID, amount decimal.Decimal, txType domain.TransactionType, description, reference string) (*domain.Transaction, error) {
	b, err := s.billingRepo.GetForUpdate(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	txn := &domain.Transaction{
		ID:            uuid.New(),
		AccountID:     accountID,
		Type:          txType,
		Amount:        amount,
		UnitPrice:     decimal.Zero,
		Currency:      b.Currency,
		Description:   description,
		BalanceBefore: b.Balance,
		BalanceAfter:  b.Balance.Add(amount),
		CreatedAt:     time.Now().UTC(),
	}
	if reference != "" {
		txn.ReferenceID = &reference
	}
	if err := s.applyTransaction(ctx, q, txn); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Balance credited", "account_id", accountID, "type", txType, "amount", amount.String())
	return txn, nil
}

func (s *BillingService) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.transactionRepo.ListByAccountID(ctx, s.db, accountID, limit, offset)
}

// CreatePaymentIntent starts a top-up through the payment gateway.
func (s *BillingService) CreatePaymentIntent(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, currency string) (*domain.PaymentIntent, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := time.Now().UTC()
	pi := &domain.PaymentIntent{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Currency:  currency,
		Status:    domain.PaymentIntentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.paymentIntentRepo.Create(ctx, s.db, pi); err != nil {
		return nil, fmt.Errorf("saving payment intent: %w", err)
	}

	resp, gwErr := s.paymentGateway.CreatePaymentIntent(ctx, domain.CreateIntentRequest{
		AccountID:   accountID,
		Amount:      amount,
		Currency:    currency,
		Description: "Balance top-up " + pi.ID.String(),
	})
	if resp != nil {
		if resp.GatewayPaymentIntentID != "" {
			gwID := resp.GatewayPaymentIntentID
			pi.GatewayPaymentIntentID = &gwID
		}
		pi.GatewayClientSecret = resp.ClientSecret
		pi.Status = resp.Status
		pi.ErrorMessage = resp.ErrorMessage
	}
	if gwErr != nil {
		pi.Status = domain.PaymentIntentStatusFailed
		if pi.ErrorMessage == nil {
			msg := gwErr.Error()
			pi.ErrorMessage = &msg
		}
	}
	if err := s.paymentIntentRepo.Update(ctx, s.db, pi); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update payment intent after gateway call", "error", err, "payment_intent_id", pi.ID)
		return nil, err
	}
	if gwErr != nil {
		s.logger.ErrorContext(ctx, "Payment gateway rejected intent", "error", gwErr, "payment_intent_id", pi.ID)
		return pi, fmt.Errorf("%w: %v", domain.ErrPaymentGateway, gwErr)
	}
	return pi, nil
}

// HandlePaymentWebhook verifies and applies a gateway event. Succeeded events credit the balance
// exactly once per payment intent; redeliveries of final states are acknowledged without effect.
func (s *BillingService) HandlePaymentWebhook(ctx context.Context, rawPayload []byte, signature string) error {
	event, err := s.paymentGateway.HandleWebhookEvent(ctx, rawPayload, signature)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		pi, err := s.paymentIntentRepo.GetByGatewayIDForUpdate(ctx, tx, event.GatewayPaymentIntentID)
		if err != nil {
			return err
		}
		if pi.IsFinal() {
			s.logger.InfoContext(ctx, "Ignoring webhook for finalised payment intent",
				"payment_intent_id", pi.ID, "status", pi.Status)
			return nil
		}

		switch event.Status {
		case domain.PaymentIntentStatusSucceeded:
			amount := pi.Amount
			if event.AmountReceived.IsPositive() {
				amount = event.AmountReceived
			}
			if _, err := s.credit(ctx, tx, pi.AccountID, amount, domain.TransactionTypeCreditTopUp,
				"Balance top-up", pi.ID.String()); err != nil {
				return err
			}
			pi.Status = domain.PaymentIntentStatusSucceeded
		case domain.PaymentIntentStatusFailed:
			reason := event.FailureReason
			pi.Status = domain.PaymentIntentStatusFailed
			pi.ErrorMessage = &reason
		default:
			pi.Status = event.Status
		}
		return s.paymentIntentRepo.Update(ctx, tx, pi)
	})
}
