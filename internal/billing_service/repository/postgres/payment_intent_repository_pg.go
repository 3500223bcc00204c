package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/jackc/pgx/v5"
)

type PgPaymentIntentRepository struct {
	logger *slog.Logger
}

func NewPgPaymentIntentRepository(logger *slog.Logger) *PgPaymentIntentRepository {
	return &PgPaymentIntentRepository{logger: logger}
}

func (r *PgPaymentIntentRepository) Create(ctx context.Context, q database.Querier, pi *domain.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (id, account_id, amount, currency, status, gateway_payment_intent_id,
			gateway_client_secret, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query, pi.ID, pi.AccountID, pi.Amount, pi.Currency, pi.Status, pi.GatewayPaymentIntentID,
		pi.GatewayClientSecret, pi.ErrorMessage, pi.CreatedAt, pi.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating payment intent", "error", err, "payment_intent_id", pi.ID)
		return err
	}
	return nil
}

func (r *PgPaymentIntentRepository) GetByGatewayIDForUpdate(ctx context.Context, q database.Querier, gatewayID string) (*domain.PaymentIntent, error) {
	query := `
		SELECT id, account_id, amount, currency, status, gateway_payment_intent_id, gateway_client_secret,
			error_message, created_at, updated_at
		FROM payment_intents WHERE gateway_payment_intent_id = $1
		FOR UPDATE
	`
	pi := &domain.PaymentIntent{}
	err := q.QueryRow(ctx, query, gatewayID).Scan(&pi.ID, &pi.AccountID, &pi.Amount, &pi.Currency, &pi.Status,
		&pi.GatewayPaymentIntentID, &pi.GatewayClientSecret, &pi.ErrorMessage, &pi.CreatedAt, &pi.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentIntentNotFound
		}
		r.logger.ErrorContext(ctx, "Error loading payment intent", "error", err, "gateway_payment_intent_id", gatewayID)
		return nil, err
	}
	return pi, nil
}

func (r *PgPaymentIntentRepository) Update(ctx context.Context, q database.Querier, pi *domain.PaymentIntent) error {
	pi.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE payment_intents SET status = $1, gateway_payment_intent_id = $2, gateway_client_secret = $3,
			error_message = $4, updated_at = $5
		WHERE id = $6
	`
	tag, err := q.Exec(ctx, query, pi.Status, pi.GatewayPaymentIntentID, pi.GatewayClientSecret, pi.ErrorMessage, pi.UpdatedAt, pi.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating payment intent", "error", err, "payment_intent_id", pi.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentIntentNotFound
	}
	return nil
}
