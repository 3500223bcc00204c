package postgres

import (
	"context"
	"log/slog"

	"github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

type PgTransactionRepository struct {
	logger *slog.Logger
}

func NewPgTransactionRepository(logger *slog.Logger) *PgTransactionRepository {
	return &PgTransactionRepository{logger: logger}
}

func (r *PgTransactionRepository) Create(ctx context.Context, q database.Querier, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, type, amount, quantity, unit_price, currency, description,
			reference_id, balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := q.Exec(ctx, query,
		txn.ID, txn.AccountID, txn.Type, txn.Amount, txn.Quantity, txn.UnitPrice, txn.Currency, txn.Description,
		txn.ReferenceID, txn.BalanceBefore, txn.BalanceAfter, txn.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error creating transaction", "error", err, "account_id", txn.AccountID)
		return err
	}
	return nil
}

// ListByAccountID returns a page of ledger entries, newest first, and the total count.
func (r *PgTransactionRepository) ListByAccountID(ctx context.Context, q database.Querier, accountID uuid.UUID, limit, offset int) ([]*domain.Transaction, int, error) {
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		r.logger.ErrorContext(ctx, "Error counting transactions", "error", err, "account_id", accountID)
		return nil, 0, err
	}

	query := `
		SELECT id, account_id, type, amount, quantity, unit_price, currency, description,
			reference_id, balance_before, balance_after, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing transactions", "error", err, "account_id", accountID)
		return nil, 0, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		t := &domain.Transaction{}
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Quantity, &t.UnitPrice, &t.Currency,
			&t.Description, &t.ReferenceID, &t.BalanceBefore, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		txns = append(txns, t)
	}
	return txns, total, rows.Err()
}
