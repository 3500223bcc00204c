package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calltrack/golang_services/internal/export_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

// exportLimit caps one file; larger data sets need a date filter.
const exportLimit = 50000

type exportQuery struct {
	header []string
	sql    string
	// byAccount scopes the query to the account instead of the company.
	byAccount bool
}

// Every column is cast to text so rows scan straight into CSV records.
var exportQueries = map[domain.ExportKind]exportQuery{
	domain.KindPhoneNumbers: {
		header: []string{"ID", "Number", "Type", "Name", "PoolID", "CampaignID", "ForwardTo", "Status", "PurchasedAt"},
		sql: `SELECT id::text, '+' || country_code || number, type, name, COALESCE(pool_id::text, ''),
				COALESCE(campaign_id::text, ''), forward_to_number, status, to_char(purchased_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
			FROM phone_numbers WHERE company_id = $1 AND status <> 'deleted'
			ORDER BY purchased_at ASC LIMIT $2`,
	},
	domain.KindContacts: {
		header: []string{"ID", "Number", "FirstName", "LastName", "Email", "City", "State", "Zip", "CreatedAt"},
		sql: `SELECT id::text, '+' || country_code || number, first_name, last_name, email, city, state, zip,
				to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
			FROM contacts WHERE company_id = $1 AND deleted_at IS NULL
			ORDER BY last_name ASC, first_name ASC LIMIT $2`,
	},
	domain.KindTransactions: {
		header: []string{"ID", "Type", "Amount", "Quantity", "UnitPrice", "Currency", "Description", "BalanceAfter", "CreatedAt"},
		sql: `SELECT id::text, type, amount::text, quantity::text, unit_price::text, currency, description,
				balance_after::text, to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSOF')
			FROM transactions WHERE account_id = $1
			ORDER BY created_at ASC LIMIT $2`,
		byAccount: true,
	},
}

type PgExportSource struct {
	logger *slog.Logger
}

func NewPgExportSource(logger *slog.Logger) *PgExportSource {
	return &PgExportSource{logger: logger.With("component", "export_source_pg")}
}

func (s *PgExportSource) Rows(ctx context.Context, q database.Querier, accountID, companyID uuid.UUID, kind domain.ExportKind) ([]string, [][]string, error) {
	eq, ok := exportQueries[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidExport, kind)
	}
	scope := companyID
	if eq.byAccount {
		scope = accountID
	}

	rows, err := q.Query(ctx, eq.sql, scope, exportLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error querying export rows", "error", err, "kind", kind)
		return nil, nil, err
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		record := make([]string, len(eq.header))
		dest := make([]any, len(record))
		for i := range record {
			dest[i] = &record[i]
		}
		if err := rows.Scan(dest...); err != nil {
			s.logger.ErrorContext(ctx, "Error scanning export row", "error", err, "kind", kind)
			return nil, nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return eq.header, records, nil
}
