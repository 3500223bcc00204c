package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, pool_id, phone_number_id, session_key, source, medium, campaign, content, keyword,
	landing_url, referrer, number_format, assigned_at, last_activity_at, expires_at`

type PgKeywordSessionRepository struct {
	logger *slog.Logger
}

func NewPgKeywordSessionRepository(logger *slog.Logger) *PgKeywordSessionRepository {
	return &PgKeywordSessionRepository{logger: logger}
}

func scanSession(row pgx.Row) (*domain.KeywordSession, error) {
	s := &domain.KeywordSession{}
	err := row.Scan(&s.ID, &s.PoolID, &s.PhoneNumberID, &s.SessionKey, &s.Source, &s.Medium, &s.Campaign, &s.Content,
		&s.Keyword, &s.LandingURL, &s.Referrer, &s.NumberFormat, &s.AssignedAt, &s.LastActivityAt, &s.ExpiresAt)
	return s, err
}

func (r *PgKeywordSessionRepository) Upsert(ctx context.Context, q database.Querier, s *domain.KeywordSession) error {
	query := `INSERT INTO keyword_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (pool_id, session_key) DO UPDATE SET
			id = EXCLUDED.id, phone_number_id = EXCLUDED.phone_number_id, source = EXCLUDED.source,
			medium = EXCLUDED.medium, campaign = EXCLUDED.campaign, content = EXCLUDED.content,
			keyword = EXCLUDED.keyword, landing_url = EXCLUDED.landing_url, referrer = EXCLUDED.referrer,
			number_format = EXCLUDED.number_format, assigned_at = EXCLUDED.assigned_at,
			last_activity_at = EXCLUDED.last_activity_at, expires_at = EXCLUDED.expires_at`
	_, err := q.Exec(ctx, query, s.ID, s.PoolID, s.PhoneNumberID, s.SessionKey, s.Source, s.Medium, s.Campaign,
		s.Content, s.Keyword, s.LandingURL, s.Referrer, s.NumberFormat, s.AssignedAt, s.LastActivityAt, s.ExpiresAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error saving keyword session", "error", err, "pool_id", s.PoolID)
	}
	return err
}

func (r *PgKeywordSessionRepository) GetActiveByKey(ctx context.Context, q database.Querier, poolID uuid.UUID, sessionKey string, now time.Time) (*domain.KeywordSession, error) {
	s, err := scanSession(q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM keyword_sessions
		WHERE pool_id = $1 AND session_key = $2 AND expires_at > $3`, poolID, sessionKey, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *PgKeywordSessionRepository) Touch(ctx context.Context, q database.Querier, id uuid.UUID, at, expiresAt time.Time) error {
	tag, err := q.Exec(ctx, `UPDATE keyword_sessions SET last_activity_at = $1, expires_at = $2 WHERE id = $3`, at, expiresAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgKeywordSessionRepository) ListByPool(ctx context.Context, q database.Querier, poolID uuid.UUID, activeAt *time.Time, limit int) ([]*domain.KeywordSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM keyword_sessions
		WHERE pool_id = $1 AND ($2::timestamptz IS NULL OR expires_at > $2)
		ORDER BY last_activity_at DESC LIMIT $3`
	rows, err := q.Query(ctx, query, poolID, activeAt, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing keyword sessions", "error", err, "pool_id", poolID)
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.KeywordSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PgKeywordSessionRepository) DeleteByPool(ctx context.Context, q database.Querier, poolID uuid.UUID) error {
	_, err := q.Exec(ctx, `DELETE FROM keyword_sessions WHERE pool_id = $1`, poolID)
	return err
}
