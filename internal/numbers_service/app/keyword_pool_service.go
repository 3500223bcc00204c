package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateKeywordPoolInput struct {
	AccountID       uuid.UUID
	CompanyID       uuid.UUID
	Name            string
	Size            int
	Type            domain.NumberType
	Prefix          string
	Country         string
	ForwardToNumber string
	SwapRules       *domain.SwapRules
	SessionTTL      time.Duration
}

type UpdateKeywordPoolInput struct {
	Name            *string
	ForwardToNumber *string
	SwapRules       *domain.SwapRules
	SessionTTL      *time.Duration
}

// SessionRequest identifies a website visitor asking for a tracking number.
type SessionRequest struct {
	SessionKey string
	Visit      domain.Visit
	Source     string
	Medium     string
	Campaign   string
	Content    string
	Keyword    string
}

// SessionAssignment is the number a visitor should see. Display is empty when the pool's swap
// rules say the visit should keep the business number.
type SessionAssignment struct {
	Session *domain.KeywordSession `json:"session"`
	Number  *domain.PhoneNumber    `json:"phone_number"`
	Swap    bool                   `json:"swap"`
	Display string                 `json:"display,omitempty"`
	Reused  bool                   `json:"reused"`
}

type KeywordPoolService struct {
	db          database.DB
	poolRepo    domain.KeywordPoolRepository
	phoneRepo   domain.PhoneNumberRepository
	sessionRepo domain.KeywordSessionRepository
	provisioner *Provisioner
	defaultTTL  time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

func NewKeywordPoolService(
	db database.DB,
	poolRepo domain.KeywordPoolRepository,
	phoneRepo domain.PhoneNumberRepository,
	sessionRepo domain.KeywordSessionRepository,
	provisioner *Provisioner,
	defaultTTL time.Duration,
	logger *slog.Logger,
) *KeywordPoolService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &KeywordPoolService{
		db:          db,
		poolRepo:    poolRepo,
		phoneRepo:   phoneRepo,
		sessionRepo: sessionRepo,
		provisioner: provisioner,
		defaultTTL:  defaultTTL,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.With("service", "keyword_pools"),
	}
}

// CreateKeywordPool creates the company's keyword pool and fills it, all-or-nothing.
func (s *KeywordPoolService) CreateKeywordPool(ctx context.Context, in CreateKeywordPoolInput) (*domain.KeywordTrackingPool, *AcquireResult, error) {
	rules := domain.DefaultSwapRules()
	if in.SwapRules != nil {
		rules = *in.SwapRules
	}
	if err := rules.Validate(); err != nil {
		return nil, nil, err
	}
	ttl := in.SessionTTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	country := in.Country
	if country == "" {
		country = defaultCountry
	}
	now := s.now()
	pool := &domain.KeywordTrackingPool{
		ID:              uuid.New(),
		AccountID:       in.AccountID,
		CompanyID:       in.CompanyID,
		Name:            in.Name,
		Size:            in.Size,
		Type:            in.Type,
		Prefix:          in.Prefix,
		Country:         country,
		ForwardToNumber: in.ForwardToNumber,
		SwapRules:       rules,
		SessionTTL:      ttl,
		Status:          domain.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var res *AcquireResult
	err := s.provisioner.transact(ctx, s.db, "create_keyword_pool", func(tx pgx.Tx, a *acquisition) error {
		if err := s.poolRepo.Create(ctx, tx, pool); err != nil {
			return err
		}
		var err error
		res, err = a.acquire(ctx, tx, AcquireRequest{
			AccountID:       in.AccountID,
			CompanyID:       in.CompanyID,
			Quantity:        in.Size,
			Type:            in.Type,
			Prefix:          in.Prefix,
			Country:         country,
			KeywordPoolID:   &pool.ID,
			Name:            in.Name,
			ForwardToNumber: in.ForwardToNumber,
			SwapRules:       &rules,
			Reference:       "keyword_pool:" + pool.ID.String(),
		}, policyAllOrNothing)
		if err != nil {
			return err
		}
		if res.Obtained() != pool.Size {
			pool.Size = res.Obtained()
			return s.poolRepo.Update(ctx, tx, pool)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.InfoContext(ctx, "Created keyword pool", "keyword_pool_id", pool.ID, "company_id", in.CompanyID, "size", pool.Size)
	return pool, res, nil
}

// AddNumbers grows a keyword pool, best effort.
func (s *KeywordPoolService) AddNumbers(ctx context.Context, accountID, poolID uuid.UUID, quantity int) (*AcquireResult, error) {
	var res *AcquireResult
	err := s.provisioner.transact(ctx, s.db, "add_to_keyword_pool", func(tx pgx.Tx, a *acquisition) error {
		pool, err := s.poolRepo.GetByIDForUpdate(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		if pool.Status != domain.StatusActive {
			return domain.ErrNotActive
		}
		rules := pool.SwapRules
		res, err = a.acquire(ctx, tx, AcquireRequest{
			AccountID:       accountID,
			CompanyID:       pool.CompanyID,
			Quantity:        quantity,
			Type:            pool.Type,
			Prefix:          pool.Prefix,
			Country:         pool.Country,
			KeywordPoolID:   &pool.ID,
			Name:            pool.Name,
			ForwardToNumber: pool.ForwardToNumber,
			SwapRules:       &rules,
			Reference:       "keyword_pool:" + pool.ID.String(),
		}, policyBestEffort)
		if err != nil {
			return err
		}
		pool.Size += res.Obtained()
		return s.poolRepo.Update(ctx, tx, pool)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KeywordPoolService) GetKeywordPool(ctx context.Context, accountID, poolID uuid.UUID) (*domain.KeywordTrackingPool, error) {
	return s.poolRepo.GetByID(ctx, s.db, poolID, accountID)
}

func (s *KeywordPoolService) ListKeywordPools(ctx context.Context, companyID uuid.UUID) ([]*domain.KeywordTrackingPool, error) {
	return s.poolRepo.ListByCompany(ctx, s.db, companyID)
}

func (s *KeywordPoolService) UpdateKeywordPool(ctx context.Context, accountID, poolID uuid.UUID, in UpdateKeywordPoolInput) (*domain.KeywordTrackingPool, error) {
	if in.SwapRules != nil {
		if err := in.SwapRules.Validate(); err != nil {
			return nil, err
		}
	}
	var pool *domain.KeywordTrackingPool
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		pool, err = s.poolRepo.GetByIDForUpdate(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		if pool.Status != domain.StatusActive {
			return domain.ErrNotActive
		}
		if in.Name != nil {
			pool.Name = *in.Name
		}
		if in.SessionTTL != nil && *in.SessionTTL > 0 {
			pool.SessionTTL = *in.SessionTTL
		}
		propagate := false
		if in.ForwardToNumber != nil {
			pool.ForwardToNumber = *in.ForwardToNumber
			propagate = true
		}
		if in.SwapRules != nil {
			pool.SwapRules = *in.SwapRules
			propagate = true
		}
		if err := s.poolRepo.Update(ctx, tx, pool); err != nil {
			return err
		}
		if propagate {
			if _, err := s.phoneRepo.ApplyPoolConfig(ctx, tx, pool.ID, pool.ForwardToNumber, pool.SwapRules); err != nil {
				return fmt.Errorf("propagating keyword pool config: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// AssignSession returns the number bound to the visitor's session, binding one first if needed.
// New sessions get the least recently assigned number that no unexpired session holds.
func (s *KeywordPoolService) AssignSession(ctx context.Context, accountID, poolID uuid.UUID, req SessionRequest) (*SessionAssignment, error) {
	if req.SessionKey == "" {
		return nil, domain.ErrSessionKeyRequired
	}
	var out *SessionAssignment
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		pool, err := s.poolRepo.GetByID(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		if pool.Status != domain.StatusActive {
			return domain.ErrNotActive
		}
		now := s.now()
		expires := now.Add(pool.SessionTTL)

		existing, err := s.sessionRepo.GetActiveByKey(ctx, tx, pool.ID, req.SessionKey, now)
		switch {
		case err == nil:
			if err := s.sessionRepo.Touch(ctx, tx, existing.ID, now, expires); err != nil {
				return err
			}
			n, err := s.phoneRepo.GetByID(ctx, tx, existing.PhoneNumberID, accountID)
			if err != nil {
				return err
			}
			existing.LastActivityAt, existing.ExpiresAt = now, expires
			out = s.assignment(existing, n, pool, req.Visit)
			out.Reused = true
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		n, err := s.phoneRepo.NextForSession(ctx, tx, pool.ID, now)
		if err != nil {
			return err
		}
		session := &domain.KeywordSession{
			ID:             uuid.New(),
			PoolID:         pool.ID,
			PhoneNumberID:  n.ID,
			SessionKey:     req.SessionKey,
			Source:         req.Source,
			Medium:         req.Medium,
			Campaign:       req.Campaign,
			Content:        req.Content,
			Keyword:        req.Keyword,
			LandingURL:     req.Visit.LandingURL,
			Referrer:       req.Visit.Referrer,
			AssignedAt:     now,
			LastActivityAt: now,
			ExpiresAt:      expires,
		}
		out = s.assignment(session, n, pool, req.Visit)
		session.NumberFormat = string(pool.SwapRules.DisplayFormat())
		if err := s.sessionRepo.Upsert(ctx, tx, session); err != nil {
			return err
		}
		return s.phoneRepo.MarkAssigned(ctx, tx, n.ID, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoNumberAvailable) {
			s.logger.WarnContext(ctx, "Keyword pool exhausted", "keyword_pool_id", poolID)
		}
		return nil, err
	}
	return out, nil
}

func (s *KeywordPoolService) assignment(session *domain.KeywordSession, n *domain.PhoneNumber, pool *domain.KeywordTrackingPool, visit domain.Visit) *SessionAssignment {
	a := &SessionAssignment{Session: session, Number: n}
	if pool.SwapRules.Matches(visit) {
		a.Swap = true
		a.Display = pool.SwapRules.DisplayFormat().Apply(n.Number)
	}
	return a
}

// TouchSession extends a live session by the pool's TTL.
func (s *KeywordPoolService) TouchSession(ctx context.Context, accountID, poolID uuid.UUID, sessionKey string) error {
	pool, err := s.poolRepo.GetByID(ctx, s.db, poolID, accountID)
	if err != nil {
		return err
	}
	now := s.now()
	session, err := s.sessionRepo.GetActiveByKey(ctx, s.db, pool.ID, sessionKey, now)
	if err != nil {
		return err
	}
	return s.sessionRepo.Touch(ctx, s.db, session.ID, now, now.Add(pool.SessionTTL))
}

func (s *KeywordPoolService) ListSessions(ctx context.Context, accountID, poolID uuid.UUID, activeOnly bool, limit int) ([]*domain.KeywordSession, error) {
	if _, err := s.poolRepo.GetByID(ctx, s.db, poolID, accountID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var activeAt *time.Time
	if activeOnly {
		now := s.now()
		activeAt = &now
	}
	return s.sessionRepo.ListByPool(ctx, s.db, poolID, activeAt, limit)
}
