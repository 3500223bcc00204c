package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreatePoolInput struct {
	AccountID       uuid.UUID
	CompanyID       uuid.UUID
	Name            string
	Size            int
	Type            domain.NumberType
	Prefix          string
	Country         string
	ForwardToNumber string
	// SwapRules defaults to DefaultSwapRules when nil.
	SwapRules   *domain.SwapRules
	Attribution domain.Attribution
}

type UpdatePoolInput struct {
	Name            *string
	ForwardToNumber *string
	SwapRules       *domain.SwapRules
}

type PoolService struct {
	db          database.DB
	poolRepo    domain.PoolRepository
	phoneRepo   domain.PhoneNumberRepository
	provisioner *Provisioner
	logger      *slog.Logger
}

func NewPoolService(db database.DB, poolRepo domain.PoolRepository, phoneRepo domain.PhoneNumberRepository, provisioner *Provisioner, logger *slog.Logger) *PoolService {
	return &PoolService{
		db:          db,
		poolRepo:    poolRepo,
		phoneRepo:   phoneRepo,
		provisioner: provisioner,
		logger:      logger.With("service", "pools"),
	}
}

// CreatePool creates the pool and fills it in one transaction. If fewer numbers are available than
// the requested size nothing is persisted and nothing is charged.
func (s *PoolService) CreatePool(ctx context.Context, in CreatePoolInput) (*domain.PhoneNumberPool, *AcquireResult, error) {
	rules := domain.DefaultSwapRules()
	if in.SwapRules != nil {
		rules = *in.SwapRules
	}
	if err := rules.Validate(); err != nil {
		return nil, nil, err
	}
	country := in.Country
	if country == "" {
		country = defaultCountry
	}
	now := time.Now().UTC()
	pool := &domain.PhoneNumberPool{
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
		Status:          domain.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var res *AcquireResult
	err := s.provisioner.transact(ctx, s.db, "create_pool", func(tx pgx.Tx, a *acquisition) error {
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
			PoolID:          &pool.ID,
			Name:            in.Name,
			Attribution:     in.Attribution,
			ForwardToNumber: in.ForwardToNumber,
			SwapRules:       &rules,
			Reference:       "pool:" + pool.ID.String(),
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
	s.logger.InfoContext(ctx, "Created pool", "pool_id", pool.ID, "company_id", in.CompanyID, "size", pool.Size)
	return pool, res, nil
}

// AddNumbersToPool grows a pool. It succeeds with fewer numbers than requested as long as at
// least one was added; the result carries the shortfall.
func (s *PoolService) AddNumbersToPool(ctx context.Context, accountID, poolID uuid.UUID, quantity int) (*AcquireResult, error) {
	var res *AcquireResult
	err := s.provisioner.transact(ctx, s.db, "add_to_pool", func(tx pgx.Tx, a *acquisition) error {
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
			PoolID:          &pool.ID,
			Name:            pool.Name,
			ForwardToNumber: pool.ForwardToNumber,
			SwapRules:       &rules,
			Reference:       "pool:" + pool.ID.String(),
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

func (s *PoolService) GetPool(ctx context.Context, accountID, poolID uuid.UUID) (*domain.PhoneNumberPool, error) {
	return s.poolRepo.GetByID(ctx, s.db, poolID, accountID)
}

// ListPoolNumbers returns the live members of a pool.
func (s *PoolService) ListPoolNumbers(ctx context.Context, accountID, poolID uuid.UUID) ([]*domain.PhoneNumber, error) {
	if _, err := s.poolRepo.GetByID(ctx, s.db, poolID, accountID); err != nil {
		return nil, err
	}
	return s.phoneRepo.ListByPool(ctx, s.db, poolID)
}

func (s *PoolService) ListPools(ctx context.Context, companyID uuid.UUID) ([]*domain.PhoneNumberPool, error) {
	return s.poolRepo.ListByCompany(ctx, s.db, companyID)
}

// UpdatePool changes pool config. Forwarding and swap rule changes are copied onto the members.
func (s *PoolService) UpdatePool(ctx context.Context, accountID, poolID uuid.UUID, in UpdatePoolInput) (*domain.PhoneNumberPool, error) {
	if in.SwapRules != nil {
		if err := in.SwapRules.Validate(); err != nil {
			return nil, err
		}
	}
	var pool *domain.PhoneNumberPool
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
		if !propagate {
			return nil
		}
		updated, err := s.phoneRepo.ApplyPoolConfig(ctx, tx, pool.ID, pool.ForwardToNumber, pool.SwapRules)
		if err != nil {
			return fmt.Errorf("propagating pool config: %w", err)
		}
		s.logger.InfoContext(ctx, "Propagated pool config to members", "pool_id", pool.ID, "numbers", updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// DetachNumber takes a number out of its pool. The number keeps the config it had as a member.
func (s *PoolService) DetachNumber(ctx context.Context, accountID, poolID, numberID uuid.UUID) (*domain.PhoneNumber, error) {
	var n *domain.PhoneNumber
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		pool, err := s.poolRepo.GetByIDForUpdate(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		// Members of a pool being deleted belong to its release job.
		if pool.Status != domain.StatusActive {
			return domain.ErrNotActive
		}
		n, err = s.phoneRepo.GetByIDForUpdate(ctx, tx, numberID, accountID)
		if err != nil {
			return err
		}
		if n.PoolID == nil || *n.PoolID != pool.ID {
			return domain.ErrNotFound
		}
		n.PoolID = nil
		if n.SwapRules == nil {
			rules := pool.SwapRules
			n.SwapRules = &rules
		}
		if n.ForwardToNumber == "" {
			n.ForwardToNumber = pool.ForwardToNumber
		}
		if err := s.phoneRepo.Update(ctx, tx, n); err != nil {
			return err
		}
		if pool.Size > 0 {
			pool.Size--
		}
		return s.poolRepo.Update(ctx, tx, pool)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Detached number from pool", "pool_id", poolID, "phone_number_id", numberID)
	return n, nil
}
