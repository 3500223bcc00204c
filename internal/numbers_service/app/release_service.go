package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/messagebroker"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReleaseService deletes numbers and pools. Every deletion goes active -> pending_deletion inside a
// transaction that holds the row lock while the guards are checked, then talks to the carrier
// outside it, then marks the row deleted.
type ReleaseService struct {
	db              database.DB
	phoneRepo       domain.PhoneNumberRepository
	bankRepo        domain.BankedNumberRepository
	poolRepo        domain.PoolRepository
	keywordPoolRepo domain.KeywordPoolRepository
	sessionRepo     domain.KeywordSessionRepository
	campaigns       domain.CampaignLinks
	carrier         domain.Carrier
	publisher       messagebroker.Publisher
	testMode        bool
	logger          *slog.Logger
}

type ReleaseServiceDeps struct {
	DB              database.DB
	PhoneRepo       domain.PhoneNumberRepository
	BankRepo        domain.BankedNumberRepository
	PoolRepo        domain.PoolRepository
	KeywordPoolRepo domain.KeywordPoolRepository
	SessionRepo     domain.KeywordSessionRepository
	Campaigns       domain.CampaignLinks
	Carrier         domain.Carrier
	// Publisher is optional. Without it pool releases run inline.
	Publisher messagebroker.Publisher
	// TestMode skips the carrier release call.
	TestMode bool
}

func NewReleaseService(deps ReleaseServiceDeps, logger *slog.Logger) *ReleaseService {
	return &ReleaseService{
		db:              deps.DB,
		phoneRepo:       deps.PhoneRepo,
		bankRepo:        deps.BankRepo,
		poolRepo:        deps.PoolRepo,
		keywordPoolRepo: deps.KeywordPoolRepo,
		sessionRepo:     deps.SessionRepo,
		campaigns:       deps.Campaigns,
		carrier:         deps.Carrier,
		publisher:       deps.Publisher,
		testMode:        deps.TestMode,
		logger:          logger.With("service", "release"),
	}
}

func (s *ReleaseService) campaignActive(ctx context.Context, q database.Querier, campaignID *uuid.UUID) (bool, error) {
	if campaignID == nil {
		return false, nil
	}
	return s.campaigns.IsCampaignActive(ctx, q, *campaignID)
}

// lockForRelease locks the number, checks the guards and moves it to pending_deletion. A number
// already pending is returned as is so the release can be retried.
func (s *ReleaseService) lockForRelease(ctx context.Context, tx pgx.Tx, accountID, numberID uuid.UUID, allowPoolMember bool) (*domain.PhoneNumber, error) {
	n, err := s.phoneRepo.GetByIDForUpdate(ctx, tx, numberID, accountID)
	if err != nil {
		return nil, err
	}
	if n.Status == domain.StatusPendingDeletion {
		return n, nil
	}
	if !allowPoolMember && n.IsPoolMember() {
		return nil, fmt.Errorf("%w: number belongs to a pool", domain.ErrInUse)
	}
	active, err := s.campaignActive(ctx, tx, n.CampaignID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("%w: number is linked to an active campaign", domain.ErrInUse)
	}
	if n.Status, err = domain.Transition(n.Status, domain.StatusPendingDeletion); err != nil {
		return nil, err
	}
	if err := s.phoneRepo.UpdateStatus(ctx, tx, n.ID, n.Status, nil); err != nil {
		return nil, err
	}
	return n, nil
}

// releaseAtCarrier gives the number back and tombstones it. On carrier failure the number stays
// pending_deletion and the error is returned.
func (s *ReleaseService) releaseAtCarrier(ctx context.Context, n *domain.PhoneNumber, deletedBy uuid.UUID) error {
	method := "carrier"
	if s.testMode {
		method = "test_mode"
		s.logger.InfoContext(ctx, "Test mode: skipping carrier release", "phone_number_id", n.ID, "number", n.E164())
	} else if err := s.carrier.Release(ctx, n.CarrierSID); err != nil {
		numbersReleasedCounter.WithLabelValues(method, "error").Inc()
		s.logger.ErrorContext(ctx, "Carrier release failed; number left pending deletion",
			"error", err, "phone_number_id", n.ID, "number", n.E164())
		return fmt.Errorf("releasing %s at carrier: %w", n.E164(), err)
	}

	status, err := domain.Transition(n.Status, domain.StatusDeleted)
	if err != nil {
		return err
	}
	if err := s.phoneRepo.MarkReleased(ctx, s.db, n.ID, &deletedBy); err != nil {
		return err
	}
	now := time.Now().UTC()
	n.Status, n.DeletedAt, n.DeletedBy = status, &now, &deletedBy
	numbersReleasedCounter.WithLabelValues(method, "success").Inc()
	return nil
}

// DeleteNumber releases a single orphan number. When the carrier call fails the number is returned
// in pending_deletion and a retry job is queued.
func (s *ReleaseService) DeleteNumber(ctx context.Context, accountID, numberID, deletedBy uuid.UUID) (*domain.PhoneNumber, error) {
	var n *domain.PhoneNumber
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		n, err = s.lockForRelease(ctx, tx, accountID, numberID, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.releaseAtCarrier(ctx, n, deletedBy); err != nil {
		if s.publisher != nil {
			job := NumberReleaseJob{NumberID: n.ID, AccountID: accountID, DeletedBy: deletedBy}
			if pubErr := messagebroker.PublishJSON(ctx, s.publisher, SubjectNumberRelease, job); pubErr != nil {
				s.logger.ErrorContext(ctx, "Failed to queue number release retry", "error", pubErr, "phone_number_id", n.ID)
			}
		}
		return n, nil
	}
	s.logger.InfoContext(ctx, "Deleted phone number", "phone_number_id", n.ID, "account_id", accountID)
	return n, nil
}

// BankNumber moves an active orphan number into the shared bank instead of releasing it at the
// carrier. A number already pending deletion has a carrier release in flight and is refused.
func (s *ReleaseService) BankNumber(ctx context.Context, accountID, numberID, deletedBy uuid.UUID) (*domain.BankedPhoneNumber, error) {
	var banked *domain.BankedPhoneNumber
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		n, err := s.phoneRepo.GetByIDForUpdate(ctx, tx, numberID, accountID)
		if err != nil {
			return err
		}
		if n.Status != domain.StatusActive {
			return fmt.Errorf("%w: number is %s", domain.ErrNotActive, n.Status)
		}
		if n.IsPoolMember() {
			return fmt.Errorf("%w: number belongs to a pool", domain.ErrInUse)
		}
		active, err := s.campaignActive(ctx, tx, n.CampaignID)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("%w: number is linked to an active campaign", domain.ErrInUse)
		}
		status, err := domain.Transition(n.Status, domain.StatusDeleted)
		if err != nil {
			return err
		}
		banked = &domain.BankedPhoneNumber{
			ID:                  uuid.New(),
			ReleasedByAccountID: accountID,
			CarrierSID:          n.CarrierSID,
			CountryCode:         n.CountryCode,
			Number:              n.Number,
			Country:             countryForCallingCode(n.CountryCode),
			Type:                n.Type,
			Voice:               n.Voice,
			SMS:                 n.SMS,
			MMS:                 n.MMS,
			ReleasedAt:          time.Now().UTC(),
		}
		if err := s.bankRepo.Create(ctx, tx, banked); err != nil {
			return err
		}
		return s.phoneRepo.UpdateStatus(ctx, tx, n.ID, status, &deletedBy)
	})
	if err != nil {
		return nil, err
	}
	numbersReleasedCounter.WithLabelValues("bank", "success").Inc()
	s.logger.InfoContext(ctx, "Banked phone number", "phone_number_id", numberID, "account_id", accountID)
	return banked, nil
}

// DeletePool marks the pool pending_deletion and hands the member releases to the worker.
func (s *ReleaseService) DeletePool(ctx context.Context, accountID, poolID, deletedBy uuid.UUID) (*domain.PhoneNumberPool, error) {
	var pool *domain.PhoneNumberPool
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		pool, err = s.poolRepo.GetByIDForUpdate(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		if pool.Status == domain.StatusPendingDeletion {
			return nil
		}
		active, err := s.campaignActive(ctx, tx, pool.CampaignID)
		if err != nil {
			return err
		}
		if active {
			return fmt.Errorf("%w: pool is attached to an active campaign", domain.ErrInUse)
		}
		if pool.Status, err = domain.Transition(pool.Status, domain.StatusPendingDeletion); err != nil {
			return err
		}
		return s.poolRepo.UpdateStatus(ctx, tx, pool.ID, pool.Status, nil)
	})
	if err != nil {
		return nil, err
	}

	job := PoolReleaseJob{PoolID: pool.ID, AccountID: accountID, DeletedBy: deletedBy}
	if s.dispatch(ctx, SubjectPoolRelease, job, s.ProcessPoolRelease) {
		pool.Status = domain.StatusDeleted
	}
	return pool, nil
}

// DeleteKeywordPool is DeletePool for keyword pools. Keyword pools are never campaign-bound.
func (s *ReleaseService) DeleteKeywordPool(ctx context.Context, accountID, poolID, deletedBy uuid.UUID) (*domain.KeywordTrackingPool, error) {
	var pool *domain.KeywordTrackingPool
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		pool, err = s.keywordPoolRepo.GetByIDForUpdate(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		if pool.Status == domain.StatusPendingDeletion {
			return nil
		}
		if pool.Status, err = domain.Transition(pool.Status, domain.StatusPendingDeletion); err != nil {
			return err
		}
		return s.keywordPoolRepo.UpdateStatus(ctx, tx, pool.ID, pool.Status, nil)
	})
	if err != nil {
		return nil, err
	}

	job := PoolReleaseJob{PoolID: pool.ID, AccountID: accountID, DeletedBy: deletedBy}
	if s.dispatch(ctx, SubjectKeywordPoolRelease, job, s.ProcessKeywordPoolRelease) {
		pool.Status = domain.StatusDeleted
	}
	return pool, nil
}

// dispatch publishes the job, or runs it inline when there is no broker or publishing fails. It
// reports whether the release already completed. Inline failures are logged; the pool stays
// pending_deletion and a repeated delete retries it.
func (s *ReleaseService) dispatch(ctx context.Context, subject string, job PoolReleaseJob, inline func(context.Context, PoolReleaseJob) error) bool {
	if s.publisher != nil {
		err := messagebroker.PublishJSON(ctx, s.publisher, subject, job)
		if err == nil {
			s.logger.InfoContext(ctx, "Queued pool release", "subject", subject, "pool_id", job.PoolID)
			return false
		}
		s.logger.ErrorContext(ctx, "Failed to queue pool release; running inline", "error", err, "pool_id", job.PoolID)
	}
	if err := inline(ctx, job); err != nil {
		s.logger.ErrorContext(ctx, "Inline pool release incomplete", "error", err, "pool_id", job.PoolID)
		return false
	}
	return true
}

// ProcessPoolRelease releases every member of a pending pool, then tombstones the pool. Members
// that fail stay pending_deletion and so does the pool; the job can be redelivered.
func (s *ReleaseService) ProcessPoolRelease(ctx context.Context, job PoolReleaseJob) error {
	pool, err := s.poolRepo.GetByID(ctx, s.db, job.PoolID, job.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.InfoContext(ctx, "Pool already released", "pool_id", job.PoolID)
		return nil
	}
	if err != nil {
		return err
	}
	if pool.Status != domain.StatusPendingDeletion {
		return fmt.Errorf("%w: pool %s is %s", domain.ErrInvalidTransition, pool.ID, pool.Status)
	}

	members, err := s.phoneRepo.ListByPool(ctx, s.db, pool.ID)
	if err != nil {
		return err
	}
	if err := s.releaseMembers(ctx, job, members); err != nil {
		return err
	}
	if err := s.poolRepo.UpdateStatus(ctx, s.db, pool.ID, domain.StatusDeleted, &job.DeletedBy); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Released pool", "pool_id", pool.ID, "numbers", len(members))
	return nil
}

func (s *ReleaseService) ProcessKeywordPoolRelease(ctx context.Context, job PoolReleaseJob) error {
	pool, err := s.keywordPoolRepo.GetByID(ctx, s.db, job.PoolID, job.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if pool.Status != domain.StatusPendingDeletion {
		return fmt.Errorf("%w: keyword pool %s is %s", domain.ErrInvalidTransition, pool.ID, pool.Status)
	}

	if err := s.sessionRepo.DeleteByPool(ctx, s.db, pool.ID); err != nil {
		return err
	}
	members, err := s.phoneRepo.ListByKeywordPool(ctx, s.db, pool.ID)
	if err != nil {
		return err
	}
	if err := s.releaseMembers(ctx, job, members); err != nil {
		return err
	}
	if err := s.keywordPoolRepo.UpdateStatus(ctx, s.db, pool.ID, domain.StatusDeleted, &job.DeletedBy); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Released keyword pool", "keyword_pool_id", pool.ID, "numbers", len(members))
	return nil
}

func (s *ReleaseService) releaseMembers(ctx context.Context, job PoolReleaseJob, members []*domain.PhoneNumber) error {
	var errs []error
	for _, m := range members {
		var n *domain.PhoneNumber
		err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
			var err error
			n, err = s.lockForRelease(ctx, tx, job.AccountID, m.ID, true)
			return err
		})
		if err == nil {
			err = s.releaseAtCarrier(ctx, n, job.DeletedBy)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d numbers not released: %w", len(errs), len(members), errors.Join(errs...))
	}
	return nil
}

// ProcessNumberRelease retries the carrier release of a number stuck in pending_deletion.
func (s *ReleaseService) ProcessNumberRelease(ctx context.Context, job NumberReleaseJob) error {
	n, err := s.phoneRepo.GetByID(ctx, s.db, job.NumberID, job.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if n.Status != domain.StatusPendingDeletion {
		s.logger.WarnContext(ctx, "Number release job for a number that is not pending deletion",
			"phone_number_id", n.ID, "status", n.Status)
		return nil
	}
	return s.releaseAtCarrier(ctx, n, job.DeletedBy)
}

func countryForCallingCode(cc string) string {
	switch cc {
	case "44":
		return "GB"
	case "61":
		return "AU"
	default:
		return defaultCountry
	}
}
