package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PurchaseInput buys orphan numbers for a company.
type PurchaseInput struct {
	AccountID       uuid.UUID
	CompanyID       uuid.UUID
	Quantity        int
	Type            domain.NumberType
	Prefix          string
	Country         string
	Name            string
	Attribution     domain.Attribution
	ForwardToNumber string
	SwapRules       *domain.SwapRules
}

// UpdateNumberInput carries the fields a client may change; nil means unchanged.
type UpdateNumberInput struct {
	Name            *string
	Attribution     *domain.Attribution
	ForwardToNumber *string
	SwapRules       *domain.SwapRules
	Disabled        *bool
}

type NumberService struct {
	db          database.DB
	phoneRepo   domain.PhoneNumberRepository
	bankRepo    domain.BankedNumberRepository
	provisioner *Provisioner
	logger      *slog.Logger
}

func NewNumberService(db database.DB, phoneRepo domain.PhoneNumberRepository, bankRepo domain.BankedNumberRepository, provisioner *Provisioner, logger *slog.Logger) *NumberService {
	return &NumberService{
		db:          db,
		phoneRepo:   phoneRepo,
		bankRepo:    bankRepo,
		provisioner: provisioner,
		logger:      logger.With("service", "numbers"),
	}
}

// PurchaseNumbers provisions orphan numbers. Availability is all-or-nothing.
func (s *NumberService) PurchaseNumbers(ctx context.Context, in PurchaseInput) (*AcquireResult, error) {
	var res *AcquireResult
	err := s.provisioner.transact(ctx, s.db, "purchase", func(tx pgx.Tx, a *acquisition) error {
		var err error
		res, err = a.acquire(ctx, tx, AcquireRequest{
			AccountID:       in.AccountID,
			CompanyID:       in.CompanyID,
			Quantity:        in.Quantity,
			Type:            in.Type,
			Prefix:          in.Prefix,
			Country:         in.Country,
			Name:            in.Name,
			Attribution:     in.Attribution,
			ForwardToNumber: in.ForwardToNumber,
			SwapRules:       in.SwapRules,
			Reference:       "company:" + in.CompanyID.String(),
		}, policyAllOrNothing)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *NumberService) GetNumber(ctx context.Context, accountID, id uuid.UUID) (*domain.PhoneNumber, error) {
	return s.phoneRepo.GetByID(ctx, s.db, id, accountID)
}

func (s *NumberService) ListNumbers(ctx context.Context, companyID uuid.UUID, filter domain.NumberFilter) ([]*domain.PhoneNumber, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.phoneRepo.ListByCompany(ctx, s.db, companyID, filter)
}

// UpdateNumber edits a number's own config. Pool members get their forwarding and rules from the
// pool, so those two fields are rejected for them until they are detached.
func (s *NumberService) UpdateNumber(ctx context.Context, accountID, id uuid.UUID, in UpdateNumberInput) (*domain.PhoneNumber, error) {
	var n *domain.PhoneNumber
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		n, err = s.phoneRepo.GetByIDForUpdate(ctx, tx, id, accountID)
		if err != nil {
			return err
		}
		if n.Status != domain.StatusActive {
			return domain.ErrNotActive
		}
		if n.IsPoolMember() && (in.ForwardToNumber != nil || in.SwapRules != nil) {
			return domain.ErrInUse
		}
		if in.Name != nil {
			n.Name = *in.Name
		}
		if in.Attribution != nil {
			n.Attribution = *in.Attribution
		}
		if in.ForwardToNumber != nil {
			n.ForwardToNumber = *in.ForwardToNumber
		}
		if in.SwapRules != nil {
			rules := *in.SwapRules
			n.SwapRules = &rules
		}
		if in.Disabled != nil {
			switch {
			case *in.Disabled && n.DisabledAt == nil:
				now := time.Now().UTC()
				n.DisabledAt = &now
			case !*in.Disabled:
				n.DisabledAt = nil
			}
		}
		return s.phoneRepo.Update(ctx, tx, n)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Updated phone number", "phone_number_id", id, "account_id", accountID)
	return n, nil
}

// CountActiveByCompany lets account management refuse to delete companies that still hold numbers.
func (s *NumberService) CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	return s.phoneRepo.CountActiveByCompany(ctx, s.db, companyID)
}

// ListBank lists banked inventory for operators.
func (s *NumberService) ListBank(ctx context.Context, country string, numberType domain.NumberType, limit, offset int) ([]*domain.BankedPhoneNumber, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.bankRepo.List(ctx, s.db, country, numberType, limit, offset)
}

// ImportBankedNumber adds a number the platform already owns at the carrier to the bank.
func (s *NumberService) ImportBankedNumber(ctx context.Context, releasedBy uuid.UUID, sid, e164, country string, numberType domain.NumberType) (*domain.BankedPhoneNumber, error) {
	if !numberType.Valid() {
		return nil, domain.ErrInvalidNumber
	}
	cc, national, err := domain.SplitE164(e164)
	if err != nil {
		return nil, err
	}
	if country == "" {
		country = defaultCountry
	}
	b := &domain.BankedPhoneNumber{
		ID:                  uuid.New(),
		ReleasedByAccountID: releasedBy,
		CarrierSID:          sid,
		CountryCode:         cc,
		Number:              national,
		Country:             country,
		Type:                numberType,
		Voice:               true,
		SMS:                 true,
		ReleasedAt:          time.Now().UTC(),
	}
	if err := s.bankRepo.Create(ctx, s.db, b); err != nil {
		return nil, err
	}
	return b, nil
}
