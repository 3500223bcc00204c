package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/campaign_service/domain"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateCampaignInput struct {
	AccountID uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Type      domain.CampaignType
	Enabled   bool
	StartsAt  *time.Time
	EndsAt    *time.Time
}

type UpdateCampaignInput struct {
	Name     *string
	Type     *domain.CampaignType
	Enabled  *bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

// CampaignService manages campaigns and what they track: one pool for a web campaign, single
// numbers for offline ones.
type CampaignService struct {
	db        database.DB
	campaigns domain.CampaignRepository
	pools     numbersDomain.PoolRepository
	phones    numbersDomain.PhoneNumberRepository
	logger    *slog.Logger
}

func NewCampaignService(db database.DB, campaigns domain.CampaignRepository, pools numbersDomain.PoolRepository, phones numbersDomain.PhoneNumberRepository, logger *slog.Logger) *CampaignService {
	return &CampaignService{
		db:        db,
		campaigns: campaigns,
		pools:     pools,
		phones:    phones,
		logger:    logger.With("service", "campaigns"),
	}
}

func validateSchedule(starts, ends *time.Time) error {
	if starts != nil && ends != nil && !ends.After(*starts) {
		return fmt.Errorf("%w: ends_at must be after starts_at", domain.ErrInvalidCampaign)
	}
	return nil
}

func (s *CampaignService) Create(ctx context.Context, in CreateCampaignInput) (*domain.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidCampaign)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidCampaign, in.Type)
	}
	if err := validateSchedule(in.StartsAt, in.EndsAt); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:        uuid.New(),
		AccountID: in.AccountID,
		CompanyID: in.CompanyID,
		Name:      name,
		Type:      in.Type,
		Enabled:   in.Enabled,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.campaigns.Create(ctx, s.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) Get(ctx context.Context, accountID, id uuid.UUID) (*domain.Campaign, error) {
	return s.campaigns.GetByID(ctx, s.db, id, accountID)
}

func (s *CampaignService) List(ctx context.Context, companyID uuid.UUID) ([]*domain.Campaign, error) {
	return s.campaigns.ListByCompany(ctx, s.db, companyID)
}

// attachments reports whether anything is bound to the campaign.
func (s *CampaignService) attachments(ctx context.Context, q database.Querier, c *domain.Campaign) (bool, error) {
	_, err := s.pools.GetByCampaign(ctx, q, c.ID)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, numbersDomain.ErrNotFound):
		return false, err
	}
	count, err := s.phones.CountByCampaign(ctx, q, c.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update edits a campaign. Changing the type is refused while bindings exist, since web and
// offline campaigns bind different things.
func (s *CampaignService) Update(ctx context.Context, accountID, id uuid.UUID, in UpdateCampaignInput) (*domain.Campaign, error) {
	var c *domain.Campaign
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		c, err = s.campaigns.GetByIDForUpdate(ctx, tx, id, accountID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name is required", domain.ErrInvalidCampaign)
			}
			c.Name = name
		}
		if in.Type != nil && *in.Type != c.Type {
			if !in.Type.Valid() {
				return fmt.Errorf("%w: unknown type %q", domain.ErrInvalidCampaign, *in.Type)
			}
			bound, err := s.attachments(ctx, tx, c)
			if err != nil {
				return err
			}
			if bound {
				return domain.ErrHasAttachments
			}
			c.Type = *in.Type
		}
		if in.Enabled != nil {
			c.Enabled = *in.Enabled
		}
		if in.StartsAt != nil {
			c.StartsAt = in.StartsAt
		}
		if in.EndsAt != nil {
			c.EndsAt = in.EndsAt
		}
		if err := validateSchedule(c.StartsAt, c.EndsAt); err != nil {
			return err
		}
		return s.campaigns.Update(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete soft deletes a campaign that has nothing attached.
func (s *CampaignService) Delete(ctx context.Context, accountID, id, deletedBy uuid.UUID) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetByIDForUpdate(ctx, tx, id, accountID)
		if err != nil {
			return err
		}
		bound, err := s.attachments(ctx, tx, c)
		if err != nil {
			return err
		}
		if bound {
			return domain.ErrHasAttachments
		}
		return s.campaigns.SoftDelete(ctx, tx, c.ID, deletedBy)
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Deleted campaign", "campaign_id", id, "account_id", accountID)
	return nil
}

// Clone copies a campaign's settings. Bindings are not copied; a pool or number tracks one
// campaign at a time.
func (s *CampaignService) Clone(ctx context.Context, accountID, id uuid.UUID) (*domain.Campaign, error) {
	src, err := s.campaigns.GetByID(ctx, s.db, id, accountID)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, CreateCampaignInput{
		AccountID: src.AccountID,
		CompanyID: src.CompanyID,
		Name:      src.Name + " (copy)",
		Type:      src.Type,
		Enabled:   src.Enabled,
		StartsAt:  src.StartsAt,
		EndsAt:    src.EndsAt,
	})
}

// AttachPool binds a pool to a web campaign.
func (s *CampaignService) AttachPool(ctx context.Context, accountID, campaignID, poolID uuid.UUID) (*numbersDomain.PhoneNumberPool, error) {
	var pool *numbersDomain.PhoneNumberPool
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetByIDForUpdate(ctx, tx, campaignID, accountID)
		if err != nil {
			return err
		}
		if !c.Type.UsesPool() {
			return fmt.Errorf("%w: only web campaigns use pools", domain.ErrWrongCampaignType)
		}

		current, err := s.pools.GetByCampaign(ctx, tx, c.ID)
		switch {
		case err == nil && current.ID == poolID:
			pool = current
			return nil
		case err == nil:
			return domain.ErrCampaignHasPool
		case !errors.Is(err, numbersDomain.ErrNotFound):
			return err
		}

		pool, err = s.pools.GetByIDForUpdate(ctx, tx, poolID, accountID)
		if err != nil {
			return err
		}
		if pool.Status != numbersDomain.StatusActive {
			return numbersDomain.ErrNotActive
		}
		if pool.CompanyID != c.CompanyID {
			return domain.ErrCompanyMismatch
		}
		if pool.CampaignID != nil {
			return domain.ErrAlreadyLinked
		}
		if err := s.pools.SetCampaign(ctx, tx, pool.ID, &c.ID); err != nil {
			return err
		}
		pool.CampaignID = &c.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Attached pool to campaign", "campaign_id", campaignID, "pool_id", poolID)
	return pool, nil
}

func (s *CampaignService) DetachPool(ctx context.Context, accountID, campaignID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetByIDForUpdate(ctx, tx, campaignID, accountID)
		if err != nil {
			return err
		}
		pool, err := s.pools.GetByCampaign(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		return s.pools.SetCampaign(ctx, tx, pool.ID, nil)
	})
}

// AttachNumber binds a single number to an offline campaign. Pool members are tracked through
// their pool and cannot be attached directly.
func (s *CampaignService) AttachNumber(ctx context.Context, accountID, campaignID, numberID uuid.UUID) (*numbersDomain.PhoneNumber, error) {
	var n *numbersDomain.PhoneNumber
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetByIDForUpdate(ctx, tx, campaignID, accountID)
		if err != nil {
			return err
		}
		if c.Type.UsesPool() {
			return fmt.Errorf("%w: web campaigns use a pool", domain.ErrWrongCampaignType)
		}
		n, err = s.phones.GetByIDForUpdate(ctx, tx, numberID, accountID)
		if err != nil {
			return err
		}
		if n.Status != numbersDomain.StatusActive {
			return numbersDomain.ErrNotActive
		}
		if n.CompanyID != c.CompanyID {
			return domain.ErrCompanyMismatch
		}
		if n.IsPoolMember() {
			return domain.ErrNumberInPool
		}
		if n.CampaignID != nil {
			if *n.CampaignID == c.ID {
				return nil
			}
			return domain.ErrAlreadyLinked
		}
		if err := s.phones.SetCampaign(ctx, tx, n.ID, &c.ID); err != nil {
			return err
		}
		n.CampaignID = &c.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Attached number to campaign", "campaign_id", campaignID, "phone_number_id", numberID)
	return n, nil
}

func (s *CampaignService) DetachNumber(ctx context.Context, accountID, campaignID, numberID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		c, err := s.campaigns.GetByIDForUpdate(ctx, tx, campaignID, accountID)
		if err != nil {
			return err
		}
		n, err := s.phones.GetByIDForUpdate(ctx, tx, numberID, accountID)
		if err != nil {
			return err
		}
		if n.CampaignID == nil || *n.CampaignID != c.ID {
			return numbersDomain.ErrNotFound
		}
		return s.phones.SetCampaign(ctx, tx, n.ID, nil)
	})
}

// ListNumbers returns the numbers a campaign tracks directly.
func (s *CampaignService) ListNumbers(ctx context.Context, accountID, campaignID uuid.UUID) ([]*numbersDomain.PhoneNumber, error) {
	c, err := s.campaigns.GetByID(ctx, s.db, campaignID, accountID)
	if err != nil {
		return nil, err
	}
	return s.phones.ListByCompany(ctx, s.db, c.CompanyID, numbersDomain.NumberFilter{CampaignID: &c.ID, Limit: 200})
}
