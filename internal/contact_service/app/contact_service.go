package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calltrack/golang_services/internal/contact_service/domain"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type ContactInput struct {
	Number    string
	FirstName string
	LastName  string
	Email     string
	City      string
	State     string
	Zip       string
}

type BlockNumberInput struct {
	// CompanyID nil blocks the number across the account.
	CompanyID *uuid.UUID
	Number    string
	Name      string
}

// ContactService keeps a company's contacts and the numbers its calls are refused from.
type ContactService struct {
	db       database.Querier
	contacts domain.ContactRepository
	blocked  domain.BlockedNumberRepository
	logger   *slog.Logger
}

func NewContactService(db database.Querier, contacts domain.ContactRepository, blocked domain.BlockedNumberRepository, logger *slog.Logger) *ContactService {
	return &ContactService{
		db:       db,
		contacts: contacts,
		blocked:  blocked,
		logger:   logger.With("service", "contacts"),
	}
}

func splitNumber(e164 string) (string, string, error) {
	cc, number, err := numbersDomain.SplitE164(e164)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidContact, err)
	}
	return cc, number, nil
}

func (s *ContactService) CreateContact(ctx context.Context, accountID, companyID uuid.UUID, in ContactInput) (*domain.Contact, error) {
	cc, number, err := splitNumber(in.Number)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Contact{
		ID:          uuid.New(),
		AccountID:   accountID,
		CompanyID:   companyID,
		CountryCode: cc,
		Number:      number,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.TrimSpace(in.Email),
		City:        in.City,
		State:       in.State,
		Zip:         in.Zip,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contacts.Create(ctx, s.db, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Contact created", "contact_id", c.ID, "company_id", companyID)
	return c, nil
}

func (s *ContactService) GetContact(ctx context.Context, accountID, id uuid.UUID) (*domain.Contact, error) {
	return s.contacts.GetByID(ctx, s.db, id, accountID)
}

func (s *ContactService) ListContacts(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]*domain.Contact, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.contacts.ListByCompany(ctx, s.db, companyID, offset, limit)
}

// UpdateContact replaces the contact's details. An empty number keeps the current one.
func (s *ContactService) UpdateContact(ctx context.Context, accountID, id uuid.UUID, in ContactInput) (*domain.Contact, error) {
	c, err := s.contacts.GetByID(ctx, s.db, id, accountID)
	if err != nil {
		return nil, err
	}
	if in.Number != "" {
		c.CountryCode, c.Number, err = splitNumber(in.Number)
		if err != nil {
			return nil, err
		}
	}
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strings.TrimSpace(in.Email)
	c.City, c.State, c.Zip = in.City, in.State, in.Zip
	if err := s.contacts.Update(ctx, s.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, accountID, id uuid.UUID) error {
	return s.contacts.SoftDelete(ctx, s.db, id, accountID)
}

// BlockNumber adds a block entry. A number already blocked in the same scope, or account-wide,
// is reported as a duplicate.
func (s *ContactService) BlockNumber(ctx context.Context, accountID uuid.UUID, in BlockNumberInput) (*domain.BlockedPhoneNumber, error) {
	cc, number, err := splitNumber(in.Number)
	if err != nil {
		return nil, err
	}
	existing, err := s.findExisting(ctx, accountID, in.CompanyID, cc, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEntry
	}
	now := time.Now().UTC()
	b := &domain.BlockedPhoneNumber{
		ID:          uuid.New(),
		AccountID:   accountID,
		CompanyID:   in.CompanyID,
		CountryCode: cc,
		Number:      number,
		Name:        strings.TrimSpace(in.Name),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.blocked.Create(ctx, s.db, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *ContactService) findExisting(ctx context.Context, accountID uuid.UUID, companyID *uuid.UUID, cc, number string) (*domain.BlockedPhoneNumber, error) {
	if companyID != nil {
		b, err := s.blocked.Match(ctx, s.db, accountID, *companyID, cc, number)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return b, err
	}
	// Without a company only account-wide entries are listed.
	all, err := s.blocked.ListByAccount(ctx, s.db, accountID, nil)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.CountryCode == cc && b.Number == number {
			return b, nil
		}
	}
	return nil, nil
}

func (s *ContactService) ListBlockedNumbers(ctx context.Context, accountID uuid.UUID, companyID *uuid.UUID) ([]*domain.BlockedPhoneNumber, error) {
	return s.blocked.ListByAccount(ctx, s.db, accountID, companyID)
}

func (s *ContactService) UnblockNumber(ctx context.Context, accountID, id uuid.UUID) error {
	if err := s.blocked.SoftDelete(ctx, s.db, id, accountID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Blocked number removed", "blocked_number_id", id, "account_id", accountID)
	return nil
}

// IsBlocked reports whether calls from e164 to the company must be refused.
func (s *ContactService) IsBlocked(ctx context.Context, accountID, companyID uuid.UUID, e164 string) (bool, error) {
	cc, number, err := splitNumber(e164)
	if err != nil {
		return false, err
	}
	_, err = s.blocked.Match(ctx, s.db, accountID, companyID, cc, number)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
