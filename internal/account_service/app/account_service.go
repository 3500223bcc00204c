package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calltrack/golang_services/internal/account_service/domain"
	"github.com/google/uuid"
)

// AccountService manages the account record and its companies.
type AccountService struct {
	accountRepo domain.AccountRepository
	companyRepo domain.CompanyRepository
	usage       domain.CompanyUsageChecker
	logger      *slog.Logger
}

func NewAccountService(accountRepo domain.AccountRepository, companyRepo domain.CompanyRepository, usage domain.CompanyUsageChecker, logger *slog.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		companyRepo: companyRepo,
		usage:       usage,
		logger:      logger.With("component", "account_service"),
	}
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

func (s *AccountService) UpdateAccount(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.Name = name
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("updating account: %w", err)
	}
	return account, nil
}

type CompanyInput struct {
	Name     string
	Industry string
	Country  string
	Timezone string
}

func (s *AccountService) CreateCompany(ctx context.Context, accountID uuid.UUID, in CompanyInput) (*domain.Company, error) {
	company := domain.NewCompany(uuid.New(), accountID, in.Name, in.Industry, in.Country, in.Timezone)
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}
	return company, nil
}

// GetCompany returns the company only when it belongs to accountID.
func (s *AccountService) GetCompany(ctx context.Context, accountID, companyID uuid.UUID) (*domain.Company, error) {
	return s.companyRepo.GetByID(ctx, companyID, accountID)
}

func (s *AccountService) ListCompanies(ctx context.Context, accountID uuid.UUID, offset, limit int) ([]*domain.Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.companyRepo.ListByAccountID(ctx, accountID, offset, limit)
}

func (s *AccountService) UpdateCompany(ctx context.Context, accountID, companyID uuid.UUID, in CompanyInput) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID, accountID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		company.Name = in.Name
	}
	if in.Industry != "" {
		company.Industry = in.Industry
	}
	if in.Country != "" {
		company.Country = in.Country
	}
	if in.Timezone != "" {
		company.Timezone = in.Timezone
	}
	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("updating company: %w", err)
	}
	return company, nil
}

// DeleteCompany soft-deletes a company. Companies that still own live numbers are refused.
func (s *AccountService) DeleteCompany(ctx context.Context, accountID, companyID, deletedBy uuid.UUID) error {
	if _, err := s.companyRepo.GetByID(ctx, companyID, accountID); err != nil {
		return err
	}
	active, err := s.usage.CountActiveByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("checking company usage: %w", err)
	}
	if active > 0 {
		s.logger.WarnContext(ctx, "Refusing to delete company with active numbers", "company_id", companyID, "active_numbers", active)
		return domain.ErrCompanyInUse
	}
	if err := s.companyRepo.SoftDelete(ctx, companyID, accountID, deletedBy); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Company deleted", "company_id", companyID, "deleted_by", deletedBy)
	return nil
}
