package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	billingDomain "github.com/calltrack/golang_services/internal/billing_service/domain"
	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MaxQuantity bounds a single acquisition.
const MaxQuantity = 100

const defaultCountry = "US"

// Biller is the part of billing that provisioning charges against.
type Biller interface {
	EnsureSufficientBalance(ctx context.Context, q database.Querier, accountID uuid.UUID, class billingDomain.PriceClass, quantity int) error
	ChargeForNumbers(ctx context.Context, q database.Querier, accountID uuid.UUID, class billingDomain.PriceClass, quantity int, reference string) (*billingDomain.Transaction, error)
}

type acquirePolicy int

const (
	// policyAllOrNothing fails when fewer numbers are available than requested.
	policyAllOrNothing acquirePolicy = iota
	// policyBestEffort takes whatever is available, as long as it is at least one number.
	policyBestEffort
)

// AcquireRequest describes the numbers to provision and the config they start with.
type AcquireRequest struct {
	AccountID       uuid.UUID
	CompanyID       uuid.UUID
	Quantity        int
	Type            domain.NumberType
	Prefix          string
	Country         string
	PoolID          *uuid.UUID
	KeywordPoolID   *uuid.UUID
	Name            string
	Attribution     domain.Attribution
	ForwardToNumber string
	SwapRules       *domain.SwapRules
	// Reference is stored on the ledger entry, e.g. the pool id.
	Reference string
}

// AcquireResult reports what an acquisition produced.
type AcquireResult struct {
	Numbers       []*domain.PhoneNumber `json:"numbers"`
	Requested     int                   `json:"requested"`
	FromBank      int                   `json:"from_bank"`
	Purchased     int                   `json:"purchased"`
	Shortfall     int                   `json:"shortfall"`
	Warning       string                `json:"warning,omitempty"`
	TransactionID *uuid.UUID            `json:"transaction_id,omitempty"`
}

// Obtained is the number of numbers actually provisioned.
func (r *AcquireResult) Obtained() int { return r.FromBank + r.Purchased }

// Provisioner acquires numbers from the bank first and the carrier second.
type Provisioner struct {
	phoneRepo      domain.PhoneNumberRepository
	bankRepo       domain.BankedNumberRepository
	carrier        domain.Carrier
	biller         Biller
	webhookBaseURL string
	logger         *slog.Logger
}

func NewProvisioner(
	phoneRepo domain.PhoneNumberRepository,
	bankRepo domain.BankedNumberRepository,
	carrier domain.Carrier,
	biller Biller,
	webhookBaseURL string,
	logger *slog.Logger,
) *Provisioner {
	return &Provisioner{
		phoneRepo:      phoneRepo,
		bankRepo:       bankRepo,
		carrier:        carrier,
		biller:         biller,
		webhookBaseURL: strings.TrimRight(webhookBaseURL, "/"),
		logger:         logger.With("component", "provisioner"),
	}
}

// acquisition tracks carrier purchases made inside one transaction so they can be undone.
type acquisition struct {
	p         *Provisioner
	purchased []string
	results   []*AcquireResult
}

// transact runs fn in a transaction. Numbers bought from the carrier during fn are released again
// when the transaction does not commit.
func (p *Provisioner) transact(ctx context.Context, db database.TxBeginner, operation string, fn func(tx pgx.Tx, a *acquisition) error) error {
	start := time.Now()
	a := &acquisition{p: p}
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return fn(tx, a)
	})

	outcome := "success"
	if err != nil {
		outcome = "error"
		p.compensate(ctx, a.purchased)
	} else {
		for _, r := range a.results {
			numbersProvisionedCounter.WithLabelValues("bank").Add(float64(r.FromBank))
			numbersProvisionedCounter.WithLabelValues("carrier").Add(float64(r.Purchased))
		}
	}
	provisioningDurationHist.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	return err
}

func (p *Provisioner) compensate(ctx context.Context, sids []string) {
	if len(sids) == 0 {
		return
	}
	// The request context may already be cancelled; the carrier still has to hear about it.
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, sid := range sids {
		if err := p.carrier.Release(releaseCtx, sid); err != nil {
			p.logger.ErrorContext(ctx, "Failed to release number after rollback; it is orphaned at the carrier",
				"error", err, "sid", sid, "carrier", p.carrier.Name())
			numbersReleasedCounter.WithLabelValues("compensation", "error").Inc()
			continue
		}
		numbersReleasedCounter.WithLabelValues("compensation", "success").Inc()
	}
	p.logger.WarnContext(ctx, "Released carrier numbers from a rolled back provisioning", "count", len(sids))
}

func (a *acquisition) acquire(ctx context.Context, tx database.Querier, req AcquireRequest, policy acquirePolicy) (*AcquireResult, error) {
	p := a.p
	if req.Quantity < 1 || req.Quantity > MaxQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown number type %q", domain.ErrInvalidNumber, req.Type)
	}
	if req.Country == "" {
		req.Country = defaultCountry
	}
	logger := p.logger.With("account_id", req.AccountID, "company_id", req.CompanyID, "type", req.Type)

	banked, err := p.bankRepo.ClaimAvailable(ctx, tx, req.AccountID, req.Country, req.Type, req.Prefix, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("claiming banked numbers: %w", err)
	}

	var live []domain.AvailableNumber
	if remaining := req.Quantity - len(banked); remaining > 0 {
		live, err = p.carrier.SearchAvailable(ctx, domain.SearchCriteria{
			Country: req.Country, Type: req.Type, Prefix: req.Prefix, Limit: remaining,
		})
		if err != nil {
			return nil, fmt.Errorf("searching carrier inventory: %w", err)
		}
		if len(live) > remaining {
			live = live[:remaining]
		}
	}

	available := len(banked) + len(live)
	if available == 0 || (available < req.Quantity && policy == policyAllOrNothing) {
		logger.InfoContext(ctx, "Not enough numbers available", "requested", req.Quantity, "available", available)
		return nil, &domain.InsufficientNumbersError{Requested: req.Quantity, Available: available}
	}

	class := billingDomain.PriceClass(req.Type)
	if err := p.biller.EnsureSufficientBalance(ctx, tx, req.AccountID, class, available); err != nil {
		return nil, err
	}

	res := &AcquireResult{Requested: req.Quantity}
	now := time.Now().UTC()

	for _, b := range banked {
		if err := p.bankRepo.Delete(ctx, tx, b.ID); err != nil {
			return nil, fmt.Errorf("consuming banked number %s: %w", b.E164(), err)
		}
		n := req.newNumber(b.CarrierSID, b.CountryCode, b.Number, now)
		n.Voice, n.SMS, n.MMS = b.Voice, b.SMS, b.MMS
		if err := p.phoneRepo.Create(ctx, tx, n); err != nil {
			return nil, err
		}
		res.Numbers = append(res.Numbers, n)
		res.FromBank++
	}

	for _, avail := range live {
		bought, err := p.carrier.Purchase(ctx, domain.PurchaseRequest{
			E164:         avail.E164,
			VoiceURL:     p.webhookBaseURL + "/calls/inbound",
			SMSURL:       p.webhookBaseURL + "/sms/inbound",
			FriendlyName: req.Name,
		})
		if err != nil {
			carrierPurchaseFailures.Inc()
			logger.WarnContext(ctx, "Carrier purchase failed; skipping number", "error", err, "number", avail.E164)
			continue
		}
		e164 := bought.E164
		if e164 == "" {
			e164 = avail.E164
		}
		countryCode, national, err := domain.SplitE164(e164)
		if err != nil {
			carrierPurchaseFailures.Inc()
			logger.ErrorContext(ctx, "Carrier returned an unusable number; releasing it", "error", err, "sid", bought.SID)
			p.compensate(ctx, []string{bought.SID})
			continue
		}
		a.purchased = append(a.purchased, bought.SID)

		n := req.newNumber(bought.SID, countryCode, national, now)
		n.Voice, n.SMS, n.MMS = bought.Voice, bought.SMS, bought.MMS
		if err := p.phoneRepo.Create(ctx, tx, n); err != nil {
			return nil, err
		}
		res.Numbers = append(res.Numbers, n)
		res.Purchased++
	}

	if res.Obtained() == 0 {
		logger.ErrorContext(ctx, "No numbers could be provisioned", "requested", req.Quantity, "available", available)
		return nil, domain.ErrPurchaseFailed
	}
	res.Shortfall = req.Quantity - res.Obtained()
	if res.Shortfall > 0 {
		res.Warning = fmt.Sprintf("only %d of %d requested numbers could be provisioned", res.Obtained(), req.Quantity)
	}

	txn, err := p.biller.ChargeForNumbers(ctx, tx, req.AccountID, class, res.Obtained(), req.Reference)
	if err != nil {
		return nil, fmt.Errorf("charging for numbers: %w", err)
	}
	if txn != nil {
		res.TransactionID = &txn.ID
	}

	logger.InfoContext(ctx, "Provisioned numbers", "requested", req.Quantity, "from_bank", res.FromBank,
		"purchased", res.Purchased, "shortfall", res.Shortfall)
	a.results = append(a.results, res)
	return res, nil
}

func (req AcquireRequest) newNumber(sid, countryCode, national string, now time.Time) *domain.PhoneNumber {
	n := &domain.PhoneNumber{
		ID:              uuid.New(),
		AccountID:       req.AccountID,
		CompanyID:       req.CompanyID,
		PoolID:          req.PoolID,
		KeywordPoolID:   req.KeywordPoolID,
		CarrierSID:      sid,
		CountryCode:     countryCode,
		Number:          national,
		Type:            req.Type,
		Name:            req.Name,
		Attribution:     req.Attribution,
		ForwardToNumber: req.ForwardToNumber,
		Status:          domain.StatusActive,
		PurchasedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.SwapRules != nil {
		rules := *req.SwapRules
		n.SwapRules = &rules
	}
	return n
}
