package app

import (
	"fmt"
	"testing"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

type numbersFixture struct {
	db        pgxmock.PgxPoolIface
	phones    *MockPhoneNumberRepository
	bank      *MockBankedNumberRepository
	pools     *MockPoolRepository
	kwPools   *MockKeywordPoolRepository
	sessions  *MockKeywordSessionRepository
	campaigns *MockCampaignLinks
	carrier   *MockCarrier
	biller    *MockBiller
	publisher *MockPublisher

	provisioner *Provisioner
	accountID   uuid.UUID
	companyID   uuid.UUID
}

func newNumbersFixture(t *testing.T) *numbersFixture {
	t.Helper()
	db, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	f := &numbersFixture{
		db:        db,
		phones:    new(MockPhoneNumberRepository),
		bank:      new(MockBankedNumberRepository),
		pools:     new(MockPoolRepository),
		kwPools:   new(MockKeywordPoolRepository),
		sessions:  new(MockKeywordSessionRepository),
		campaigns: new(MockCampaignLinks),
		carrier:   new(MockCarrier),
		biller:    new(MockBiller),
		publisher: new(MockPublisher),
		accountID: uuid.New(),
		companyID: uuid.New(),
	}
	f.provisioner = NewProvisioner(f.phones, f.bank, f.carrier, f.biller, "https://hooks.example.com/v1/hooks/", testLogger())
	return f
}

func (f *numbersFixture) releaseService(testMode, withPublisher bool) *ReleaseService {
	deps := ReleaseServiceDeps{
		DB:              f.db,
		PhoneRepo:       f.phones,
		BankRepo:        f.bank,
		PoolRepo:        f.pools,
		KeywordPoolRepo: f.kwPools,
		SessionRepo:     f.sessions,
		Campaigns:       f.campaigns,
		Carrier:         f.carrier,
		TestMode:        testMode,
	}
	if withPublisher {
		deps.Publisher = f.publisher
	}
	return NewReleaseService(deps, testLogger())
}

func (f *numbersFixture) assertMocks(t *testing.T) {
	t.Helper()
	require.NoError(t, f.db.ExpectationsWereMet())
	f.phones.AssertExpectations(t)
	f.bank.AssertExpectations(t)
	f.pools.AssertExpectations(t)
	f.carrier.AssertExpectations(t)
	f.biller.AssertExpectations(t)
}

func bankedNumbers(n int, releasedBy uuid.UUID) []*domain.BankedPhoneNumber {
	out := make([]*domain.BankedPhoneNumber, n)
	for i := range out {
		out[i] = &domain.BankedPhoneNumber{
			ID:                  uuid.New(),
			ReleasedByAccountID: releasedBy,
			CarrierSID:          fmt.Sprintf("PNBANK%04d", i),
			CountryCode:         "1",
			Number:              fmt.Sprintf("415555%04d", i),
			Country:             "US",
			Type:                domain.NumberTypeLocal,
			Voice:               true,
		}
	}
	return out
}

func liveNumbers(n int) []domain.AvailableNumber {
	out := make([]domain.AvailableNumber, n)
	for i := range out {
		out[i] = domain.AvailableNumber{E164: fmt.Sprintf("+1212555%04d", i), Voice: true, SMS: true}
	}
	return out
}

func activeNumber(accountID uuid.UUID) *domain.PhoneNumber {
	return &domain.PhoneNumber{
		ID:          uuid.New(),
		AccountID:   accountID,
		CompanyID:   uuid.New(),
		CarrierSID:  "PN" + uuid.NewString()[:8],
		CountryCode: "1",
		Number:      "5551234567",
		Type:        domain.NumberTypeLocal,
		Status:      domain.StatusActive,
	}
}
