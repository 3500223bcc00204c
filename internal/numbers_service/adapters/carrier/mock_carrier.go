package carrier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
)

var ErrSimulatedFailure = errors.New("mock carrier simulated failure")

var countryCallingCodes = map[string]string{"US": "1", "CA": "1", "GB": "44", "AU": "61"}

// MockCarrier is the carrier used in test mode. It serves a deterministic inventory and keeps
// every call so tests can assert on them.
type MockCarrier struct {
	logger *slog.Logger

	mu        sync.Mutex
	seq       int
	purchased map[string]string // sid -> e164
	released  []string

	// Inventory caps how many numbers a search returns; zero means unlimited.
	Inventory int
	// FailPurchase makes purchases of the listed numbers fail.
	FailPurchase map[string]bool
	FailRelease  bool
	FailSearch   bool
}

func NewMockCarrier(logger *slog.Logger) *MockCarrier {
	return &MockCarrier{
		logger:       logger.With("carrier", "mock"),
		purchased:    make(map[string]string),
		FailPurchase: make(map[string]bool),
	}
}

func (m *MockCarrier) Name() string { return "mock" }

func (m *MockCarrier) SearchAvailable(ctx context.Context, criteria domain.SearchCriteria) (_ []domain.AvailableNumber, err error) {
	defer observe(m.Name(), "search", time.Now(), &err)
	if m.FailSearch {
		return nil, ErrSimulatedFailure
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cc, ok := countryCallingCodes[criteria.Country]
	if !ok {
		cc = "1"
	}
	prefix := criteria.Prefix
	if prefix == "" {
		prefix = "555"
		if criteria.Type == domain.NumberTypeTollFree {
			prefix = "800"
		}
	}
	count := criteria.Limit
	if m.Inventory > 0 && count > m.Inventory {
		count = m.Inventory
	}

	out := make([]domain.AvailableNumber, 0, count)
	for i := 0; i < count; i++ {
		m.seq++
		national := fmt.Sprintf("%s%0*d", prefix, 10-len(prefix), m.seq)
		if len(national) > 10 {
			national = national[:10]
		}
		out = append(out, domain.AvailableNumber{E164: "+" + cc + national, Voice: true, SMS: true})
	}
	m.logger.DebugContext(ctx, "Mock carrier search", "count", len(out))
	return out, nil
}

func (m *MockCarrier) Purchase(ctx context.Context, req domain.PurchaseRequest) (_ *domain.PurchasedNumber, err error) {
	defer observe(m.Name(), "purchase", time.Now(), &err)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPurchase[req.E164] {
		m.logger.WarnContext(ctx, "Mock carrier purchase failure", "number", req.E164)
		return nil, ErrSimulatedFailure
	}
	sid := fmt.Sprintf("PNMOCK%08d", len(m.purchased)+1)
	m.purchased[sid] = req.E164
	m.logger.InfoContext(ctx, "Mock carrier purchased number", "number", req.E164, "sid", sid)
	return &domain.PurchasedNumber{SID: sid, E164: req.E164, Voice: true, SMS: true}, nil
}

func (m *MockCarrier) Release(ctx context.Context, sid string) (err error) {
	defer observe(m.Name(), "release", time.Now(), &err)
	if m.FailRelease {
		return ErrSimulatedFailure
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.purchased, sid)
	m.released = append(m.released, sid)
	m.logger.InfoContext(ctx, "Mock carrier released number", "sid", sid)
	return nil
}

// Released returns the SIDs released so far, in call order.
func (m *MockCarrier) Released() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.released...)
}

// Owned reports how many purchased numbers have not been released.
func (m *MockCarrier) Owned() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.purchased)
}
