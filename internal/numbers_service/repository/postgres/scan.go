package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/calltrack/golang_services/internal/numbers_service/domain"
)

func encodeRules(r *domain.SwapRules) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func decodeRules(raw []byte) (*domain.SwapRules, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	rules, err := domain.ParseSwapRules(raw)
	if err != nil {
		return nil, fmt.Errorf("stored swap rules: %w", err)
	}
	return rules, nil
}
