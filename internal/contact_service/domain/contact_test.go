package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBlockedPhoneNumber_Scope(t *testing.T) {
	companyID := uuid.New()
	b := &BlockedPhoneNumber{CountryCode: "1", Number: "4155550100"}
	assert.True(t, b.AccountWide())
	assert.Equal(t, "+14155550100", b.E164())

	b.CompanyID = &companyID
	assert.False(t, b.AccountWide())
}
