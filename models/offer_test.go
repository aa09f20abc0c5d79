package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusDraft, StatusSent, StatusAccepted, StatusRejected} {
		assert.True(t, ValidStatus(s), s)
	}
	for _, s := range []string{"", "Draft", "archived", "pending", "accepted "} {
		assert.False(t, ValidStatus(s), s)
	}
}

func TestRecomputePricing_DerivesAllFields(t *testing.T) {
	o := Offer{
		WorkCategory: "renovation",
		Hours:        10,
		HourlyRate:   500,
		MaterialCost: 2000,
	}
	o.RecomputePricing()

	assert.Equal(t, float64(5000), o.LaborCost)
	assert.Equal(t, float64(7000), o.TotalExVat)
	assert.Equal(t, float64(25), o.VatRate)
	assert.Equal(t, float64(1750), o.VatAmount)
	assert.Equal(t, float64(8750), o.TotalIncVat)
}

func TestRecomputePricing_ClearsStaleDerivedFields(t *testing.T) {
	o := Offer{
		WorkCategory: "plumbing",
		Hours:        4,
		HourlyRate:   650,
		MaterialCost: 0,
		// Stale values from a previous input set.
		LaborCost:   99999,
		TotalIncVat: 99999,
	}
	o.RecomputePricing()

	assert.Equal(t, float64(2600), o.LaborCost)
	assert.Equal(t, float64(3250), o.TotalIncVat)
}
