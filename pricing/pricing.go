// Package pricing computes the price breakdown for an offer from its raw
// inputs. The calculation is pure: no rounding, no side effects, identical
// inputs always produce identical output. Presentation rounding belongs to
// the rendering layer so recomputation never compounds rounding error.
package pricing

import "github.com/hantverkarai/hantverkar-api/catalog"

// VatRatePercent is the single supported tax regime (Swedish VAT).
const VatRatePercent = 25

// Input holds the raw pricing inputs for one offer.
type Input struct {
	Category     string
	Hours        float64
	HourlyRate   float64
	MaterialCost float64
}

// Breakdown contains the derived pricing fields. These are always recomputed
// from the inputs, never edited independently.
type Breakdown struct {
	HourlyRate  float64
	LaborCost   float64
	TotalExVat  float64
	VatRate     float64
	VatAmount   float64
	TotalIncVat float64
}

// Calculate derives the full price breakdown. A non-positive hourly rate is
// replaced by the category default from the catalog; unrecognized categories
// resolve to the base default rate rather than failing, since new categories
// may appear before the catalog is updated.
func Calculate(in Input) Breakdown {
	rate := in.HourlyRate
	if rate <= 0 {
		rate = catalog.DefaultHourlyRate(in.Category)
	}

	laborCost := in.Hours * rate
	totalExVat := laborCost + in.MaterialCost
	vatAmount := totalExVat * VatRatePercent / 100
	totalIncVat := totalExVat + vatAmount

	return Breakdown{
		HourlyRate:  rate,
		LaborCost:   laborCost,
		TotalExVat:  totalExVat,
		VatRate:     VatRatePercent,
		VatAmount:   vatAmount,
		TotalIncVat: totalIncVat,
	}
}
