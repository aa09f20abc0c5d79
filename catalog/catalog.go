// Package catalog holds the per-category configuration used for pricing
// defaults and assistant fallback content. Unknown categories always resolve
// to the default profile; lookups never fail so new categories can appear in
// stored offers before the catalog learns about them.
package catalog

import (
	"fmt"
	"strings"
)

// Work categories supported by the catalog.
const (
	CategoryRenovation = "renovation"
	CategoryPlumbing   = "plumbing"
	CategoryElectrical = "electrical"
)

// BaseHourlyRate is used when a category has no profile of its own.
const BaseHourlyRate = 500

// Profile bundles everything category-specific: the default hourly rate and
// the deterministic fallback content served when the text-generation provider
// is unavailable.
type Profile struct {
	DisplayName         string
	DefaultHourlyRate   float64
	DescriptionTemplate string
	StandardMaterials   []string
	Consumables         []string
}

var profiles = map[string]Profile{
	CategoryRenovation: {
		DisplayName:         "Renovering",
		DefaultHourlyRate:   500,
		DescriptionTemplate: "Renovering omfattar %s. Arbetet utförs enligt byggnadstekniska krav i BBR. Alla moment inkluderar materialhantering, installation och slutkontroll.",
		StandardMaterials: []string{
			"Gipsskiva",
			"Träreglar",
			"Isolering",
			"Färg och spackel",
			"Golvmaterial",
			"Kakel",
		},
		Consumables: []string{
			"Förbrukningsmaterial",
			"Skyddsutrustning",
			"Verktyg",
			"Städmaterial",
		},
	},
	CategoryPlumbing: {
		DisplayName:         "VVS-arbete",
		DefaultHourlyRate:   650,
		DescriptionTemplate: "VVS-arbete omfattar %s. Installation utförs enligt SS-EN 806 standard för vatteninstallationer. Alla moment inkluderar materialhantering, installation och tryckprovning.",
		StandardMaterials: []string{
			"Rör och kopplingar",
			"Tätningar",
			"Kranar och ventiler",
			"Fogmassa",
			"Isolering",
			"Avloppsdelar",
		},
		Consumables: []string{
			"Förbrukningsmaterial",
			"Skyddsutrustning",
			"Verktyg",
			"Städmaterial",
		},
	},
	CategoryElectrical: {
		DisplayName:         "Elarbete",
		DefaultHourlyRate:   700,
		DescriptionTemplate: "Elarbete omfattar %s. Installation utförs enligt SS-EN 60364 standard för lågspänningsinstallationer. Alla moment inkluderar materialhantering, installation och säkerhetsmätning.",
		StandardMaterials: []string{
			"Kabel och ledningar",
			"Kopplingsdosor",
			"Uttag och brytare",
			"Säkringar",
			"Installationsrör",
			"Jordledare",
		},
		Consumables: []string{
			"Förbrukningsmaterial",
			"Skyddsutrustning",
			"Verktyg",
			"Städmaterial",
		},
	},
}

var defaultProfile = Profile{
	DisplayName:         "Arbete",
	DefaultHourlyRate:   BaseHourlyRate,
	DescriptionTemplate: "Arbete omfattar %s. Arbetet utförs enligt gällande föreskrifter och branschstandard. Alla moment inkluderar materialhantering, installation och slutkontroll.",
	StandardMaterials:   []string{"Standardmaterial"},
	Consumables: []string{
		"Förbrukningsmaterial",
		"Skyddsutrustning",
		"Verktyg",
		"Städmaterial",
	},
}

// Lookup returns the profile for a work category, falling back to the default
// profile for anything it does not recognize.
func Lookup(category string) Profile {
	if p, ok := profiles[strings.ToLower(strings.TrimSpace(category))]; ok {
		return p
	}
	return defaultProfile
}

// DefaultHourlyRate returns the default hourly rate for a work category.
func DefaultHourlyRate(category string) float64 {
	return Lookup(category).DefaultHourlyRate
}

// IsKnownCategory reports whether the category has its own profile.
func IsKnownCategory(category string) bool {
	_, ok := profiles[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

// FallbackDescription renders the deterministic description used when the
// text-generation provider is unavailable.
func (p Profile) FallbackDescription(input string) string {
	return fmt.Sprintf(p.DescriptionTemplate, strings.ToLower(strings.TrimSpace(input)))
}

// FallbackStandardMaterials returns a copy of the fallback standard-material
// list so callers can mutate their slice freely.
func (p Profile) FallbackStandardMaterials() []string {
	out := make([]string, len(p.StandardMaterials))
	copy(out, p.StandardMaterials)
	return out
}

// FallbackConsumables returns a copy of the fallback consumables list.
func (p Profile) FallbackConsumables() []string {
	out := make([]string, len(p.Consumables))
	copy(out, p.Consumables)
	return out
}
