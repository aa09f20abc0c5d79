package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hantverkarai/hantverkar-api/catalog"
)

func TestDraftDescription_EmptyInputFailsFast(t *testing.T) {
	mock := NewMockOpenAIService()
	svc := NewAssistService(mock)

	tests := []struct {
		name     string
		input    string
		category string
	}{
		{"empty input", "", "renovation"},
		{"blank input", "   ", "renovation"},
		{"empty category", "badrum renovering", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.DraftDescription(context.Background(), tt.input, tt.category)
			assert.ErrorIs(t, err, ErrMissingInput)
		})
	}

	// Validation failures must never reach the provider.
	assert.Equal(t, 0, mock.CallCount())
}

func TestDraftDescription_UsesProviderText(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith("  Renovering av badrum enligt BBR.\n")
	svc := NewAssistService(mock)

	result, err := svc.DraftDescription(context.Background(), "badrum renovering", "renovation")
	assert.NoError(t, err)
	assert.Equal(t, "Renovering av badrum enligt BBR.", result.Description)
	assert.Equal(t, SourceAI, result.Source)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, descriptionModel, mock.LastCall().Model)
}

func TestDraftDescription_ProviderFailureFallsBack(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.FailWith(errors.New("context deadline exceeded"))
	svc := NewAssistService(mock)

	result, err := svc.DraftDescription(context.Background(), "badrum renovering", "renovation")
	assert.NoError(t, err, "provider outage must not surface as an error")
	assert.Equal(t, SourceTemplate, result.Source)
	assert.Contains(t, result.Description, "badrum renovering")
	assert.Contains(t, result.Description, "Renovering omfattar")
	// Exactly one attempt, no retries.
	assert.Equal(t, 1, mock.CallCount())
}

func TestDraftDescription_EmptyProviderContentFallsBack(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith("   \n\t ")
	svc := NewAssistService(mock)

	result, err := svc.DraftDescription(context.Background(), "dra om el i kök", "electrical")
	assert.NoError(t, err)
	assert.Equal(t, SourceTemplate, result.Source)
	assert.Contains(t, result.Description, "Elarbete omfattar")
}

func TestSuggestMaterials_EmptyInputFailsFast(t *testing.T) {
	mock := NewMockOpenAIService()
	svc := NewAssistService(mock)

	_, err := svc.SuggestMaterials(context.Background(), "", "plumbing")
	assert.ErrorIs(t, err, ErrMissingDescription)
	_, err = svc.SuggestMaterials(context.Background(), "byta blandare", "  ")
	assert.ErrorIs(t, err, ErrMissingDescription)
	assert.Equal(t, 0, mock.CallCount())
}

func TestSuggestMaterials_FlatListGetsFallbackConsumables(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith(`{"materials": ["X", "Y"]}`)
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "byta blandare", "plumbing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, result.Standard)
	assert.Equal(t, catalog.Lookup("plumbing").FallbackConsumables(), result.Consumable)
	assert.Equal(t, SourceAI, result.Source)
}

func TestSuggestMaterials_BareArrayShape(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith(`["Rör", "Kopplingar", "Tätning"]`)
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "byta rör", "plumbing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Rör", "Kopplingar", "Tätning"}, result.Standard)
	assert.Equal(t, SourceAI, result.Source)
}

func TestSuggestMaterials_StructuredShape(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith(`{"standard": ["Kabel", "Dosor"], "consumable": ["Buntband"]}`)
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "nytt uttag", "electrical")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Kabel", "Dosor"}, result.Standard)
	assert.Equal(t, []string{"Buntband"}, result.Consumable)
}

func TestSuggestMaterials_LegacyKeyAliases(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith(`{"standardMaterial": ["Gipsskiva"], "forbrukning": ["Skruv"]}`)
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "nytt innertak", "renovation")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Gipsskiva"}, result.Standard)
	assert.Equal(t, []string{"Skruv"}, result.Consumable)
}

func TestSuggestMaterials_DiscardsNonStringAndBlankEntries(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith(`{"materials": ["Kakel", 42, "", null, "  ", "Fog", {"x":1}]}`)
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "kakla badrum", "renovation")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Kakel", "Fog"}, result.Standard)
}

func TestSuggestMaterials_CapsStandardAtSix(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.RespondWith(`{"materials": ["a","b","c","d","e","f","g","h"]}`)
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "stor renovering", "renovation")
	assert.NoError(t, err)
	assert.Len(t, result.Standard, 6)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, result.Standard)
}

func TestSuggestMaterials_UnusableResponsesFallBack(t *testing.T) {
	payloads := []string{
		`{"materials": []}`,
		`{"materials": [42, null, ""]}`,
		`{}`,
		`not json at all`,
		`"just a string"`,
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			mock := NewMockOpenAIService()
			mock.RespondWith(payload)
			svc := NewAssistService(mock)

			result, err := svc.SuggestMaterials(context.Background(), "byta blandare", "plumbing")
			assert.NoError(t, err)
			assert.Equal(t, SourceTemplate, result.Source)
			assert.Equal(t, catalog.Lookup("plumbing").FallbackStandardMaterials(), result.Standard)
			assert.Equal(t, catalog.Lookup("plumbing").FallbackConsumables(), result.Consumable)
		})
	}
}

func TestSuggestMaterials_ProviderFailureFallsBack(t *testing.T) {
	mock := NewMockOpenAIService()
	mock.FailWith(errors.New("connection refused"))
	svc := NewAssistService(mock)

	result, err := svc.SuggestMaterials(context.Background(), "byta blandare", "plumbing")
	assert.NoError(t, err)
	assert.Equal(t, SourceTemplate, result.Source)
	assert.NotEmpty(t, result.Standard)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSuggestMaterials_AlwaysReturnsOneToSixStandardEntries(t *testing.T) {
	// Fallback totality across every response shape, including for categories
	// the catalog does not know.
	payloads := []string{
		`{"materials": ["X","Y"]}`,
		`["a","b","c","d","e","f","g"]`,
		`{"standard": []}`,
		`garbage`,
		``,
	}
	categories := []string{"renovation", "plumbing", "electrical", "roofing"}

	for _, payload := range payloads {
		for _, category := range categories {
			mock := NewMockOpenAIService()
			mock.RespondWith(payload)
			svc := NewAssistService(mock)

			result, err := svc.SuggestMaterials(context.Background(), "whatever work", category)
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, len(result.Standard), 1, "payload %q category %q", payload, category)
			assert.LessOrEqual(t, len(result.Standard), 6, "payload %q category %q", payload, category)
		}
	}
}
