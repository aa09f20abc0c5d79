package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/hantverkarai/hantverkar-api/catalog"
)

// Content provenance markers. Fallback content is always served successfully;
// the source field lets the client label AI-assisted vs template text.
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)

const (
	descriptionModel = "gpt-4-turbo"
	materialsModel   = "gpt-3.5-turbo"

	maxStandardMaterials = 6
)

// Validation errors surfaced to the caller. Provider failures are never
// surfaced; they degrade to fallback content instead.
var (
	ErrMissingInput       = errors.New("input and work category are required")
	ErrMissingDescription = errors.New("description and work category are required")
)

// DescriptionResult is the outcome of a description draft request
type DescriptionResult struct {
	Description string `json:"description"`
	Source      string `json:"source"`
}

// MaterialsResult is the normalized outcome of a material suggestion request.
// Standard always holds between 1 and 6 entries.
type MaterialsResult struct {
	Standard   []string `json:"standard"`
	Consumable []string `json:"consumable"`
	Source     string   `json:"source"`
}

// AssistService orchestrates calls to the text-generation provider and
// normalizes whatever comes back. A single failed attempt goes straight to
// the category fallback; there are no retries.
type AssistService struct {
	provider OpenAIInterface
}

// NewAssistService creates an assist service on top of a provider client
func NewAssistService(provider OpenAIInterface) *AssistService {
	return &AssistService{provider: provider}
}

// DraftDescription generates a work description from the user's raw input.
// Empty input or category is a validation error; any provider failure yields
// the deterministic category fallback instead of an error.
func (s *AssistService) DraftDescription(ctx context.Context, input, category string) (DescriptionResult, error) {
	input = strings.TrimSpace(input)
	category = strings.TrimSpace(category)
	if input == "" || category == "" {
		return DescriptionResult{}, ErrMissingInput
	}

	profile := catalog.Lookup(category)

	text, err := s.provider.Chat(ctx, ChatRequest{
		Model:     descriptionModel,
		System:    "Du är en assistent för hantverkare som skriver strukturerade arbetsbeskrivningar för offerter. Skriv på svenska, konkret och professionellt.",
		User:      fmt.Sprintf("Skriv en arbetsbeskrivning för %s baserat på: %q.", profile.DisplayName, input),
		MaxTokens: 800,
	})
	if err != nil {
		log.Printf("assist: description provider call failed, using %s fallback: %v", category, err)
		return DescriptionResult{
			Description: profile.FallbackDescription(input),
			Source:      SourceTemplate,
		}, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("assist: description provider returned empty content, using %s fallback", category)
		return DescriptionResult{
			Description: profile.FallbackDescription(input),
			Source:      SourceTemplate,
		}, nil
	}

	return DescriptionResult{Description: text, Source: SourceAI}, nil
}

// SuggestMaterials asks the provider for a material list and normalizes the
// heterogeneous response shapes into {standard, consumable}. Unusable or
// failed responses degrade to the category fallback lists.
func (s *AssistService) SuggestMaterials(ctx context.Context, description, category string) (MaterialsResult, error) {
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if description == "" || category == "" {
		return MaterialsResult{}, ErrMissingDescription
	}

	profile := catalog.Lookup(category)

	raw, err := s.provider.Chat(ctx, ChatRequest{
		Model:     materialsModel,
		System:    `Du skapar materiallistor för hantverkare. Svara ENDAST med JSON: {"materials": ["Material 1", "Material 2", ...]}`,
		User:      fmt.Sprintf("Skapa %d material för %s baserat på: %q. Svara med JSON.", maxStandardMaterials, profile.DisplayName, description),
		JSONMode:  true,
		MaxTokens: 200,
	})
	if err != nil {
		log.Printf("assist: materials provider call failed, using %s fallback: %v", category, err)
		return fallbackMaterials(profile), nil
	}

	standard, consumable, ok := normalizeMaterials(raw)
	if !ok {
		log.Printf("assist: materials response had no usable entries, using %s fallback", category)
		return fallbackMaterials(profile), nil
	}

	if len(consumable) == 0 {
		consumable = profile.FallbackConsumables()
	}

	return MaterialsResult{
		Standard:   standard,
		Consumable: consumable,
		Source:     SourceAI,
	}, nil
}

func fallbackMaterials(profile catalog.Profile) MaterialsResult {
	standard := profile.FallbackStandardMaterials()
	if len(standard) > maxStandardMaterials {
		standard = standard[:maxStandardMaterials]
	}
	return MaterialsResult{
		Standard:   standard,
		Consumable: profile.FallbackConsumables(),
		Source:     SourceTemplate,
	}
}

// materialsEnvelope covers the object shapes the provider has been seen
// returning. Key aliases come from older provider prompts.
type materialsEnvelope struct {
	Materials        []json.RawMessage `json:"materials"`
	Standard         []json.RawMessage `json:"standard"`
	StandardMaterial []json.RawMessage `json:"standardMaterial"`
	Consumable       []json.RawMessage `json:"consumable"`
	Forbrukning      []json.RawMessage `json:"forbrukning"`
}

// normalizeMaterials turns an arbitrary provider payload into cleaned
// standard/consumable lists. ok is false when no usable standard entry
// survives cleaning, which callers treat the same as a provider failure.
func normalizeMaterials(raw string) (standard, consumable []string, ok bool) {
	var envelope materialsEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err == nil {
		switch {
		case len(envelope.Standard) > 0 || len(envelope.StandardMaterial) > 0:
			standard = cleanEntries(append(envelope.Standard, envelope.StandardMaterial...))
			consumable = cleanEntries(append(envelope.Consumable, envelope.Forbrukning...))
		case len(envelope.Materials) > 0:
			standard = cleanEntries(envelope.Materials)
		}
	} else {
		// Fall back to a bare JSON array of strings.
		var flat []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &flat); err != nil {
			return nil, nil, false
		}
		standard = cleanEntries(flat)
	}

	if len(standard) == 0 {
		return nil, nil, false
	}
	if len(standard) > maxStandardMaterials {
		standard = standard[:maxStandardMaterials]
	}
	return standard, consumable, true
}

// cleanEntries keeps non-empty string entries and discards everything else
func cleanEntries(entries []json.RawMessage) []string {
	var out []string
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
