package bible

import "github.com/verbumapp/verbum/internal/pkg/entitlements"

// Translation is one available Bible text. RequiredTier gates paid texts.
type Translation struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Language     string            `json:"language"`
	RequiredTier entitlements.Tier `json:"required_tier"`
}

// DefaultTranslationID is the free text substituted whenever the caller is
// not entitled to the requested one.
const DefaultTranslationID = "acf"

// Translations lists every available text.
var Translations = []Translation{
	{ID: "acf", Name: "Almeida Corrigida Fiel", Language: "pt", RequiredTier: entitlements.TierFree},
	{ID: "kjv", Name: "King James (Português)", Language: "pt", RequiredTier: entitlements.TierBasic},
	{ID: "ntlh", Name: "Nova Tradução na Linguagem de Hoje", Language: "pt", RequiredTier: entitlements.TierBasic},
	{ID: "rvr", Name: "Reina Valera (Español)", Language: "es", RequiredTier: entitlements.TierPremium},
	{ID: "kjv-en", Name: "King James Version (English)", Language: "en", RequiredTier: entitlements.TierPremium},
}

// FindTranslation looks up a translation by its id.
func FindTranslation(id string) (Translation, bool) {
	for _, t := range Translations {
		if t.ID == id {
			return t, true
		}
	}
	return Translation{}, false
}
