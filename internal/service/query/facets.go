package query

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// collationLocale orders facet values the way the cellar's users read them.
var collationLocale = language.MustParse("es-CL")

// Facets holds the distinct values offered as filter options.
type Facets struct {
	Countries []string `json:"countries"`
	Grapes    []string `json:"grapes"`
}

// ExtractFacets collects the distinct non-empty countries and grape varieties
// of wines, each sorted with a locale-aware collator. Values are kept exactly
// as stored, so "chile" and "Chile" are two facets.
func ExtractFacets(wines []models.Wine) Facets {
	countries := make([]string, 0)
	grapes := make([]string, 0)
	seenCountry := map[string]struct{}{}
	seenGrape := map[string]struct{}{}

	for _, w := range wines {
		if w.Country != "" {
			if _, ok := seenCountry[w.Country]; !ok {
				seenCountry[w.Country] = struct{}{}
				countries = append(countries, w.Country)
			}
		}
		if w.GrapeVariety != "" {
			if _, ok := seenGrape[w.GrapeVariety]; !ok {
				seenGrape[w.GrapeVariety] = struct{}{}
				grapes = append(grapes, w.GrapeVariety)
			}
		}
	}

	// Collators carry scratch buffers, so each call gets its own.
	collate.New(collationLocale).SortStrings(countries)
	collate.New(collationLocale).SortStrings(grapes)

	return Facets{Countries: countries, Grapes: grapes}
}
