// Package query derives the views shown over the cellar: filter facets,
// search/filter predicates, typed sorting and aggregate statistics. Every
// function is pure and leaves its input untouched.
package query

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// SortKey selects the field a projection is ordered by.
type SortKey string

const (
	SortByName             SortKey = "name"
	SortByVintage          SortKey = "vintage"
	SortByCountry          SortKey = "country"
	SortByAcquisitionPrice SortKey = "acquisitionPrice"
	SortByStock            SortKey = "stock"
)

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Criteria is everything a caller can choose when listing the cellar.
type Criteria struct {
	Search    string
	Country   string
	Grape     string
	SortKey   SortKey
	Direction Direction
}

// DefaultCriteria lists everything by name, A to Z.
func DefaultCriteria() Criteria {
	return Criteria{SortKey: SortByName, Direction: Ascending}
}

// ParseSortKey validates a sort key coming from the outside. An empty value
// selects SortByName.
func ParseSortKey(value string) (SortKey, error) {
	switch SortKey(value) {
	case "":
		return SortByName, nil
	case SortByName, SortByVintage, SortByCountry, SortByAcquisitionPrice, SortByStock:
		return SortKey(value), nil
	}
	return "", fmt.Errorf("unsupported sort key %q", value)
}

// ParseDirection validates a direction. An empty value selects Ascending.
func ParseDirection(value string) (Direction, error) {
	switch Direction(strings.ToLower(value)) {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("unsupported sort direction %q", value)
}

// Matches reports whether wine passes the search and filter dimensions.
func (c Criteria) Matches(wine models.Wine) bool {
	if c.Search != "" {
		needle := fold(c.Search)
		if !strings.Contains(fold(wine.Name), needle) && !strings.Contains(fold(wine.Producer), needle) {
			return false
		}
	}
	if c.Country != "" && wine.Country != c.Country {
		return false
	}
	if c.Grape != "" && wine.GrapeVariety != c.Grape {
		return false
	}
	return true
}

// Filter keeps the wines matching c, in input order.
func Filter(wines []models.Wine, c Criteria) []models.Wine {
	out := make([]models.Wine, 0, len(wines))
	for _, w := range wines {
		if c.Matches(w) {
			out = append(out, w)
		}
	}
	return out
}

// Project filters and then sorts according to c.
func Project(wines []models.Wine, c Criteria) []models.Wine {
	key := c.SortKey
	if key == "" {
		key = SortByName
	}
	return Sort(Filter(wines, c), key, c.Direction)
}

func fold(s string) string {
	return cases.Fold().String(s)
}
