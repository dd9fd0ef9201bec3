package query

import (
	"sort"
	"strings"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// Sort returns a copy of wines ordered by key. The sort is stable in both
// directions: wines with equal keys keep their input order.
func Sort(wines []models.Wine, key SortKey, dir Direction) []models.Wine {
	out := append([]models.Wine(nil), wines...)
	cmp := comparator(key)

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

// comparator returns a three-way comparison for key.
func comparator(key SortKey) func(a, b models.Wine) int {
	switch key {
	case SortByVintage:
		return func(a, b models.Wine) int {
			return compareFloat(models.ParseNumber(a.Vintage), models.ParseNumber(b.Vintage))
		}
	case SortByStock:
		return func(a, b models.Wine) int {
			return compareFloat(float64(a.Stock), float64(b.Stock))
		}
	case SortByAcquisitionPrice:
		return func(a, b models.Wine) int {
			return compareInt(models.ParseDigits(a.AcquisitionPrice), models.ParseDigits(b.AcquisitionPrice))
		}
	case SortByCountry:
		return func(a, b models.Wine) int {
			return strings.Compare(fold(a.Country), fold(b.Country))
		}
	default:
		return func(a, b models.Wine) int {
			return strings.Compare(fold(a.Name), fold(b.Name))
		}
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
