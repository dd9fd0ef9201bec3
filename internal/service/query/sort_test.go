package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

func TestSort_ByName_CaseInsensitive(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Name: "montes"},
		{ID: "2", Name: "Almaviva"},
		{ID: "3", Name: "Casa Real"},
	}

	assert.Equal(t, []string{"2", "3", "1"}, ids(Sort(wines, SortByName, Ascending)))
	assert.Equal(t, []string{"1", "3", "2"}, ids(Sort(wines, SortByName, Descending)))
	// input untouched
	assert.Equal(t, []string{"1", "2", "3"}, ids(wines))
}

func TestSort_ByVintage_NonVintageIsZero(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Vintage: "2019"},
		{ID: "2", Vintage: "N/V"},
		{ID: "3", Vintage: "2005"},
		{ID: "4", Vintage: ""},
	}

	assert.Equal(t, []string{"2", "4", "3", "1"}, ids(Sort(wines, SortByVintage, Ascending)))
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(Sort(wines, SortByVintage, Descending)))
}

func TestSort_ByVintage_FloatKeywordsAreZero(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Vintage: "2019"},
		{ID: "2", Vintage: "NaN"},
		{ID: "3", Vintage: "2005"},
		{ID: "4", Vintage: "inf"},
		{ID: "5", Vintage: "1990"},
	}
	assert.Equal(t, []string{"2", "4", "5", "3", "1"}, ids(Sort(wines, SortByVintage, Ascending)))
	assert.Equal(t, []string{"1", "3", "5", "2", "4"}, ids(Sort(wines, SortByVintage, Descending)))
}

func TestSort_ByAcquisitionPrice_DigitsOnly(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", AcquisitionPrice: "$25.000"},
		{ID: "2", AcquisitionPrice: "N/A"},
		{ID: "3", AcquisitionPrice: "CLP 9.990"},
		{ID: "4", AcquisitionPrice: "120000"},
	}

	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(Sort(wines, SortByAcquisitionPrice, Ascending)))
}

func TestSort_ByStockAndCountry(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Stock: 6, Country: "francia"},
		{ID: "2", Stock: 1, Country: "Chile"},
		{ID: "3", Stock: 3, Country: "Argentina"},
	}

	assert.Equal(t, []string{"2", "3", "1"}, ids(Sort(wines, SortByStock, Ascending)))
	assert.Equal(t, []string{"3", "2", "1"}, ids(Sort(wines, SortByCountry, Ascending)))
}

func TestSort_StableForEveryKey(t *testing.T) {
	// Every wine shares every sort key (case differences included), so any
	// reordering would be a stability bug.
	wines := []models.Wine{
		{ID: "1", Name: "Reserva", Vintage: "2018", Country: "Chile", AcquisitionPrice: "$10.000", Stock: 2},
		{ID: "2", Name: "RESERVA", Vintage: "2018", Country: "chile", AcquisitionPrice: "10000", Stock: 2},
		{ID: "3", Name: "reserva", Vintage: "2018", Country: "CHILE", AcquisitionPrice: "CLP 10.000", Stock: 2},
	}
	keys := []SortKey{SortByName, SortByVintage, SortByCountry, SortByAcquisitionPrice, SortByStock}

	for _, key := range keys {
		for _, dir := range []Direction{Ascending, Descending} {
			assert.Equal(t, []string{"1", "2", "3"}, ids(Sort(wines, key, dir)), "key=%s dir=%s", key, dir)
		}
	}
}

func TestSort_StableAmongDistinctKeys(t *testing.T) {
	wines := []models.Wine{
		{ID: "a1", Vintage: "N/V"},
		{ID: "b1", Vintage: "2010"},
		{ID: "a2", Vintage: ""},
		{ID: "b2", Vintage: "2010"},
		{ID: "a3", Vintage: "NV"},
	}

	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, ids(Sort(wines, SortByVintage, Ascending)))
	assert.Equal(t, []string{"b1", "b2", "a1", "a2", "a3"}, ids(Sort(wines, SortByVintage, Descending)))
}
