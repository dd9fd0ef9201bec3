package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

func ids(wines []models.Wine) []string {
	out := make([]string, 0, len(wines))
	for _, w := range wines {
		out = append(out, w.ID)
	}
	return out
}

func TestCriteria_FilterComposition(t *testing.T) {
	wines := []models.Wine{
		{ID: "A", Name: "Uno", Country: "Chile", GrapeVariety: "Malbec"},
		{ID: "B", Name: "Dos", Country: "Chile", GrapeVariety: "Syrah"},
		{ID: "C", Name: "Tres", Country: "Argentina", GrapeVariety: "Malbec"},
	}

	got := Filter(wines, Criteria{Country: "Chile", Grape: "Malbec"})
	assert.Equal(t, []string{"A"}, ids(got))

	assert.Equal(t, []string{"A", "B"}, ids(Filter(wines, Criteria{Country: "Chile"})))
	assert.Equal(t, []string{"A", "C"}, ids(Filter(wines, Criteria{Grape: "Malbec"})))
	assert.Equal(t, []string{"A", "B", "C"}, ids(Filter(wines, Criteria{})))
	assert.Empty(t, Filter(wines, Criteria{Country: "chile"}))
}

func TestCriteria_SearchNameOrProducer(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Name: "Catena Zapata Malbec", Producer: "Catena Zapata"},
		{ID: "2", Name: "Almaviva", Producer: "Viña Almaviva"},
		{ID: "3", Name: "Gran Reserva", Producer: "Concha y Toro"},
	}

	assert.Equal(t, []string{"1"}, ids(Filter(wines, Criteria{Search: "zapata"})))
	assert.Equal(t, []string{"2"}, ids(Filter(wines, Criteria{Search: "VIÑA"})))
	assert.Equal(t, []string{"3"}, ids(Filter(wines, Criteria{Search: "toro"})))
	assert.Empty(t, Filter(wines, Criteria{Search: "merlot"}))
}

func TestCriteria_SearchAndFiltersAreAnded(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Name: "Reserva", Country: "Chile"},
		{ID: "2", Name: "Reserva", Country: "Argentina"},
	}
	assert.Equal(t, []string{"2"}, ids(Filter(wines, Criteria{Search: "res", Country: "Argentina"})))
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByName, key)

	for _, k := range []SortKey{SortByName, SortByVintage, SortByCountry, SortByAcquisitionPrice, SortByStock} {
		got, err := ParseSortKey(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err = ParseSortKey("producer")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	dir, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, dir)

	dir, err = ParseDirection("DESC")
	require.NoError(t, err)
	assert.Equal(t, Descending, dir)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestProject_FiltersThenSorts(t *testing.T) {
	wines := []models.Wine{
		{ID: "1", Name: "b", Country: "Chile"},
		{ID: "2", Name: "c", Country: "Francia"},
		{ID: "3", Name: "a", Country: "Chile"},
	}

	got := Project(wines, Criteria{Country: "Chile"})
	assert.Equal(t, []string{"3", "1"}, ids(got))

	got = Project(wines, Criteria{Country: "Chile", SortKey: SortByName, Direction: Descending})
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestExtractFacets(t *testing.T) {
	wines := []models.Wine{
		{Country: "Francia", GrapeVariety: "Pinot Noir"},
		{Country: "Chile", GrapeVariety: "Carmenère"},
		{Country: "", GrapeVariety: ""},
		{Country: "Argentina", GrapeVariety: "Malbec"},
		{Country: "España", GrapeVariety: "Malbec"},
		{Country: "Chile", GrapeVariety: "Cabernet Sauvignon"},
	}

	facets := ExtractFacets(wines)
	assert.Equal(t, []string{"Argentina", "Chile", "España", "Francia"}, facets.Countries)
	assert.Equal(t, []string{"Cabernet Sauvignon", "Carmenère", "Malbec", "Pinot Noir"}, facets.Grapes)
}

func TestExtractFacets_CaseSensitiveValues(t *testing.T) {
	facets := ExtractFacets([]models.Wine{{Country: "Chile"}, {Country: "chile"}})
	assert.ElementsMatch(t, []string{"Chile", "chile"}, facets.Countries)
	assert.Empty(t, facets.Grapes)
}

func TestSummarize(t *testing.T) {
	stats := Summarize([]models.Wine{
		{AcquisitionPrice: "15.000", Stock: 2},
		{AcquisitionPrice: "N/A", Stock: 3},
	})

	assert.Equal(t, int64(30000), stats.TotalValue)
	assert.Equal(t, 5, stats.Bottles)
	assert.Equal(t, 2, stats.Labels)
	assert.Equal(t, "$30.000", stats.FormattedValue())
}

func TestSummarize_SaturatesInsteadOfOverflowing(t *testing.T) {
	stats := Summarize([]models.Wine{
		{AcquisitionPrice: "5000000000000000000", Stock: 3},
	})
	assert.Equal(t, int64(math.MaxInt64), stats.TotalValue)

	stats = Summarize([]models.Wine{
		{AcquisitionPrice: "5000000000000000000", Stock: 1},
		{AcquisitionPrice: "5000000000000000000", Stock: 1},
	})
	assert.Equal(t, int64(math.MaxInt64), stats.TotalValue)
	assert.Equal(t, 2, stats.Bottles)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}
