// Package export renders cellar projections as delimited text and mirrors
// them to external destinations.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

// Header is the fixed first row of every export.
var Header = []string{
	"Name",
	"Producer",
	"Vintage",
	"Country",
	"Grape Variety",
	"Stock",
	"Acquisition Price",
	"Reference Price",
	"Tasting Notes",
}

// ContentType is the MIME type of WriteCSV output.
const ContentType = "text/csv; charset=utf-8"

// FileName returns the download name for an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("cellar_export_%s.csv", t.Format("2006-01-02"))
}

// Row renders one wine as export cells, unescaped.
func Row(w models.Wine) []string {
	return []string{
		w.Name,
		w.Producer,
		w.Vintage,
		w.Country,
		w.GrapeVariety,
		strconv.Itoa(w.Stock),
		models.FormatPrice(w.AcquisitionPrice),
		models.FormatPrice(w.ReferencePrice),
		w.TastingNotes,
	}
}

// quoted marks the free-text columns, which are always wrapped in quotes.
var quoted = [...]bool{true, true, true, true, true, false, false, false, true}

// WriteCSV writes the header and one line per wine, in the given order.
func WriteCSV(out io.Writer, wines []models.Wine) error {
	bw := bufio.NewWriter(out)

	if _, err := bw.WriteString(strings.Join(Header, ",")); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	cells := make([]string, len(Header))
	for _, w := range wines {
		for i, value := range Row(w) {
			cells[i] = escape(value, quoted[i])
		}
		if _, err := bw.WriteString("\n" + strings.Join(cells, ",")); err != nil {
			return fmt.Errorf("write export row %s: %w", w.ID, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

// escape applies delimited-text quoting. Text columns are always quoted; other
// columns only when their content would otherwise break the row.
func escape(value string, always bool) string {
	if !always && !strings.ContainsAny(value, ",\"\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
