package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

// Export formats accepted in the export query parameter.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

const csvHeader = "Category, Amount\n"

// CSV renders the report as a header line followed by one label,total row
// per group. With legacy set, the second column holds the literal text
// "total" instead of the amount, matching exports from the old service.
func CSV(r Report, legacy bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(csvHeader)

	w := csv.NewWriter(&buf)
	for _, row := range r.Rows() {
		amount := row.Total.String()
		if legacy {
			amount = "total"
		}
		if err := w.Write([]string{row.Label, amount}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the report as a titled document with one "label: total" line
// per group. Pages break automatically.
func PDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.Name(), false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, r.Name())
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range r.Rows() {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %s", row.Label, row.Total.String()))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
