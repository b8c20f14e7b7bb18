package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/signintech/gopdf"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

const (
	statementFont = "statement"
	pageBottom    = 780.0
	rowHeight     = 18.0
)

// CustomerStatement renders a customer's ledger rows as a PDF account
// statement with a running balance. Invoices increase the balance,
// payments reduce it. fontPath must point to a TTF file.
func CustomerStatement(customer string, set *models.LedgerSet, fontPath string) ([]byte, string, error) {
	if fontPath == "" {
		return nil, "", fmt.Errorf("no statement font configured")
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFont(statementFont, fontPath); err != nil {
		return nil, "", fmt.Errorf("loading statement font: %w", err)
	}

	pdf.AddPage()

	pdf.SetFillColor(44, 62, 80)
	pdf.RectFromUpperLeftWithStyle(0, 0, 595, 90, "F")

	pdf.SetTextColor(255, 255, 255)
	if err := pdf.SetFont(statementFont, "", 22); err != nil {
		return nil, "", err
	}
	pdf.SetXY(40, 25)
	pdf.Cell(nil, "Account Statement")

	pdf.SetFont(statementFont, "", 12)
	pdf.SetXY(40, 55)
	pdf.Cell(nil, customer)
	pdf.SetXY(40, 72)
	pdf.Cell(nil, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02")))

	pdf.SetTextColor(45, 52, 54)
	y := writeStatementHeader(&pdf, 110)

	sorted := set.FilterByCustomer(customer).SortByDate()
	balance := decimal.Zero
	pdf.SetFont(statementFont, "", 10)
	for _, e := range sorted.Entries {
		if y > pageBottom {
			pdf.AddPage()
			pdf.SetTextColor(45, 52, 54)
			y = writeStatementHeader(&pdf, 40)
			pdf.SetFont(statementFont, "", 10)
		}

		debit, credit := "", ""
		if e.Kind == models.KindInvoice {
			balance = balance.Add(e.Amount)
			debit = e.Amount.StringFixed(2)
		} else {
			balance = balance.Sub(e.Amount)
			credit = e.Amount.StringFixed(2)
		}

		pdf.SetXY(40, y)
		pdf.Cell(nil, e.Date.Format("2006-01-02"))
		pdf.SetXY(120, y)
		pdf.Cell(nil, e.Number)
		pdf.SetXY(280, y)
		pdf.Cell(nil, debit)
		pdf.SetXY(370, y)
		pdf.Cell(nil, credit)
		pdf.SetXY(460, y)
		pdf.Cell(nil, balance.StringFixed(2))
		y += rowHeight
	}

	y += rowHeight
	pdf.SetFont(statementFont, "", 12)
	pdf.SetXY(280, y)
	pdf.Cell(nil, "Closing balance:")
	pdf.SetXY(460, y)
	pdf.Cell(nil, balance.StringFixed(2))

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, "", fmt.Errorf("writing statement: %w", err)
	}

	filename := fmt.Sprintf("statement-%s.pdf", time.Now().Format("20060102-150405"))
	return buf.Bytes(), filename, nil
}

func writeStatementHeader(pdf *gopdf.GoPdf, y float64) float64 {
	pdf.SetFont(statementFont, "", 11)
	pdf.SetXY(40, y)
	pdf.Cell(nil, "Date")
	pdf.SetXY(120, y)
	pdf.Cell(nil, "Document")
	pdf.SetXY(280, y)
	pdf.Cell(nil, "Invoiced")
	pdf.SetXY(370, y)
	pdf.Cell(nil, "Paid")
	pdf.SetXY(460, y)
	pdf.Cell(nil, "Balance")

	pdf.SetStrokeColor(200, 200, 200)
	pdf.Line(40, y+14, 555, y+14)

	return y + 22
}
