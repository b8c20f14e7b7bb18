// Package export produces downloadable Excel workbooks and PDF
// statements from report data.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
	"github.com/MEDSABRY98/bhs-reports/internal/services/inventory"
	"github.com/MEDSABRY98/bhs-reports/internal/services/ledger"
	"github.com/MEDSABRY98/bhs-reports/internal/services/sales"
)

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2C3E50"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func numberStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", last, style)
	f.SetRowHeight(sheet, 1, 22)
}

func finish(f *excelize.File, prefix string) ([]byte, string, error) {
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.xlsx", prefix, time.Now().Format("20060102-150405"))
	return buf.Bytes(), filename, nil
}

// StockWorkbook builds an inventory workbook with one row per SKU and
// warehouse.
func StockWorkbook(stocks []inventory.Stock) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Stock"
	f.SetSheetName("Sheet1", sheet)

	hs, err := headerStyle(f)
	if err != nil {
		return nil, "", err
	}
	writeHeaders(f, sheet, []string{"SKU", "Name", "Warehouse", "Pieces", "Pcs/Ctn", "Cartons", "Loose"}, hs)

	for i, s := range stocks {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.SKU)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.Warehouse)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.Pieces)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.PcsInCtn)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), s.Cartons)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), s.LoosePieces)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 30)
	f.SetColWidth(sheet, "C", "C", 16)

	return finish(f, "stock")
}

// SalesWorkbook builds a workbook with an invoice sheet and a monthly
// summary sheet.
func SalesWorkbook(set *models.SalesSet) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoices"
	f.SetSheetName("Sheet1", sheet)

	hs, err := headerStyle(f)
	if err != nil {
		return nil, "", err
	}
	ns, err := numberStyle(f)
	if err != nil {
		return nil, "", err
	}
	writeHeaders(f, sheet, []string{"Date", "Number", "Customer", "Amount", "Items"}, hs)

	sorted := set.SortByDateDesc()
	for i, inv := range sorted.Invoices {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inv.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inv.Number)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), inv.Customer)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.Amount.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), inv.Items)
		f.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), ns)
	}

	f.SetColWidth(sheet, "B", "C", 24)
	f.SetColWidth(sheet, "D", "D", 14)

	monthly := "Monthly"
	f.NewSheet(monthly)
	writeHeaders(f, monthly, []string{"Month", "Gross", "Returns", "Net", "Count"}, hs)

	for i, m := range sales.MonthlySeries(set) {
		row := i + 2
		f.SetCellValue(monthly, fmt.Sprintf("A%d", row), m.Month)
		f.SetCellValue(monthly, fmt.Sprintf("B%d", row), m.Gross.InexactFloat64())
		f.SetCellValue(monthly, fmt.Sprintf("C%d", row), m.Returns.InexactFloat64())
		f.SetCellValue(monthly, fmt.Sprintf("D%d", row), m.Net.InexactFloat64())
		f.SetCellValue(monthly, fmt.Sprintf("E%d", row), m.Count)
		f.SetCellStyle(monthly, fmt.Sprintf("B%d", row), fmt.Sprintf("D%d", row), ns)
	}

	f.SetColWidth(monthly, "B", "D", 14)

	return finish(f, "sales")
}

// CollectionsWorkbook builds a workbook with the payment classification
// breakdown and per-customer closure rates for a year.
func CollectionsWorkbook(c *ledger.Classification) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Breakdown"
	f.SetSheetName("Sheet1", sheet)

	hs, err := headerStyle(f)
	if err != nil {
		return nil, "", err
	}
	ns, err := numberStyle(f)
	if err != nil {
		return nil, "", err
	}
	writeHeaders(f, sheet, []string{"Category", "Total", "Payments", "Share %"}, hs)

	for i, b := range c.Breakdowns {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), string(b.Category))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Total.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.Count)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.Percentage)
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), ns)
	}

	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "B", 16)

	closures := "Customers"
	f.NewSheet(closures)
	writeHeaders(f, closures, []string{"Customer", "Opening Balance", "Invoiced", "Collected", "Outstanding", "Closure %"}, hs)

	for i, cc := range c.Customers {
		row := i + 2
		f.SetCellValue(closures, fmt.Sprintf("A%d", row), cc.Customer)
		f.SetCellValue(closures, fmt.Sprintf("B%d", row), cc.OpeningBalance.InexactFloat64())
		f.SetCellValue(closures, fmt.Sprintf("C%d", row), cc.Invoiced.InexactFloat64())
		f.SetCellValue(closures, fmt.Sprintf("D%d", row), cc.Collected.InexactFloat64())
		f.SetCellValue(closures, fmt.Sprintf("E%d", row), cc.Outstanding.InexactFloat64())
		f.SetCellValue(closures, fmt.Sprintf("F%d", row), cc.ClosurePct)
		f.SetCellStyle(closures, fmt.Sprintf("B%d", row), fmt.Sprintf("E%d", row), ns)
	}

	f.SetColWidth(closures, "A", "A", 28)
	f.SetColWidth(closures, "B", "F", 16)

	return finish(f, fmt.Sprintf("collections-%d", c.Year))
}
