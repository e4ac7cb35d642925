// Package export renders ledgers into downloadable documents.
package export

import (
	"fmt"

	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the ledger rows
const SheetName = "Ledger"

// ContentTypeXLSX is the MIME type of the exported workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DateLayout is how row timestamps are written
const DateLayout = "2006-01-02 15:04:05"

// Headers are the column titles of the ledger sheet, in column order
var Headers = []string{
	"Date", "Type", "Reference", "Supplier", "Cashier",
	"Qty In", "Qty Out", "Cost", "Price", "Note", "Balance",
}

// moneyFormat is the built-in "0.00" number format
const moneyFormat = 2

// ExcelExporter writes a ledger as an xlsx workbook
type ExcelExporter struct{}

// NewExcelExporter creates an exporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// ContentType returns the MIME type of Export's output
func (e *ExcelExporter) ContentType() string {
	return ContentTypeXLSX
}

// FileExtension returns the extension for exported files
func (e *ExcelExporter) FileExtension() string {
	return "xlsx"
}

// Export renders l into a workbook with a header row, one row per ledger
// row, and a Current Stock footer.
func (e *ExcelExporter) Export(l ledger.Ledger) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastCol, styles.header); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range l.Rows {
		rowNo := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNo)
		values := []interface{}{
			row.Date.Format(DateLayout),
			string(row.Type),
			row.ReferenceNumber,
			row.SupplierName,
			row.Cashier,
			row.QuantityIn,
			row.QuantityOut,
			row.CostPrice.InexactFloat64(),
			row.SellingPrice.InexactFloat64(),
			row.Note,
			row.Balance,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowNo, err)
		}

		costCell, _ := excelize.CoordinatesToCellName(8, rowNo)
		priceCell, _ := excelize.CoordinatesToCellName(9, rowNo)
		if err := f.SetCellStyle(SheetName, costCell, priceCell, styles.money); err != nil {
			return nil, fmt.Errorf("style row %d: %w", rowNo, err)
		}
		if row.Shortfall {
			end, _ := excelize.CoordinatesToCellName(len(Headers), rowNo)
			if err := f.SetCellStyle(SheetName, cell, end, styles.shortfall); err != nil {
				return nil, fmt.Errorf("style row %d: %w", rowNo, err)
			}
		}
	}

	footerRow := len(l.Rows) + 2
	labelCell, _ := excelize.CoordinatesToCellName(len(Headers)-1, footerRow)
	valueCell, _ := excelize.CoordinatesToCellName(len(Headers), footerRow)
	if err := f.SetCellValue(SheetName, labelCell, "Current Stock"); err != nil {
		return nil, fmt.Errorf("write footer: %w", err)
	}
	if err := f.SetCellValue(SheetName, valueCell, l.CurrentStock); err != nil {
		return nil, fmt.Errorf("write footer: %w", err)
	}
	if err := f.SetCellStyle(SheetName, labelCell, valueCell, styles.header); err != nil {
		return nil, fmt.Errorf("style footer: %w", err)
	}

	if err := layout(f); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	header    int
	money     int
	shortfall int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: moneyFormat}); err != nil {
		return s, fmt.Errorf("create money style: %w", err)
	}
	if s.shortfall, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FCE4D6"}},
	}); err != nil {
		return s, fmt.Errorf("create shortfall style: %w", err)
	}
	return s, nil
}

func layout(f *excelize.File) error {
	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 20},
		{"B", "B", 6},
		{"C", "E", 16},
		{"F", "I", 10},
		{"J", "J", 48},
		{"K", "K", 10},
	}
	for _, w := range widths {
		if err := f.SetColWidth(SheetName, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
