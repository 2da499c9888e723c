package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet     = "Orders"
	timestampLayout = "2006-01-02 15:04:05 MST"
)

var receiptHeaders = []string{
	"Submitted", "Exchange", "Environment", "Symbol", "Side", "Type", "TIF",
	"Quantity", "Price", "Notional", "Scheduled For", "Outcome", "Order ID", "Status",
	"Message", "Latency (ms)",
}

// ExcelReceiptWriter appends order receipts to an xlsx workbook
type ExcelReceiptWriter struct{}

// NewExcelReceiptWriter creates a new receipt writer
func NewExcelReceiptWriter() *ExcelReceiptWriter {
	return &ExcelReceiptWriter{}
}

// Append adds receipts as rows to the Orders sheet, creating the workbook if needed
func (w *ExcelReceiptWriter) Append(path string, receipts ...Receipt) error {
	if err := EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	existing := fileExists(path)

	var fx *excelize.File
	if existing {
		opened, err := excelize.OpenFile(path)
		if err != nil {
			return fmt.Errorf("failed to open receipt workbook: %w", err)
		}
		fx = opened
	} else {
		fx = excelize.NewFile()
		if err := fx.SetSheetName(fx.GetSheetName(0), ordersSheet); err != nil {
			return err
		}
		if err := w.writeHeader(fx); err != nil {
			return err
		}
	}
	defer fx.Close()

	rows, err := fx.GetRows(ordersSheet)
	if err != nil {
		return fmt.Errorf("failed to read receipt sheet: %w", err)
	}
	next := len(rows) + 1

	for _, r := range receipts {
		cell, _ := excelize.CoordinatesToCellName(1, next)
		if err := fx.SetSheetRow(ordersSheet, cell, receiptRow(r)); err != nil {
			return fmt.Errorf("failed to write receipt row: %w", err)
		}
		next++
	}

	if existing {
		return fx.Save()
	}
	return fx.SaveAs(path)
}

func (w *ExcelReceiptWriter) writeHeader(fx *excelize.File) error {
	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}

	for i, h := range receiptHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(ordersSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(receiptHeaders), 1)
	if err := fx.SetCellStyle(ordersSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	_ = fx.SetColWidth(ordersSheet, "A", "A", 24)
	_ = fx.SetColWidth(ordersSheet, "D", "D", 12)
	_ = fx.SetColWidth(ordersSheet, "K", "K", 24)
	_ = fx.SetColWidth(ordersSheet, "M", "M", 22)
	_ = fx.SetColWidth(ordersSheet, "O", "O", 40)
	return fx.SetPanes(ordersSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func receiptRow(r Receipt) []interface{} {
	scheduled := ""
	if !r.ScheduledFor.IsZero() {
		scheduled = r.ScheduledFor.Format(timestampLayout)
	}

	// Decimals are written as text so the sheet shows exactly what was sent
	return []interface{}{
		r.SubmittedAt.Format(timestampLayout),
		r.Exchange,
		r.Environment,
		r.Request.Symbol,
		string(r.Request.Side),
		r.Request.Type(),
		r.Request.TimeInForce(),
		r.Request.Quantity.String(),
		r.Request.Price.String(),
		r.Request.Notional().String(),
		scheduled,
		r.Outcome,
		r.OrderID(),
		r.Status(),
		r.Message(),
		r.Elapsed.Milliseconds(),
	}
}
