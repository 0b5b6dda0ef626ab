package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tabilog-dev/receipt-engine/internal/store"
)

// Service produces XLSX bytes for stored extraction records.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// ExportReceiptsXLSX returns an XLSX workbook with one summary sheet of all
// stored receipts and one detail sheet of their line items. Amounts appear in
// both the source currency and the converted one.
func (s *Service) ExportReceiptsXLSX() ([]byte, error) {
	start := time.Now()

	records, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	f := excelize.NewFile()
	const receiptSheet = "Receipts"
	const itemSheet = "Items"

	if index, _ := f.GetSheetIndex(receiptSheet); index == -1 {
		if _, err := f.NewSheet(receiptSheet); err != nil {
			return nil, err
		}
	}
	if _, err := f.NewSheet(itemSheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(receiptSheet)
	f.SetActiveSheet(activeIndex)

	writeHeaders(f, receiptSheet, []string{
		"ID",
		"Store",
		"Date",
		"Time",
		"Total",
		"Total (Local)",
		"Subtotal",
		"Discount",
		"Currency",
		"Rate",
		"Confidence",
		"Saved At",
	})
	writeHeaders(f, itemSheet, []string{
		"Receipt ID",
		"Item",
		"Qty",
		"Unit Price",
		"Total Price",
		"Total Price (Local)",
		"Product Code",
	})

	row := 2
	itemRow := 2
	for _, rec := range records {
		r := rec.Receipt

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(receiptSheet, cell, v)
		}

		write(1, rec.ID)
		write(2, truncate(strOr(r.StoreName, ""), 40))
		write(3, strOr(r.Date, ""))
		write(4, strOr(r.Time, ""))
		writeInt(write, 5, r.TotalAmount)
		writeInt(write, 6, r.TotalAmountLocal)
		writeInt(write, 7, r.Subtotal)
		writeInt(write, 8, r.Discount)
		write(9, r.Currency)
		write(10, r.ExchangeRate)
		write(11, r.Confidence)
		write(12, rec.CreatedAt.Format("2006-01-02 15:04"))
		row++

		for _, it := range r.Items {
			writeItem := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, itemRow)
				_ = f.SetCellValue(itemSheet, cell, v)
			}
			writeItem(1, rec.ID)
			writeItem(2, truncate(strOr(it.Name, ""), 60))
			writeItem(3, it.Quantity)
			writeInt(writeItem, 4, it.UnitPrice)
			writeItem(5, it.TotalPrice)
			writeItem(6, it.TotalPriceLocal)
			writeItem(7, strOr(it.ProductCode, ""))
			itemRow++
		}
	}

	_ = f.SetColWidth(receiptSheet, "A", "A", 38)
	_ = f.SetColWidth(receiptSheet, "B", "B", 28)
	_ = f.SetColWidth(receiptSheet, "C", "D", 12)
	_ = f.SetColWidth(receiptSheet, "E", "H", 14)
	_ = f.SetColWidth(receiptSheet, "L", "L", 18)
	_ = f.SetColWidth(itemSheet, "A", "A", 38)
	_ = f.SetColWidth(itemSheet, "B", "B", 40)
	_ = f.SetColWidth(itemSheet, "D", "F", 16)
	_ = f.SetColWidth(itemSheet, "G", "G", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func writeInt(write func(col int, v any), col int, v *int) {
	if v == nil {
		write(col, "")
		return
	}
	write(col, *v)
}

func strOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
