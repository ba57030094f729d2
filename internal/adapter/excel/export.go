package excel

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/models"
	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	"github.com/xuri/excelize/v2"
)

const (
	SheetAggregate = "aggregate"
	SheetRecords   = "records"
	SheetSkipped   = "skipped"
)

// WriteDashboard writes the aggregate view and every metrics file as an xlsx
// workbook to w.
func WriteDashboard(w io.Writer, res *models.AggregateResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAggregate); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	codes := paymentCodes(res)

	if err := writeAggregate(f, res.View, codes); err != nil {
		return err
	}
	if err := writeRecords(f, res.Files, codes); err != nil {
		return err
	}
	if len(res.Skipped) > 0 {
		if err := writeSkipped(f, res.Skipped); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeAggregate(f *excelize.File, view models.AggregateView, codes []string) error {
	rows := [][]any{
		{"metric", "value"},
		{"average_price_per_mile", view.AveragePricePerMile},
		{"custom_indicator", view.CustomIndicator},
	}
	for _, code := range codes {
		rows = append(rows, []any{
			fmt.Sprintf("payment_type_counts[%s] %s", code, types.PaymentTypeLabel(code)),
			view.PaymentTypeCounts[code],
		})
	}
	return writeRows(f, SheetAggregate, rows)
}

func writeRecords(f *excelize.File, files []models.MetricsFile, codes []string) error {
	if _, err := f.NewSheet(SheetRecords); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	header := []any{"file", "date", "average_price_per_mile", "custom_indicator"}
	for _, code := range codes {
		header = append(header, "payment_"+code)
	}

	rows := [][]any{header}
	for _, file := range files {
		date := ""
		if !file.Date.IsZero() {
			date = file.Date.Format("2006-01-02")
		}
		row := []any{file.Name, date, file.Record.AveragePricePerMile, file.Record.CustomIndicator}
		for _, code := range codes {
			row = append(row, file.Record.PaymentTypeCounts[code])
		}
		rows = append(rows, row)
	}

	return writeRows(f, SheetRecords, rows)
}

func writeSkipped(f *excelize.File, skipped []models.SkippedFile) error {
	if _, err := f.NewSheet(SheetSkipped); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	rows := [][]any{{"file", "reason"}}
	for _, s := range skipped {
		rows = append(rows, []any{s.Name, s.Reason})
	}
	return writeRows(f, SheetSkipped, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// paymentCodes returns every observed code, numerically ordered.
func paymentCodes(res *models.AggregateResult) []string {
	seen := make(map[string]struct{})
	for code := range res.View.PaymentTypeCounts {
		seen[code] = struct{}{}
	}
	for _, file := range res.Files {
		for code := range file.Record.PaymentTypeCounts {
			seen[code] = struct{}{}
		}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, errA := strconv.Atoi(codes[i])
		b, errB := strconv.Atoi(codes[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return codes[i] < codes[j]
	})
	return codes
}
