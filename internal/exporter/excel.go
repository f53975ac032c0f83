package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cohortpulse/internal/config"
	"cohortpulse/pkg/contracts/domain"
)

const dataSheet = "Data"

// WriteExcel writes records to a single-sheet workbook mirroring the
// CSV column order. Missing metrics leave the cell empty.
func WriteExcel(w io.Writer, records []domain.DailyRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("exporter: rename sheet: %w", err)
	}

	header := append(append([]string{}, csvBaseColumns...), config.AvailableMetrics...)
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("exporter: excel header cell: %w", err)
		}
		if err := f.SetCellValue(dataSheet, cell, name); err != nil {
			return fmt.Errorf("exporter: excel header: %w", err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			rec.Date.Format("2006-01-02"),
			rec.ParticipantID,
			string(rec.Cohort),
			string(rec.Source),
		}
		for _, metric := range config.AvailableMetrics {
			if v, ok := rec.Value(metric); ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("exporter: excel cell: %w", err)
			}
			if err := f.SetCellValue(dataSheet, cell, v); err != nil {
				return fmt.Errorf("exporter: excel row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("exporter: write workbook: %w", err)
	}
	return nil
}
