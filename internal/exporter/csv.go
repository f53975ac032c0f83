// Package exporter serializes merged records and figures into the
// downloadable formats the dashboard offers: CSV, Excel, PNG, and PDF.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"cohortpulse/internal/config"
	"cohortpulse/pkg/contracts/domain"
)

// csvBaseColumns precede the metric columns in every export.
var csvBaseColumns = []string{"date", "participant_id", "cohort", "source"}

// WriteCSV writes records in the canonical column order. Missing
// metrics become empty cells so the file round-trips without inventing
// zeros.
func WriteCSV(w io.Writer, records []domain.DailyRecord) error {
	writer := csv.NewWriter(w)

	header := append(append([]string{}, csvBaseColumns...), config.AvailableMetrics...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("exporter: write csv header: %w", err)
	}

	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			rec.Date.Format("2006-01-02"),
			rec.ParticipantID,
			string(rec.Cohort),
			string(rec.Source),
		)
		for _, metric := range config.AvailableMetrics {
			if v, ok := rec.Value(metric); ok {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("exporter: write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("exporter: flush csv: %w", err)
	}
	return nil
}

// ParseCSV reads a file written by WriteCSV back into records. Empty
// cells stay absent from the metric map.
func ParseCSV(r io.Reader) ([]domain.DailyRecord, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("exporter: parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("exporter: parse csv: empty input")
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, required := range csvBaseColumns {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("exporter: parse csv: missing %q column", required)
		}
	}

	records := make([]domain.DailyRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		date, err := time.Parse("2006-01-02", row[index["date"]])
		if err != nil {
			return nil, fmt.Errorf("exporter: parse csv row %d: %w", n+2, err)
		}
		rec := domain.DailyRecord{
			ParticipantID: row[index["participant_id"]],
			Cohort:        domain.Cohort(row[index["cohort"]]),
			Date:          date,
			Source:        domain.Provenance(row[index["source"]]),
			Metrics:       make(map[string]float64),
		}
		for _, metric := range config.AvailableMetrics {
			i, ok := index[metric]
			if !ok || i >= len(row) || row[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("exporter: parse csv row %d, %s: %w", n+2, metric, err)
			}
			rec.Metrics[metric] = v
		}
		records = append(records, rec)
	}
	return records, nil
}
