// Command report runs a one-shot pair analysis and writes the
// artifacts (CSV, Excel workbook, chart HTML, narrative JSON) to an
// output directory. It works offline: with no store configured it
// analyzes the synthetic sample dataset.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cohortpulse/internal/chart"
	"cohortpulse/internal/config"
	"cohortpulse/internal/dataset"
	"cohortpulse/internal/exporter"
	"cohortpulse/internal/infrastructure"
	"cohortpulse/internal/services"
	"cohortpulse/internal/store"
	"cohortpulse/pkg/contracts/domain"
)

func main() {
	var (
		pairID = flag.String("pair", "PAIR001", "participant pair to analyze")
		outDir = flag.String("out", "report", "output directory")
		start  = flag.String("start", "", "range start (YYYY-MM-DD)")
		end    = flag.String("end", "", "range end (YYYY-MM-DD)")
	)
	flag.Parse()

	if err := run(*pairID, *outDir, *start, *end); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
}

func run(pairID, outDir, start, end string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}

	rng, err := parseRange(start, end)
	if err != nil {
		return err
	}

	var remote dataset.RemoteReader
	if cfg.Store.Enabled && cfg.Store.Endpoint != "" {
		remote = store.NewClient(cfg.Store, logger)
	}
	loader := dataset.NewLoader(remote, cfg.Cache, logger)
	data := services.NewDataService(loader, logger)
	analysis := services.NewAnalysisService(data, nil, logger)

	pair, err := findPair(data, pairID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids := []string{pair.ClinicalID, pair.ControlID}
	result, err := analysis.QuickAnalysis(ctx, services.AnalysisRequest{
		ParticipantIDs: ids,
		DateRange:      rng,
	})
	if err != nil {
		return err
	}

	records, _, err := data.LoadMany(ctx, ids, rng)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeFile(outDir, "records.csv", func(f *os.File) error {
		return exporter.WriteCSV(f, records)
	}); err != nil {
		return err
	}
	if err := writeFile(outDir, "records.xlsx", func(f *os.File) error {
		return exporter.WriteExcel(f, records)
	}); err != nil {
		return err
	}

	fig, err := analysis.BuildChart(ctx, services.ChartBuildRequest{
		ParticipantIDs: ids,
		DateRange:      rng,
		Chart: domain.ChartRequest{
			Kind:    domain.ChartLine,
			X:       "date",
			Y:       "minutesAsleep",
			GroupBy: "participant",
			Title:   fmt.Sprintf("Nightly sleep, %s", pairID),
		},
	})
	if err != nil {
		return err
	}
	if err := writeFile(outDir, "sleep.html", func(f *os.File) error {
		return chart.WriteHTML(f, fig)
	}); err != nil {
		return err
	}

	if err := writeFile(outDir, "analysis.json", func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}); err != nil {
		return err
	}

	fmt.Printf("wrote report for %s (%s vs %s, %d records, outcome %s) to %s\n",
		pairID, pair.ClinicalID, pair.ControlID, len(records), result.Outcome, outDir)
	return nil
}

func findPair(data *services.DataService, pairID string) (domain.ParticipantPair, error) {
	for _, pair := range data.Pairs() {
		if pair.PairID == pairID {
			return pair, nil
		}
	}
	return domain.ParticipantPair{}, fmt.Errorf("unknown pair %q", pairID)
}

func parseRange(start, end string) (domain.DateRange, error) {
	var rng domain.DateRange
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return rng, fmt.Errorf("bad -start: %w", err)
		}
		rng.Start = t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return rng, fmt.Errorf("bad -end: %w", err)
		}
		rng.End = t
	}
	return rng, nil
}

func writeFile(dir, name string, write func(*os.File) error) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}
