// Package store reads per-participant metric CSVs from an S3-compatible
// object store laid out as {cohort}/{PARTICIPANT_ID}/{family}/*.csv.
package store

import (
	"context"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"cohortpulse/internal/config"
	"cohortpulse/pkg/contracts/domain"
)

// Client is a read-only client for the remote metric bucket.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a store client for the configured bucket.
func NewClient(cfg config.StoreConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{
		http:   httpClient,
		logger: logger.With(slog.String("component", "store")),
	}
}

// listBucketResult models the S3 ListObjectsV2 XML response.
type listBucketResult struct {
	XMLName               xml.Name `xml:"ListBucketResult"`
	IsTruncated           bool     `xml:"IsTruncated"`
	NextContinuationToken string   `xml:"NextContinuationToken"`
	Contents              []struct {
		Key string `xml:"Key"`
	} `xml:"Contents"`
	CommonPrefixes []struct {
		Prefix string `xml:"Prefix"`
	} `xml:"CommonPrefixes"`
}

// Ping performs a cheap single-key listing to probe availability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.list(ctx, "", "", "1")
	return err
}

func (c *Client) list(ctx context.Context, prefix, delimiter, maxKeys string) (*listBucketResult, error) {
	req := c.http.R().SetContext(ctx).
		SetQueryParam("list-type", "2").
		SetQueryParam("prefix", prefix)
	if delimiter != "" {
		req.SetQueryParam("delimiter", delimiter)
	}
	if maxKeys != "" {
		req.SetQueryParam("max-keys", maxKeys)
	}

	resp, err := req.Get("/")
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list %q: status %d", prefix, resp.StatusCode())
	}

	var result listBucketResult
	if err := xml.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("list %q: decode response: %w", prefix, err)
	}
	return &result, nil
}

// listKeys returns every object key under the prefix, following
// continuation tokens.
func (c *Client) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	token := ""
	for {
		req := c.http.R().SetContext(ctx).
			SetQueryParam("list-type", "2").
			SetQueryParam("prefix", prefix)
		if token != "" {
			req.SetQueryParam("continuation-token", token)
		}
		resp, err := req.Get("/")
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("list %q: status %d", prefix, resp.StatusCode())
		}
		var result listBucketResult
		if err := xml.Unmarshal(resp.Body(), &result); err != nil {
			return nil, fmt.Errorf("list %q: decode response: %w", prefix, err)
		}
		for _, obj := range result.Contents {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated || result.NextContinuationToken == "" {
			break
		}
		token = result.NextContinuationToken
	}
	return keys, nil
}

// ListParticipants enumerates the cohort-prefixed participant folders.
// Only ALL-UPPERCASE folder names count as valid participants.
func (c *Client) ListParticipants(ctx context.Context) (map[domain.Cohort][]string, error) {
	participants := map[domain.Cohort][]string{}

	for _, cohort := range []domain.Cohort{domain.CohortClinical, domain.CohortControl} {
		result, err := c.list(ctx, string(cohort)+"/", "/", "")
		if err != nil {
			return nil, err
		}
		for _, cp := range result.CommonPrefixes {
			parts := strings.Split(strings.TrimSuffix(cp.Prefix, "/"), "/")
			name := parts[len(parts)-1]
			if isAllUpper(name) {
				participants[cohort] = append(participants[cohort], name)
			}
		}
		sort.Strings(participants[cohort])
	}

	return participants, nil
}

// isAllUpper reports whether the name has at least one letter and no
// lowercase letters. Digits are allowed.
func isAllUpper(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// FamilyTable is one metric family's rows for one participant, keyed
// by calendar date with per-date metric values already normalized to
// canonical source field names.
type FamilyTable struct {
	Family config.MetricFamily
	Rows   map[time.Time]map[string]float64
}

// Empty reports whether the table carries no dated rows.
func (t *FamilyTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Dates returns the table's dates in ascending order.
func (t *FamilyTable) Dates() []time.Time {
	if t == nil {
		return nil
	}
	dates := make([]time.Time, 0, len(t.Rows))
	for d := range t.Rows {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// FetchFamily downloads and concatenates every CSV under one family
// prefix, parses the timestamp column into a calendar date, and
// de-duplicates rows by date (first occurrence wins).
func (c *Client) FetchFamily(ctx context.Context, cohort domain.Cohort, participantID string, family config.MetricFamily) (*FamilyTable, error) {
	prefix := fmt.Sprintf("%s/%s/%s/", cohort, participantID, family)
	keys, err := c.listKeys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var header []string
	var rows [][]string
	for _, key := range keys {
		if !strings.HasSuffix(strings.ToLower(key), ".csv") {
			continue
		}
		fileHeader, fileRows, err := c.getCSV(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping unreadable object",
				slog.String("key", key),
				slog.String("error", err.Error()))
			continue
		}
		if header == nil {
			header = fileHeader
			rows = fileRows
			continue
		}
		// Later files are realigned to the first file's header.
		rows = append(rows, realign(fileHeader, header, fileRows)...)
	}

	if header == nil {
		return &FamilyTable{Family: family}, nil
	}

	table, err := normalizeFamily(family, header, rows)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// realign reorders each row from srcHeader's column order into
// dstHeader's, dropping columns dstHeader lacks.
func realign(srcHeader, dstHeader []string, rows [][]string) [][]string {
	index := make(map[string]int, len(srcHeader))
	for i, col := range srcHeader {
		index[col] = i
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		aligned := make([]string, len(dstHeader))
		for i, col := range dstHeader {
			if j, ok := index[col]; ok && j < len(row) {
				aligned[i] = row[j]
			}
		}
		out = append(out, aligned)
	}
	return out
}

func (c *Client) getCSV(ctx context.Context, key string) ([]string, [][]string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/" + key)
	if err != nil {
		return nil, nil, fmt.Errorf("get %q: %w", key, err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("get %q: status %d", key, resp.StatusCode())
	}

	reader := csv.NewReader(strings.NewReader(string(resp.Body())))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("get %q: parse csv: %w", key, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("get %q: empty file", key)
	}
	return records[0], records[1:], nil
}

// FetchResult carries every family table fetched for one participant.
// Families that were missing or unreadable are simply absent.
type FetchResult struct {
	Cohort        domain.Cohort
	ParticipantID string
	Families      map[config.MetricFamily]*FamilyTable
}

// FetchAll fetches the six metric families concurrently. A failure in
// one family degrades to "no data for that family"; the fetch as a
// whole only fails when the context is cancelled.
func (c *Client) FetchAll(ctx context.Context, cohort domain.Cohort, participantID string) (*FetchResult, error) {
	result := &FetchResult{
		Cohort:        cohort,
		ParticipantID: participantID,
		Families:      make(map[config.MetricFamily]*FamilyTable, len(config.MetricFamilies)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, family := range config.MetricFamilies {
		g.Go(func() error {
			table, err := c.FetchFamily(gctx, cohort, participantID, family)
			if err != nil {
				c.logger.WarnContext(gctx, "metric family unavailable",
					slog.String("participant", participantID),
					slog.String("family", string(family)),
					slog.String("error", err.Error()))
				return gctx.Err()
			}
			if !table.Empty() {
				mu.Lock()
				result.Families[family] = table
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// timestampColumns lists the accepted timestamp field names in
// preference order.
var timestampColumns = []string{"dateTime", "dateOfSleep"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// familyValueFields maps each family to the source columns it
// contributes. Heart and SpO2 aggregate instead; see normalizeFamily.
var familyValueFields = map[config.MetricFamily][]string{
	config.FamilySleepMeta: {"minutesAsleep", "minutesAwake", "efficiency", "timeInBed", "minutesToFallAsleep", "minutesAfterWakeup"},
	config.FamilyDaily:     {"steps", "caloriesOut", "veryActiveMinutes", "sedentaryMinutes", "restingHeartRate", "distance", "floors", "vo2max"},
}

// normalizeFamily turns raw concatenated CSV rows into a per-date table
// with the family's canonical source fields.
func normalizeFamily(family config.MetricFamily, header []string, rows [][]string) (*FamilyTable, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	dateCol := -1
	for _, name := range timestampColumns {
		if i, ok := index[name]; ok {
			dateCol = i
			break
		}
	}
	if dateCol == -1 {
		return nil, fmt.Errorf("family %s: no recognizable timestamp column", family)
	}

	table := &FamilyTable{Family: family, Rows: make(map[time.Time]map[string]float64)}

	cell := func(row []string, col string) (float64, bool) {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	switch family {
	case config.FamilyHeart, config.FamilySpO2:
		// Intraday samples: aggregate the value column to a daily mean.
		target := "heart_rate"
		if family == config.FamilySpO2 {
			target = "spo2"
		}
		sums := make(map[time.Time]float64)
		counts := make(map[time.Time]int)
		for _, row := range rows {
			date, ok := parseDate(row[dateCol])
			if !ok {
				continue
			}
			if v, ok := cell(row, "value"); ok {
				sums[date] += v
				counts[date]++
			}
		}
		for date, sum := range sums {
			table.Rows[date] = map[string]float64{target: sum / float64(counts[date])}
		}

	case config.FamilySteps:
		for _, row := range rows {
			date, ok := parseDate(row[dateCol])
			if !ok {
				continue
			}
			if _, dup := table.Rows[date]; dup {
				continue
			}
			if v, ok := cell(row, "value"); ok {
				table.Rows[date] = map[string]float64{"steps": v}
			}
		}

	case config.FamilyBreath:
		for _, row := range rows {
			date, ok := parseDate(row[dateCol])
			if !ok {
				continue
			}
			if _, dup := table.Rows[date]; dup {
				continue
			}
			if v, ok := cell(row, "fullSleepSummary"); ok {
				table.Rows[date] = map[string]float64{"breathingRate": v}
			}
		}

	default:
		fields := familyValueFields[family]
		for _, row := range rows {
			date, ok := parseDate(row[dateCol])
			if !ok {
				continue
			}
			if _, dup := table.Rows[date]; dup {
				continue
			}
			values := make(map[string]float64)
			for _, field := range fields {
				if v, ok := cell(row, field); ok {
					values[field] = v
				}
			}
			if len(values) > 0 {
				table.Rows[date] = values
			}
		}
	}

	return table, nil
}
