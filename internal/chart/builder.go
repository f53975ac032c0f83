// Package chart builds declarative figures from daily records. A
// figure carries plain series data plus layout hints; rendering to
// HTML or an image happens elsewhere.
package chart

import (
	"fmt"
	"sort"
	"strconv"

	"cohortpulse/internal/config"
	"cohortpulse/pkg/contracts/domain"
)

const (
	defaultWidth  = 1200
	defaultHeight = 800
)

// fieldDate is the x-axis token selecting the record's calendar date.
const fieldDate = "date"

// Build produces a figure for the request over the records. An unknown
// kind falls back to a line chart, and a renderer panic is recovered
// into an error figure so a bad chart never takes a request down.
func Build(records []domain.DailyRecord, req domain.ChartRequest) (fig domain.Figure) {
	defer func() {
		if r := recover(); r != nil {
			fig = errorFigure(req, fmt.Sprintf("chart rendering failed: %v", r))
		}
	}()

	req.GroupBy = resolveGroupBy(records, req)

	kind := req.Kind
	renderer, ok := renderers[kind]
	if !ok {
		kind = domain.ChartLine
		renderer = renderers[kind]
	}

	fig = renderer(records, req)
	fig.Kind = kind
	if fig.Title == "" {
		fig.Title = req.Title
	}
	applyLayout(&fig, req)
	return fig
}

// resolveGroupBy keeps an explicit grouping and otherwise auto-selects
// participant, then cohort, but only when there is more than one
// distinct value to split on.
func resolveGroupBy(records []domain.DailyRecord, req domain.ChartRequest) string {
	if req.GroupBy != "" {
		return req.GroupBy
	}
	participants := make(map[string]bool)
	cohorts := make(map[domain.Cohort]bool)
	for _, rec := range records {
		participants[rec.ParticipantID] = true
		cohorts[rec.Cohort] = true
	}
	if len(participants) > 1 {
		return "participant"
	}
	if len(cohorts) > 1 {
		return "cohort"
	}
	return ""
}

func applyLayout(fig *domain.Figure, req domain.ChartRequest) {
	if fig.Layout.Width == 0 {
		fig.Layout.Width = defaultWidth
	}
	if fig.Layout.Height == 0 {
		fig.Layout.Height = defaultHeight
	}
	fig.Layout.ShowGrid = req.ShowGrid
	fig.Layout.Colors = config.Palette(req.Palette)

	if fig.Layout.XLabel == "" {
		fig.Layout.XLabel = axisLabel(req.XLabel, req.X)
	}
	if fig.Layout.YLabel == "" {
		fig.Layout.YLabel = axisLabel(req.YLabel, req.Y)
	}
}

func axisLabel(explicit, field string) string {
	if explicit != "" {
		return explicit
	}
	if label, ok := config.MetricLabels[field]; ok {
		return label
	}
	return field
}

func errorFigure(req domain.ChartRequest, message string) domain.Figure {
	fig := domain.Figure{
		Kind:    req.Kind,
		Title:   req.Title,
		Message: message,
	}
	applyLayout(&fig, req)
	return fig
}

// point is one record flattened onto the requested axes.
type point struct {
	x     string
	xNum  float64
	isNum bool
	y     float64
	group string
}

// extractPoints pulls (x, y, group) triples out of the records,
// skipping records where either axis value is missing.
func extractPoints(records []domain.DailyRecord, req domain.ChartRequest) (points []point, xIsDate bool) {
	for _, rec := range records {
		x, num, isNum, isDate, ok := xValue(rec, req.X)
		if !ok {
			continue
		}
		xIsDate = xIsDate || isDate

		y := 0.0
		if req.Y != "" {
			v, present := rec.Value(req.Y)
			if !present {
				continue
			}
			y = v
		}
		points = append(points, point{
			x: x, xNum: num, isNum: isNum, y: y,
			group: groupValue(rec, req.GroupBy),
		})
	}
	return points, xIsDate
}

func xValue(rec domain.DailyRecord, field string) (s string, num float64, isNum, isDate, ok bool) {
	switch field {
	case fieldDate:
		return rec.Date.Format("2006-01-02"), 0, false, true, true
	case "participant", "participantId", "participant_id":
		return rec.ParticipantID, 0, false, false, true
	case "cohort":
		return string(rec.Cohort), 0, false, false, true
	default:
		v, present := rec.Value(field)
		if !present {
			return "", 0, false, false, false
		}
		return strconv.FormatFloat(v, 'g', -1, 64), v, true, false, true
	}
}

func groupValue(rec domain.DailyRecord, field string) string {
	switch field {
	case "participant", "participantId", "participant_id":
		return rec.ParticipantID
	case "cohort":
		return string(rec.Cohort)
	default:
		return ""
	}
}

// xLess orders two points by their x values, numerically when both
// sides are numeric so a metric-valued axis does not sort "900" after
// "10000".
func xLess(a, b point) bool {
	if a.isNum && b.isNum {
		return a.xNum < b.xNum
	}
	return a.x < b.x
}

// groupedTraces splits points into one trace per group, preserving the
// order groups first appear.
func groupedTraces(points []point) []domain.Trace {
	index := make(map[string]int)
	var traces []domain.Trace
	for _, p := range points {
		i, seen := index[p.group]
		if !seen {
			i = len(traces)
			index[p.group] = i
			traces = append(traces, domain.Trace{Name: p.group})
		}
		traces[i].X = append(traces[i].X, p.x)
		traces[i].Y = append(traces[i].Y, p.y)
	}
	sort.SliceStable(traces, func(i, j int) bool { return traces[i].Name < traces[j].Name })
	return traces
}
