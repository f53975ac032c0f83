package chart

import (
	"fmt"
	"sort"
	"time"

	"cohortpulse/internal/stats"
	"cohortpulse/pkg/contracts/domain"
)

type renderFunc func(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure

var renderers map[domain.ChartKind]renderFunc

func init() {
	renderers = map[domain.ChartKind]renderFunc{
		domain.ChartLine:      renderLine,
		domain.ChartArea:      renderLine,
		domain.ChartBar:       renderBar,
		domain.ChartScatter:   renderScatter,
		domain.ChartBox:       renderDistribution,
		domain.ChartViolin:    renderDistribution,
		domain.ChartHistogram: renderHistogram,
		domain.ChartHeatmap:   renderHeatmap,
	}
}

func renderLine(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure {
	points, xIsDate := extractPoints(records, req)
	if len(points) == 0 {
		return errorFigure(req, "no data points for the requested axes")
	}

	// Stable presentation: order by x first, then group.
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].x != points[j].x {
			return xLess(points[i], points[j])
		}
		return points[i].group < points[j].group
	})

	return domain.Figure{
		Traces: groupedTraces(points),
		Layout: domain.Layout{XIsDate: xIsDate},
	}
}

func renderBar(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure {
	points, xIsDate := extractPoints(records, req)
	if len(points) == 0 {
		return errorFigure(req, "no data points for the requested axes")
	}

	// Bars aggregate to the mean per (x, group) category.
	type key struct {
		x     string
		xNum  float64
		isNum bool
		group string
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	var order []key
	for _, p := range points {
		k := key{p.x, p.xNum, p.isNum, p.group}
		if counts[k] == 0 {
			order = append(order, k)
		}
		sums[k] += p.y
		counts[k]++
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].x != order[j].x {
			return xLess(point{x: order[i].x, xNum: order[i].xNum, isNum: order[i].isNum},
				point{x: order[j].x, xNum: order[j].xNum, isNum: order[j].isNum})
		}
		return order[i].group < order[j].group
	})

	aggregated := make([]point, 0, len(order))
	for _, k := range order {
		aggregated = append(aggregated, point{
			x: k.x, y: sums[k] / float64(counts[k]), group: k.group,
		})
	}

	return domain.Figure{
		Traces: groupedTraces(aggregated),
		Layout: domain.Layout{XIsDate: xIsDate},
	}
}

func renderScatter(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure {
	points, xIsDate := extractPoints(records, req)
	if len(points) == 0 {
		return errorFigure(req, "no data points for the requested axes")
	}

	fig := domain.Figure{
		Traces: groupedTraces(points),
		Layout: domain.Layout{XIsDate: xIsDate},
	}

	if req.ShowTrendline && !xIsDate {
		if trend, ok := trendlineTrace(points); ok {
			fig.Traces = append(fig.Traces, trend)
		}
	}
	return fig
}

// trendlineTrace fits ordinary least squares over every numeric point
// and returns a two-point line spanning the x range.
func trendlineTrace(points []point) (domain.Trace, bool) {
	var xs, ys []float64
	for _, p := range points {
		if p.isNum {
			xs = append(xs, p.xNum)
			ys = append(ys, p.y)
		}
	}
	if len(xs) < 2 {
		return domain.Trace{}, false
	}

	meanX, meanY := stats.Mean(xs), stats.Mean(ys)
	var sxy, sxx float64
	for i := range xs {
		sxy += (xs[i] - meanX) * (ys[i] - meanY)
		sxx += (xs[i] - meanX) * (xs[i] - meanX)
	}
	if sxx == 0 {
		return domain.Trace{}, false
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	lo, hi := stats.Min(xs), stats.Max(xs)
	return domain.Trace{
		Name: "trend",
		X:    []string{formatNum(lo), formatNum(hi)},
		Y:    []float64{intercept + slope*lo, intercept + slope*hi},
	}, true
}

func formatNum(v float64) string {
	return fmt.Sprintf("%g", v)
}

// renderDistribution serves both box and violin: one trace of y values
// per group, x left empty.
func renderDistribution(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure {
	// Distribution charts read their metric from Y, falling back to X
	// so "box of steps" works with either field.
	metric := req.Y
	if metric == "" {
		metric = req.X
	}

	byGroup := make(map[string][]float64)
	var order []string
	for _, rec := range records {
		v, ok := rec.Value(metric)
		if !ok {
			continue
		}
		g := groupValue(rec, req.GroupBy)
		if _, seen := byGroup[g]; !seen {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], v)
	}
	if len(byGroup) == 0 {
		return errorFigure(req, "no data points for the requested axes")
	}
	sort.Strings(order)

	fig := domain.Figure{}
	for _, g := range order {
		fig.Traces = append(fig.Traces, domain.Trace{Name: g, Y: byGroup[g]})
	}
	fig.Layout.YLabel = axisLabel(req.YLabel, metric)
	return fig
}

func renderHistogram(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure {
	if req.X == fieldDate {
		return errorFigure(req, "histogram requires a numeric metric on the x axis")
	}

	points, _ := extractPoints(records, req)
	var numeric []point
	for _, p := range points {
		if p.isNum {
			numeric = append(numeric, p)
		}
	}
	if len(numeric) == 0 {
		return errorFigure(req, "histogram requires a numeric metric")
	}

	// Histogram traces carry the raw values in Y; the renderer bins
	// them on the x axis.
	byGroup := make(map[string][]float64)
	var order []string
	for _, p := range numeric {
		if _, seen := byGroup[p.group]; !seen {
			order = append(order, p.group)
		}
		byGroup[p.group] = append(byGroup[p.group], p.xNum)
	}
	sort.Strings(order)

	fig := domain.Figure{}
	for _, g := range order {
		fig.Traces = append(fig.Traces, domain.Trace{Name: g, Y: byGroup[g], Bins: req.Bins})
	}
	fig.Layout.XLabel = axisLabel(req.XLabel, req.X)
	fig.Layout.YLabel = "Count"
	return fig
}

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// renderHeatmap pivots a date-indexed metric into a week-by-weekday
// matrix of daily means.
func renderHeatmap(records []domain.DailyRecord, req domain.ChartRequest) domain.Figure {
	metric := req.Y
	if metric == "" || req.X != fieldDate {
		return errorFigure(req, "heatmap requires a date x axis and a metric y axis")
	}

	type cell struct {
		sum   float64
		count int
	}
	weeks := make(map[time.Time]*[7]cell)
	var weekStarts []time.Time
	for _, rec := range records {
		v, ok := rec.Value(metric)
		if !ok {
			continue
		}
		start := weekStart(rec.Date)
		row, seen := weeks[start]
		if !seen {
			row = &[7]cell{}
			weeks[start] = row
			weekStarts = append(weekStarts, start)
		}
		day := mondayIndex(rec.Date.Weekday())
		row[day].sum += v
		row[day].count++
	}
	if len(weeks) == 0 {
		return errorFigure(req, "no data points for the requested axes")
	}
	sort.Slice(weekStarts, func(i, j int) bool { return weekStarts[i].Before(weekStarts[j]) })

	z := make([][]float64, len(weekStarts))
	y := make([]float64, len(weekStarts))
	for i, start := range weekStarts {
		row := make([]float64, 7)
		for d, c := range weeks[start] {
			if c.count > 0 {
				row[d] = c.sum / float64(c.count)
			}
		}
		z[i] = row
		y[i] = float64(i + 1)
	}

	return domain.Figure{
		Traces: []domain.Trace{{
			Name: axisLabel("", metric),
			X:    weekdayLabels,
			Y:    y,
			Z:    z,
		}},
		Layout: domain.Layout{XLabel: "Weekday", YLabel: "Week"},
	}
}

func weekStart(day time.Time) time.Time {
	return day.AddDate(0, 0, -mondayIndex(day.Weekday()))
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
