package domain

// ChartKind selects one of the supported renderers.
type ChartKind string

const (
	ChartLine      ChartKind = "line"
	ChartBar       ChartKind = "bar"
	ChartScatter   ChartKind = "scatter"
	ChartBox       ChartKind = "box"
	ChartViolin    ChartKind = "violin"
	ChartArea      ChartKind = "area"
	ChartHistogram ChartKind = "histogram"
	ChartHeatmap   ChartKind = "heatmap"
)

// ChartRequest is a declarative description of one chart. It has no
// identity; it is consumed once to produce a Figure.
type ChartRequest struct {
	Kind          ChartKind `json:"kind" validate:"required"`
	X             string    `json:"x" validate:"required"`
	Y             string    `json:"y"`
	GroupBy       string    `json:"group_by"`
	Title         string    `json:"title"`
	Palette       string    `json:"palette"`
	XLabel        string    `json:"x_label"`
	YLabel        string    `json:"y_label"`
	ShowGrid      bool      `json:"show_grid"`
	ShowTrendline bool      `json:"show_trendline"`
	Bins          int       `json:"bins"`
}

// Trace is one series within a figure.
type Trace struct {
	Name string    `json:"name"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
	// Z carries the matrix for heatmap traces; nil otherwise.
	Z [][]float64 `json:"z,omitempty"`
	// Bins caps the bin count for histogram traces; 0 lets the
	// renderer choose.
	Bins int `json:"bins,omitempty"`
}

// Layout carries presentation options for a figure.
type Layout struct {
	XLabel   string   `json:"x_label,omitempty"`
	YLabel   string   `json:"y_label,omitempty"`
	XIsDate  bool     `json:"x_is_date,omitempty"`
	ShowGrid bool     `json:"show_grid"`
	Colors   []string `json:"colors,omitempty"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
}

// Figure is a renderable chart. When Message is non-empty the figure
// carries a warning or error rendered as visible text instead of data;
// charts never propagate rendering failures.
type Figure struct {
	Kind    ChartKind `json:"kind"`
	Title   string    `json:"title"`
	Traces  []Trace   `json:"traces"`
	Layout  Layout    `json:"layout"`
	Message string    `json:"message,omitempty"`
}

// IsError reports whether the figure is a placeholder carrying a
// warning or error message rather than chart data.
func (f Figure) IsError() bool {
	return f.Message != "" && len(f.Traces) == 0
}
