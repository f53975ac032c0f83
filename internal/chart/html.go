package chart

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"cohortpulse/pkg/contracts/domain"
)

// htmlPage embeds the figure JSON and a small adapter that maps kinds
// onto plotly trace types in the browser.
var htmlPage = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.32.0.min.js"></script>
<style>body { margin: 0; font-family: sans-serif; }</style>
</head>
<body>
<div id="chart"></div>
<script>
const fig = {{.FigureJSON}};

function plotlyTraces(fig) {
  if (fig.message && (!fig.traces || fig.traces.length === 0)) {
    return [];
  }
  return fig.traces.map(function (t, i) {
    const color = fig.layout.colors ? fig.layout.colors[i % fig.layout.colors.length] : undefined;
    switch (fig.kind) {
      case "bar":
        return { type: "bar", name: t.name, x: t.x, y: t.y, marker: { color: color } };
      case "scatter":
        if (t.name === "trend") {
          return { type: "scatter", mode: "lines", name: t.name, x: t.x, y: t.y,
                   line: { dash: "dash", color: "#888" } };
        }
        return { type: "scatter", mode: "markers", name: t.name, x: t.x, y: t.y, marker: { color: color } };
      case "box":
        return { type: "box", name: t.name, y: t.y, marker: { color: color } };
      case "violin":
        return { type: "violin", name: t.name, y: t.y, box: { visible: true }, marker: { color: color } };
      case "histogram":
        return { type: "histogram", name: t.name, x: t.y, nbinsx: t.bins || 0,
                 opacity: 0.7, marker: { color: color } };
      case "heatmap":
        return { type: "heatmap", z: t.z, x: t.x, y: t.y, colorscale: "Viridis" };
      case "area":
        return { type: "scatter", mode: "lines", fill: "tozeroy", name: t.name, x: t.x, y: t.y,
                 line: { color: color } };
      default:
        return { type: "scatter", mode: "lines+markers", name: t.name, x: t.x, y: t.y,
                 line: { color: color } };
    }
  });
}

const layout = {
  title: fig.title,
  width: fig.layout.width,
  height: fig.layout.height,
  xaxis: { title: fig.layout.x_label || "", showgrid: fig.layout.show_grid,
           type: fig.layout.x_is_date ? "date" : "-" },
  yaxis: { title: fig.layout.y_label || "", showgrid: fig.layout.show_grid },
  barmode: "group"
};
if (fig.kind === "histogram") {
  layout.barmode = "overlay";
}
if (fig.message) {
  layout.annotations = [{ text: fig.message, showarrow: false,
                          xref: "paper", yref: "paper", x: 0.5, y: 0.5,
                          font: { size: 18, color: "#b03030" } }];
}

Plotly.newPlot("chart", plotlyTraces(fig), layout, { responsive: false });
</script>
</body>
</html>
`))

// WriteHTML renders the figure as a standalone HTML document. The same
// document feeds the browser view and the headless PNG/PDF renderer.
func WriteHTML(w io.Writer, fig domain.Figure) error {
	raw, err := json.Marshal(fig)
	if err != nil {
		return fmt.Errorf("chart: encode figure: %w", err)
	}
	data := struct {
		Title      string
		FigureJSON template.JS
	}{
		Title:      fig.Title,
		FigureJSON: template.JS(raw),
	}
	if err := htmlPage.Execute(w, data); err != nil {
		return fmt.Errorf("chart: render html: %w", err)
	}
	return nil
}
