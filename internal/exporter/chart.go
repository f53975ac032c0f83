package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"cohortpulse/internal/chart"
	"cohortpulse/pkg/contracts/domain"
)

const (
	renderWidth  = 1200
	renderHeight = 800

	// renderSettle gives the embedded plotting library time to lay the
	// figure out before capture.
	renderSettle = 500 * time.Millisecond
)

// ChartRenderer rasterizes figures through a headless browser.
type ChartRenderer struct {
	timeout time.Duration
}

// NewChartRenderer creates a renderer with a per-render timeout.
func NewChartRenderer(timeout time.Duration) *ChartRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChartRenderer{timeout: timeout}
}

// RenderPNG captures the figure as a PNG screenshot.
func (r *ChartRenderer) RenderPNG(ctx context.Context, fig domain.Figure) ([]byte, error) {
	var buf []byte
	err := r.render(ctx, fig, chromedp.Tasks{
		chromedp.EmulateViewport(renderWidth, renderHeight),
		chromedp.Sleep(renderSettle),
		chromedp.CaptureScreenshot(&buf),
	})
	if err != nil {
		return nil, fmt.Errorf("exporter: render png: %w", err)
	}
	return buf, nil
}

// RenderPDF prints the figure to a single-page PDF.
func (r *ChartRenderer) RenderPDF(ctx context.Context, fig domain.Figure) ([]byte, error) {
	var buf []byte
	err := r.render(ctx, fig, chromedp.Tasks{
		chromedp.EmulateViewport(renderWidth, renderHeight),
		chromedp.Sleep(renderSettle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(true).
				Do(ctx)
			return err
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("exporter: render pdf: %w", err)
	}
	return buf, nil
}

func (r *ChartRenderer) render(ctx context.Context, fig domain.Figure, capture chromedp.Tasks) error {
	htmlPath, cleanup, err := writeTempHTML(fig)
	if err != nil {
		return err
	}
	defer cleanup()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.WindowSize(renderWidth, renderHeight),
		)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	tasks := append(chromedp.Tasks{
		chromedp.Navigate("file://" + htmlPath),
		chromedp.WaitVisible("#chart", chromedp.ByID),
	}, capture...)
	return chromedp.Run(runCtx, tasks)
}

func writeTempHTML(fig domain.Figure) (string, func(), error) {
	dir, err := os.MkdirTemp("", "cohortpulse-chart-*")
	if err != nil {
		return "", nil, fmt.Errorf("exporter: temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, "chart.html")
	f, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("exporter: temp html: %w", err)
	}
	defer f.Close()

	if err := chart.WriteHTML(f, fig); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
