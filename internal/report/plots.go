package report

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aridfield/thermacorrect/internal/forest"
	"github.com/aridfield/thermacorrect/internal/fsutil"
)

// ScatterPlot renders predicted vs actual residuals to a PNG. Points beyond
// maxPoints are downsampled by stride so the plot stays readable.
func ScatterPlot(fsys fsutil.FileSystem, path string, predicted, actual []float64, maxPoints int) error {
	if len(predicted) != len(actual) {
		return fmt.Errorf("scatter: %d predictions for %d actuals", len(predicted), len(actual))
	}
	if len(predicted) == 0 {
		return fmt.Errorf("scatter: no points to plot")
	}

	stride := 1
	if maxPoints > 0 && len(predicted) > maxPoints {
		stride = (len(predicted) + maxPoints - 1) / maxPoints
	}
	pts := make(plotter.XYs, 0, len(predicted)/stride+1)
	for i := 0; i < len(predicted); i += stride {
		pts = append(pts, plotter.XY{X: actual[i], Y: predicted[i]})
	}

	p := plot.New()
	p.Title.Text = "Residual prediction"
	p.X.Label.Text = "actual residual (°C)"
	p.Y.Label.Text = "predicted residual (°C)"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.Radius = vg.Points(1.5)
	p.Add(scatter)
	p.Add(plotter.NewGrid())

	w, err := p.WriterTo(7*vg.Inch, 7*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render scatter: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := w.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ImportanceChart renders the model's feature importances as an HTML bar
// chart, in schema column order.
func ImportanceChart(fsys fsutil.FileSystem, path string, model *forest.FittedModel) error {
	x := make([]string, len(model.Columns))
	y := make([]opts.BarData, len(model.Columns))
	for i, col := range model.Columns {
		x[i] = col
		y[i] = opts.BarData{Value: model.Importances[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Feature importance", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Feature importance", Subtitle: fmt.Sprintf("r² = %.3f", model.R2)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("importance", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(bar)

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return nil
}
