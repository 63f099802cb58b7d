package collector

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders the training curve as a standalone HTML page: fires
// extinguished and episode length per episode.
func WriteChart(episodes []EpisodeStats, path string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Cooperative firefighting training",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var labels []string
	extinguished := make([]opts.LineData, 0, len(episodes))
	steps := make([]opts.LineData, 0, len(episodes))
	for _, ep := range episodes {
		labels = append(labels, fmt.Sprintf("%d", ep.Episode))
		extinguished = append(extinguished, opts.LineData{Value: ep.TotalExtinguished})
		steps = append(steps, opts.LineData{Value: ep.Steps})
	}

	line.SetXAxis(labels)
	line.AddSeries("extinguished", extinguished)
	line.AddSeries("steps", steps)

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
