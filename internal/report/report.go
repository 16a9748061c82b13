// Package report renders analysis results as interactive HTML charts.
package report

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/deckforge/ptcg-analyzer/internal/analysis"
	"github.com/deckforge/ptcg-analyzer/internal/analysis/scoring"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string
	Subtitle   string
	Width      string
	Height     string
	Theme      string
	ShowLegend bool
	Smooth     bool
	Colors     []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint is a single labeled value.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData is one series of a multi-series chart.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

// renderBar writes a bar chart to w.
func renderBar(data []DataPoint, seriesName string, config ChartConfig, w io.Writer) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
	)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(seriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("rendering bar chart: %w", err)
	}
	return nil
}

// renderMultiLine writes a multi-series line chart to w.
func renderMultiLine(series []SeriesData, config ChartConfig, w io.Writer) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	xLabels := make([]string, len(series[0].Points))
	for i, point := range series[0].Points {
		xLabels[i] = point.Label
	}
	line.SetXAxis(xLabels)

	for i, s := range series {
		yData := make([]opts.LineData, len(s.Points))
		for j, point := range s.Points {
			yData[j] = opts.LineData{Value: point.Value}
		}
		line.AddSeries(s.Name, yData).
			SetSeriesOptions(
				charts.WithLineChartOpts(opts.LineChart{
					Smooth: opts.Bool(config.Smooth),
				}),
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: config.Colors[i%len(config.Colors)],
				}),
			)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering line chart: %w", err)
	}
	return nil
}

// CategoryPoints extracts the per-category scores in display order.
func CategoryPoints(result *analysis.Result) []DataPoint {
	if result == nil || result.Scores == nil {
		return nil
	}
	var out []DataPoint
	for _, cat := range scoring.CategoryOrder() {
		out = append(out, DataPoint{Label: string(cat), Value: result.Scores.Categories[cat]})
	}
	return out
}

// FactorPoints extracts the individual factor scores, in the scorer's order.
func FactorPoints(result *analysis.Result) []DataPoint {
	if result == nil || result.Scores == nil {
		return nil
	}
	out := make([]DataPoint, 0, len(result.Scores.Factors))
	for _, f := range result.Scores.Factors {
		out = append(out, DataPoint{Label: f.Name, Value: f.Score})
	}
	return out
}

// MatchupPoints extracts projected win rates per meta opponent.
func MatchupPoints(result *analysis.Result) []DataPoint {
	if result == nil || result.Archetype == nil {
		return nil
	}
	out := make([]DataPoint, 0, len(result.Archetype.Matchups))
	for _, m := range result.Archetype.Matchups {
		out = append(out, DataPoint{Label: m.Opponent, Value: m.WinRate})
	}
	return out
}

// KeyCardSeries extracts turn-by-turn draw odds per key card as percentages.
func KeyCardSeries(result *analysis.Result) []SeriesData {
	if result == nil || result.Probabilities == nil {
		return nil
	}
	out := make([]SeriesData, 0, len(result.Probabilities.KeyCards))
	for _, kc := range result.Probabilities.KeyCards {
		out = append(out, SeriesData{
			Name: kc.Name,
			Points: []DataPoint{
				{Label: "turn 1", Value: kc.ByTurn1 * 100},
				{Label: "turn 2", Value: kc.ByTurn2 * 100},
				{Label: "turn 3", Value: kc.ByTurn3 * 100},
			},
		})
	}
	return out
}

// WriteCharts renders the result's charts into dir, one HTML file per chart,
// and returns the paths it wrote. Charts whose data is missing (degraded
// stages) are skipped rather than rendered empty.
func WriteCharts(result *analysis.Result, dir string) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("analysis result required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	subtitle := result.DeckName
	if subtitle == "" {
		subtitle = fmt.Sprintf("%d cards", result.CardCount)
	}

	var written []string
	write := func(name string, render func(w io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating chart file: %w", err)
		}
		defer f.Close()
		if err := render(f); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if points := CategoryPoints(result); len(points) > 0 {
		cfg := DefaultChartConfig()
		cfg.Title = "Score by Category"
		cfg.Subtitle = subtitle
		if err := write("categories.html", func(w io.Writer) error {
			return renderBar(points, "Score", cfg, w)
		}); err != nil {
			return written, err
		}
	}

	if points := FactorPoints(result); len(points) > 0 {
		cfg := DefaultChartConfig()
		cfg.Title = "Scoring Factors"
		cfg.Subtitle = subtitle
		cfg.Width = "1400px"
		if err := write("factors.html", func(w io.Writer) error {
			return renderBar(points, "Score", cfg, w)
		}); err != nil {
			return written, err
		}
	}

	if points := MatchupPoints(result); len(points) > 0 {
		cfg := DefaultChartConfig()
		cfg.Title = "Projected Matchups"
		cfg.Subtitle = subtitle
		if err := write("matchups.html", func(w io.Writer) error {
			return renderBar(points, "Win Rate %", cfg, w)
		}); err != nil {
			return written, err
		}
	}

	if series := KeyCardSeries(result); len(series) > 0 {
		cfg := DefaultChartConfig()
		cfg.Title = "Key Card Draw Odds"
		cfg.Subtitle = subtitle
		if err := write("key_cards.html", func(w io.Writer) error {
			return renderMultiLine(series, cfg, w)
		}); err != nil {
			return written, err
		}
	}

	return written, nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
