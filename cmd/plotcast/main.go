package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sartorproj/plotcast"
	"github.com/sartorproj/plotcast/config"
	"github.com/sartorproj/plotcast/forecast"
	"github.com/sartorproj/plotcast/timeseries"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "plotcast",
		Short: "Plot uploaded time series and forecast them",
		Long: `Plotcast turns a two-column table (date, value) into a chart and, optionally,
a daily forecast from one of three models:

Models:
  arima     - ARIMA(2,1,2) point forecast
  sarima    - SARIMA(1,1,1)x(1,1,1,12) point forecast
  additive  - trend + weekly/yearly seasonality with an 80% interval

Examples:
  plotcast serve --config plotcast.yaml
  plotcast forecast --file sales.csv --model arima --horizon 14
  plotcast compare --file sales.xlsx --horizon 30`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "plotcast.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log preparation and fit details")

	rootCmd.AddCommand(serveCmd(), forecastCmd(), compareCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// cliLogger discards orchestration logs unless --verbose is set.
func cliLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "[forecast] ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

func newPipeline(cfg *config.Config, opts ...forecast.Option) *plotcast.Pipeline {
	orch := forecast.NewOrchestrator(forecast.DefaultStrategies(cfg.AdditiveModel()), opts...)
	return plotcast.New(orch)
}

// readRows loads file and extracts the chosen columns. Empty column names
// fall back to the table's guess.
func readRows(file, x, y string) ([]timeseries.Row, string, string, error) {
	if file == "" {
		return nil, "", "", fmt.Errorf("--file is required")
	}
	table, err := timeseries.LoadTableFile(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("loading %s: %w", file, err)
	}

	dateCol, valueCol := table.DefaultColumns()
	if x == "" {
		x = dateCol
	}
	if y == "" {
		y = valueCol
	}

	rows, err := table.Rows(x, y)
	if err != nil {
		return nil, "", "", err
	}
	return rows, x, y, nil
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
