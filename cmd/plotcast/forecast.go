package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sartorproj/plotcast"
	"github.com/sartorproj/plotcast/chart"
	"github.com/sartorproj/plotcast/forecast"
)

func forecastCmd() *cobra.Command {
	var (
		file, x, y string
		model      string
		plotType   string
		format     string
		horizon    int
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast one table and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("model") {
				model = cfg.Forecast.DefaultModel
			}
			if !cmd.Flags().Changed("horizon") {
				horizon = cfg.Forecast.DefaultHorizon
			}

			m, err := forecast.ParseModel(model)
			if err != nil {
				return err
			}
			kind, err := chart.ParseKind(plotType)
			if err != nil {
				return err
			}

			rows, xCol, yCol, err := readRows(file, x, y)
			if err != nil {
				return err
			}

			report, err := newPipeline(cfg, forecast.WithLogger(cliLogger())).Plot(context.Background(), rows, plotcast.Options{
				Kind: kind, Model: m, Horizon: horizon, XLabel: xCol, YLabel: yCol,
			})
			if err != nil {
				return err
			}

			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(os.Stderr, "Error: %s\n", e)
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "csv":
				return chart.WriteCSV(os.Stdout, report.Spec)
			case "table":
				printForecastTable(report)
				return nil
			}
			return fmt.Errorf("unknown format %q (want table, json or csv)", format)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file to read")
	cmd.Flags().StringVar(&x, "x", "", "date column (default: guessed)")
	cmd.Flags().StringVar(&y, "y", "", "value column (default: guessed)")
	cmd.Flags().StringVar(&model, "model", "arima", "model: none, arima, sarima, additive")
	cmd.Flags().IntVar(&horizon, "horizon", forecast.DefaultHorizon, "days to forecast (7-90)")
	cmd.Flags().StringVar(&plotType, "plot", "line", "plot type: line, bar, scatter")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json, csv")
	return cmd
}

func printForecastTable(report *plotcast.Report) {
	fmt.Println(report.Spec.Title)
	fmt.Println()

	out := report.Outcome
	if out.Forecast == nil {
		fmt.Printf("%d observations, no forecast.\n", out.Series.Len())
		return
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Date", "Forecast", "Lower", "Upper"}),
	)
	for _, p := range out.Forecast.Future() {
		table.Append([]string{
			p.Date.Format(time.DateOnly),
			fmt.Sprintf("%.2f", p.Value),
			formatBound(p.Lower),
			formatBound(p.Upper),
		})
	}
	table.Render()

	if d := report.Diagnostics; d != nil && verbose {
		fmt.Printf("\n%s  log-likelihood %.3f  AIC %.3f  AICc %.3f  BIC %.3f  sigma^2 %.4g\n",
			d.Order, d.LogLik, d.AIC, d.AICc, d.BIC, d.Variance)
		if d.LjungBoxP != nil {
			fmt.Printf("Ljung-Box Q %.3f  p %.4f\n", *d.LjungBoxQ, *d.LjungBoxP)
		}
	}
}
