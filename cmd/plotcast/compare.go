package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sartorproj/plotcast/forecast"
	"github.com/sartorproj/plotcast/timeseries"
)

func compareCmd() *cobra.Command {
	var (
		file, x, y string
		horizon    int
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Fit every model on one table and summarize the forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("horizon") {
				horizon = cfg.Forecast.DefaultHorizon
			}
			if err := (forecast.Request{Model: forecast.None, Horizon: horizon}).Validate(); err != nil {
				return err
			}

			rows, _, _, err := readRows(file, x, y)
			if err != nil {
				return err
			}

			series, stats, err := timeseries.PrepareWithStats(rows)
			if err != nil {
				var short *timeseries.InsufficientDataError
				if errors.As(err, &short) {
					return errors.New(forecast.InsufficientDataWarning)
				}
				return err
			}
			if verbose {
				fmt.Fprintf(os.Stderr, "Prepared %d points from %d rows (%d days filled)\n",
					stats.Dense, stats.Rows, stats.FilledDays)
			}

			// Setup context with cancellation
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case <-sigChan:
					fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping comparison...")
					cancel()
				case <-ctx.Done():
				}
			}()

			strategies := forecast.DefaultStrategies(cfg.AdditiveModel())
			bar := progressbar.NewOptions(len(strategies),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Fitting"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)

			results := forecast.CompareWithProgress(ctx, series, horizon, func(done, total int) {
				bar.Set(done)
			}, strategies...)
			bar.Finish()
			fmt.Fprintln(os.Stderr)

			printComparison(results)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX file to read")
	cmd.Flags().StringVar(&x, "x", "", "date column (default: guessed)")
	cmd.Flags().StringVar(&y, "y", "", "value column (default: guessed)")
	cmd.Flags().IntVar(&horizon, "horizon", forecast.DefaultHorizon, "days to forecast (7-90)")
	return cmd
}

func printComparison(results []forecast.Comparison) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Model", "Status", "Time", "First", "Last", "Last Interval", "AIC", "BIC", "Ljung-Box p"}),
	)

	for _, c := range results {
		if c.Err != nil {
			table.Append([]string{c.Model.String(), "failed: " + c.Err.Error(), c.Duration.Round(time.Millisecond).String(), "-", "-", "-", "-", "-", "-"})
			continue
		}

		future := c.Result.Future()
		first, last := future[0], future[len(future)-1]
		interval := "-"
		if last.Bounded() {
			interval = fmt.Sprintf("%s .. %s", formatBound(last.Lower), formatBound(last.Upper))
		}
		aic, bic, lbp := "-", "-", "-"
		if d := c.Result.Diagnostics; d != nil {
			aic, bic = fmt.Sprintf("%.1f", d.AIC), fmt.Sprintf("%.1f", d.BIC)
			if d.LjungBoxP != nil {
				lbp = fmt.Sprintf("%.3f", *d.LjungBoxP)
			}
		}
		table.Append([]string{
			c.Model.String(),
			"ok",
			c.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%.2f", first.Value),
			fmt.Sprintf("%.2f", last.Value),
			interval,
			aic,
			bic,
			lbp,
		})
	}
	table.Render()
}
