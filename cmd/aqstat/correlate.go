package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/stats"
)

var (
	delayScan   bool
	delayMin    time.Duration
	delayMax    time.Duration
	delayFreq   time.Duration
	delayWindow time.Duration
)

var correlateCmd = &cobra.Command{
	Use:   "correlate INPUTDIR",
	Short: "correlate co-sited devices pairwise, optionally scanning for the best time shift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if delayScan && delayFreq <= 0 {
			return errors.New("freq must be positive")
		}

		records, err := collectRecords(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(records) < 2 {
			return errors.New("need at least two devices to correlate")
		}

		for _, record := range records {
			record.Calibrate(aqdata.SDS011Calibration)
		}

		for i := 0; i < len(records); i++ {
			for j := i + 1; j < len(records); j++ {
				a, b := records[i], records[j]
				fmt.Printf("%s vs %s\n", a.Label(), b.Label())

				if delayScan {
					printDelayScan(a, b)
				} else {
					printCorrelations(a, b)
				}
			}
		}

		return nil
	},
}

func init() {
	addFilterFlags(correlateCmd)
	correlateCmd.Flags().BoolVar(&delayScan, "delay", false, "scan for the time shift with the best correlation")
	correlateCmd.Flags().DurationVar(&delayMin, "dtmin", -2*time.Hour, "lower bound of the delay scan")
	correlateCmd.Flags().DurationVar(&delayMax, "dtmax", 2*time.Hour, "upper bound of the delay scan")
	correlateCmd.Flags().DurationVar(&delayFreq, "freq", 10*time.Minute, "delay scan step and resampling interval")
	correlateCmd.Flags().DurationVar(&delayWindow, "window", stats.DefaultSmoothingWindow, "moving average window, 0 disables smoothing")
}

func printCorrelations(a, b *aqdata.SensorRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "  column\tcorr\tpairs")
	for _, c := range a.CorrWith(b, aqdata.DefaultMatchTolerance) {
		fmt.Fprintf(w, "  %s\t%.4f\t%d\n", c.Column, c.Corr, c.Pairs)
	}
	w.Flush()
}

func printDelayScan(a, b *aqdata.SensorRecord) {
	result := stats.TimeDelayCorrelation(a.Data, b.Data, stats.DelayOptions{
		DTMin:  delayMin,
		DTMax:  delayMax,
		Freq:   delayFreq,
		Window: delayWindow,
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "  column\tbest delay\tcorr")
	for _, column := range result.Columns {
		delay, corr, ok := result.Best(column)
		if !ok {
			fmt.Fprintf(w, "  %s\t-\t-\n", column)
			continue
		}
		fmt.Fprintf(w, "  %s\t%s\t%.4f\n", column, delay, corr)
	}
	w.Flush()
}
