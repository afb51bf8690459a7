package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vasarhelyi/aqstat/internal/pkg/application/aqdata"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/stats"
)

var statCmd = &cobra.Command{
	Use:   "stat INPUTDIR",
	Short: "summarize sampling gaps, averages and polluted days per device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := collectRecords(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		for _, record := range records {
			record.Calibrate(aqdata.SDS011Calibration)
			printDeviceStats(record)
		}

		return nil
	},
}

func init() {
	addFilterFlags(statCmd)
}

func printDeviceStats(record *aqdata.SensorRecord) {
	table := record.Data

	first, last, _ := table.TimeBounds()
	fmt.Printf("device %s: %d samples from %s to %s\n",
		record.Label(), table.Len(),
		first.Format(time.RFC3339), last.Format(time.RFC3339))

	sampling := stats.DescribeSampling(table.Times())
	fmt.Printf("  gaps: min %s  max %s  mean %s  median %s\n",
		sampling.Min, sampling.Max, sampling.Mean, sampling.Median)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "  column\tvalid\tmean")
	for _, name := range table.Columns() {
		fmt.Fprintf(w, "  %s\t%d\t%.2f\n", name, table.CountValid(name), stats.Mean(table.Column(name)))
	}
	w.Flush()

	p := record.Pollution()
	fmt.Printf("  polluted days of %d: pm10 >%.0f: %d  >%.0f: %d  >%.0f: %d  pm2_5 >%.0f: %d  >%.0f: %d\n\n",
		p.Days,
		aqdata.PM10DailyLimit, p.PM10Above1x,
		1.5*aqdata.PM10DailyLimit, p.PM10Above15x,
		2*aqdata.PM10DailyLimit, p.PM10Above2x,
		aqdata.PM25DailyLimit, p.PM25Above1x,
		2*aqdata.PM25DailyLimit, p.PM25Above2x)
}
