package stats

import (
	"time"

	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

// SamplingStats summarizes the spacing between consecutive samples of a
// series. Count is the number of gaps, which is one less than the
// number of samples.
type SamplingStats struct {
	Count  int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration
}

// DescribeSampling computes gap statistics over an ordered list of
// sample timestamps. Fewer than two samples yield a zero result.
func DescribeSampling(times []time.Time) SamplingStats {
	if len(times) < 2 {
		return SamplingStats{}
	}

	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, float64(times[i].Sub(times[i-1])))
	}

	stats := SamplingStats{
		Count:  len(gaps),
		Min:    time.Duration(gaps[0]),
		Max:    time.Duration(gaps[0]),
		Mean:   time.Duration(Mean(gaps)),
		Median: time.Duration(Median(gaps)),
	}
	for _, g := range gaps {
		if time.Duration(g) < stats.Min {
			stats.Min = time.Duration(g)
		}
		if time.Duration(g) > stats.Max {
			stats.Max = time.Duration(g)
		}
	}

	return stats
}

// DailyAverage reduces a table to one row per calendar day, each column
// holding the mean of that day's valid samples. Rows are stamped at
// midnight in the timestamps' own location.
func DailyAverage(t *timeseries.Table) *timeseries.Table {
	daily := timeseries.New(t.Columns()...)

	var (
		day    time.Time
		values = map[string][]float64{}
		open   bool
	)

	flush := func() {
		if !open {
			return
		}
		row := map[string]float64{}
		for _, name := range t.Columns() {
			row[name] = Mean(values[name])
		}
		daily.AppendRow(day, row)
		values = map[string][]float64{}
	}

	for i, ts := range t.Times() {
		d := midnight(ts)
		if !open || !d.Equal(day) {
			flush()
			day = d
			open = true
		}
		for _, name := range t.Columns() {
			values[name] = append(values[name], t.Value(name, i))
		}
	}
	flush()

	return daily
}

// CountDaysAbove counts the days whose daily mean of the named column
// strictly exceeds the threshold.
func CountDaysAbove(daily *timeseries.Table, column string, threshold float64) int {
	count := 0
	for i := 0; i < daily.Len(); i++ {
		if v := daily.Value(column, i); v > threshold {
			count++
		}
	}
	return count
}

func midnight(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
