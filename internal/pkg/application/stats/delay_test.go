package stats

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

func TestThatSelfCorrelationAtZeroDelayIsOne(t *testing.T) {
	is := is.New(t)

	table := wavyTable(time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC), 10*time.Minute, 36)

	result := TimeDelayCorrelation(table, table, DelayOptions{
		DTMin: -time.Hour,
		DTMax: time.Hour,
		Freq:  10 * time.Minute,
	})

	zero := -1
	for i, d := range result.Delays {
		if d == 0 {
			zero = i
		}
	}
	is.True(zero >= 0) // delay 0 is part of the scan

	is.Equal(len(result.Columns), 2)
	for _, name := range result.Columns {
		is.True(math.Abs(result.Corr[name][zero]-1.0) < 1e-9)
	}
}

func TestThatShiftedCopyPeaksAtTheOpposingDelay(t *testing.T) {
	is := is.New(t)

	start := time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC)
	a := wavyTable(start, 10*time.Minute, 36)
	b := wavyTable(start.Add(20*time.Minute), 10*time.Minute, 36)

	result := TimeDelayCorrelation(a, b, DelayOptions{
		DTMin:  -time.Hour,
		DTMax:  time.Hour,
		Freq:   10 * time.Minute,
		Window: DefaultSmoothingWindow,
	})

	delay, corr, ok := result.Best("pm10")
	is.True(ok)
	is.Equal(delay, -20*time.Minute) // shifting b back by 20 minutes realigns the copies
	is.True(corr > 0.99)
}

func TestThatNonOverlappingSeriesYieldNoCorrelation(t *testing.T) {
	is := is.New(t)

	a := wavyTable(time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC), 10*time.Minute, 12)
	b := wavyTable(time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), 10*time.Minute, 12)

	result := TimeDelayCorrelation(a, b, DelayOptions{
		DTMin: -time.Hour,
		DTMax: time.Hour,
		Freq:  10 * time.Minute,
	})

	_, _, ok := result.Best("pm10")
	is.True(!ok)
}

func TestThatTheScanCoversBothRangeEnds(t *testing.T) {
	is := is.New(t)

	table := wavyTable(time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC), 10*time.Minute, 12)

	result := TimeDelayCorrelation(table, table, DelayOptions{
		DTMin: -30 * time.Minute,
		DTMax: 30 * time.Minute,
		Freq:  10 * time.Minute,
	})

	is.Equal(len(result.Delays), 7)
	is.Equal(result.Delays[0], -30*time.Minute)
	is.Equal(result.Delays[6], 30*time.Minute)
}

func wavyTable(start time.Time, step time.Duration, n int) *timeseries.Table {
	table := timeseries.New("pm10", "pm2_5")
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * float64(i) / float64(n)
		table.AppendRow(start.Add(time.Duration(i)*step), map[string]float64{
			"pm10":  25 + 10*math.Sin(phase),
			"pm2_5": 12 + 5*math.Cos(phase),
		})
	}
	return table
}
