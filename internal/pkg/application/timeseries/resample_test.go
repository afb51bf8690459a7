package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestRollingMeanUsesTrailingWindow(t *testing.T) {
	is := is.New(t)

	tbl := New("pm10")
	tbl.AppendRow(base, map[string]float64{"pm10": 1})
	tbl.AppendRow(base.Add(30*time.Minute), map[string]float64{"pm10": 2})
	tbl.AppendRow(base.Add(60*time.Minute), map[string]float64{"pm10": 3})

	smoothed := tbl.RollingMean(time.Hour)

	is.Equal(smoothed.Value("pm10", 0), 1.0)
	is.Equal(smoothed.Value("pm10", 1), 1.5)
	is.Equal(smoothed.Value("pm10", 2), 2.5) // first row fell out of the 1h window
}

func TestRollingMeanIgnoresNaN(t *testing.T) {
	is := is.New(t)

	tbl := New("pm10", "pm2_5")
	tbl.AppendRow(base, map[string]float64{"pm10": 4})
	tbl.AppendRow(base.Add(10*time.Minute), map[string]float64{"pm2_5": 2})
	tbl.AppendRow(base.Add(20*time.Minute), map[string]float64{"pm10": 8})

	smoothed := tbl.RollingMean(time.Hour)

	is.Equal(smoothed.Value("pm10", 1), 4.0) // NaN row contributes nothing
	is.Equal(smoothed.Value("pm10", 2), 6.0)
	is.Equal(smoothed.Value("pm2_5", 2), 2.0)
}

func TestResampleLinearInterpolatesBetweenSamples(t *testing.T) {
	is := is.New(t)

	tbl := New("temperature")
	tbl.AppendRow(base, map[string]float64{"temperature": 10})
	tbl.AppendRow(base.Add(time.Hour), map[string]float64{"temperature": 20})

	grid := tbl.ResampleLinear(base, base.Add(time.Hour), 15*time.Minute)

	is.Equal(grid.Len(), 5)
	is.Equal(grid.Value("temperature", 0), 10.0)
	is.Equal(grid.Value("temperature", 1), 12.5)
	is.Equal(grid.Value("temperature", 2), 15.0)
	is.Equal(grid.Value("temperature", 4), 20.0)
}

func TestResampleLinearNeverExtrapolates(t *testing.T) {
	is := is.New(t)

	tbl := New("temperature")
	tbl.AppendRow(base.Add(time.Hour), map[string]float64{"temperature": 10})
	tbl.AppendRow(base.Add(2*time.Hour), map[string]float64{"temperature": 20})

	grid := tbl.ResampleLinear(base, base.Add(3*time.Hour), time.Hour)

	is.Equal(grid.Len(), 4)
	is.True(math.IsNaN(grid.Value("temperature", 0))) // before first sample
	is.Equal(grid.Value("temperature", 1), 10.0)
	is.Equal(grid.Value("temperature", 2), 20.0)
	is.True(math.IsNaN(grid.Value("temperature", 3))) // after last sample
}

func TestResampleLinearSkipsMissingSamples(t *testing.T) {
	is := is.New(t)

	tbl := New("pm10")
	tbl.AppendRow(base, map[string]float64{"pm10": 10})
	tbl.AppendRow(base.Add(time.Hour), map[string]float64{"pm10": math.NaN()})
	tbl.AppendRow(base.Add(2*time.Hour), map[string]float64{"pm10": 30})

	grid := tbl.ResampleLinear(base, base.Add(2*time.Hour), time.Hour)

	is.Equal(grid.Value("pm10", 1), 20.0) // NaN sample bridged by its valid neighbours
}
