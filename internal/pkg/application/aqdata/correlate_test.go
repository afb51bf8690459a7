package aqdata

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

func TestThatCoSitedDevicesCorrelateStrongly(t *testing.T) {
	is := is.New(t)

	a := NewSensorRecord()
	b := NewSensorRecord()
	for i := 0; i < 10; i++ {
		v := float64(10 + i*3)
		a.Data.AppendRow(base.Add(time.Duration(i)*time.Minute), map[string]float64{ColumnPM10: v})
		b.Data.AppendRow(base.Add(time.Duration(i)*time.Minute+10*time.Second), map[string]float64{ColumnPM10: 2 * v})
	}

	result := a.CorrWith(b, 0)

	is.Equal(len(result), 1)
	is.Equal(result[0].Column, ColumnPM10)
	is.Equal(result[0].Pairs, 10)
	is.True(math.Abs(result[0].Corr-1.0) < 1e-9)
}

func TestThatDistantSamplesStayUnpaired(t *testing.T) {
	is := is.New(t)

	a := NewSensorRecord()
	b := NewSensorRecord()
	for i := 0; i < 5; i++ {
		a.Data.AppendRow(base.Add(time.Duration(i)*time.Minute), map[string]float64{ColumnPM10: float64(i)})
		b.Data.AppendRow(base.Add(time.Duration(i)*time.Minute+10*time.Minute), map[string]float64{ColumnPM10: float64(i)})
	}

	result := a.CorrWith(b, time.Minute)

	is.Equal(result[0].Pairs, 0)
	is.True(math.IsNaN(result[0].Corr))
}

func TestThatOnlySharedColumnsAreCorrelated(t *testing.T) {
	is := is.New(t)

	a := NewSensorRecord()
	a.Data.AppendRow(base, map[string]float64{ColumnPM10: 20, ColumnTemperature: 4})
	a.Data.AppendRow(base.Add(time.Minute), map[string]float64{ColumnPM10: 30, ColumnTemperature: 5})

	b := NewSensorRecord()
	b.Data.AppendRow(base, map[string]float64{ColumnPM10: 21})
	b.Data.AppendRow(base.Add(time.Minute), map[string]float64{ColumnPM10: 29})

	result := a.CorrWith(b, 0)

	is.Equal(len(result), 1)
	is.Equal(result[0].Column, ColumnPM10)
}

func TestThatReindexingPicksTheNearestSample(t *testing.T) {
	is := is.New(t)

	src := timeseries.New(ColumnPM10)
	src.AppendRow(base.Add(30*time.Second), map[string]float64{ColumnPM10: 5})
	src.AppendRow(base.Add(90*time.Second), map[string]float64{ColumnPM10: 7})

	out := reindexNearest(src, []time.Time{base, base.Add(2 * time.Minute)}, time.Minute)

	is.Equal(out.Len(), 2)
	is.Equal(out.Value(ColumnPM10, 0), 5.0)
	is.Equal(out.Value(ColumnPM10, 1), 7.0)
}
