package aqdata

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestThatPollutedDaysAreCountedPerLimit(t *testing.T) {
	is := is.New(t)

	r := NewSensorRecord()
	addDay := func(day int, pm10, pm25 float64) {
		ts := base.AddDate(0, 0, day)
		r.Data.AppendRow(ts.Add(8*time.Hour), map[string]float64{ColumnPM10: pm10 - 10, ColumnPM25: pm25 - 5})
		r.Data.AppendRow(ts.Add(14*time.Hour), map[string]float64{ColumnPM10: pm10 + 10, ColumnPM25: pm25 + 5})
	}
	addDay(0, 60, 30)
	addDay(1, 120, 60)
	addDay(2, 30, 10)

	summary := r.Pollution()

	is.Equal(summary.Days, 3)
	is.Equal(summary.PM10Above1x, 2)
	is.Equal(summary.PM10Above15x, 1)
	is.Equal(summary.PM10Above2x, 1)
	is.Equal(summary.PM25Above1x, 2)
	is.Equal(summary.PM25Above2x, 1)
}
