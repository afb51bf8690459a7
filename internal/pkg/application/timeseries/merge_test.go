package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestMergeCollapsesNearDuplicateTimestamps(t *testing.T) {
	is := is.New(t)

	a := New("temperature", "humidity")
	a.AppendRow(base, map[string]float64{"temperature": 21.5, "humidity": 45})

	b := New("pm10", "pm2_5")
	b.AppendRow(base.Add(2*time.Second), map[string]float64{"pm10": 20, "pm2_5": 10})

	a.Merge(b, DefaultMergeTolerance)

	is.Equal(a.Len(), 1) // rows 2s apart collapse within the 5s tolerance
	is.Equal(a.At(0), base)
	is.Equal(a.Value("temperature", 0), 21.5)
	is.Equal(a.Value("humidity", 0), 45.0)
	is.Equal(a.Value("pm10", 0), 20.0)
	is.Equal(a.Value("pm2_5", 0), 10.0)
}

func TestMergeKeepsTimesSorted(t *testing.T) {
	is := is.New(t)

	a := New("pm10")
	a.AppendRow(base.Add(time.Hour), map[string]float64{"pm10": 2})
	a.AppendRow(base.Add(3*time.Hour), map[string]float64{"pm10": 4})

	b := New("pm10")
	b.AppendRow(base, map[string]float64{"pm10": 1})
	b.AppendRow(base.Add(2*time.Hour), map[string]float64{"pm10": 3})

	a.Merge(b, DefaultMergeTolerance)

	is.Equal(a.Len(), 4)
	times := a.Times()
	for i := 1; i < len(times); i++ {
		is.True(!times[i].Before(times[i-1])) // ascending after merge
	}
	is.Equal(a.Column("pm10"), []float64{1, 2, 3, 4})
}

func TestMergeOfDisjointRangesConcatenates(t *testing.T) {
	is := is.New(t)

	a := New("pm10")
	a.AppendRow(base, map[string]float64{"pm10": 1})

	b := New("pm10")
	b.AppendRow(base.Add(24*time.Hour), map[string]float64{"pm10": 2})

	a.Merge(b, DefaultMergeTolerance)

	is.Equal(a.Len(), 2)
	is.Equal(a.Column("pm10"), []float64{1, 2})
}

func TestMergeWithEmptyOtherIsNoOp(t *testing.T) {
	is := is.New(t)

	a := New("pm10")
	a.AppendRow(base, map[string]float64{"pm10": 1})

	a.Merge(New("pm10"), DefaultMergeTolerance)
	a.Merge(nil, DefaultMergeTolerance)

	is.Equal(a.Len(), 1)
	is.Equal(a.Value("pm10", 0), 1.0)
}

func TestMergeKeepsFirstValueOnOverlap(t *testing.T) {
	is := is.New(t)

	a := New("pm10")
	a.AppendRow(base, map[string]float64{"pm10": 1})

	b := New("pm10")
	b.AppendRow(base.Add(time.Second), map[string]float64{"pm10": 99})

	a.Merge(b, DefaultMergeTolerance)

	is.Equal(a.Len(), 1)
	is.Equal(a.Value("pm10", 0), 1.0) // earlier row wins, conflicting later value dropped
}

func TestMergeIntoEmptyReceiverAdoptsRows(t *testing.T) {
	is := is.New(t)

	a := New()
	b := New("humidity")
	b.AppendRow(base, map[string]float64{"humidity": 60})

	a.Merge(b, DefaultMergeTolerance)

	is.Equal(a.Len(), 1)
	is.Equal(a.Value("humidity", 0), 60.0)
	is.Equal(b.Len(), 1) // other not consumed
}

func TestMergeTablesIsPure(t *testing.T) {
	is := is.New(t)

	a := New("pm10")
	a.AppendRow(base, map[string]float64{"pm10": 1})
	b := New("pm10")
	b.AppendRow(base.Add(time.Hour), map[string]float64{"pm10": 2})

	merged := MergeTables(a, b, DefaultMergeTolerance)

	is.Equal(merged.Len(), 2)
	is.Equal(a.Len(), 1)
	is.Equal(b.Len(), 1)
}

func TestMergeGroupTakesFirstNonMissingPerColumn(t *testing.T) {
	is := is.New(t)

	a := New("pm10", "pm2_5")
	a.AppendRow(base, map[string]float64{"pm10": 7})

	b := New("pm10", "pm2_5")
	b.AppendRow(base.Add(3*time.Second), map[string]float64{"pm2_5": 3})
	b.AppendRow(base.Add(4*time.Second), map[string]float64{"pm10": 8, "pm2_5": 4})

	a.Merge(b, DefaultMergeTolerance)

	is.Equal(a.Len(), 1)
	is.Equal(a.Value("pm10", 0), 7.0) // first non-missing in sort order
	is.Equal(a.Value("pm2_5", 0), 3.0)
	is.True(!math.IsNaN(a.Value("pm10", 0)))
}
