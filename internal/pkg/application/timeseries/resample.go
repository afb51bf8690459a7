package timeseries

import (
	"math"
	"sort"
	"time"
)

// RollingMean returns a new table with every column smoothed by a
// trailing moving average over the given time window: row i becomes the
// NaN-ignoring mean of all values in (t_i - window, t_i]. Rows with no
// valid value in the window stay NaN.
func (t *Table) RollingMean(window time.Duration) *Table {
	out := New(t.cols...)
	out.times = append([]time.Time{}, t.times...)

	n := len(t.times)
	for _, name := range t.cols {
		src := t.data[name]
		dst := make([]float64, n)
		sum := 0.0
		count := 0
		lo := 0
		for i := 0; i < n; i++ {
			if v := src[i]; !math.IsNaN(v) {
				sum += v
				count++
			}
			cutoff := t.times[i].Add(-window)
			for !t.times[lo].After(cutoff) {
				if v := src[lo]; !math.IsNaN(v) {
					sum -= v
					count--
				}
				lo++
			}
			if count > 0 {
				dst[i] = sum / float64(count)
			} else {
				dst[i] = math.NaN()
			}
		}
		out.data[name] = dst
	}
	return out
}

// ResampleLinear projects every column onto a regular grid from start to
// end (inclusive when it falls on the grid) with the given spacing, using
// time-weighted linear interpolation between the surrounding valid
// samples. Grid points outside the span of a column's valid data are NaN;
// values are never extrapolated.
func (t *Table) ResampleLinear(start, end time.Time, step time.Duration) *Table {
	if step <= 0 {
		panic("timeseries: resample step must be positive")
	}

	grid := []time.Time{}
	for ts := start; !ts.After(end); ts = ts.Add(step) {
		grid = append(grid, ts)
	}

	out := New(t.cols...)
	out.times = grid

	for _, name := range t.cols {
		src := t.data[name]
		xs := make([]time.Time, 0, len(src))
		ys := make([]float64, 0, len(src))
		for i, v := range src {
			if !math.IsNaN(v) {
				xs = append(xs, t.times[i])
				ys = append(ys, v)
			}
		}

		dst := make([]float64, len(grid))
		for i, g := range grid {
			dst[i] = interpolateAt(xs, ys, g)
		}
		out.data[name] = dst
	}
	return out
}

func interpolateAt(xs []time.Time, ys []float64, g time.Time) float64 {
	if len(xs) == 0 || g.Before(xs[0]) || g.After(xs[len(xs)-1]) {
		return math.NaN()
	}

	j := sort.Search(len(xs), func(k int) bool { return !xs[k].Before(g) })
	if xs[j].Equal(g) {
		return ys[j]
	}

	span := xs[j].Sub(xs[j-1]).Seconds()
	if span == 0 {
		return ys[j]
	}
	frac := g.Sub(xs[j-1]).Seconds() / span
	return ys[j-1] + (ys[j]-ys[j-1])*frac
}
