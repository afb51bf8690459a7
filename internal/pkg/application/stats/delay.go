package stats

import (
	"math"
	"time"

	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

// DefaultSmoothingWindow is the moving-average width applied to both
// series before the delay scan, damping sampling jitter.
const DefaultSmoothingWindow = time.Hour

// DelayOptions controls a time-delay correlation scan. The delay range
// [DTMin, DTMax] is swept in steps of Freq; Start and End bound the
// evaluation interval and default to the overlap of the two series.
// Window is the smoothing width (0 disables smoothing).
type DelayOptions struct {
	DTMin  time.Duration
	DTMax  time.Duration
	Freq   time.Duration
	Window time.Duration
	Start  time.Time
	End    time.Time
}

// DelayCorrelation is the correlation curve of two series as a function
// of the time shift applied to the second one, one column per shared
// input column.
type DelayCorrelation struct {
	Delays  []time.Duration
	Columns []string
	Corr    map[string][]float64
}

// Best returns the delay with the highest correlation for one column.
// With no valid correlation at all, ok is false.
func (d *DelayCorrelation) Best(column string) (delay time.Duration, corr float64, ok bool) {
	best := math.Inf(-1)
	for i, c := range d.Corr[column] {
		if !math.IsNaN(c) && c > best {
			best = c
			delay = d.Delays[i]
			ok = true
		}
	}
	if !ok {
		return 0, math.NaN(), false
	}
	return delay, best, true
}

// TimeDelayCorrelation computes, for every delay t in [DTMin, DTMax]
// stepped by Freq, the Pearson correlation between a and b-shifted-by-t,
// per shared column. Both series are optionally smoothed, then resampled
// onto a common regular grid (spacing Freq, linear in time, never
// extrapolated) wide enough that every considered shift has data
// available; the correlation itself only pairs grid points inside
// [Start, End]. Delays with fewer than two valid pairs yield NaN.
func TimeDelayCorrelation(a, b *timeseries.Table, opts DelayOptions) *DelayCorrelation {
	if opts.Freq <= 0 {
		panic("stats: delay scan frequency must be positive")
	}

	if opts.Window > 0 {
		a = a.RollingMean(opts.Window)
		b = b.RollingMean(opts.Window)
	}

	start, end := opts.Start, opts.End
	if start.IsZero() || end.IsZero() {
		oStart, oEnd, ok := overlap(a, b)
		if start.IsZero() {
			start = oStart
		}
		if end.IsZero() {
			end = oEnd
		}
		if !ok {
			start, end = time.Time{}, time.Time{}
		}
	}

	kmin := int(math.Round(float64(opts.DTMin) / float64(opts.Freq)))
	kmax := int(math.Round(float64(opts.DTMax) / float64(opts.Freq)))
	if kmax < kmin {
		kmin, kmax = kmax, kmin
	}

	result := &DelayCorrelation{
		Columns: sharedColumns(a, b),
		Corr:    map[string][]float64{},
	}
	for k := kmin; k <= kmax; k++ {
		result.Delays = append(result.Delays, time.Duration(k)*opts.Freq)
	}
	for _, name := range result.Columns {
		result.Corr[name] = make([]float64, len(result.Delays))
	}

	if start.IsZero() || end.IsZero() || end.Before(start) {
		for _, name := range result.Columns {
			for i := range result.Corr[name] {
				result.Corr[name][i] = math.NaN()
			}
		}
		return result
	}

	pad := kmax
	if -kmin > pad {
		pad = -kmin
	}
	padding := time.Duration(pad) * opts.Freq

	gridA := a.ResampleLinear(start.Add(-padding), end.Add(padding), opts.Freq)
	gridB := b.ResampleLinear(start.Add(-padding), end.Add(padding), opts.Freq)

	evalLo, evalHi := evaluationRange(gridA, start, end)

	for _, name := range result.Columns {
		colA := gridA.Column(name)
		colB := gridB.Column(name)
		for d, k := 0, kmin; k <= kmax; d, k = d+1, k+1 {
			// b shifted by +k*Freq contributes its value from k grid
			// steps earlier
			shifted := make([]float64, 0, evalHi-evalLo+1)
			reference := make([]float64, 0, evalHi-evalLo+1)
			for i := evalLo; i <= evalHi; i++ {
				j := i - k
				if j < 0 || j >= len(colB) {
					continue
				}
				reference = append(reference, colA[i])
				shifted = append(shifted, colB[j])
			}
			result.Corr[name][d] = Pearson(reference, shifted)
		}
	}

	return result
}

func overlap(a, b *timeseries.Table) (time.Time, time.Time, bool) {
	aStart, aEnd, okA := a.TimeBounds()
	bStart, bEnd, okB := b.TimeBounds()
	if !okA || !okB {
		return time.Time{}, time.Time{}, false
	}
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func sharedColumns(a, b *timeseries.Table) []string {
	shared := []string{}
	for _, name := range a.Columns() {
		if b.HasColumn(name) {
			shared = append(shared, name)
		}
	}
	return shared
}

func evaluationRange(grid *timeseries.Table, start, end time.Time) (int, int) {
	lo, hi := grid.Len(), -1
	for i, ts := range grid.Times() {
		if ts.Before(start) || ts.After(end) {
			continue
		}
		if i < lo {
			lo = i
		}
		hi = i
	}
	return lo, hi
}
