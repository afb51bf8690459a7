package timeseries

import (
	"math"
	"sort"
	"time"
)

// DefaultMergeTolerance groups rows whose timestamps differ because one
// device's channels were recorded in separate files with almost-equal
// clocks.
const DefaultMergeTolerance = 5 * time.Second

// Merge folds other's rows into t. The combined rows are sorted by time
// and runs of near-duplicate timestamps (consecutive deltas within
// tolerance) collapse into a single row, each column keeping the first
// non-missing value in sort order. Rows of t win ties against rows of
// other. The receiver owns the result; other is not modified.
func (t *Table) Merge(other *Table, tolerance time.Duration) {
	if other == nil || other.Len() == 0 {
		return
	}

	cols := append([]string{}, t.cols...)
	for _, name := range other.cols {
		if _, ok := t.data[name]; !ok {
			cols = append(cols, name)
		}
	}

	total := t.Len() + other.Len()
	times := make([]time.Time, 0, total)
	times = append(times, t.times...)
	times = append(times, other.times...)

	data := make(map[string][]float64, len(cols))
	for _, name := range cols {
		col := make([]float64, 0, total)
		col = appendColumnOrNaN(col, t.data[name], t.Len())
		col = appendColumnOrNaN(col, other.data[name], other.Len())
		data[name] = col
	}

	order := make([]int, total)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return times[order[a]].Before(times[order[b]])
	})

	outTimes := make([]time.Time, 0, total)
	outData := make(map[string][]float64, len(cols))
	for _, name := range cols {
		outData[name] = make([]float64, 0, total)
	}

	for k := 0; k < total; {
		// one group: rows chained by deltas within tolerance
		groupEnd := k + 1
		for groupEnd < total {
			delta := times[order[groupEnd]].Sub(times[order[groupEnd-1]])
			if delta > tolerance {
				break
			}
			groupEnd++
		}

		outTimes = append(outTimes, times[order[k]])
		for _, name := range cols {
			v := math.NaN()
			for g := k; g < groupEnd; g++ {
				if w := data[name][order[g]]; !math.IsNaN(w) {
					v = w
					break
				}
			}
			outData[name] = append(outData[name], v)
		}

		k = groupEnd
	}

	t.times = outTimes
	t.cols = cols
	t.data = outData
}

// MergeTables is the pure form of Merge: neither input is modified.
func MergeTables(a, b *Table, tolerance time.Duration) *Table {
	merged := a.Clone()
	merged.Merge(b, tolerance)
	return merged
}

func appendColumnOrNaN(dst, src []float64, n int) []float64 {
	if src != nil {
		return append(dst, src...)
	}
	for i := 0; i < n; i++ {
		dst = append(dst, math.NaN())
	}
	return dst
}
