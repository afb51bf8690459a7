// Package timeseries holds the ordered measurement table used for one
// device's readings: a strictly ascending time index plus named float64
// columns where NaN marks a missing value.
package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Table struct {
	times []time.Time
	cols  []string
	data  map[string][]float64
}

func New(columns ...string) *Table {
	t := &Table{
		cols: append([]string{}, columns...),
		data: map[string][]float64{},
	}
	for _, c := range t.cols {
		t.data[c] = []float64{}
	}
	return t
}

func (t *Table) Len() int {
	return len(t.times)
}

func (t *Table) IsEmpty() bool {
	return len(t.times) == 0
}

// Columns returns the column names in first-seen order.
func (t *Table) Columns() []string {
	return append([]string{}, t.cols...)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// Times returns the time index. The slice is owned by the table and must
// not be modified.
func (t *Table) Times() []time.Time {
	return t.times
}

// Column returns the values of one column, aligned with Times, or nil if
// the column does not exist. The slice is owned by the table and must not
// be modified.
func (t *Table) Column(name string) []float64 {
	return t.data[name]
}

func (t *Table) At(i int) time.Time {
	return t.times[i]
}

func (t *Table) Value(name string, i int) float64 {
	col, ok := t.data[name]
	if !ok {
		return math.NaN()
	}
	return col[i]
}

// SetColumn replaces (or adds) a whole column. The number of values must
// match the current row count; anything else is a programming error.
func (t *Table) SetColumn(name string, values []float64) {
	if len(values) != len(t.times) {
		panic(fmt.Sprintf("timeseries: column %s has %d values for %d rows", name, len(values), len(t.times)))
	}
	if _, ok := t.data[name]; !ok {
		t.cols = append(t.cols, name)
	}
	t.data[name] = values
}

// AppendRow adds one measurement row. Columns absent from values get NaN;
// column names never seen before are added and backfilled with NaN. The
// ascending-time invariant is restored if the new timestamp is out of
// order.
func (t *Table) AppendRow(ts time.Time, values map[string]float64) {
	for name := range values {
		if _, ok := t.data[name]; !ok {
			backfill := make([]float64, len(t.times))
			for i := range backfill {
				backfill[i] = math.NaN()
			}
			t.cols = append(t.cols, name)
			t.data[name] = backfill
		}
	}

	t.times = append(t.times, ts)
	for _, name := range t.cols {
		v, ok := values[name]
		if !ok {
			v = math.NaN()
		}
		t.data[name] = append(t.data[name], v)
	}

	if n := len(t.times); n > 1 && t.times[n-1].Before(t.times[n-2]) {
		t.sortByTime()
	}
}

func (t *Table) sortByTime() {
	order := make([]int, len(t.times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.times[order[a]].Before(t.times[order[b]])
	})

	times := make([]time.Time, len(t.times))
	for i, j := range order {
		times[i] = t.times[j]
	}
	t.times = times

	for _, name := range t.cols {
		src := t.data[name]
		dst := make([]float64, len(src))
		for i, j := range order {
			dst[i] = src[j]
		}
		t.data[name] = dst
	}
}

func (t *Table) Clone() *Table {
	clone := &Table{
		times: append([]time.Time{}, t.times...),
		cols:  append([]string{}, t.cols...),
		data:  make(map[string][]float64, len(t.data)),
	}
	for name, col := range t.data {
		clone.data[name] = append([]float64{}, col...)
	}
	return clone
}

// Slice returns a new table restricted to rows with start <= time <= end.
// A zero start or end leaves that side unbounded.
func (t *Table) Slice(start, end time.Time) *Table {
	out := New(t.cols...)
	for i, ts := range t.times {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			break
		}
		out.times = append(out.times, ts)
		for _, name := range t.cols {
			out.data[name] = append(out.data[name], t.data[name][i])
		}
	}
	return out
}

// TimeBounds returns the first and last timestamp; ok is false for an
// empty table.
func (t *Table) TimeBounds() (first, last time.Time, ok bool) {
	if len(t.times) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.times[0], t.times[len(t.times)-1], true
}

// CountValid returns the number of non-NaN values in a column.
func (t *Table) CountValid(name string) int {
	n := 0
	for _, v := range t.data[name] {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
