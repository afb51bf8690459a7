package aqdata

import (
	"sort"
	"time"

	"github.com/vasarhelyi/aqstat/internal/pkg/application/stats"
	"github.com/vasarhelyi/aqstat/internal/pkg/application/timeseries"
)

// DefaultMatchTolerance bounds the timestamp distance used when pairing
// samples of two devices for direct correlation.
const DefaultMatchTolerance = time.Minute

// ColumnCorrelation is the correlation of one shared column between two
// devices, with the number of sample pairs it was computed from.
type ColumnCorrelation struct {
	Column string
	Corr   float64
	Pairs  int
}

// CorrWith reindexes the other record's measurements onto this record's
// timestamps by nearest-neighbor matching within the tolerance and
// correlates every shared column. A tolerance of zero or less selects
// the default.
func (r *SensorRecord) CorrWith(other *SensorRecord, tolerance time.Duration) []ColumnCorrelation {
	if tolerance <= 0 {
		tolerance = DefaultMatchTolerance
	}

	reindexed := reindexNearest(other.Data, r.Data.Times(), tolerance)

	result := []ColumnCorrelation{}
	for _, name := range r.Data.Columns() {
		if !reindexed.HasColumn(name) {
			continue
		}
		a := r.Data.Column(name)
		b := reindexed.Column(name)
		result = append(result, ColumnCorrelation{
			Column: name,
			Corr:   stats.Pearson(a, b),
			Pairs:  stats.PairCount(a, b),
		})
	}
	return result
}

// reindexNearest projects a table onto foreign timestamps; targets with
// no source sample within the tolerance get a missing row.
func reindexNearest(t *timeseries.Table, onto []time.Time, tolerance time.Duration) *timeseries.Table {
	out := timeseries.New(t.Columns()...)
	times := t.Times()

	for _, target := range onto {
		row := map[string]float64{}
		if j := nearestIndex(times, target); j >= 0 && absDuration(times[j].Sub(target)) <= tolerance {
			for _, name := range out.Columns() {
				row[name] = t.Value(name, j)
			}
		}
		out.AppendRow(target, row)
	}
	return out
}

func nearestIndex(times []time.Time, target time.Time) int {
	if len(times) == 0 {
		return -1
	}
	j := sort.Search(len(times), func(k int) bool { return !times[k].Before(target) })
	if j == len(times) {
		return j - 1
	}
	if j == 0 {
		return 0
	}
	if target.Sub(times[j-1]) <= times[j].Sub(target) {
		return j - 1
	}
	return j
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
