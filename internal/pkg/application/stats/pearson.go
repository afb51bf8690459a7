// Package stats implements the numerical queries run over measurement
// tables: NaN-safe descriptive statistics, Pearson correlation and the
// time-delay correlation scan.
package stats

import (
	"math"
	"sort"
)

// Pearson returns the correlation coefficient of the pairwise values of
// a and b. Pairs where either side is NaN are excluded; fewer than two
// valid pairs or a constant series yields NaN, never an error.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	count := 0
	var sumA, sumB float64
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		sumA += a[i]
		sumB += b[i]
		count++
	}
	if count < 2 {
		return math.NaN()
	}

	meanA := sumA / float64(count)
	meanB := sumB / float64(count)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	return cov / math.Sqrt(varA*varB)
}

// PairCount returns the number of positions where both a and b hold a
// valid value.
func PairCount(a, b []float64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	count := 0
	for i := 0; i < n; i++ {
		if !math.IsNaN(a[i]) && !math.IsNaN(b[i]) {
			count++
		}
	}
	return count
}

// Mean returns the NaN-ignoring mean of values, or NaN if none are valid.
func Mean(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Median returns the NaN-ignoring median of values, or NaN if none are
// valid. For an even count the lower-middle element is returned.
func Median(values []float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	sort.Float64s(valid)
	return valid[(len(valid)-1)/2]
}
