package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestThatLinearlyRelatedSeriesCorrelateToOne(t *testing.T) {
	is := is.New(t)

	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}

	is.True(math.Abs(Pearson(a, b)-1.0) < 1e-12)
}

func TestThatOpposedSeriesCorrelateToMinusOne(t *testing.T) {
	is := is.New(t)

	a := []float64{1, 2, 3, 4}
	b := []float64{8, 6, 4, 2}

	is.True(math.Abs(Pearson(a, b)+1.0) < 1e-12)
}

func TestThatPairsWithMissingValuesAreSkipped(t *testing.T) {
	is := is.New(t)

	nan := math.NaN()
	a := []float64{1, nan, 3, 4, nan}
	b := []float64{2, 5, 6, 8, nan}

	is.Equal(PairCount(a, b), 3)
	is.True(math.Abs(Pearson(a, b)-1.0) < 1e-12) // the surviving pairs are linear
}

func TestThatFewerThanTwoPairsGiveNoCorrelation(t *testing.T) {
	is := is.New(t)

	is.True(math.IsNaN(Pearson([]float64{1}, []float64{2})))
	is.True(math.IsNaN(Pearson([]float64{1, math.NaN()}, []float64{2, 3})))
}

func TestThatConstantSeriesGiveNoCorrelation(t *testing.T) {
	is := is.New(t)

	a := []float64{3, 3, 3, 3}
	b := []float64{1, 2, 3, 4}

	is.True(math.IsNaN(Pearson(a, b))) // zero variance
}

func TestMeanIgnoresMissingValues(t *testing.T) {
	is := is.New(t)

	is.Equal(Mean([]float64{1, math.NaN(), 3}), 2.0)
	is.True(math.IsNaN(Mean(nil)))
}

func TestMedianPicksLowerMiddleForEvenCounts(t *testing.T) {
	is := is.New(t)

	is.Equal(Median([]float64{4, 1, 3, 2}), 2.0)
	is.Equal(Median([]float64{5, math.NaN(), 1, 3}), 3.0)
}
