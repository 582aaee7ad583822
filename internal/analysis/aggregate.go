package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// DefaultBins is the histogram bin count used by the insight engine.
const DefaultBins = 12

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// Variance returns the population variance (denominator n), or 0 for no values.
func Variance(values []float64) float64 {
	v, err := stats.PopulationVariance(values)
	if err != nil {
		return 0
	}
	return v
}

// Median is the 0.5 quantile of the values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Quantile(sorted, 0.5)
}

// Quantile interpolates linearly between the order statistics around
// pos = (n-1)*q. sorted must be in ascending order.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := float64(len(sorted)-1) * q
	base := int(math.Floor(pos))
	if base < 0 {
		base = 0
	}
	if base > len(sorted)-1 {
		base = len(sorted) - 1
	}
	rest := pos - float64(base)
	next := sorted[base]
	if base+1 < len(sorted) {
		next = sorted[base+1]
	}
	return sorted[base] + rest*(next-sorted[base])
}

// Aggregate reduces values by kind. Count is the number of values regardless
// of their content; every other kind yields 0 on empty input.
func Aggregate(values []float64, kind model.AggType) float64 {
	if kind == model.AggCount {
		return float64(len(values))
	}
	if len(values) == 0 {
		return 0
	}
	var (
		out float64
		err error
	)
	switch kind {
	case model.AggSum:
		out, err = stats.Sum(values)
	case model.AggAvg:
		out, err = stats.Mean(values)
	case model.AggMin:
		out, err = stats.Min(values)
	case model.AggMax:
		out, err = stats.Max(values)
	default:
		return 0
	}
	if err != nil {
		return 0
	}
	return out
}

// Bin is one equal-width histogram bucket.
type Bin struct {
	Start float64
	End   float64
	Count int
}

// Histogram buckets values into equal-width bins over [min, max]. The last
// bin ends exactly at max. When every value is equal a single bin holds them
// all.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Start: lo, End: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Start = lo + float64(i)*width
		if i == bins-1 {
			out[i].End = hi
		} else {
			out[i].End = lo + float64(i+1)*width
		}
	}
	for _, v := range values {
		idx := int(math.Floor((v - lo) / width))
		if idx < 0 {
			idx = 0
		}
		if idx > bins-1 {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// Round rounds half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
