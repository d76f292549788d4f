package calculator

import "math"

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev returns the standard deviation dividing by n, not n-1.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

// DownsideDeviation is the semi-deviation of the negative values, taken over
// the full sample size.
func DownsideDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		if v < 0 {
			sum += v * v
		}
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Covariance returns the population covariance of two equally long series
// and the population variance of the second one.
func Covariance(a, b []float64) (cov, varB float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0, 0
	}
	meanA := Mean(a[:n])
	meanB := Mean(b[:n])
	for i := 0; i < n; i++ {
		cov += (a[i] - meanA) * (b[i] - meanB)
		varB += (b[i] - meanB) * (b[i] - meanB)
	}
	return cov / float64(n), varB / float64(n)
}

// Annualize geometrically scales the growth from start to end over the given
// number of trading days to a yearly percentage.
func Annualize(start, end float64, days int) float64 {
	if start <= 0 || days <= 0 {
		return 0
	}
	return (math.Pow(end/start, TradingDaysPerYear/float64(days)) - 1) * 100
}

// finite maps NaN and ±Inf to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
