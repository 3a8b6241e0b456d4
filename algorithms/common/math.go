package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Basic numeric helpers shared by the detectors, backed by gonum

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	return math.Sqrt(floats.Dot(data, data) / float64(len(data)))
}

// ArgMax returns the index of the largest value, first occurrence on ties.
// Returns -1 for empty input.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	// floats.MaxIdx keeps the lowest index among equal maxima
	return floats.MaxIdx(data)
}

// AutoCorrelation computes the unnormalized biased autocorrelation
// c[i] = sum_j data[j]*data[j+i] for every lag in [0, len(data)).
func AutoCorrelation(data []float64) []float64 {
	n := len(data)
	c := make([]float64, n)
	for lag := range n {
		c[lag] = floats.Dot(data[:n-lag], data[lag:])
	}
	return c
}

// Clamp restricts value to [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPowerOfTwo checks if n is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the smallest power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FloorMod returns a mod m in [0, m) for positive m, including negative a
func FloorMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// FloorDiv returns floor(a / m) for positive m
func FloorDiv(a, m int) int {
	return (a - FloorMod(a, m)) / m
}
