package qpcr

import "math"

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleSD is the n-1 standard deviation. Callers guarantee len(xs) >= 2.
func sampleSD(xs []float64) float64 {
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// quantityFromCurve inverts the standard curve ct = m*log10(q) + b.
func quantityFromCurve(ct, intercept, slope float64) float64 {
	return math.Pow(10, (ct-intercept)/slope)
}
