// Package distance implements the pure, stateless distance kernel the rest
// of the engine is built on: a non-negative score between two fixed
// dimension vectors under a chosen metric. L2 is returned squared, with no
// square root, since every caller only compares distances (order-preserving
// is all that is needed).
package distance

import (
	"fmt"
	"math"
)

// Metric names accepted by Config.Metric / GetDistanceFn.
const (
	MetricL2     = "l2"
	MetricCosine = "cosine"
)

// DistFunc computes the distance between two equal-length vectors. Both
// arguments are expected to be padded to the same aligned length; padding
// with zeros never changes an L2 or cosine result.
type DistFunc func(x, y []float32) float32

// squaredL2 and dotProduct are package vars so the amd64 init() in
// unrolled_amd64.go can
// swap in the unrolled variants without touching call sites.
var squaredL2 DistFunc = squaredL2PureGo
var dotProduct DistFunc = dotProductPureGo

// l2Distance returns the squared Euclidean distance. We never take the
// square root: it is monotonic and every caller only compares or orders
// distances.
func l2Distance(x, y []float32) float32 {
	return squaredL2(x, y)
}

// cosineDistance returns 1 - cos(x, y). It normalizes on every call rather
// than requiring pre-normalized input, since VectorStore stores vectors
// verbatim regardless of metric.
func cosineDistance(x, y []float32) float32 {
	denom := float32(math.Sqrt(float64(dotProduct(x, x) * dotProduct(y, y))))
	if denom == 0 {
		return 1
	}
	return 1 - dotProduct(x, y)/denom
}

// GetDistanceFn returns the distance function for a named metric.
func GetDistanceFn(metric string) (DistFunc, error) {
	switch metric {
	case MetricL2:
		return l2Distance, nil
	case MetricCosine:
		return cosineDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance metric: %s", metric)
	}
}
