package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineIdentities(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, Cosine.Calculate(v, v, Scalar), 1e-6)

	orth := [][2][]float32{
		{{1, 0}, {0, 1}},
	}
	for _, pair := range orth {
		assert.InDelta(t, 0.0, Cosine.Calculate(pair[0], pair[1], Scalar), 1e-6)
	}

	opposite := []float32{-1, -2, -3}
	assert.InDelta(t, -1.0, Cosine.Calculate(v, opposite, Scalar), 1e-6)

	zero := []float32{0, 0, 0}
	assert.Equal(t, 0.0, Cosine.Calculate(v, zero, Scalar))
}

func TestEuclideanIdentities(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, Euclidean.Calculate(v, v, Scalar), 1e-9)

	a := []float32{0, 0}
	b := []float32{3, 4}
	c := []float32{0, 4}
	// triangle inequality on raw distance (not the similarity-mapped score)
	dAB := scalarEuclidean(a, b)
	dAC := scalarEuclidean(a, c)
	dCB := scalarEuclidean(c, b)
	assert.LessOrEqual(t, dAB, dAC+dCB+1e-9)
}

func TestBackendsAgree(t *testing.T) {
	v1 := make([]float32, 100)
	v2 := make([]float32, 100)
	for i := range v1 {
		v1[i] = float32(math.Sin(float64(i)))
		v2[i] = float32(math.Cos(float64(i)))
	}
	for _, m := range []Metric{Cosine, Euclidean, DotProduct} {
		ref := m.Calculate(v1, v2, Scalar)
		for _, backend := range []ExecutionMode{Simd, Parallel, Jit} {
			got := m.Calculate(v1, v2, backend)
			assert.InEpsilonf(t, ref, got, 1e-5, "metric=%v backend=%v", m, backend)
		}
	}
}

func TestBackendsAgreeLargeVector(t *testing.T) {
	n := 4096
	v1 := make([]float32, n)
	v2 := make([]float32, n)
	for i := range v1 {
		v1[i] = float32(i%7) - 3
		v2[i] = float32(i%5) - 2
	}
	ref := DotProduct.Calculate(v1, v2, Scalar)
	got := DotProduct.Calculate(v1, v2, Parallel)
	assert.InEpsilon(t, ref, got, 1e-5)
}

func TestJitSpecializedDims(t *testing.T) {
	for _, dim := range []int{128, 256, 768} {
		v1 := make([]float32, dim)
		v2 := make([]float32, dim)
		for i := range v1 {
			v1[i] = float32(i) / float32(dim)
			v2[i] = 1 - float32(i)/float32(dim)
		}
		ref := Cosine.Calculate(v1, v2, Scalar)
		got := Cosine.Calculate(v1, v2, Jit)
		assert.InEpsilon(t, ref, got, 1e-5)
	}
}

func TestBinaryIsApproximate(t *testing.T) {
	v := []float32{1, 2, 3, -1, -2}
	// self-similarity need not be exactly 1 after binarization, only high.
	score := Cosine.Calculate(v, v, Binary)
	assert.InDelta(t, 1.0, score, 0.01)
}

func TestMismatchedLengthPanics(t *testing.T) {
	assert.Panics(t, func() {
		Cosine.Calculate([]float32{1, 2}, []float32{1}, Scalar)
	})
}

func TestAutoResolvesToSimd(t *testing.T) {
	v1 := []float32{1, 2, 3}
	v2 := []float32{4, 5, 6}
	assert.Equal(t, Cosine.Calculate(v1, v2, Simd), Cosine.Calculate(v1, v2, Auto))
}
