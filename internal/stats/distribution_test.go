package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegularizedIncompleteBetaBounds(t *testing.T) {
	assert.Equal(t, 0.0, regularizedIncompleteBeta(2, 3, 0))
	assert.Equal(t, 1.0, regularizedIncompleteBeta(2, 3, 1))
}

func TestRegularizedIncompleteBetaSymmetry(t *testing.T) {
	// I_x(a,b) + I_{1-x}(b,a) = 1.
	for _, x := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		sum := regularizedIncompleteBeta(2.5, 4, x) + regularizedIncompleteBeta(4, 2.5, 1-x)
		assert.InDelta(t, 1.0, sum, 1e-10, "x=%v", x)
	}
}

func TestRegularizedIncompleteBetaUniform(t *testing.T) {
	// With a=b=1 the beta distribution is uniform, so I_x(1,1) = x.
	for _, x := range []float64{0.2, 0.5, 0.8} {
		assert.InDelta(t, x, regularizedIncompleteBeta(1, 1, x), 1e-10)
	}
}

func TestStudentTPValueKnownPoints(t *testing.T) {
	// Large df approaches the normal distribution: P(|Z| > 1.96) = 0.05.
	assert.InDelta(t, 0.05, studentTPValue(1.96, 1e6), 1e-3)

	// t=0 is the null exactly.
	assert.InDelta(t, 1.0, studentTPValue(0, 10), 1e-9)

	// Reference: two-sided p for t=2.228, df=10 is 0.0500 (the 97.5th
	// percentile of t(10)).
	assert.InDelta(t, 0.05, studentTPValue(2.228, 10), 1e-3)

	// Symmetric in the sign of t.
	assert.InDelta(t, studentTPValue(1.5, 8), studentTPValue(-1.5, 8), 1e-12)
}

func TestStudentTPValueEdges(t *testing.T) {
	assert.True(t, math.IsNaN(studentTPValue(1.0, 0)))
	assert.True(t, math.IsNaN(studentTPValue(math.NaN(), 5)))
	assert.Equal(t, 0.0, studentTPValue(math.Inf(1), 5))
}

func TestQuantileInterpolation(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	assert.InDelta(t, 1.75, Quantile(values, 0.25), 1e-9)
	assert.InDelta(t, 2.5, Median(values), 1e-9)
	assert.InDelta(t, 1, Quantile(values, 0), 1e-9)
	assert.InDelta(t, 4, Quantile(values, 1), 1e-9)
}
