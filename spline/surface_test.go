package spline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnotVector(t *testing.T) {
	{ // Validation
		_, err := NewKnotVector(3, []float64{0, 0, 0, 1, 1})
		assert.Error(t, err)
		_, err = NewKnotVector(2, []float64{0, 0, 1, 0.5, 1, 1})
		assert.Error(t, err)
		_, err = NewKnotVector(2, []float64{0, 0, 0.5, 0.5, 0.5, 1, 1})
		assert.Error(t, err)
		_, err = NewKnotVector(2, []float64{1, 1, 1, 1})
		assert.Error(t, err)
		_, err = NewKnotVector(0, []float64{0, 1})
		assert.Error(t, err)
	}
	{ // Spans skip zero measure knot intervals
		kv, err := NewKnotVector(3, []float64{0, 0, 0, .5, .5, 1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, 5, kv.NoBasis())
		assert.Equal(t, []int{2, 4}, kv.Spans())
		assert.Equal(t, 2, kv.FindSpan(0))
		assert.Equal(t, 2, kv.FindSpan(0.25))
		assert.Equal(t, 4, kv.FindSpan(0.5))
		assert.Equal(t, 4, kv.FindSpan(1))
		assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, kv.Greville(), 1.e-15)
	}
	{
		assert.Equal(t, []float64{0, 0, 0.25, 0.5, 0.75, 1, 1}, UniformKnots(2, 4, 0, 1))
	}
}

func TestBasisDerivs(t *testing.T) {
	kv, err := NewKnotVector(4, []float64{0, 0, 0, 0, .3, .3, .7, 1, 1, 1, 1})
	require.NoError(t, err)
	const h = 1.e-6
	for _, u := range []float64{0, 0.1, 0.29, 0.31, 0.5, 0.8, 1} {
		k := kv.FindSpan(u)
		N, dN := kv.BasisDerivs(k, u, true)
		var sum, dsum float64
		for a := range N {
			sum += N[a]
			dsum += dN[a]
			assert.True(t, N[a] >= -1.e-15)
		}
		assert.InDelta(t, 1, sum, 1.e-14)
		assert.InDelta(t, 0, dsum, 1.e-12)
		// Central differences inside the span
		if u-h > kv.T[k] && u+h < kv.T[k+1] {
			Np, _ := kv.BasisDerivs(k, u+h, false)
			Nm, _ := kv.BasisDerivs(k, u-h, false)
			for a := range N {
				assert.InDelta(t, (Np[a]-Nm[a])/(2*h), dN[a], 1.e-6)
			}
		}
	}
}

func repeatedKnotSurface(t *testing.T) *Surface {
	s, err := NewRectangle([2]int{3, 3},
		[2][]float64{{0, 0, 0, .5, .5, 1, 1, 1}, {0, 0, 0, .5, 1, 1, 1}},
		0, 2, 0, 1)
	require.NoError(t, err)
	return s
}

func TestSurfaceTopology(t *testing.T) {
	s := repeatedKnotSurface(t)
	assert.Equal(t, 5*4, s.NoBasisFunctions())
	assert.Equal(t, 4, s.NoElements())
	assert.Equal(t, 3, s.Order(0))
	assert.False(t, s.Rational())
	for e := 0; e < s.NoElements(); e++ {
		assert.Equal(t, 9, len(s.ElementBasis(e)))
		assert.InDelta(t, 0.25, s.ParametricArea(e), 1.e-15)
		X, err := s.ElementCoordinates(e)
		require.NoError(t, err)
		r, c := X.Dims()
		assert.Equal(t, 9, r)
		assert.Equal(t, 2, c)
	}
	// Basis (u index 1, v index 0) lives on the first u span and the first v span only
	b := 1 + 5*0
	assert.Equal(t, []int{0}, s.Support(b))
	assert.Equal(t, []int{0, 1, 2, 3}, s.ExtendedSupport(b))
	// The middle u function straddles the repeated knot
	b = 2 + 5*1
	assert.Equal(t, []int{0, 1, 2, 3}, s.Support(b))
	for b := 0; b < s.NoBasisFunctions(); b++ {
		assert.NotEmpty(t, s.Support(b))
		assert.Subset(t, s.ExtendedSupport(b), s.Support(b))
	}
	_, err := s.ElementCoordinates(4)
	assert.Error(t, err)
}

func TestSurfaceGeometry(t *testing.T) {
	s := repeatedKnotSurface(t)
	for _, uv := range [][2]float64{{0, 0}, {0.2, 0.7}, {0.5, 0.5}, {0.9, 0.1}, {1, 1}} {
		x, y := s.Point(uv[0], uv[1])
		assert.InDelta(t, 2*uv[0], x, 1.e-14)
		assert.InDelta(t, uv[1], y, 1.e-14)
		N := s.ComputeBasisAll(uv[0], uv[1])
		var sum float64
		for _, val := range N {
			sum += val
		}
		assert.InDelta(t, 1, sum, 1.e-14)
	}
	assert.Equal(t, -1, s.FindElement(1.1, 0.5))
	assert.Equal(t, 3, s.FindElement(0.75, 0.75))
	assert.Equal(t, 1, s.FindElement(1, 0))
	for b := 0; b < s.NoBasisFunctions(); b++ {
		u, v := s.GrevilleParameter(b)
		x, y := s.Point(u, v)
		assert.InDelta(t, s.ControlValue(b, 0), x, 1.e-14)
		assert.InDelta(t, s.ControlValue(b, 1), y, 1.e-14)
	}
}

func TestSurfaceDerivatives(t *testing.T) {
	s := repeatedKnotSurface(t)
	e := s.FindElement(0.3, 0.6)
	bv := s.ComputeBasis(0.3, 0.6, e, true)
	require.NotNil(t, bv.DNdu)
	// Jacobian of the affine map is diag(2, 1)
	X, err := s.ElementCoordinates(e)
	require.NoError(t, err)
	var J [2][2]float64
	for a := range bv.N {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				J[i][j] += X.At(a, i) * bv.DNdu.At(a, j)
			}
		}
	}
	assert.InDelta(t, 2, J[0][0], 1.e-13)
	assert.InDelta(t, 0, J[0][1], 1.e-13)
	assert.InDelta(t, 0, J[1][0], 1.e-13)
	assert.InDelta(t, 1, J[1][1], 1.e-13)

	f, fu, fv := s.EvaluateDerivs(0.3, 0.6)
	assert.InDeltaSlice(t, []float64{0.6, 0.6}, f, 1.e-14)
	assert.InDeltaSlice(t, []float64{2, 0}, fu, 1.e-13)
	assert.InDeltaSlice(t, []float64{0, 1}, fv, 1.e-13)
}

func TestSurfaceRational(t *testing.T) {
	s := repeatedKnotSurface(t)
	w := make([]float64, s.NoBasisFunctions())
	for b := range w {
		w[b] = 1 + 0.5*math.Sin(float64(b))
	}
	assert.Error(t, s.SetWeights(w[:3]))
	require.NoError(t, s.SetWeights(w))
	assert.True(t, s.Rational())
	e := s.FindElement(0.6, 0.2)
	bv := s.ComputeBasis(0.6, 0.2, e, true)
	var sum, du, dv float64
	for a := range bv.N {
		sum += bv.N[a]
		du += bv.DNdu.At(a, 0)
		dv += bv.DNdu.At(a, 1)
	}
	assert.InDelta(t, 1, sum, 1.e-14)
	assert.InDelta(t, 0, du, 1.e-12)
	assert.InDelta(t, 0, dv, 1.e-12)
	require.NoError(t, s.SetWeights(nil))
	assert.False(t, s.Rational())
}

func TestSurfaceRebuild(t *testing.T) {
	s := repeatedKnotSurface(t)
	nb := s.NoBasisFunctions()
	cp := make([]float64, 3*nb)
	for i := range cp {
		cp[i] = float64(i)
	}
	m, err := s.Rebuild(3, cp)
	require.NoError(t, err)
	r := m.(*Surface)
	assert.Equal(t, 3, r.Dim)
	assert.Equal(t, s.NoElements(), r.NoElements())
	assert.Equal(t, s.ExtendedSupport(7), r.ExtendedSupport(7))
	assert.Equal(t, float64(3*5+2), r.ControlValue(5, 2))
	cp[0] = -1
	assert.Equal(t, 0., r.ControlValue(0, 0))
	_, err = s.Rebuild(3, cp[:5])
	assert.Error(t, err)
	_, err = s.Rebuild(0, nil)
	assert.Error(t, err)
}
