package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// 1D linear finite element mass matrix on n nodes
func massSystem(n int) (ss *SymmetricSystem) {
	ss = NewSymmetricSystem(n, 2)
	h := 1. / float64(n-1)
	for e := 0; e < n-1; e++ {
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				val := h / 6
				if a == b {
					val = h / 3
				}
				ss.AddA(e+a, e+b, val)
			}
		}
	}
	return
}

func TestSymmetricSystem_Solve(t *testing.T) {
	n := 9
	ss := massSystem(n)
	assert.Equal(t, 1, bandwidth(ss.A.ToCSR()))
	// Right hand sides from known solutions x0 = 1, x1 = i
	x0 := mat.NewVecDense(n, nil)
	x1 := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x0.SetVec(i, 1)
		x1.SetVec(i, float64(i))
	}
	var b0, b1 mat.VecDense
	b0.MulVec(ss.A, x0)
	b1.MulVec(ss.A, x1)
	for i := 0; i < n; i++ {
		ss.AddB(i, 0, b0.AtVec(i))
		ss.AddB(i, 1, b1.AtVec(i))
	}
	X, err := ss.Solve()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1, X.At(i, 0), 1.e-12)
		assert.InDelta(t, float64(i), X.At(i, 1), 1.e-11)
	}
}

func TestSymmetricSystem_NegativeDefinite(t *testing.T) {
	n := 6
	ss := massSystem(n)
	ss.A.ToCSR().DoNonZero(func(i, j int, v float64) {
		ss.A.Set(i, j, -v)
	})
	// -M x = B with x = 1 + i
	for i := 0; i < n; i++ {
		var row float64
		for j := 0; j < n; j++ {
			row += ss.A.At(i, j) * float64(1+j)
		}
		ss.AddB(i, 0, row)
	}
	X, err := ss.Solve()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		assert.InDelta(t, float64(1+i), X.At(i, 0), 1.e-11)
	}
}

func TestSymmetricSystem_Merge(t *testing.T) {
	a, b := massSystem(5), massSystem(5)
	a.AddB(2, 1, 3)
	b.AddB(2, 1, 4)
	require.NoError(t, a.Merge(b))
	assert.InDelta(t, 2*(2./3.)*0.25, a.A.At(2, 2), 1.e-15)
	assert.InDelta(t, 7, a.B.At(2, 1), 1.e-15)
	assert.Error(t, a.Merge(NewSymmetricSystem(4, 2)))
}

func TestSymmetricSystem_Singular(t *testing.T) {
	{ // Unconnected last row
		ss := NewSymmetricSystem(4, 1)
		for i := 0; i < 3; i++ {
			ss.AddA(i, i, 2)
			ss.AddB(i, 0, 1)
		}
		_, err := ss.Solve()
		assert.Error(t, err)
	}
	{ // Rank one
		ss := NewSymmetricSystem(2, 1)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				ss.AddA(i, j, 1)
			}
		}
		_, err := ss.Solve()
		assert.Error(t, err)
	}
	{ // Indefinite
		ss := NewSymmetricSystem(2, 1)
		ss.AddA(0, 0, 1)
		ss.AddA(1, 1, -1)
		_, err := ss.Solve()
		assert.Error(t, err)
	}
	{
		_, err := NewSymmetricSystem(3, 1).Solve()
		assert.Error(t, err)
	}
}
