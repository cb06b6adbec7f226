package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

/*
SymmetricSystem accumulates a sparse symmetric matrix A and a dense right hand side B
with one column per load case. Assembly goes through a DOK, the solve converts to CSR
and factors the band envelope with a banded Cholesky decomposition.
*/
type SymmetricSystem struct {
	A *sparse.DOK
	B *mat.Dense
	n int
}

func NewSymmetricSystem(n, nrhs int) (ss *SymmetricSystem) {
	ss = &SymmetricSystem{
		A: sparse.NewDOK(n, n),
		B: mat.NewDense(n, nrhs, nil),
		n: n,
	}
	return
}

func (ss *SymmetricSystem) Dims() (n, nrhs int) {
	_, nrhs = ss.B.Dims()
	return ss.n, nrhs
}

func (ss *SymmetricSystem) AddA(i, j int, val float64) {
	ss.A.Set(i, j, ss.A.At(i, j)+val)
}

func (ss *SymmetricSystem) AddB(i, r int, val float64) {
	ss.B.Set(i, r, ss.B.At(i, r)+val)
}

// Merge adds the contents of other, which must have the same dimensions, to the receiver
func (ss *SymmetricSystem) Merge(other *SymmetricSystem) (err error) {
	n, nrhs := ss.Dims()
	on, onrhs := other.Dims()
	if n != on || nrhs != onrhs {
		err = fmt.Errorf("cannot merge %dx%d system into %dx%d system", on, onrhs, n, nrhs)
		return
	}
	other.A.ToCSR().DoNonZero(func(i, j int, v float64) {
		ss.AddA(i, j, v)
	})
	ss.B.Add(ss.B, other.B)
	return
}

func bandwidth(csr *sparse.CSR) (k int) {
	csr.DoNonZero(func(i, j int, v float64) {
		if d := j - i; d > k {
			k = d
		} else if -d > k {
			k = -d
		}
	})
	return
}

/*
Solve factors A and returns X with A*X = B. A must be symmetric and definite; a
negative definite A, as assembled on a mesh with reversed orientation, is factored as
-A against -B. A rank deficient or indefinite A, such as one with an unconnected row,
is an error.
*/
func (ss *SymmetricSystem) Solve() (X *mat.Dense, err error) {
	var (
		n, nrhs = ss.Dims()
		csr     = ss.A.ToCSR()
		chol    mat.BandCholesky
	)
	if csr.NNZ() == 0 {
		err = fmt.Errorf("matrix of order %d has no entries", n)
		return
	}
	ab := mat.NewSymBandDense(n, bandwidth(csr), nil)
	csr.DoNonZero(func(i, j int, v float64) {
		if j >= i {
			ab.SetSymBand(i, j, v)
		}
	})
	sign := 1.
	if ok := chol.Factorize(ab); !ok {
		sign = -1
		csr.DoNonZero(func(i, j int, v float64) {
			if j >= i {
				ab.SetSymBand(i, j, -v)
			}
		})
		if ok = chol.Factorize(ab); !ok {
			err = fmt.Errorf("matrix of order %d is not definite", n)
			return
		}
	}
	X = mat.NewDense(n, nrhs, nil)
	if err = chol.SolveTo(X, ss.B); err != nil {
		X = nil
		err = fmt.Errorf("band cholesky solve failed: %w", err)
		return
	}
	X.Scale(sign, X)
	return
}
