package recovery

import (
	"fmt"

	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/mat"
)

/*
RegularInterpolation builds the spline that interpolates values at the points
(upar[i], vpar[i]), one point per basis function. values is ncomp x nBasis, column i
holding the field at point i. The collocation system A[i,j] = φⱼ(upar[i], vpar[i]) is
solved for all components at once and the result carries ncomp control values per
basis function on a copy of the mesh.
*/
func (r *Recoverer) RegularInterpolation(upar, vpar []float64, values *mat.Dense) (res types.Mesh, err error) {
	if r.Mesh == nil {
		err = fmt.Errorf("no mesh: %w", ErrConfiguration)
		return
	}
	m := r.Mesh
	if m.Rational() {
		err = fmt.Errorf("rational mesh: %w", ErrConfiguration)
		return
	}
	if values == nil {
		err = fmt.Errorf("no interpolation values: %w", ErrConfiguration)
		return
	}
	var (
		nb          = m.NoBasisFunctions()
		ncomp, npts = values.Dims()
	)
	if len(upar) != nb || len(vpar) != nb || npts != nb {
		err = fmt.Errorf("%d basis functions, %d and %d parameters, %d values: %w",
			nb, len(upar), len(vpar), npts, ErrSizeMismatch)
		return
	}
	A := mat.NewDense(nb, nb, nil)
	for i := range upar {
		N := m.ComputeBasisAll(upar[i], vpar[i])
		if len(N) != nb {
			err = fmt.Errorf("point %d evaluates %d of %d basis functions: %w", i, len(N), nb, ErrSizeMismatch)
			return
		}
		A.SetRow(i, N)
	}
	var (
		lu mat.LU
		X  mat.Dense
	)
	lu.Factorize(A)
	if err = lu.SolveTo(&X, false, values.T()); err != nil {
		r.log.Error(err, "interpolation solve failed", "order", nb)
		err = fmt.Errorf("interpolation system of order %d: %v: %w", nb, err, ErrLinearSystem)
		return
	}
	cp := make([]float64, nb*ncomp)
	for b := 0; b < nb; b++ {
		for c := 0; c < ncomp; c++ {
			cp[b*ncomp+c] = X.At(b, c)
		}
	}
	r.log.V(1).Info("interpolated", "basisFunctions", nb, "components", ncomp)
	return m.Rebuild(ncomp, cp)
}

// ProjectSolution interpolates the field sampled at the Greville points
func (r *Recoverer) ProjectSolution(ev types.FieldEvaluator) (res types.Mesh, err error) {
	if err = r.check(ev); err != nil {
		return
	}
	var gpar [2][]float64
	if gpar, err = grevilleGrid(r.Mesh); err != nil {
		return
	}
	var sValues *mat.Dense
	if sValues, err = evaluate(ev, gpar[0], gpar[1]); err != nil {
		return
	}
	return r.RegularInterpolation(gpar[0], gpar[1], sValues)
}
