package recovery

import (
	"fmt"
	"math"

	"github.com/notargets/splinerecovery/types"
	"github.com/notargets/splinerecovery/utils"
	"gonum.org/v1/gonum/mat"
)

// PatchRankTolerance is the smallest accepted ratio of the extreme diagonal entries of
// the R factor of a patch design matrix
const PatchRankTolerance = 1.e-12

type patchFit struct {
	xg, yg []float64
	n1, n2 int // number of monomial terms per direction
	gpar   [2][]float64
}

func (pf *patchFit) nPol() int { return pf.n1 * pf.n2 }

/*
SCRecovery performs superconvergent patch recovery. For every basis function a tensor
polynomial of degree order-m per direction, m being the derivative order of the field,
is fitted in the least squares sense to the field sampled at the order-m Gauss points
of the extended support of the function. The fit is evaluated at the Greville point,
and the Greville point values are interpolated onto the spline basis.

Basis functions are processed independently; an unsolvable patch fails the whole recovery.
*/
func (r *Recoverer) SCRecovery(ev types.FieldEvaluator) (res types.Mesh, err error) {
	if err = r.check(ev); err != nil {
		return
	}
	var (
		m      = r.Mesh
		mo     = ev.DerivativeOrder()
		p1, p2 = m.Order(0), m.Order(1)
		pf     = &patchFit{n1: p1 - mo + 1, n2: p2 - mo + 1}
	)
	if pf.xg, _, err = r.rule(p1 - mo); err != nil {
		return
	}
	if pf.yg, _, err = r.rule(p2 - mo); err != nil {
		return
	}
	if pf.gpar, err = grevilleGrid(m); err != nil {
		return
	}
	var (
		nb      = m.NoBasisFunctions()
		nCmp    = ev.NoFields()
		sValues = mat.NewDense(nCmp, nb, nil)
		pm      = utils.NewPartitionMap(r.ParallelDegree, nb)
	)
	// Each basis function writes only its own column of sValues
	err = pm.ParallelFor(func(np, kMin, kMax int) error {
		for b := kMin; b < kMax; b++ {
			vals, err := r.fitPatch(b, m.ExtendedSupport(b), ev, pf)
			if err != nil {
				return err
			}
			for c, val := range vals {
				sValues.Set(c, b, val)
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error(err, "patch recovery failed")
		return
	}
	r.log.V(1).Info("patch recovery done", "basisFunctions", nb, "components", nCmp,
		"polynomialTerms", pf.nPol(), "gaussPoints", [2]int{len(pf.xg), len(pf.yg)})
	return r.RegularInterpolation(pf.gpar[0], pf.gpar[1], sValues)
}

/*
fitPatch fits the tensor monomial expansion to the samples on the given elements in the
least squares sense and returns the fit at the Greville point of basis function b for
each field component. Monomials are centred on the bounding box of the samples and
scaled to [-1,1]; this spans the same polynomial space as monomials centred at the
Greville point.
*/
func (r *Recoverer) fitPatch(b int, elements []int, ev types.FieldEvaluator, pf *patchFit) (vals []float64, err error) {
	var (
		m          = r.Mesh
		nCmp       = ev.NoFields()
		nPol       = pf.nPol()
		X, Y       []float64
		sf         []*mat.Dense
		xmin, xmax = math.Inf(1), math.Inf(-1)
		ymin, ymax = math.Inf(1), math.Inf(-1)
	)
	for _, e := range elements {
		var gaussPt [2][]float64
		gaussPt[0] = GaussPointParameters(m, 0, e, pf.xg)
		gaussPt[1] = GaussPointParameters(m, 1, e, pf.yg)
		unstr := ExpandTensorGrid(gaussPt)
		var sField *mat.Dense
		if sField, err = evaluate(ev, unstr[0], unstr[1]); err != nil {
			return
		}
		sf = append(sf, sField)
		for ig := range unstr[0] {
			x, y := m.Point(unstr[0][ig], unstr[1][ig])
			X, Y = append(X, x), append(Y, y)
			xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
			ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
		}
	}
	npts := len(X)
	if npts < nPol {
		err = fmt.Errorf("patch of basis function %d: %d points on %d elements for %d terms: %w",
			b, npts, len(elements), nPol, ErrLinearSystem)
		return
	}
	var (
		cx, hx = 0.5 * (xmin + xmax), 0.5 * (xmax - xmin)
		cy, hy = 0.5 * (ymin + ymax), 0.5 * (ymax - ymin)
	)
	if hx == 0 {
		hx = 1
	}
	if hy == 0 {
		hy = 1
	}
	var (
		D  = mat.NewDense(npts, nPol, nil) // design matrix, one row per sample point
		S  = mat.NewDense(npts, nCmp, nil)
		ip int
	)
	for _, sField := range sf {
		_, ns := sField.Dims()
		for ig := 0; ig < ns; ig++ {
			evalMonomials(pf.n1, pf.n2, (X[ip]-cx)/hx, (Y[ip]-cy)/hy, D.RawRowView(ip))
			for l := 0; l < nCmp; l++ {
				S.Set(ip, l, sField.At(l, ig))
			}
			ip++
		}
	}
	var (
		qr   mat.QR
		R    mat.Dense
		coef mat.Dense
	)
	qr.Factorize(D)
	qr.RTo(&R)
	rmin, rmax := math.Inf(1), 0.
	for k := 0; k < nPol; k++ {
		d := math.Abs(R.At(k, k))
		rmin, rmax = math.Min(rmin, d), math.Max(rmax, d)
	}
	if rmax == 0 || rmin/rmax < PatchRankTolerance {
		err = fmt.Errorf("patch of basis function %d: %d points on %d elements for %d terms, rank ratio %g: %w",
			b, npts, len(elements), nPol, rmin/rmax, ErrLinearSystem)
		return
	}
	if err = qr.SolveTo(&coef, false, S); err != nil {
		err = fmt.Errorf("patch of basis function %d: %v: %w", b, err, ErrLinearSystem)
		return
	}
	var (
		Gx, Gy = m.Point(pf.gpar[0][b], pf.gpar[1][b])
		P      = make([]float64, nPol)
	)
	evalMonomials(pf.n1, pf.n2, (Gx-cx)/hx, (Gy-cy)/hy, P)
	vals = make([]float64, nCmp)
	for l := range vals {
		for k := 0; k < nPol; k++ {
			vals[l] += P[k] * coef.At(k, l)
		}
	}
	return
}

// evalMonomials sets P[i+p1*j] = x^i * y^j for i < p1, j < p2
func evalMonomials(p1, p2 int, x, y float64, P []float64) {
	for j := 0; j < p2; j++ {
		yj := utils.POW(y, j)
		for i := 0; i < p1; i++ {
			P[i+p1*j] = utils.POW(x, i) * yj
		}
	}
}
