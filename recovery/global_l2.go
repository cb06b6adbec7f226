package recovery

import (
	"fmt"

	"github.com/notargets/splinerecovery/types"
	"github.com/notargets/splinerecovery/utils"
	"gonum.org/v1/gonum/mat"
)

type l2Rule struct {
	xg, wg1 []float64
	yg, wg2 []float64
}

/*
GlobalL2Projection projects the field onto the spline basis by assembling and
solving the mesh wide system A*x = B with A[i,j] = ∫φᵢφⱼ and B[i] = ∫φᵢf. The
continuous projection integrates with the NGauss point rule, weighted by the
geometric Jacobian. The discrete projection uses order-1 points per direction with
unit weights. On success sField holds the control values, ncomp x nBasis.

Integration points with a zero Jacobian are skipped; any other failure aborts the
projection and leaves sField untouched.
*/
func (r *Recoverer) GlobalL2Projection(sField *mat.Dense, ev types.FieldEvaluator, continuous bool) (err error) {
	if sField == nil {
		return fmt.Errorf("no field matrix: %w", ErrConfiguration)
	}
	if err = r.check(ev); err != nil {
		return
	}
	var (
		m        = r.Mesh
		ng1, ng2 = r.nGauss(), r.nGauss()
		q        l2Rule
	)
	if !continuous {
		ng1, ng2 = m.Order(0)-1, m.Order(1)-1
	}
	if q.xg, q.wg1, err = r.rule(ng1); err != nil {
		return
	}
	if q.yg, q.wg2, err = r.rule(ng2); err != nil {
		return
	}

	var (
		nnod    = m.NoBasisFunctions()
		ncomp   = ev.NoFields()
		pm      = utils.NewPartitionMap(r.ParallelDegree, m.NoElements())
		systems = make([]*utils.SymmetricSystem, pm.ParallelDegree)
		skipped = make([]int, pm.ParallelDegree)
	)
	// Each partition assembles into a private system, merged below in partition order
	err = pm.ParallelFor(func(np, kMin, kMax int) (err error) {
		ss := utils.NewSymmetricSystem(nnod, ncomp)
		for e := kMin; e < kMax; e++ {
			var ns int
			if ns, err = r.assembleL2Element(ss, e, ev, continuous, &q); err != nil {
				return
			}
			skipped[np] += ns
		}
		systems[np] = ss
		return
	})
	if err != nil {
		return
	}
	var (
		ss       *utils.SymmetricSystem
		nSkipped int
	)
	for np, sys := range systems {
		nSkipped += skipped[np]
		if sys == nil {
			continue
		}
		if ss == nil {
			ss = sys
			continue
		}
		if err = ss.Merge(sys); err != nil {
			return fmt.Errorf("merging partition %d: %v: %w", np, err, ErrLinearSystem)
		}
	}
	r.log.V(1).Info("global L2 projection assembled", "continuous", continuous,
		"elements", m.NoElements(), "basisFunctions", nnod, "components", ncomp,
		"gaussPoints", [2]int{ng1, ng2}, "skippedPoints", nSkipped)

	var X *mat.Dense
	if X, err = ss.Solve(); err != nil {
		r.log.Error(err, "global L2 solve failed", "order", nnod)
		return fmt.Errorf("global L2 system of order %d: %v: %w", nnod, err, ErrLinearSystem)
	}
	sField.Reset()
	sField.ReuseAs(ncomp, nnod)
	for i := 0; i < nnod; i++ {
		for c := 0; c < ncomp; c++ {
			sField.Set(c, i, X.At(i, c))
		}
	}
	return
}

func (r *Recoverer) assembleL2Element(ss *utils.SymmetricSystem, e int, ev types.FieldEvaluator,
	continuous bool, q *l2Rule) (skipped int, err error) {
	var (
		m     = r.Mesh
		mnpc  = m.ElementBasis(e)
		ncomp = ev.NoFields()
		Xnod  *mat.Dense
		dA    float64
	)
	if continuous {
		if Xnod, err = m.ElementCoordinates(e); err != nil {
			err = fmt.Errorf("element %d coordinates: %v: %w", e, err, ErrTopology)
			return
		}
		if nen, nsd := Xnod.Dims(); nen != len(mnpc) || nsd != 2 {
			err = fmt.Errorf("element %d has %dx%d nodal coordinates for %d basis functions: %w",
				e, nen, nsd, len(mnpc), ErrTopology)
			return
		}
		if dA = 0.25 * m.ParametricArea(e); dA < 0 {
			err = fmt.Errorf("element %d has negative parametric area %v: %w", e, 4*dA, ErrTopology)
			return
		}
	}
	var gpar [2][]float64
	gpar[0] = GaussPointParameters(m, 0, e, q.xg)
	gpar[1] = GaussPointParameters(m, 1, e, q.yg)
	unstr := ExpandTensorGrid(gpar)

	var sField *mat.Dense
	if sField, err = evaluate(ev, unstr[0], unstr[1]); err != nil {
		return
	}
	ng1 := len(q.xg)
	for j := range q.yg {
		for i := range q.xg {
			ip := i + ng1*j
			bv := m.ComputeBasis(gpar[0][i], gpar[1][j], e, continuous)
			if len(bv.N) != len(mnpc) {
				err = fmt.Errorf("element %d evaluates %d basis functions, connectivity has %d: %w",
					e, len(bv.N), len(mnpc), ErrSizeMismatch)
				return
			}
			dJw := 1.
			if continuous {
				dJw = dA * q.wg1[i] * q.wg2[j] * Jacobian(Xnod, bv.DNdu)
				if dJw == 0 {
					skipped++
					continue
				}
			}
			for ii, inod := range mnpc {
				for jj, jnod := range mnpc {
					ss.AddA(inod, jnod, bv.N[ii]*bv.N[jj]*dJw)
				}
				for c := 0; c < ncomp; c++ {
					ss.AddB(inod, c, bv.N[ii]*sField.At(c, ip)*dJw)
				}
			}
		}
	}
	return
}

// Jacobian returns det(Xnodᵀ·dNdu), the determinant of the parametric to physical map
func Jacobian(Xnod, dNdu *mat.Dense) float64 {
	var J mat.Dense
	J.Mul(Xnod.T(), dNdu)
	return J.At(0, 0)*J.At(1, 1) - J.At(0, 1)*J.At(1, 0)
}
