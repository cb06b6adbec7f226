package fields

import (
	"fmt"

	"github.com/notargets/splinerecovery/spline"
	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/mat"
)

// Func maps physical coordinates to one value per field component
type Func func(x, y float64) []float64

/*
Analytic samples a closed form field of the physical coordinates, mapping parameters
through the geometry of the mesh.
*/
type Analytic struct {
	Geometry types.Mesh
	F        Func
	NComp    int
	Order    int // derivative order reported to patch recovery
}

func NewAnalytic(geom types.Mesh, ncomp int, f Func) *Analytic {
	return &Analytic{Geometry: geom, F: f, NComp: ncomp}
}

func (a *Analytic) NoFields() int { return a.NComp }

func (a *Analytic) DerivativeOrder() int { return a.Order }

func (a *Analytic) Evaluate(u, v []float64) (sField *mat.Dense, err error) {
	if err = checkPoints(u, v); err != nil {
		return
	}
	sField = mat.NewDense(a.NComp, len(u), nil)
	for i := range u {
		f := a.F(a.Geometry.Point(u[i], v[i]))
		if len(f) != a.NComp {
			return nil, fmt.Errorf("function returned %d of %d components", len(f), a.NComp)
		}
		sField.SetCol(i, f)
	}
	return
}

// Spline samples a basis represented field, one component per control value
type Spline struct {
	S *spline.Surface
}

// NewSpline wraps a mesh produced by this module's spline package
func NewSpline(m types.Mesh) (sp *Spline, err error) {
	s, ok := m.(*spline.Surface)
	if !ok || s == nil {
		return nil, fmt.Errorf("mesh of type %T is not a spline surface", m)
	}
	return &Spline{S: s}, nil
}

func (sp *Spline) NoFields() int { return sp.S.Dim }

func (sp *Spline) DerivativeOrder() int { return 0 }

func (sp *Spline) Evaluate(u, v []float64) (sField *mat.Dense, err error) {
	if err = checkPoints(u, v); err != nil {
		return
	}
	sField = mat.NewDense(sp.S.Dim, len(u), nil)
	for i := range u {
		sField.SetCol(i, sp.S.Evaluate(u[i], v[i]))
	}
	return
}

/*
Gradient samples the physical gradient (∂f/∂x, ∂f/∂y) of a scalar spline field f
defined on the same knots as the geometry. The parametric derivatives are mapped with
the inverse transpose of the geometry Jacobian.
*/
type Gradient struct {
	Geometry, Field *spline.Surface
}

func NewGradient(geom, field types.Mesh) (g *Gradient, err error) {
	var gs, fs *Spline
	if gs, err = NewSpline(geom); err != nil {
		return
	}
	if fs, err = NewSpline(field); err != nil {
		return
	}
	if gs.S.Dim != 2 || fs.S.Dim != 1 {
		return nil, fmt.Errorf("gradient needs a planar geometry and a scalar field, have dimensions %d and %d",
			gs.S.Dim, fs.S.Dim)
	}
	return &Gradient{Geometry: gs.S, Field: fs.S}, nil
}

func (g *Gradient) NoFields() int { return 2 }

func (g *Gradient) DerivativeOrder() int { return 1 }

func (g *Gradient) Evaluate(u, v []float64) (sField *mat.Dense, err error) {
	if err = checkPoints(u, v); err != nil {
		return
	}
	sField = mat.NewDense(2, len(u), nil)
	for i := range u {
		_, xu, xv := g.Geometry.EvaluateDerivs(u[i], v[i])
		_, fu, fv := g.Field.EvaluateDerivs(u[i], v[i])
		// J = [x_u x_v; y_u y_v], grad = J⁻ᵀ (f_u, f_v)
		det := xu[0]*xv[1] - xv[0]*xu[1]
		if det == 0 {
			return nil, fmt.Errorf("singular geometry mapping at (%v,%v)", u[i], v[i])
		}
		sField.Set(0, i, (xv[1]*fu[0]-xu[1]*fv[0])/det)
		sField.Set(1, i, (xu[0]*fv[0]-xv[0]*fu[0])/det)
	}
	return
}

func checkPoints(u, v []float64) error {
	if len(u) == 0 || len(u) != len(v) {
		return fmt.Errorf("need matching non-empty parameter slices, have %d and %d", len(u), len(v))
	}
	return nil
}
