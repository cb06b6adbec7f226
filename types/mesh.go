package types

import (
	"gonum.org/v1/gonum/mat"
)

/*
Mesh is an opaque handle on a locally indexed spline surface. Basis functions and
elements are addressed by index only, in the canonical enumeration order of the
mesh; callers never hold the underlying basis function objects.
*/
type Mesh interface {
	NoBasisFunctions() int
	NoElements() int
	// Order is the polynomial order (degree+1) in parametric direction dir
	Order(dir int) int
	Rational() bool

	GrevilleParameter(b int) (u, v float64)
	// Support lists the elements in the support of basis function b, ascending
	Support(b int) []int
	// ExtendedSupport is Support(b) plus the supports of every basis function
	// sharing an element with b, ascending
	ExtendedSupport(b int) []int

	// ElementBasis is the local-to-global connectivity of element e
	ElementBasis(e int) []int
	ElementSpan(e int) (umin, umax, vmin, vmax float64)
	ParametricArea(e int) float64
	// ElementCoordinates returns the nodal coordinates of element e, nen x nsd
	ElementCoordinates(e int) (*mat.Dense, error)

	// ComputeBasis evaluates the basis functions of element e at (u,v), in
	// ElementBasis(e) order
	ComputeBasis(u, v float64, e int, derivs bool) BasisValues
	// ComputeBasisAll evaluates every basis function at (u,v)
	ComputeBasisAll(u, v float64) []float64
	// Point is the geometric mapping of (u,v) to physical coordinates
	Point(u, v float64) (x, y float64)

	// Rebuild returns a copy sharing knots and topology, carrying dim control
	// values per basis function. cp is basis major: cp[b*dim+c]
	Rebuild(dim int, cp []float64) (Mesh, error)
}

type BasisValues struct {
	N    []float64
	DNdu *mat.Dense // nen x 2, nil unless derivatives were requested
}

// FieldEvaluator samples a derived field at a set of parametric points. Evaluate
// must be safe for concurrent use.
type FieldEvaluator interface {
	NoFields() int
	DerivativeOrder() int
	// Evaluate returns a NoFields() x len(u) matrix
	Evaluate(u, v []float64) (*mat.Dense, error)
}

// QuadratureTable returns the n-point rule on [-1,1]; ok is false for unsupported n
type QuadratureTable interface {
	Rule(n int) (x, w []float64, ok bool)
}
