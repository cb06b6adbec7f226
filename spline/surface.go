package spline

import (
	"fmt"
	"sort"

	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/mat"
)

type Element struct {
	ID                     int
	Span                   [2]int // knot span index in each parametric direction
	UMin, UMax, VMin, VMax float64
	Basis                  []int // local to global basis function connectivity
}

func (e *Element) Area() float64 {
	return (e.UMax - e.UMin) * (e.VMax - e.VMin)
}

/*
Surface is a tensor product B-spline surface held in element / basis function
arena form. Basis functions are enumerated i + nu*j with i running along the first
parametric direction, elements are the non-zero knot span rectangles enumerated the
same way. Knots, elements and support lists are shared read-only between a surface
and the copies made by Rebuild.
*/
type Surface struct {
	Knots   [2]KnotVector
	Dim     int       // number of control values per basis function
	CP      []float64 // basis major, CP[b*Dim+c]
	Weights []float64 // nil unless the surface is rational

	topo *topology
}

type topology struct {
	elements  []Element
	support   [][]int
	extended  [][]int
	elementAt [2][]int // knot span index -> element row/column, -1 for zero spans
	nel       [2]int
}

func NewSurface(order [2]int, knots [2][]float64, dim int, cp []float64) (s *Surface, err error) {
	s = &Surface{Dim: dim}
	for dir := 0; dir < 2; dir++ {
		if s.Knots[dir], err = NewKnotVector(order[dir], knots[dir]); err != nil {
			err = fmt.Errorf("direction %d: %w", dir, err)
			return nil, err
		}
	}
	if dim < 1 {
		return nil, fmt.Errorf("surface dimension must be positive, have %d", dim)
	}
	if len(cp) != s.NoBasisFunctions()*dim {
		return nil, fmt.Errorf("have %d control values, need %d basis functions x %d",
			len(cp), s.NoBasisFunctions(), dim)
	}
	s.CP = append([]float64(nil), cp...)
	s.topo = s.buildTopology()
	return
}

/*
NewRectangle builds a surface of dimension 2 mapping the parametric domain affinely onto
[x0,x1] x [y0,y1]. Control points sit at the scaled Greville points, which reproduces
the linear map exactly.
*/
func NewRectangle(order [2]int, knots [2][]float64, x0, x1, y0, y1 float64) (s *Surface, err error) {
	var (
		kv [2]KnotVector
		g  [2][]float64
	)
	for dir := 0; dir < 2; dir++ {
		if kv[dir], err = NewKnotVector(order[dir], knots[dir]); err != nil {
			return
		}
		g[dir] = kv[dir].Greville()
	}
	var (
		ua, ub = kv[0].Domain()
		va, vb = kv[1].Domain()
		nu, nv = kv[0].NoBasis(), kv[1].NoBasis()
		cp     = make([]float64, 2*nu*nv)
	)
	for j := 0; j < nv; j++ {
		for i := 0; i < nu; i++ {
			b := i + nu*j
			cp[2*b] = x0 + (g[0][i]-ua)/(ub-ua)*(x1-x0)
			cp[2*b+1] = y0 + (g[1][j]-va)/(vb-va)*(y1-y0)
		}
	}
	return NewSurface(order, knots, 2, cp)
}

// SetWeights makes the surface rational; a nil slice makes it polynomial again
func (s *Surface) SetWeights(w []float64) error {
	if w == nil {
		s.Weights = nil
		return nil
	}
	if len(w) != s.NoBasisFunctions() {
		return fmt.Errorf("have %d weights for %d basis functions", len(w), s.NoBasisFunctions())
	}
	for b, val := range w {
		if val <= 0 {
			return fmt.Errorf("weight %d is not positive: %v", b, val)
		}
	}
	s.Weights = append([]float64(nil), w...)
	return nil
}

func (s *Surface) buildTopology() (tp *topology) {
	var (
		spans  = [2][]int{s.Knots[0].Spans(), s.Knots[1].Spans()}
		nu     = s.Knots[0].NoBasis()
		pu, pv = s.Knots[0].Degree(), s.Knots[1].Degree()
		nb     = s.NoBasisFunctions()
	)
	tp = &topology{
		elements: make([]Element, 0, len(spans[0])*len(spans[1])),
		support:  make([][]int, nb),
		extended: make([][]int, nb),
	}
	for dir := 0; dir < 2; dir++ {
		tp.elementAt[dir] = make([]int, len(s.Knots[dir].T))
		for k := range tp.elementAt[dir] {
			tp.elementAt[dir][k] = -1
		}
		for i, k := range spans[dir] {
			tp.elementAt[dir][k] = i
		}
		tp.nel[dir] = len(spans[dir])
	}
	for _, kv := range spans[1] {
		for _, ku := range spans[0] {
			el := Element{
				ID:    len(tp.elements),
				Span:  [2]int{ku, kv},
				UMin:  s.Knots[0].T[ku],
				UMax:  s.Knots[0].T[ku+1],
				VMin:  s.Knots[1].T[kv],
				VMax:  s.Knots[1].T[kv+1],
				Basis: make([]int, 0, (pu+1)*(pv+1)),
			}
			for j := kv - pv; j <= kv; j++ {
				for i := ku - pu; i <= ku; i++ {
					el.Basis = append(el.Basis, i+nu*j)
				}
			}
			for _, b := range el.Basis {
				tp.support[b] = append(tp.support[b], el.ID)
			}
			tp.elements = append(tp.elements, el)
		}
	}
	for b := 0; b < nb; b++ {
		set := make(map[int]struct{})
		for _, e := range tp.support[b] {
			for _, nbr := range tp.elements[e].Basis {
				for _, ee := range tp.support[nbr] {
					set[ee] = struct{}{}
				}
			}
		}
		ext := make([]int, 0, len(set))
		for e := range set {
			ext = append(ext, e)
		}
		sort.Ints(ext)
		tp.extended[b] = ext
	}
	return
}

func (s *Surface) NoBasisFunctions() int { return s.Knots[0].NoBasis() * s.Knots[1].NoBasis() }

func (s *Surface) NoElements() int { return len(s.topo.elements) }

func (s *Surface) Order(dir int) int { return s.Knots[dir].Order }

func (s *Surface) Rational() bool { return s.Weights != nil }

func (s *Surface) Element(e int) *Element { return &s.topo.elements[e] }

func (s *Surface) GrevilleParameter(b int) (u, v float64) {
	nu := s.Knots[0].NoBasis()
	return s.Knots[0].GrevilleAt(b % nu), s.Knots[1].GrevilleAt(b / nu)
}

func (s *Surface) Support(b int) []int { return s.topo.support[b] }

func (s *Surface) ExtendedSupport(b int) []int { return s.topo.extended[b] }

func (s *Surface) ElementBasis(e int) []int { return s.topo.elements[e].Basis }

func (s *Surface) ElementSpan(e int) (umin, umax, vmin, vmax float64) {
	el := &s.topo.elements[e]
	return el.UMin, el.UMax, el.VMin, el.VMax
}

func (s *Surface) ParametricArea(e int) float64 { return s.topo.elements[e].Area() }

func (s *Surface) ElementCoordinates(e int) (X *mat.Dense, err error) {
	if e < 0 || e >= s.NoElements() {
		return nil, fmt.Errorf("element %d out of range [0,%d)", e, s.NoElements())
	}
	if s.Dim < 2 {
		return nil, fmt.Errorf("surface of dimension %d has no planar geometry", s.Dim)
	}
	basis := s.topo.elements[e].Basis
	X = mat.NewDense(len(basis), 2, nil)
	for a, b := range basis {
		X.Set(a, 0, s.CP[b*s.Dim])
		X.Set(a, 1, s.CP[b*s.Dim+1])
	}
	return
}

// FindElement returns the element containing (u,v), or -1 outside the domain
func (s *Surface) FindElement(u, v float64) int {
	var (
		ua, ub = s.Knots[0].Domain()
		va, vb = s.Knots[1].Domain()
	)
	if u < ua || u > ub || v < va || v > vb {
		return -1
	}
	iu := s.topo.elementAt[0][s.Knots[0].FindSpan(u)]
	iv := s.topo.elementAt[1][s.Knots[1].FindSpan(v)]
	return iu + s.topo.nel[0]*iv
}

func (s *Surface) ComputeBasis(u, v float64, e int, derivs bool) (bv types.BasisValues) {
	var (
		el      = &s.topo.elements[e]
		Nu, dNu = s.Knots[0].BasisDerivs(el.Span[0], u, derivs)
		Nv, dNv = s.Knots[1].BasisDerivs(el.Span[1], v, derivs)
		nen     = len(el.Basis)
		nlu     = len(Nu)
	)
	bv.N = make([]float64, nen)
	if derivs {
		bv.DNdu = mat.NewDense(nen, 2, nil)
	}
	for b := range Nv {
		for a := range Nu {
			ii := a + nlu*b
			bv.N[ii] = Nu[a] * Nv[b]
			if derivs {
				bv.DNdu.Set(ii, 0, dNu[a]*Nv[b])
				bv.DNdu.Set(ii, 1, Nu[a]*dNv[b])
			}
		}
	}
	if s.Weights == nil {
		return
	}
	var W, Wu, Wv float64
	for ii, gb := range el.Basis {
		w := s.Weights[gb]
		bv.N[ii] *= w
		W += bv.N[ii]
		if derivs {
			bv.DNdu.Set(ii, 0, w*bv.DNdu.At(ii, 0))
			bv.DNdu.Set(ii, 1, w*bv.DNdu.At(ii, 1))
			Wu += bv.DNdu.At(ii, 0)
			Wv += bv.DNdu.At(ii, 1)
		}
	}
	for ii := range bv.N {
		if derivs {
			bv.DNdu.Set(ii, 0, (bv.DNdu.At(ii, 0)-bv.N[ii]*Wu/W)/W)
			bv.DNdu.Set(ii, 1, (bv.DNdu.At(ii, 1)-bv.N[ii]*Wv/W)/W)
		}
		bv.N[ii] /= W
	}
	return
}

func (s *Surface) ComputeBasisAll(u, v float64) (N []float64) {
	N = make([]float64, s.NoBasisFunctions())
	e := s.FindElement(u, v)
	if e < 0 {
		return
	}
	bv := s.ComputeBasis(u, v, e, false)
	for a, b := range s.topo.elements[e].Basis {
		N[b] = bv.N[a]
	}
	return
}

// Evaluate returns all Dim components of the surface at (u,v)
func (s *Surface) Evaluate(u, v float64) (f []float64) {
	f, _, _ = s.evaluate(u, v, false)
	return
}

// EvaluateDerivs returns all components and their parametric first derivatives at (u,v)
func (s *Surface) EvaluateDerivs(u, v float64) (f, fu, fv []float64) {
	return s.evaluate(u, v, true)
}

func (s *Surface) evaluate(u, v float64, derivs bool) (f, fu, fv []float64) {
	f = make([]float64, s.Dim)
	if derivs {
		fu, fv = make([]float64, s.Dim), make([]float64, s.Dim)
	}
	e := s.FindElement(u, v)
	if e < 0 {
		return
	}
	bv := s.ComputeBasis(u, v, e, derivs)
	for a, b := range s.topo.elements[e].Basis {
		for c := 0; c < s.Dim; c++ {
			cp := s.CP[b*s.Dim+c]
			f[c] += bv.N[a] * cp
			if derivs {
				fu[c] += bv.DNdu.At(a, 0) * cp
				fv[c] += bv.DNdu.At(a, 1) * cp
			}
		}
	}
	return
}

func (s *Surface) Point(u, v float64) (x, y float64) {
	f := s.Evaluate(u, v)
	x = f[0]
	if s.Dim > 1 {
		y = f[1]
	}
	return
}

func (s *Surface) Rebuild(dim int, cp []float64) (types.Mesh, error) {
	r, err := s.Copy(dim, cp)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Copy is Rebuild returning the concrete surface
func (s *Surface) Copy(dim int, cp []float64) (r *Surface, err error) {
	if dim < 1 {
		return nil, fmt.Errorf("surface dimension must be positive, have %d", dim)
	}
	if len(cp) != s.NoBasisFunctions()*dim {
		return nil, fmt.Errorf("have %d control values, need %d basis functions x %d",
			len(cp), s.NoBasisFunctions(), dim)
	}
	r = &Surface{
		Knots: s.Knots,
		Dim:   dim,
		CP:    append([]float64(nil), cp...),
		topo:  s.topo,
	}
	if s.Weights != nil {
		r.Weights = append([]float64(nil), s.Weights...)
	}
	return
}

// ControlValue returns component c of the control value of basis function b
func (s *Surface) ControlValue(b, c int) float64 { return s.CP[b*s.Dim+c] }
