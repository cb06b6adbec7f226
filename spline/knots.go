package spline

import (
	"fmt"
)

// KnotVector is an open, non-decreasing knot vector for basis functions of the given order
type KnotVector struct {
	Order int // degree + 1
	T     []float64
}

func NewKnotVector(order int, t []float64) (kv KnotVector, err error) {
	if order < 1 {
		err = fmt.Errorf("order must be positive, have %d", order)
		return
	}
	if len(t) < 2*order {
		err = fmt.Errorf("knot vector of order %d needs at least %d knots, have %d",
			order, 2*order, len(t))
		return
	}
	mult := 1
	for i := 1; i < len(t); i++ {
		switch {
		case t[i] < t[i-1]:
			err = fmt.Errorf("knot vector decreases at index %d: %v < %v", i, t[i], t[i-1])
			return
		case t[i] == t[i-1]:
			mult++
		default:
			mult = 1
		}
		if mult > order {
			err = fmt.Errorf("knot %v has multiplicity %d, larger than order %d", t[i], mult, order)
			return
		}
	}
	if t[0] == t[len(t)-1] {
		err = fmt.Errorf("knot vector has an empty parameter domain")
		return
	}
	kv = KnotVector{Order: order, T: append([]float64(nil), t...)}
	return
}

// UniformKnots returns an open knot vector with nel equal spans on [a,b]
func UniformKnots(order, nel int, a, b float64) (t []float64) {
	t = make([]float64, 0, 2*order+nel-1)
	for i := 0; i < order; i++ {
		t = append(t, a)
	}
	h := (b - a) / float64(nel)
	for i := 1; i < nel; i++ {
		t = append(t, a+float64(i)*h)
	}
	for i := 0; i < order; i++ {
		t = append(t, b)
	}
	return
}

func (kv KnotVector) Degree() int { return kv.Order - 1 }

func (kv KnotVector) NoBasis() int { return len(kv.T) - kv.Order }

func (kv KnotVector) Domain() (a, b float64) {
	return kv.T[kv.Degree()], kv.T[kv.NoBasis()]
}

// Spans returns the indices k with T[k] < T[k+1] inside the domain, ascending
func (kv KnotVector) Spans() (spans []int) {
	for k := kv.Degree(); k < kv.NoBasis(); k++ {
		if kv.T[k] < kv.T[k+1] {
			spans = append(spans, k)
		}
	}
	return
}

// FindSpan returns k such that T[k] <= u < T[k+1]; u at the right end maps to the last span
func (kv KnotVector) FindSpan(u float64) (k int) {
	var (
		p  = kv.Degree()
		n  = kv.NoBasis()
		lo = p
		hi = n
	)
	if u >= kv.T[n] {
		for k = n - 1; k > p && kv.T[k] == kv.T[k+1]; k-- {
		}
		return
	}
	if u <= kv.T[p] {
		for k = p; k < n-1 && kv.T[k] == kv.T[k+1]; k++ {
		}
		return
	}
	k = (lo + hi) / 2
	for u < kv.T[k] || u >= kv.T[k+1] {
		if u < kv.T[k] {
			hi = k
		} else {
			lo = k
		}
		k = (lo + hi) / 2
	}
	return
}

// Greville returns the Greville abscissa of every basis function
func (kv KnotVector) Greville() (g []float64) {
	g = make([]float64, kv.NoBasis())
	for i := range g {
		g[i] = kv.GrevilleAt(i)
	}
	return
}

// GrevilleAt is the knot average (t[i+1]+...+t[i+p])/p, the span midpoint for p = 0
func (kv KnotVector) GrevilleAt(i int) float64 {
	p := kv.Degree()
	if p == 0 {
		return 0.5 * (kv.T[i] + kv.T[i+1])
	}
	var sum float64
	for j := 1; j <= p; j++ {
		sum += kv.T[i+j]
	}
	return sum / float64(p)
}

/*
BasisDerivs evaluates the Order non-zero basis functions of span k at u, and their
first derivatives, returning N[a] and dN[a] for basis index k-p+a.
*/
func (kv KnotVector) BasisDerivs(k int, u float64, derivs bool) (N, dN []float64) {
	var (
		p     = kv.Degree()
		T     = kv.T
		left  = make([]float64, p+1)
		right = make([]float64, p+1)
		// ndu[j][r]: basis values in the lower triangle, knot differences in the upper
		ndu = make([][]float64, p+1)
	)
	for j := range ndu {
		ndu[j] = make([]float64, p+1)
	}
	ndu[0][0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - T[k+1-j]
		right[j] = T[k+j] - u
		saved := 0.
		for r := 0; r < j; r++ {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}
	N = make([]float64, p+1)
	for j := 0; j <= p; j++ {
		N[j] = ndu[j][p]
	}
	if !derivs {
		return
	}
	dN = make([]float64, p+1)
	if p == 0 {
		return
	}
	// First derivatives from the degree p-1 values and the stored knot differences
	for r := 0; r <= p; r++ {
		var d float64
		if r >= 1 {
			d += ndu[r-1][p-1] / ndu[p][r-1]
		}
		if r <= p-1 {
			d -= ndu[r][p-1] / ndu[p][r]
		}
		dN[r] = float64(p) * d
	}
	return
}
