package quadrature

import (
	"fmt"
	"math"
	"sync"

	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/mat"
)

const DefaultMaxPoints = 10

// GaussLegendre tabulates n-point Gauss-Legendre rules on [-1,1] for 1 <= n <= MaxPoints
type GaussLegendre struct {
	MaxPoints int
}

func NewGaussLegendre(maxPoints ...int) (gl *GaussLegendre) {
	gl = &GaussLegendre{MaxPoints: DefaultMaxPoints}
	if len(maxPoints) != 0 {
		gl.MaxPoints = maxPoints[0]
	}
	return
}

func (gl *GaussLegendre) Rule(n int) (x, w []float64, ok bool) {
	if n < 1 || n > gl.MaxPoints {
		return nil, nil, false
	}
	var err error
	if x, w, err = GaussJacobi(0, 0, n); err != nil {
		return nil, nil, false
	}
	return x, w, true
}

/*
GaussJacobi computes the n-point Gauss-Jacobi rule for the weight (1-x)^alpha (1+x)^beta
using the Golub-Welsch eigenvalue method on the symmetric tridiagonal Jacobi matrix.
Nodes are returned ascending.
*/
func GaussJacobi(alpha, beta float64, n int) (x, w []float64, err error) {
	var (
		N   = n - 1
		fac float64
	)
	if n < 1 {
		err = fmt.Errorf("gauss rule needs at least one point, have %d", n)
		return
	}
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{gamma0(alpha, beta)}
		return
	}
	h1 := make([]float64, n)
	for i := 0; i < n; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	// main diagonal: -1/2*(alpha^2-beta^2)./(h1+2)./h1
	d0 := make([]float64, n)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < n; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	if alpha+beta < 10*1.e-16 {
		d0[0] = 0.
	}
	// Symmetric band storage, one super diagonal, row major with the diagonal first
	band := make([]float64, 2*n)
	var ip1 float64
	for i := 0; i < n; i++ {
		band[2*i] = d0[i]
		if i == N {
			continue
		}
		ip1 = float64(i + 1)
		val := h1[i]
		d1 := 2. / (val + 2.)
		d1 *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
		band[2*i+1] = d1
	}
	JJ := mat.NewSymBandDense(n, 1, band)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		err = fmt.Errorf("eigenvalue decomposition failed for %d point rule", n)
		return
	}
	x = eig.Values(nil)
	VV := mat.NewDense(n, n, nil)
	eig.VectorsTo(VV)
	w = make([]float64, n)
	g0 := gamma0(alpha, beta)
	for j := 0; j < n; j++ {
		v := VV.At(0, j)
		w[j] = v * v * g0
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

// Cached memoises the rules of an underlying table and is safe for concurrent
// use. Returned slices are shared and must not be modified.
type Cached struct {
	Table types.QuadratureTable
	mu    sync.RWMutex
	rules map[int][2][]float64
}

func NewCached(table types.QuadratureTable) *Cached {
	return &Cached{
		Table: table,
		rules: make(map[int][2][]float64),
	}
}

func (c *Cached) Rule(n int) (x, w []float64, ok bool) {
	c.mu.RLock()
	r, found := c.rules[n]
	c.mu.RUnlock()
	if found {
		return r[0], r[1], true
	}
	if x, w, ok = c.Table.Rule(n); !ok {
		return
	}
	c.mu.Lock()
	c.rules[n] = [2][]float64{x, w}
	c.mu.Unlock()
	return
}
