package recovery

import (
	"fmt"

	"github.com/notargets/splinerecovery/types"
)

// GrevilleParameters returns one parameter per basis function, in basis function order
func GrevilleParameters(m types.Mesh, dir int) (prm []float64, err error) {
	if m == nil {
		err = fmt.Errorf("no mesh: %w", ErrConfiguration)
		return
	}
	if dir < 0 || dir > 1 {
		err = fmt.Errorf("parametric direction %d not in [0,1]: %w", dir, ErrConfiguration)
		return
	}
	prm = make([]float64, m.NoBasisFunctions())
	for b := range prm {
		u, v := m.GrevilleParameter(b)
		if dir == 0 {
			prm[b] = u
		} else {
			prm[b] = v
		}
	}
	return
}

func grevilleGrid(m types.Mesh) (gpar [2][]float64, err error) {
	for dir := 0; dir < 2; dir++ {
		if gpar[dir], err = GrevilleParameters(m, dir); err != nil {
			return
		}
	}
	return
}

/*
GaussPointParameters maps the reference points xg on [-1,1] into the knot span of
element e in direction dir.
*/
func GaussPointParameters(m types.Mesh, dir, e int, xg []float64) (prm []float64) {
	var (
		umin, umax, vmin, vmax = m.ElementSpan(e)
		a, b                   = umin, umax
	)
	if dir == 1 {
		a, b = vmin, vmax
	}
	prm = make([]float64, len(xg))
	for i, x := range xg {
		prm[i] = a + 0.5*(x+1)*(b-a)
	}
	return
}
