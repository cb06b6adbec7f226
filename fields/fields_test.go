package fields

import (
	"testing"

	"github.com/notargets/splinerecovery/spline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectangle(t *testing.T) *spline.Surface {
	s, err := spline.NewRectangle([2]int{3, 3},
		[2][]float64{spline.UniformKnots(3, 4, 0, 1), spline.UniformKnots(3, 3, 0, 1)},
		0, 2, 0, 1)
	require.NoError(t, err)
	return s
}

// greville builds a scalar field whose control values are f at the physical Greville points
func greville(t *testing.T, geom *spline.Surface, f func(x, y float64) float64) *spline.Surface {
	cp := make([]float64, geom.NoBasisFunctions())
	for b := range cp {
		cp[b] = f(geom.Point(geom.GrevilleParameter(b)))
	}
	s, err := geom.Copy(1, cp)
	require.NoError(t, err)
	return s
}

func TestAnalytic(t *testing.T) {
	geom := rectangle(t)
	tf, err := LookupTestFunction("bilinear")
	require.NoError(t, err)
	a := NewAnalytic(geom, 1, tf.Value())
	assert.Equal(t, 1, a.NoFields())
	assert.Equal(t, 0, a.DerivativeOrder())

	u, v := []float64{0, 0.5, 1}, []float64{0, 0.25, 1}
	sf, err := a.Evaluate(u, v)
	require.NoError(t, err)
	r, c := sf.Dims()
	assert.Equal(t, [2]int{1, 3}, [2]int{r, c})
	for i := range u {
		x, y := geom.Point(u[i], v[i])
		assert.InDelta(t, tf.F(x, y), sf.At(0, i), 1.e-12)
	}

	_, err = a.Evaluate(u, v[:1])
	assert.Error(t, err)
	bad := NewAnalytic(geom, 2, tf.Value())
	_, err = bad.Evaluate(u, v)
	assert.Error(t, err)
}

func TestSpline(t *testing.T) {
	geom := rectangle(t)
	sp, err := NewSpline(geom)
	require.NoError(t, err)
	assert.Equal(t, 2, sp.NoFields())
	sf, err := sp.Evaluate([]float64{0.5, 1}, []float64{0.5, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1., sf.At(0, 0), 1.e-12)
	assert.InDelta(t, 0.5, sf.At(1, 0), 1.e-12)
	assert.InDelta(t, 2., sf.At(0, 1), 1.e-12)
	assert.InDelta(t, 1., sf.At(1, 1), 1.e-12)

	_, err = NewSpline(nil)
	assert.Error(t, err)
}

func TestGradient(t *testing.T) {
	geom := rectangle(t)
	tf, err := LookupTestFunction("linear")
	require.NoError(t, err)
	g, err := NewGradient(geom, greville(t, geom, tf.F))
	require.NoError(t, err)
	assert.Equal(t, 2, g.NoFields())
	assert.Equal(t, 1, g.DerivativeOrder())

	u, v := []float64{0.1, 0.4, 0.9}, []float64{0.2, 0.7, 0.95}
	sf, err := g.Evaluate(u, v)
	require.NoError(t, err)
	for i := range u {
		assert.InDelta(t, 2., sf.At(0, i), 1.e-10)
		assert.InDelta(t, -3., sf.At(1, i), 1.e-10)
	}

	_, err = NewGradient(geom, geom)
	assert.Error(t, err)
}

func TestTestFunctions(t *testing.T) {
	names := TestFunctionNames()
	assert.Equal(t, []string{"bilinear", "constant", "linear", "quadratic", "sinusoid"}, names)
	const h = 1.e-6
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tf, err := LookupTestFunction(name)
			require.NoError(t, err)
			assert.Equal(t, name, tf.Name)
			x, y := 0.3, 0.7
			fx, fy := tf.Grad(x, y)
			assert.InDelta(t, (tf.F(x+h, y)-tf.F(x-h, y))/(2*h), fx, 1.e-6)
			assert.InDelta(t, (tf.F(x, y+h)-tf.F(x, y-h))/(2*h), fy, 1.e-6)
			assert.Equal(t, []float64{fx, fy}, tf.Gradient()(x, y))
		})
	}
	_, err := LookupTestFunction("cubic")
	assert.Error(t, err)
}
