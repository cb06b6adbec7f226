package fields

import (
	"fmt"
	"math"
	"sort"
)

// TestFunction is a scalar field with its exact gradient
type TestFunction struct {
	Name string
	F    func(x, y float64) float64
	Grad func(x, y float64) (fx, fy float64)
}

var testFunctions = map[string]TestFunction{
	"constant": {
		F:    func(x, y float64) float64 { return 3 },
		Grad: func(x, y float64) (float64, float64) { return 0, 0 },
	},
	"linear": {
		F:    func(x, y float64) float64 { return 1 + 2*x - 3*y },
		Grad: func(x, y float64) (float64, float64) { return 2, -3 },
	},
	"bilinear": {
		F:    func(x, y float64) float64 { return 1 + x + y + 2*x*y },
		Grad: func(x, y float64) (float64, float64) { return 1 + 2*y, 1 + 2*x },
	},
	"quadratic": {
		F:    func(x, y float64) float64 { return x*x - x*y + 2*y*y },
		Grad: func(x, y float64) (float64, float64) { return 2*x - y, 4*y - x },
	},
	"sinusoid": {
		F: func(x, y float64) float64 { return math.Sin(math.Pi*x) * math.Cos(math.Pi*y) },
		Grad: func(x, y float64) (float64, float64) {
			return math.Pi * math.Cos(math.Pi*x) * math.Cos(math.Pi*y),
				-math.Pi * math.Sin(math.Pi*x) * math.Sin(math.Pi*y)
		},
	},
}

func LookupTestFunction(name string) (tf TestFunction, err error) {
	var ok bool
	if tf, ok = testFunctions[name]; !ok {
		err = fmt.Errorf("unknown field %q, have %v", name, TestFunctionNames())
		return
	}
	tf.Name = name
	return
}

func TestFunctionNames() (names []string) {
	for name := range testFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// Value is the scalar field as a single component Func
func (tf TestFunction) Value() Func {
	return func(x, y float64) []float64 { return []float64{tf.F(x, y)} }
}

// Gradient is the exact gradient as a two component Func
func (tf TestFunction) Gradient() Func {
	return func(x, y float64) []float64 {
		fx, fy := tf.Grad(x, y)
		return []float64{fx, fy}
	}
}
