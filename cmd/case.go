/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/notargets/splinerecovery/InputParameters"
	"github.com/notargets/splinerecovery/fields"
	"github.com/notargets/splinerecovery/recovery"
	"github.com/notargets/splinerecovery/spline"
	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/mat"
)

const exampleFile = `
########################################
Title: "Gradient recovery"
Order: [3, 3]
Elements: [8, 8]
Domain: [0, 2, 0, 1]
Field: sinusoid # constant, linear, bilinear, quadratic, sinusoid
Method: scr # scr, l2, l2-discrete, interpolate
DerivativeOrder: 1 # 0 recovers the field, 1 its gradient
########################################
`

func readCase(file string) (rp *InputParameters.RecoveryParameters, err error) {
	if len(file) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	var data []byte
	if data, err = os.ReadFile(file); err != nil {
		return
	}
	rp = &InputParameters.RecoveryParameters{}
	if err = rp.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return
}

// CaseResult is a recovered field with its error against the exact field
type CaseResult struct {
	Elements, BasisFunctions int
	H                        float64
	Recovered                types.Mesh
	MaxError, RMSError       []float64
}

/*
RunCase builds the geometry at the given refinement level, samples the test field (or
the gradient of its Greville interpolant for derivative order 1), recovers it with the
configured method and measures the error at a tensor grid of sample points.
*/
func RunCase(rp *InputParameters.RecoveryParameters, level, parallel int, log logr.Logger) (cr *CaseResult, err error) {
	var geom *spline.Surface
	if geom, err = rp.Mesh(level); err != nil {
		return
	}
	var tf fields.TestFunction
	if tf, err = fields.LookupTestFunction(rp.Field); err != nil {
		return
	}
	opts := []recovery.Option{recovery.WithLogger(log), recovery.WithParallelDegree(parallel)}
	if rp.NGauss > 0 {
		opts = append(opts, recovery.WithNGauss(rp.NGauss))
	}
	if rp.ParallelDegree > 0 {
		opts = append(opts, recovery.WithParallelDegree(rp.ParallelDegree))
	}
	r := recovery.NewRecoverer(geom, opts...)

	var ev, exact types.FieldEvaluator
	switch rp.DerivativeOrder {
	case 0:
		ev = fields.NewAnalytic(geom, 1, tf.Value())
		exact = ev
	case 1:
		var fd types.Mesh
		if fd, err = r.ProjectSolution(fields.NewAnalytic(geom, 1, tf.Value())); err != nil {
			return
		}
		if ev, err = fields.NewGradient(geom, fd); err != nil {
			return
		}
		exact = fields.NewAnalytic(geom, 2, tf.Gradient())
	}

	cr = &CaseResult{
		Elements:       geom.NoElements(),
		BasisFunctions: geom.NoBasisFunctions(),
		H:              rp.CharacteristicSize(geom),
	}
	if cr.Recovered, err = recoverField(r, rp.Method, ev); err != nil {
		return nil, err
	}
	var sp *fields.Spline
	if sp, err = fields.NewSpline(cr.Recovered); err != nil {
		return nil, err
	}
	u, v := samplePoints(geom, 4)
	if cr.MaxError, err = recovery.MaxError(sp, exact, u, v); err != nil {
		return nil, err
	}
	if cr.RMSError, err = recovery.RMSError(sp, exact, u, v); err != nil {
		return nil, err
	}
	return
}

func recoverField(r *recovery.Recoverer, method InputParameters.Method, ev types.FieldEvaluator) (types.Mesh, error) {
	switch method {
	case InputParameters.MethodSCR:
		return r.SCRecovery(ev)
	case InputParameters.MethodInterpolate:
		return r.ProjectSolution(ev)
	case InputParameters.MethodL2, InputParameters.MethodDiscreteL2:
		sField := mat.NewDense(1, 1, nil)
		if err := r.GlobalL2Projection(sField, ev, method == InputParameters.MethodL2); err != nil {
			return nil, err
		}
		nc, nb := sField.Dims()
		cp := make([]float64, nb*nc)
		for b := 0; b < nb; b++ {
			for c := 0; c < nc; c++ {
				cp[b*nc+c] = sField.At(c, b)
			}
		}
		return r.Mesh.Rebuild(nc, cp)
	}
	return nil, fmt.Errorf("unknown method %q", method)
}

// samplePoints returns n points per direction inside each element, flattened
func samplePoints(s *spline.Surface, n int) (u, v []float64) {
	var xg []float64
	for i := 0; i < n; i++ {
		xg = append(xg, -1+(2*float64(i)+1)/float64(n))
	}
	for e := 0; e < s.NoElements(); e++ {
		var prm [2][]float64
		prm[0] = recovery.GaussPointParameters(s, 0, e, xg)
		prm[1] = recovery.GaussPointParameters(s, 1, e, xg)
		out := recovery.ExpandTensorGrid(prm)
		u = append(u, out[0]...)
		v = append(v, out[1]...)
	}
	return
}
