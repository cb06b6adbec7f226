package recovery

import (
	"fmt"
	"math"

	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func pointwiseError(result, ref types.FieldEvaluator, u, v []float64) (diff *mat.Dense, err error) {
	if result == nil || ref == nil {
		err = fmt.Errorf("no field evaluator: %w", ErrConfiguration)
		return
	}
	if len(u) == 0 || len(u) != len(v) {
		err = fmt.Errorf("%d u and %d v parameters: %w", len(u), len(v), ErrSizeMismatch)
		return
	}
	if result.NoFields() != ref.NoFields() {
		err = fmt.Errorf("comparing %d with %d fields: %w", result.NoFields(), ref.NoFields(), ErrSizeMismatch)
		return
	}
	var fr, fe *mat.Dense
	if fr, err = evaluate(result, u, v); err != nil {
		return
	}
	if fe, err = evaluate(ref, u, v); err != nil {
		return
	}
	diff = mat.NewDense(ref.NoFields(), len(u), nil)
	diff.Sub(fr, fe)
	return
}

// MaxError returns the largest pointwise difference per component of two fields
func MaxError(result, ref types.FieldEvaluator, u, v []float64) (eMax []float64, err error) {
	var diff *mat.Dense
	if diff, err = pointwiseError(result, ref, u, v); err != nil {
		return
	}
	nc, _ := diff.Dims()
	eMax = make([]float64, nc)
	for c := range eMax {
		row := diff.RawRowView(c)
		eMax[c] = math.Max(math.Abs(floats.Max(row)), math.Abs(floats.Min(row)))
	}
	return
}

// RMSError returns the root mean square pointwise difference per component of two fields
func RMSError(result, ref types.FieldEvaluator, u, v []float64) (eRMS []float64, err error) {
	var diff *mat.Dense
	if diff, err = pointwiseError(result, ref, u, v); err != nil {
		return
	}
	nc, np := diff.Dims()
	eRMS = make([]float64, nc)
	for c := range eRMS {
		eRMS[c] = floats.Norm(diff.RawRowView(c), 2) / math.Sqrt(float64(np))
	}
	return
}
