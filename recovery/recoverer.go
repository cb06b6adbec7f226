package recovery

import (
	"fmt"
	"runtime"

	"github.com/go-logr/logr"
	"github.com/notargets/splinerecovery/quadrature"
	"github.com/notargets/splinerecovery/types"
	"gonum.org/v1/gonum/mat"
)

/*
Recoverer turns field samples at integration points into basis represented fields on
a read-only mesh. It holds configuration only; every call owns its sample matrices
and linear systems, so one Recoverer may serve concurrent calls.
*/
type Recoverer struct {
	Mesh           types.Mesh
	Quadrature     types.QuadratureTable
	NGauss         int // points per direction for continuous L2 projection, 0 for max(order)
	ParallelDegree int
	log            logr.Logger
}

type Option func(r *Recoverer)

func WithQuadrature(q types.QuadratureTable) Option {
	return func(r *Recoverer) { r.Quadrature = q }
}

func WithNGauss(n int) Option {
	return func(r *Recoverer) { r.NGauss = n }
}

func WithParallelDegree(np int) Option {
	return func(r *Recoverer) { r.ParallelDegree = np }
}

func WithLogger(log logr.Logger) Option {
	return func(r *Recoverer) { r.log = log }
}

func NewRecoverer(m types.Mesh, opts ...Option) (r *Recoverer) {
	r = &Recoverer{
		Mesh:           m,
		Quadrature:     quadrature.NewCached(quadrature.NewGaussLegendre()),
		ParallelDegree: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log.GetSink() == nil {
		r.log = logr.Discard()
	}
	r.log = r.log.WithName("recovery")
	if r.ParallelDegree < 1 {
		r.ParallelDegree = 1
	}
	return
}

func (r *Recoverer) nGauss() int {
	if r.NGauss > 0 {
		return r.NGauss
	}
	return max(r.Mesh.Order(0), r.Mesh.Order(1))
}

func (r *Recoverer) rule(n int) (x, w []float64, err error) {
	var ok bool
	if r.Quadrature != nil {
		x, w, ok = r.Quadrature.Rule(n)
	}
	if !ok {
		err = fmt.Errorf("no %d point rule: %w", n, ErrQuadratureUnavailable)
	}
	return
}

func (r *Recoverer) check(ev types.FieldEvaluator) error {
	if r.Mesh == nil {
		return fmt.Errorf("no mesh: %w", ErrConfiguration)
	}
	if ev == nil {
		return fmt.Errorf("no field evaluator: %w", ErrConfiguration)
	}
	if ev.NoFields() < 1 {
		return fmt.Errorf("evaluator has %d fields: %w", ev.NoFields(), ErrConfiguration)
	}
	if r.Mesh.NoBasisFunctions() < 1 || r.Mesh.NoElements() < 1 {
		return fmt.Errorf("mesh has %d basis functions on %d elements: %w",
			r.Mesh.NoBasisFunctions(), r.Mesh.NoElements(), ErrConfiguration)
	}
	return nil
}

// evaluate samples the field and checks the sample matrix shape
func evaluate(ev types.FieldEvaluator, u, v []float64) (sField *mat.Dense, err error) {
	if sField, err = ev.Evaluate(u, v); err != nil {
		err = fmt.Errorf("field evaluation: %w", err)
		return
	}
	if sField == nil {
		err = fmt.Errorf("field evaluation returned no samples: %w", ErrConfiguration)
		return
	}
	if nr, nc := sField.Dims(); nr != ev.NoFields() || nc != len(u) {
		err = fmt.Errorf("field evaluation returned %dx%d samples, want %dx%d: %w",
			nr, nc, ev.NoFields(), len(u), ErrConfiguration)
		sField = nil
	}
	return
}
