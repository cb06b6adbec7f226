package recovery

import "errors"

// Every failure returned by this package wraps exactly one of these; match with errors.Is.
var (
	// ErrConfiguration: absent mesh or evaluator, invalid parametric direction,
	// rational basis where only polynomial bases are supported.
	ErrConfiguration = errors.New("recovery: invalid configuration")

	// ErrQuadratureUnavailable: the quadrature table has no rule for the requested order.
	ErrQuadratureUnavailable = errors.New("recovery: quadrature rule unavailable")

	// ErrTopology: negative parametric element measure or unusable element geometry.
	ErrTopology = errors.New("recovery: mesh topology error")

	// ErrSizeMismatch: a sample array does not match the number of basis functions.
	ErrSizeMismatch = errors.New("recovery: array size mismatch")

	// ErrLinearSystem: a global or local system is singular or could not be solved.
	ErrLinearSystem = errors.New("recovery: linear system failure")
)
