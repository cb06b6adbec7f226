package InputParameters

import (
	"fmt"
	"math"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/splinerecovery/fields"
	"github.com/notargets/splinerecovery/spline"
)

type Method string

const (
	MethodSCR         Method = "scr"
	MethodL2          Method = "l2"
	MethodDiscreteL2  Method = "l2-discrete"
	MethodInterpolate Method = "interpolate"
)

var methods = []Method{MethodSCR, MethodL2, MethodDiscreteL2, MethodInterpolate}

// Parameters obtained from the YAML case file. ghodss/yaml goes through
// encoding/json, so the json tags name the YAML keys.
type RecoveryParameters struct {
	Title           string       `json:"Title"`
	Order           [2]int       `json:"Order"`
	Elements        [2]int       `json:"Elements"`        // uniform elements per direction, unused when Knots is set
	Knots           [2][]float64 `json:"Knots,omitempty"` // explicit open knot vectors
	Domain          [4]float64   `json:"Domain"`          // x0, x1, y0, y1
	Field           string       `json:"Field"`
	Method          Method       `json:"Method"`
	NGauss          int          `json:"NGauss"`
	DerivativeOrder int          `json:"DerivativeOrder"` // 0 recovers the field, 1 its gradient
	ParallelDegree  int          `json:"ParallelDegree"`
}

func (rp *RecoveryParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, rp); err != nil {
		return
	}
	rp.Method = Method(strings.ToLower(string(rp.Method)))
	if rp.Method == "" {
		rp.Method = MethodSCR
	}
	if rp.Domain == [4]float64{} {
		rp.Domain = [4]float64{0, 1, 0, 1}
	}
	return rp.Validate()
}

func (rp *RecoveryParameters) Validate() error {
	for dir := 0; dir < 2; dir++ {
		if rp.Order[dir] < 2 {
			return fmt.Errorf("order in direction %d must be at least 2, have %d", dir, rp.Order[dir])
		}
		if rp.Knots[dir] == nil && rp.Elements[dir] < 1 {
			return fmt.Errorf("need knots or a positive element count in direction %d", dir)
		}
		if rp.DerivativeOrder >= rp.Order[dir] {
			return fmt.Errorf("derivative order %d leaves no patch polynomial for order %d",
				rp.DerivativeOrder, rp.Order[dir])
		}
	}
	if rp.Domain[1] <= rp.Domain[0] || rp.Domain[3] <= rp.Domain[2] {
		return fmt.Errorf("domain %v is empty", rp.Domain)
	}
	if _, err := fields.LookupTestFunction(rp.Field); err != nil {
		return err
	}
	var known bool
	for _, m := range methods {
		known = known || m == rp.Method
	}
	if !known {
		return fmt.Errorf("unknown method %q, have %v", rp.Method, methods)
	}
	if rp.DerivativeOrder < 0 || rp.DerivativeOrder > 1 {
		return fmt.Errorf("derivative order must be 0 or 1, have %d", rp.DerivativeOrder)
	}
	if rp.NGauss < 0 || rp.ParallelDegree < 0 {
		return fmt.Errorf("NGauss and ParallelDegree must not be negative")
	}
	return nil
}

// Mesh builds the rectangle geometry, with the element counts multiplied by 2^level
func (rp *RecoveryParameters) Mesh(level int) (s *spline.Surface, err error) {
	var knots [2][]float64
	for dir := 0; dir < 2; dir++ {
		switch {
		case rp.Knots[dir] != nil && level != 0:
			return nil, fmt.Errorf("refinement needs element counts, direction %d has explicit knots", dir)
		case rp.Knots[dir] != nil:
			knots[dir] = rp.Knots[dir]
		default:
			knots[dir] = spline.UniformKnots(rp.Order[dir], rp.Elements[dir]<<level, 0, 1)
		}
	}
	return spline.NewRectangle(rp.Order, knots, rp.Domain[0], rp.Domain[1], rp.Domain[2], rp.Domain[3])
}

// CharacteristicSize is the largest element edge of the geometry
func (rp *RecoveryParameters) CharacteristicSize(s *spline.Surface) (h float64) {
	var (
		ua, ub = s.Knots[0].Domain()
		va, vb = s.Knots[1].Domain()
	)
	for e := 0; e < s.NoElements(); e++ {
		el := s.Element(e)
		hx := (el.UMax - el.UMin) / (ub - ua) * (rp.Domain[1] - rp.Domain[0])
		hy := (el.VMax - el.VMin) / (vb - va) * (rp.Domain[3] - rp.Domain[2])
		h = math.Max(h, math.Max(hx, hy))
	}
	return
}

func (rp *RecoveryParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("%v\t\t\t= Order\n", rp.Order)
	if rp.Knots[0] != nil || rp.Knots[1] != nil {
		fmt.Printf("%v\t= Knots\n", rp.Knots)
	} else {
		fmt.Printf("%v\t\t\t= Elements\n", rp.Elements)
	}
	fmt.Printf("%v\t\t= Domain\n", rp.Domain)
	fmt.Printf("[%s]\t\t= Field\n", rp.Field)
	fmt.Printf("[%s]\t\t\t= Method\n", rp.Method)
	fmt.Printf("[%d]\t\t\t\t= Derivative Order\n", rp.DerivativeOrder)
	if rp.NGauss != 0 {
		fmt.Printf("[%d]\t\t\t\t= NGauss\n", rp.NGauss)
	}
}
