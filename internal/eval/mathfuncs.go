package eval

import (
	"math"

	"github.com/rcornwell/acme65/internal/value"
)

// mathFn adapts a float64->float64 function to the builtins table's
// value.Value->value.Value shape, propagating Undefined and rejecting
// non-numeric operands.
func mathFn(f func(float64) float64) func(value.Value) (value.Value, error) {
	return func(v value.Value) (value.Value, error) {
		if v.IsUndefined() {
			return value.Und, nil
		}
		r, err := value.ToFloat(v)
		if err != nil {
			return value.Und, err
		}
		return value.Flt(f(r.F)), nil
	}
}

func mathSin(x float64) float64   { return math.Sin(x) }
func mathCos(x float64) float64   { return math.Cos(x) }
func mathTan(x float64) float64   { return math.Tan(x) }
func mathAsin(x float64) float64  { return math.Asin(x) }
func mathAcos(x float64) float64  { return math.Acos(x) }
func mathAtan(x float64) float64  { return math.Atan(x) }
