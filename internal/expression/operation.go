package expression

import (
	"math"

	"github.com/karupanerura/lrcalc/internal/types"
)

type binaryOperation struct {
	operator Operator
	pos      int
}

func (s binaryOperation) apply(lhs, rhs Number) (Number, error) {
	if s.operator == Divide && rhs.IsZero() {
		return Number{}, s.withOperands(types.NewError(types.DivisionByZeroTag, s.pos, "%s / %s", lhs, rhs), lhs, rhs)
	}

	if lhs.isFloat || rhs.isFloat {
		return s.applyFloat(lhs, rhs)
	}

	a, b := lhs.i, rhs.i
	switch s.operator {
	case Add:
		r := a + b
		if (a > 0 && b > 0 && r < 0) || (a < 0 && b < 0 && r >= 0) {
			return Number{}, s.overflowError(lhs, rhs)
		}
		return Int(r), nil
	case Subtract:
		r := a - b
		if (b < 0 && r < a) || (b > 0 && r > a) {
			return Number{}, s.overflowError(lhs, rhs)
		}
		return Int(r), nil
	case Multiply:
		if a == 0 || b == 0 {
			return Int(0), nil
		}
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return Number{}, s.overflowError(lhs, rhs)
		}
		r := a * b
		if r/b != a {
			return Number{}, s.overflowError(lhs, rhs)
		}
		return Int(r), nil
	case Divide:
		if a == math.MinInt64 && b == -1 {
			return Number{}, s.overflowError(lhs, rhs)
		}
		if a%b == 0 {
			return Int(a / b), nil
		}
		return s.applyFloat(lhs, rhs)
	default:
		panic("unknown operator: " + s.operator.String())
	}
}

func (s binaryOperation) applyFloat(lhs, rhs Number) (Number, error) {
	a, b := lhs.Float64(), rhs.Float64()

	var r float64
	switch s.operator {
	case Add:
		r = a + b
	case Subtract:
		r = a - b
	case Multiply:
		r = a * b
	case Divide:
		r = a / b
	default:
		panic("unknown operator: " + s.operator.String())
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return Number{}, s.overflowError(lhs, rhs)
	}
	return Float(r), nil
}

func (s binaryOperation) overflowError(lhs, rhs Number) error {
	err := types.NewError(types.OverflowTag, s.pos, "%s %s %s exceeds the representable range", lhs, s.operator, rhs)
	return s.withOperands(err, lhs, rhs)
}

// withOperands records the failed step in err.Extra so that it shows up in
// the exception JSON.
func (s binaryOperation) withOperands(err *types.Error, lhs, rhs Number) *types.Error {
	err.Extra = map[string]any{
		"operator": s.operator.String(),
		"lhs":      lhs,
		"rhs":      rhs,
	}
	return err
}
