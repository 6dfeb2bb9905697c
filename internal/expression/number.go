package expression

import (
	"math"
	"strconv"
)

// Number is the value of a literal or of an evaluated expression. It holds an
// exact int64 until a decimal literal or an inexact division turns it into a
// float64.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

func Int(v int64) Number {
	return Number{i: v}
}

func Float(v float64) Number {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return Number{f: v, isFloat: true}
}

// Int64 returns the integer value and whether n is integral.
func (n Number) Int64() (int64, bool) {
	if n.isFloat {
		return 0, false
	}
	return n.i, true
}

func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n Number) IsZero() bool {
	if n.isFloat {
		return n.f == 0
	}
	return n.i == 0
}

func (n Number) Equal(o Number) bool {
	return n.isFloat == o.isFloat && n.i == o.i && n.f == o.f
}

func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.f, 'f', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n Number) neg() (Number, bool) {
	if n.isFloat {
		return Float(-n.f), true
	}
	if n.i == math.MinInt64 {
		return Number{}, false
	}
	return Int(-n.i), true
}
