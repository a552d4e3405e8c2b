package value

import (
	"math"

	verrors "ysetl/internal/errors"
)

// BinOp identifies the arithmetic/relational operators the kernel handles.
// Eq/Neq are deliberately absent: the VM handles those with Equals directly
// (spec.md §4.2), never routing them through Binary.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSubtract
	OpMult
	OpDiv
	OpIntDiv
	OpExp
	OpLt
	OpLteq
)

// Binary implements the dispatch matrix from spec.md §4.2. Integer overflow
// wraps (see SPEC_FULL.md §9): arithmetic on the Integer payload uses Go's
// native int64 operators, which wrap on overflow rather than panicking.
func Binary(op BinOp, left, right Value) (Value, error) {
	if left.Tag == Integer && right.Tag == Integer {
		return intBinary(op, left.Int, right.Int)
	}
	if (left.Tag == Integer || left.Tag == Float) && (right.Tag == Integer || right.Tag == Float) {
		if op == OpIntDiv {
			return Value{}, verrors.New(verrors.TypeErrorKind, "div: both operands must be Integer")
		}
		return floatBinary(op, toFloat(left), toFloat(right))
	}
	return Value{}, verrors.New(verrors.TypeErrorKind, "binary op undefined for %s and %s", left.Tag, right.Tag)
}

func toFloat(v Value) float64 {
	if v.Tag == Integer {
		return float64(v.Int)
	}
	return v.Flt
}

func intBinary(op BinOp, l, r int64) (Value, error) {
	switch op {
	case OpAdd:
		return NewInt(l + r), nil
	case OpSubtract:
		return NewInt(l - r), nil
	case OpMult:
		return NewInt(l * r), nil
	case OpDiv:
		if r == 0 {
			return Value{}, verrors.New(verrors.DivByZero, "division by zero")
		}
		return NewFloat(float64(l) / float64(r)), nil
	case OpIntDiv:
		if r == 0 {
			return Value{}, verrors.New(verrors.DivByZero, "division by zero")
		}
		return NewInt(l / r), nil
	case OpExp:
		return NewInt(intPow(l, r)), nil
	case OpLt:
		return NewBool(l < r), nil
	case OpLteq:
		return NewBool(l <= r), nil
	default:
		return Value{}, verrors.New(verrors.TypeErrorKind, "unsupported integer operator")
	}
}

// intPow computes l**r for r >= 0 (per spec.md §4.2, the right operand is
// assumed non-negative) using exponentiation by squaring; overflow wraps,
// consistent with the rest of Integer arithmetic.
func intPow(l, r int64) int64 {
	if r <= 0 {
		return 1
	}
	var result int64 = 1
	base := l
	for r > 0 {
		if r&1 == 1 {
			result *= base
		}
		base *= base
		r >>= 1
	}
	return result
}

func floatBinary(op BinOp, l, r float64) (Value, error) {
	switch op {
	case OpAdd:
		return NewFloat(l + r), nil
	case OpSubtract:
		return NewFloat(l - r), nil
	case OpMult:
		return NewFloat(l * r), nil
	case OpDiv:
		if r == 0 {
			return Value{}, verrors.New(verrors.DivByZero, "division by zero")
		}
		return NewFloat(l / r), nil
	case OpExp:
		return NewFloat(math.Pow(l, r)), nil
	case OpLt:
		return NewBool(l < r), nil
	case OpLteq:
		return NewBool(l <= r), nil
	default:
		return Value{}, verrors.New(verrors.TypeErrorKind, "unsupported float operator")
	}
}
