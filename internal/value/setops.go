package value

import (
	verrors "ysetl/internal/errors"
)

// SetOp identifies the non-arithmetic binary operators: set membership and
// combination, tuple/set construction helpers, and the null-coalescing
// operator. These sit alongside the arithmetic/relational kernel in the
// bytecode's 200-223 binary-op opcode range (spec.md §4.4) but are not part
// of the arithmetic kernel's dispatch matrix (spec.md §4.2), so they live in
// their own entry point.
type SetOp int

const (
	OpNullCoal SetOp = iota
	OpTupleStart
	OpInter
	OpMod
	OpWith
	OpLess
	OpUnion
	OpIn
	OpNotin
	OpSubset
)

// Combine implements the set/collection operators. left and right are
// borrowed; the result is always a fresh Value.
func Combine(op SetOp, left, right Value) (Value, error) {
	switch op {
	case OpNullCoal:
		if left.Tag == Null {
			return right, nil
		}
		return left, nil

	case OpTupleStart:
		if right.Tag != Tuple {
			return Value{}, verrors.New(verrors.TypeErrorKind, "tuple-prepend: right operand must be a Tuple, got %s", right.Tag)
		}
		elems := make([]Value, 0, len(right.Elems)+1)
		elems = append(elems, left)
		elems = append(elems, right.Elems...)
		return NewTuple(elems), nil

	case OpMod:
		if left.Tag != Integer || right.Tag != Integer {
			return Value{}, verrors.New(verrors.TypeErrorKind, "mod: both operands must be Integer")
		}
		if right.Int == 0 {
			return Value{}, verrors.New(verrors.DivByZero, "modulo by zero")
		}
		return NewInt(left.Int % right.Int), nil

	case OpWith:
		if left.Tag != Set && left.Tag != Tuple {
			return Value{}, verrors.New(verrors.TypeErrorKind, "with: left operand must be Set or Tuple, got %s", left.Tag)
		}
		if left.Tag == Set {
			return NewSet(append(append([]Value{}, left.Elems...), right)), nil
		}
		return NewTuple(append(append([]Value{}, left.Elems...), right)), nil

	case OpLess:
		if left.Tag != Set && left.Tag != Tuple {
			return Value{}, verrors.New(verrors.TypeErrorKind, "less: left operand must be Set or Tuple, got %s", left.Tag)
		}
		out := make([]Value, 0, len(left.Elems))
		removed := false
		for _, e := range left.Elems {
			if !removed && Equals(e, right) {
				removed = true
				continue
			}
			out = append(out, e)
		}
		if left.Tag == Set {
			return NewSet(out), nil
		}
		return NewTuple(out), nil

	case OpUnion:
		if left.Tag != Set || right.Tag != Set {
			return Value{}, verrors.New(verrors.TypeErrorKind, "union: both operands must be Set")
		}
		return NewSet(append(append([]Value{}, left.Elems...), right.Elems...)), nil

	case OpInter:
		if left.Tag != Set || right.Tag != Set {
			return Value{}, verrors.New(verrors.TypeErrorKind, "inter: both operands must be Set")
		}
		out := make([]Value, 0)
		for _, e := range left.Elems {
			if containsElem(right.Elems, e) {
				out = append(out, e)
			}
		}
		return NewSet(out), nil

	case OpIn:
		if right.Tag != Set && right.Tag != Tuple {
			return Value{}, verrors.New(verrors.TypeErrorKind, "in: right operand must be Set or Tuple, got %s", right.Tag)
		}
		return NewBool(containsElem(right.Elems, left)), nil

	case OpNotin:
		if right.Tag != Set && right.Tag != Tuple {
			return Value{}, verrors.New(verrors.TypeErrorKind, "notin: right operand must be Set or Tuple, got %s", right.Tag)
		}
		return NewBool(!containsElem(right.Elems, left)), nil

	case OpSubset:
		if left.Tag != Set || right.Tag != Set {
			return Value{}, verrors.New(verrors.TypeErrorKind, "subset: both operands must be Set")
		}
		for _, e := range left.Elems {
			if !containsElem(right.Elems, e) {
				return NewFalse(), nil
			}
		}
		return NewTrue(), nil

	default:
		return Value{}, verrors.New(verrors.TypeErrorKind, "unsupported set operator")
	}
}

func containsElem(elems []Value, v Value) bool {
	for _, e := range elems {
		if Equals(e, v) {
			return true
		}
	}
	return false
}
