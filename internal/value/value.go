// Package value defines the tagged runtime value universe shared by the
// compiler's constant pool and the virtual machine's operand stack, plus the
// structural operations (truthiness, equality, negation, indexing) that do
// not depend on bytecode. It mirrors the teacher's vm.Value design (a single
// exported type covering every runtime object) generalized to the closed tag
// set spec.md §3 requires, rather than the teacher's open interface{}.
package value

import (
	"fmt"
	"sort"
	"strings"

	verrors "ysetl/internal/errors"
)

// Tag distinguishes the variant a Value holds.
type Tag int

const (
	Null Tag = iota
	True
	False
	Integer
	Float
	String
	Tuple
	Set
	Func
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "Null"
	case True:
		return "True"
	case False:
		return "False"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Tuple:
		return "Tuple"
	case Set:
		return "Set"
	case Func:
		return "Function"
	default:
		return "Unknown"
	}
}

// Value is the tagged variant every runtime object belongs to. Only the
// field matching Tag is meaningful; Go's value-semantics for structs give us
// the "cheap reference bump" spec.md §3 asks for for scalars, while Tuple,
// Set and Function carry a slice/pointer that is shared, not deep-copied, on
// duplication — matching the "shared ownership" note in the same section.
type Value struct {
	Tag   Tag
	Int   int64
	Flt   float64
	Str   string
	Elems []Value   // Tuple, Set
	Fn    *Function // Func
}

// Function is the runtime representation of a closure: a Function constant
// (code, arities, local slot count) plus the values captured at
// closure-construction time. The constant itself never carries captured
// values (see ToFn in the bytecode package); this struct is what ToFn builds.
// Code, arities and LocalSlotCount come from the program's single shared
// constant pool and instruction stream — there is no per-function constant
// pool or call stack frame captured here.
type Function struct {
	Code           []byte
	LocalSlotCount int
	RequiredArity  int
	OptionalArity  int
	Captured       []Value
	Name           string // diagnostic only, never read by the VM
}

func NewNull() Value           { return Value{Tag: Null} }
func NewTrue() Value           { return Value{Tag: True} }
func NewFalse() Value          { return Value{Tag: False} }
func NewBool(b bool) Value {
	if b {
		return NewTrue()
	}
	return NewFalse()
}
func NewInt(n int64) Value     { return Value{Tag: Integer, Int: n} }
func NewFloat(f float64) Value { return Value{Tag: Float, Flt: f} }
func NewString(s string) Value { return Value{Tag: String, Str: s} }
func NewTuple(elems []Value) Value {
	return Value{Tag: Tuple, Elems: elems}
}

// NewSet builds a Set value, deduplicating elements by structural equality
// (see SPEC_FULL.md §9: a Set is a true mathematical set, not a bag).
func NewSet(elems []Value) Value {
	deduped := make([]Value, 0, len(elems))
	for _, e := range elems {
		found := false
		for _, d := range deduped {
			if Equals(e, d) {
				found = true
				break
			}
		}
		if !found {
			deduped = append(deduped, e)
		}
	}
	return Value{Tag: Set, Elems: deduped}
}

func NewFunction(fn *Function) Value { return Value{Tag: Func, Fn: fn} }

// Truthy implements spec.md §3's truthiness table.
func Truthy(v Value) bool {
	switch v.Tag {
	case True:
		return true
	case False, Null:
		return false
	case Integer:
		return v.Int != 0
	case Float:
		return v.Flt != 0
	case String:
		return len(v.Str) > 0
	case Tuple, Set:
		return len(v.Elems) > 0
	case Func:
		return true
	default:
		return false
	}
}

// Not implements the `not` unary operator. Defined only on True/False.
func Not(v Value) (Value, error) {
	switch v.Tag {
	case True:
		return NewFalse(), nil
	case False:
		return NewTrue(), nil
	default:
		return Value{}, verrors.New(verrors.TypeErrorKind, "not: operand must be a boolean, got %s", v.Tag)
	}
}

// Negate implements unary negation over Integer and Float.
func Negate(v Value) (Value, error) {
	switch v.Tag {
	case Integer:
		return NewInt(-v.Int), nil
	case Float:
		return NewFloat(-v.Flt), nil
	default:
		return Value{}, verrors.New(verrors.TypeErrorKind, "negate: operand must be Integer or Float, got %s", v.Tag)
	}
}

// Equals is structural, deep equality over the value universe.
func Equals(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Null, True, False:
		return true
	case Integer:
		return a.Int == b.Int
	case Float:
		return a.Flt == b.Flt
	case String:
		return a.Str == b.Str
	case Tuple:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equals(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case Set:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for _, ae := range a.Elems {
			found := false
			for _, be := range b.Elems {
				if Equals(ae, be) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case Func:
		return a.Fn == b.Fn
	default:
		return false
	}
}

// Index implements the `index` operation: String/Tuple with an Integer key.
func Index(container, key Value) (Value, error) {
	switch container.Tag {
	case String:
		if key.Tag != Integer {
			return Value{}, verrors.New(verrors.TypeErrorKind, "index: string key must be Integer, got %s", key.Tag)
		}
		runes := []rune(container.Str)
		if key.Int < 0 || key.Int >= int64(len(runes)) {
			return Value{}, verrors.New(verrors.IndexErrorKind, "index: %d out of range for string of length %d", key.Int, len(runes))
		}
		return NewString(string(runes[key.Int])), nil
	case Tuple:
		if key.Tag != Integer {
			return Value{}, verrors.New(verrors.TypeErrorKind, "index: tuple key must be Integer, got %s", key.Tag)
		}
		if key.Int < 0 || key.Int >= int64(len(container.Elems)) {
			return Value{}, verrors.New(verrors.IndexErrorKind, "index: %d out of range for tuple of length %d", key.Int, len(container.Elems))
		}
		return container.Elems[key.Int], nil
	default:
		return Value{}, verrors.New(verrors.TypeErrorKind, "index: cannot index into %s", container.Tag)
	}
}

// String renders a Value for disassembly/debugging output, not for the
// language's own string-conversion semantics.
func (v Value) String() string {
	switch v.Tag {
	case Null:
		return "null"
	case True:
		return "true"
	case False:
		return "false"
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Float:
		return fmt.Sprintf("%g", v.Flt)
	case String:
		return fmt.Sprintf("%q", v.Str)
	case Tuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Set:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ", ") + "}"
	case Func:
		return fmt.Sprintf("<fn/%d+%d>", v.Fn.RequiredArity, v.Fn.OptionalArity)
	default:
		return "<invalid>"
	}
}
