package vm

import (
	"ysetl/internal/bytecode"
	verrors "ysetl/internal/errors"
	"ysetl/internal/value"
)

// arithOps routes the arithmetic/relational binary opcodes to the
// dispatch-matrix kernel in value.Binary (spec.md §4.2). Eq/Neq are handled
// directly in vm.go, not here, per spec.md's explicit carve-out; And/Or/
// Impl/Iff never reach the VM at all — the compiler lowers them to
// Ternary-shaped jumps (plus a plain Eq for Iff), so their opcodes are
// reserved in the bytecode table but never emitted.
var arithOps = map[bytecode.Op]value.BinOp{
	bytecode.Add:      value.OpAdd,
	bytecode.Subtract: value.OpSubtract,
	bytecode.Mult:     value.OpMult,
	bytecode.Div:      value.OpDiv,
	bytecode.IntDiv:   value.OpIntDiv,
	bytecode.Exp:      value.OpExp,
	bytecode.Lt:       value.OpLt,
	bytecode.Lteq:     value.OpLteq,
}

// setOps routes the collection/set binary opcodes to value.Combine.
var setOps = map[bytecode.Op]value.SetOp{
	bytecode.NullCoal:   value.OpNullCoal,
	bytecode.TupleStart: value.OpTupleStart,
	bytecode.Inter:      value.OpInter,
	bytecode.Mod:        value.OpMod,
	bytecode.With:       value.OpWith,
	bytecode.Less:       value.OpLess,
	bytecode.Union:      value.OpUnion,
	bytecode.In:         value.OpIn,
	bytecode.Notin:      value.OpNotin,
	bytecode.Subset:     value.OpSubset,
}

// execBinary pops right then left (spec.md §4.4: "pop right, pop left") and
// dispatches to whichever of the two pure kernels owns this opcode.
func (vm *VM) execBinary(op bytecode.Op) error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}

	if aop, ok := arithOps[op]; ok {
		result, err := value.Binary(aop, left, right)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil
	}
	if sop, ok := setOps[op]; ok {
		result, err := value.Combine(sop, left, right)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil
	}
	return verrors.New(verrors.Unsupported, "opcode %d is not a recognized binary operator", op)
}
