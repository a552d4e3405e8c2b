package vm

import (
	verrors "ysetl/internal/errors"
	"ysetl/internal/value"
)

// call implements spec.md §4.7's Call protocol exactly: locate the callee
// below its n arguments, validate arity, pad missing optionals with Null,
// push captured values and local-slot placeholders, then push a new Frame
// whose base pointer is the position of the first parameter. Returns true
// if a new frame was pushed (the caller must stop stepping the old frame
// and let the dispatch loop re-read vm.frames).
func (vm *VM) call(n int) (bool, error) {
	calleePos := len(vm.stack) - n - 1
	if calleePos < 0 {
		return false, verrors.New(verrors.EmptyStack, "Call %d underflows the operand stack", n)
	}
	callee := vm.stack[calleePos]
	if callee.Tag != value.Func {
		return false, verrors.New(verrors.TypeErrorKind, "cannot call a value of type %s", callee.Tag)
	}
	fn := callee.Fn
	r, o, l := fn.RequiredArity, fn.OptionalArity, len(fn.Captured)

	if n < r {
		return false, verrors.New(verrors.ArityError, "too few arguments: got %d, need at least %d", n, r)
	}
	if n > r+o {
		return false, verrors.New(verrors.ArityError, "too many arguments: got %d, accepts at most %d", n, r+o)
	}

	for i := 0; i < (r+o)-n; i++ {
		vm.push(value.NewNull())
	}
	for _, cv := range fn.Captured {
		vm.push(cv)
	}
	for i := 0; i < fn.LocalSlotCount; i++ {
		vm.push(value.NewNull())
	}

	curFrame := &vm.frames[len(vm.frames)-1]
	curFrame.ReturnCursor = curFrame.IP + 3 // Call's own width: 1 opcode byte + u16 operand

	if len(vm.frames) >= maxCallDepth {
		return false, verrors.New(verrors.StackOverflow, "call depth exceeds %d", maxCallDepth)
	}

	bp := len(vm.stack) - (r + o + l + fn.LocalSlotCount)
	vm.frames = append(vm.frames, Frame{
		Code:         fn.Code,
		IP:           0,
		ReturnCursor: 0,
		BasePointer:  bp,
	})
	vm.Stats.Calls++
	return true, nil
}

// doReturn implements spec.md §4.7's Return protocol: pop the top frame,
// pop the return value, truncate the stack to the frame's base pointer,
// drop the callee Function that sat below its arguments, then push the
// return value back and resume the caller at its recorded return_cursor.
func (vm *VM) doReturn() error {
	top := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]

	retval, err := vm.pop()
	if err != nil {
		return err
	}
	if top.BasePointer > len(vm.stack) {
		return verrors.New(verrors.EmptyStack, "return: base pointer %d beyond stack depth %d", top.BasePointer, len(vm.stack))
	}
	vm.stack = vm.stack[:top.BasePointer]
	if _, err := vm.pop(); err != nil { // the callee Function value itself
		return err
	}
	vm.push(retval)

	if len(vm.frames) == 0 {
		return verrors.New(verrors.EmptyStack, "return with no caller frame")
	}
	caller := &vm.frames[len(vm.frames)-1]
	caller.IP = caller.ReturnCursor
	return nil
}

// buildClosure implements ToFn k: pop the Function constant off the top of
// the stack, pop k captured values below it (in the order they were
// pushed), and push a new Function value combining the two. The constant
// itself is never mutated — a fresh *value.Function is allocated so that
// repeated closure construction over the same constant (e.g. a function
// literal inside a loop body, once loops exist) yields independent closures.
func (vm *VM) buildClosure(k int) error {
	fnVal, err := vm.pop()
	if err != nil {
		return err
	}
	if fnVal.Tag != value.Func {
		return verrors.New(verrors.TypeErrorKind, "ToFn: top of stack is not a Function constant")
	}
	captured, err := vm.popN(k)
	if err != nil {
		return err
	}
	closure := &value.Function{
		Code:           fnVal.Fn.Code,
		LocalSlotCount: fnVal.Fn.LocalSlotCount,
		RequiredArity:  fnVal.Fn.RequiredArity,
		OptionalArity:  fnVal.Fn.OptionalArity,
		Captured:       captured,
		Name:           fnVal.Fn.Name,
	}
	vm.push(value.NewFunction(closure))
	return nil
}

// buildRange implements the Range builder in spec.md §4.7: pop start, pop
// end, optionally pop step (parts==3), all required to be Integer, then
// enumerate inclusive from start toward end by step. A degenerate range
// (step == 0, or a direction mismatch between step and the start/end
// ordering) yields an empty collection rather than failing.
func (vm *VM) buildRange(parts int) ([]value.Value, error) {
	start, err := vm.pop()
	if err != nil {
		return nil, err
	}
	end, err := vm.pop()
	if err != nil {
		return nil, err
	}
	step := value.NewInt(1)
	if parts == 3 {
		step, err = vm.pop()
		if err != nil {
			return nil, err
		}
	}
	if start.Tag != value.Integer || end.Tag != value.Integer || step.Tag != value.Integer {
		return nil, verrors.New(verrors.TypeErrorKind, "range bounds and step must be Integer")
	}
	s, e, st := start.Int, end.Int, step.Int

	if st == 0 || (st > 0 && s > e) || (st < 0 && s < e) {
		return []value.Value{}, nil
	}

	var elems []value.Value
	if st > 0 {
		for i := s; i <= e; i += st {
			elems = append(elems, value.NewInt(i))
		}
	} else {
		for i := s; i >= e; i += st {
			elems = append(elems, value.NewInt(i))
		}
	}
	if elems == nil {
		elems = []value.Value{}
	}
	return elems, nil
}
