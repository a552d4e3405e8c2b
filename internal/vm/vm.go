// Package vm implements the dispatch loop spec.md §4.7 describes: an
// operand stack, a globals vector, a match stack, and a call-frame stack,
// driven by a single switch over the opcode at the current frame's cursor.
// The overall shape — a struct aggregating every piece of mutable
// interpreter state, with a Run method stepping a local cursor over the top
// frame's code — follows the teacher's EnhancedVM, stripped of everything
// entangled with Sentra's own standard library (no channels, no modules, no
// try/catch frames: this language has none of those at the core).
package vm

import (
	"ysetl/internal/bytecode"
	verrors "ysetl/internal/errors"
	"ysetl/internal/value"
)

const (
	initialStackCap = 2048
	maxCallDepth    = 2048
)

// Tracer receives a notification before each instruction executes. It is
// consulted only if non-nil (SPEC_FULL.md §4.10); a nil Tracer costs one
// branch per instruction and nothing else.
type Tracer interface {
	OnStep(frameDepth, ip int, op bytecode.Op)
}

// Stats accumulates coarse execution counters surfaced for diagnostics
// (SPEC_FULL.md §4.7); the VM never consults them itself.
type Stats struct {
	Instructions uint64
	Calls        uint64
	MaxDepth     int
}

// VM is the runtime state spec.md §4.7 calls out: operand stack, globals
// (unset-tracked), match stack, and call-frame stack. Program is the
// compiled unit currently being executed; it is read-only from the VM's
// perspective.
type VM struct {
	Program *bytecode.Program

	stack []value.Value

	globals    []value.Value
	globalSet  []bool

	matchStack []value.Value

	frames []Frame

	lastPop value.Value

	Tracer Tracer
	Stats  Stats
}

// New returns a VM ready to run prog. Global slots start entirely unset, per
// spec.md §4.7.
func New(prog *bytecode.Program) *VM {
	return &VM{
		Program:   prog,
		stack:     make([]value.Value, 0, initialStackCap),
		globals:   make([]value.Value, prog.GlobalSlotCount),
		globalSet: make([]bool, prog.GlobalSlotCount),
		lastPop:   value.NewNull(),
	}
}

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, verrors.New(verrors.EmptyStack, "pop from empty operand stack")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) top() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, verrors.New(verrors.EmptyStack, "peek of empty operand stack")
	}
	return vm.stack[len(vm.stack)-1], nil
}

func readU16(code []byte, ip int) uint16 {
	return uint16(code[ip])<<8 | uint16(code[ip+1])
}

// Run executes the VM's Program to completion (spec.md §4.7's dispatch
// loop) and returns the value of the most recently executed Pop, or Null if
// the program popped nothing. Every failure mode in internal/errors aborts
// execution immediately; there is no recovery at this layer.
func (vm *VM) Run() (value.Value, error) {
	vm.frames = []Frame{{Code: vm.Program.Instructions, IP: 0, ReturnCursor: 0, BasePointer: 0}}

	for {
		frame := &vm.frames[len(vm.frames)-1]
		if frame.IP >= len(frame.Code) {
			if len(vm.frames) == 1 {
				return vm.lastPop, nil
			}
			// A non-main frame running off the end of its code without an
			// explicit Return indicates a compiler bug, not a user error.
			return value.Value{}, verrors.New(verrors.EmptyStack, "frame ran past end of code without Return")
		}

		op := bytecode.Op(frame.Code[frame.IP])
		if vm.Tracer != nil {
			vm.Tracer.OnStep(len(vm.frames), frame.IP, op)
		}
		vm.Stats.Instructions++
		if d := len(vm.frames); d > vm.Stats.MaxDepth {
			vm.Stats.MaxDepth = d
		}

		if err := vm.step(frame, op); err != nil {
			return value.Value{}, err
		}
	}
}

// step executes one instruction, advancing frame.IP (or replacing the top
// frame, for Call/Return). frame points into vm.frames; callers must re-read
// vm.frames after a Call/Return since the slice backing array may move.
func (vm *VM) step(frame *Frame, op bytecode.Op) error {
	def, ok := bytecode.Definitions[op]
	if !ok {
		return verrors.New(verrors.Unsupported, "unknown opcode %d at ip=%d", op, frame.IP)
	}
	var operand uint16
	if def.OperandWidth == 2 {
		operand = readU16(frame.Code, frame.IP+1)
	}
	nextIP := frame.IP + 1 + def.OperandWidth

	switch op {
	case bytecode.Const:
		if int(operand) >= len(vm.Program.Constants) {
			return verrors.New(verrors.EmptyStack, "constant index %d out of range", operand)
		}
		vm.push(vm.Program.Constants[operand])
	case bytecode.OpNull:
		vm.push(value.NewNull())
	case bytecode.OpTrue:
		vm.push(value.NewTrue())
	case bytecode.OpFalse:
		vm.push(value.NewFalse())

	case bytecode.SetGVar:
		v, err := vm.top()
		if err != nil {
			return err
		}
		vm.globals[operand] = v
		vm.globalSet[operand] = true
	case bytecode.GetGVar:
		if !vm.globalSet[operand] {
			return verrors.New(verrors.UninitVar, "global slot %d read before assignment", operand)
		}
		vm.push(vm.globals[operand])

	case bytecode.SetLVar:
		v, err := vm.top()
		if err != nil {
			return err
		}
		vm.stack[frame.BasePointer+int(operand)] = v
	case bytecode.GetLVar:
		vm.push(vm.stack[frame.BasePointer+int(operand)])

	case bytecode.ToTuple:
		elems, err := vm.popN(int(operand))
		if err != nil {
			return err
		}
		vm.push(value.NewTuple(elems))
	case bytecode.ToSet:
		elems, err := vm.popN(int(operand))
		if err != nil {
			return err
		}
		vm.push(value.NewSet(elems))
	case bytecode.ToTupleRn:
		elems, err := vm.buildRange(int(operand))
		if err != nil {
			return err
		}
		vm.push(value.NewTuple(elems))
	case bytecode.ToSetRn:
		elems, err := vm.buildRange(int(operand))
		if err != nil {
			return err
		}
		vm.push(value.NewSet(elems))

	case bytecode.ToFn:
		if err := vm.buildClosure(int(operand)); err != nil {
			return err
		}

	case bytecode.Pop:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.lastPop = v

	case bytecode.PushMatch:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.matchStack = append(vm.matchStack, v)
	case bytecode.PopMatch:
		if len(vm.matchStack) == 0 {
			return verrors.New(verrors.EmptyStack, "pop from empty match stack")
		}
		vm.matchStack = vm.matchStack[:len(vm.matchStack)-1]

	case bytecode.Jump:
		nextIP = int(operand)
	case bytecode.JumpNotTrue:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if !value.Truthy(v) {
			nextIP = int(operand)
		}
	case bytecode.JumpNotMatch:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if len(vm.matchStack) == 0 {
			return verrors.New(verrors.EmptyStack, "JumpNotMatch with empty match stack")
		}
		top := vm.matchStack[len(vm.matchStack)-1]
		if !value.Equals(v, top) {
			nextIP = int(operand)
		}

	case bytecode.Index:
		key, err := vm.pop()
		if err != nil {
			return err
		}
		container, err := vm.pop()
		if err != nil {
			return err
		}
		result, err := value.Index(container, key)
		if err != nil {
			return err
		}
		vm.push(result)

	case bytecode.Call:
		called, err := vm.call(int(operand))
		if err != nil {
			return err
		}
		if called {
			// A new frame was pushed; the caller's loop will re-read
			// vm.frames and resume from the callee's ip=0.
			return nil
		}

	case bytecode.Return:
		if err := vm.doReturn(); err != nil {
			return err
		}
		return nil

	case bytecode.Negate:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		r, err := value.Negate(v)
		if err != nil {
			return err
		}
		vm.push(r)
	case bytecode.Not:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		r, err := value.Not(v)
		if err != nil {
			return err
		}
		vm.push(r)

	case bytecode.Eq, bytecode.Neq:
		right, err := vm.pop()
		if err != nil {
			return err
		}
		left, err := vm.pop()
		if err != nil {
			return err
		}
		eq := value.Equals(left, right)
		if op == bytecode.Eq {
			vm.push(value.NewBool(eq))
		} else {
			vm.push(value.NewBool(!eq))
		}

	default:
		if err := vm.execBinary(op); err != nil {
			return err
		}
	}

	frame.IP = nextIP
	return nil
}

func (vm *VM) popN(n int) ([]value.Value, error) {
	if n < 0 || n > len(vm.stack) {
		return nil, verrors.New(verrors.EmptyStack, "popN(%d) exceeds stack depth %d", n, len(vm.stack))
	}
	start := len(vm.stack) - n
	elems := make([]value.Value, n)
	copy(elems, vm.stack[start:])
	vm.stack = vm.stack[:start]
	return elems, nil
}
