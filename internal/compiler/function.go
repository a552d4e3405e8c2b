package compiler

import (
	"ysetl/internal/ast"
	"ysetl/internal/bytecode"
	"ysetl/internal/value"
)

// compileFunction implements spec.md §4.6's function-literal compilation,
// following original_source's compile_expr Function arm: enter a fresh
// scope, register required/optional/locked parameters (in that order, so
// their slot indices are stable and predictable), compile the body as a
// nested expression list, leave the scope, and build a Function constant
// that carries no captured values of its own — ToFn is what turns it into a
// closure at the definition site, by packaging the locked parameters' current
// values (evaluated in the ENCLOSING scope, before entering the function's
// own) alongside the constant.
func (c *Compiler) compileFunction(n ast.Function) error {
	// Locked-parameter values are expressions evaluated in the enclosing
	// scope, in order, before the function's own scope is entered — they are
	// captured by value at definition time, not looked up by name at call
	// time.
	for _, name := range n.LockedParams {
		if err := c.compileIdent(name); err != nil {
			return err
		}
	}

	c.enterScope()
	for _, p := range n.ReqParams {
		if _, err := c.symbols.Register(p); err != nil {
			return err
		}
	}
	for _, p := range n.OptParams {
		if _, err := c.symbols.Register(p); err != nil {
			return err
		}
	}
	for _, p := range n.LockedParams {
		if _, err := c.symbols.Register(p); err != nil {
			return err
		}
	}

	if err := c.compileFunctionBody(n); err != nil {
		// Unwind the scope stack even on error, so a later top-level error
		// report doesn't leave the Compiler in a half-entered state.
		c.leaveScope()
		return err
	}
	code, slots := c.leaveScope()
	paramCount := len(n.ReqParams) + len(n.OptParams) + len(n.LockedParams)

	fn := &value.Function{
		Code: code,
		// spec.md §4.6 step 5: local_slot_count excludes the parameter
		// slots scope size already counts — those are pushed onto the
		// stack by Call itself, not by the body's own local declarations.
		LocalSlotCount: slots - paramCount,
		RequiredArity:  len(n.ReqParams),
		OptionalArity:  len(n.OptParams),
		Captured:       nil,
	}
	idx := c.addConstant(value.NewFunction(fn))
	c.emitConst(idx)
	c.cur().EmitOp(bytecode.ToFn, uint16(len(n.LockedParams)))
	return nil
}

// compileFunctionBody compiles a function's body as a non-top-level
// expression list (bodies never auto-pop every expression the way a
// top-level program does) and emits the implicit Return, applying the same
// NullReturn convention compileCaseBody uses for switch-case bodies.
func (c *Compiler) compileFunctionBody(n ast.Function) error {
	if len(n.Body) == 0 {
		c.cur().WriteOp(bytecode.OpNull)
		c.cur().WriteOp(bytecode.Return)
		return nil
	}
	for i, e := range n.Body {
		if err := c.compileExpr(e); err != nil {
			return err
		}
		if i < len(n.Body)-1 {
			c.cur().WriteOp(bytecode.Pop)
		}
	}
	if n.NullReturn {
		c.cur().WriteOp(bytecode.Pop)
		c.cur().WriteOp(bytecode.OpNull)
	}
	c.cur().WriteOp(bytecode.Return)
	return nil
}
