package compiler

import (
	"ysetl/internal/ast"
	"ysetl/internal/bytecode"
)

// compileSwitch implements spec.md §4.6's two switch shapes. A match-switch
// (Input != nil) evaluates the input once, pushes it onto the VM's match
// stack with PushMatch, and each case's condition is compared against the
// top of the match stack via JumpNotMatch; a bool-switch (Input == nil) has
// no match stack involvement and each case's condition is a plain boolean
// expression tested with JumpNotTrue. Both shapes fall through to Null when
// no case (and no default `~` arm) matches, following
// original_source's compile_match_switch/compile_bool_switch/handle_null_return.
func (c *Compiler) compileSwitch(n ast.Switch) error {
	if n.Input != nil {
		return c.compileMatchSwitch(n)
	}
	return c.compileBoolSwitch(n)
}

func (c *Compiler) compileMatchSwitch(n ast.Switch) error {
	if err := c.compileExpr(n.Input); err != nil {
		return err
	}
	c.cur().WriteOp(bytecode.PushMatch)

	var endJumps []int
	matched := false
	for _, cs := range n.Cases {
		if cs.Cond == nil {
			// Default arm: falls straight through, no test needed.
			if err := c.compileCaseBody(cs); err != nil {
				return err
			}
			matched = true
			break
		}
		if err := c.compileExpr(cs.Cond); err != nil {
			return err
		}
		jnmPos := c.cur().Len() + 1
		c.cur().EmitOp(bytecode.JumpNotMatch, placeholder)

		if err := c.compileCaseBody(cs); err != nil {
			return err
		}
		endJumps = append(endJumps, c.cur().Len()+1)
		c.cur().EmitOp(bytecode.Jump, placeholder)

		nextAddr := uint16(c.cur().Len())
		c.cur().OverwriteU16(jnmPos, nextAddr)
	}
	if !matched {
		c.cur().WriteOp(bytecode.OpNull)
	}
	endAddr := uint16(c.cur().Len())
	for _, pos := range endJumps {
		c.cur().OverwriteU16(pos, endAddr)
	}
	c.cur().WriteOp(bytecode.PopMatch)
	return nil
}

func (c *Compiler) compileBoolSwitch(n ast.Switch) error {
	var endJumps []int
	matched := false
	for _, cs := range n.Cases {
		if cs.Cond == nil {
			if err := c.compileCaseBody(cs); err != nil {
				return err
			}
			matched = true
			break
		}
		if err := c.compileExpr(cs.Cond); err != nil {
			return err
		}
		jntPos := c.cur().Len() + 1
		c.cur().EmitOp(bytecode.JumpNotTrue, placeholder)

		if err := c.compileCaseBody(cs); err != nil {
			return err
		}
		endJumps = append(endJumps, c.cur().Len()+1)
		c.cur().EmitOp(bytecode.Jump, placeholder)

		nextAddr := uint16(c.cur().Len())
		c.cur().OverwriteU16(jntPos, nextAddr)
	}
	if !matched {
		c.cur().WriteOp(bytecode.OpNull)
	}
	endAddr := uint16(c.cur().Len())
	for _, pos := range endJumps {
		c.cur().OverwriteU16(pos, endAddr)
	}
	return nil
}

// compileCaseBody compiles a case's body as a non-top-level expression list:
// every expression but the last is popped, and the last is popped too only
// if NullReturn says the case ends in a statement terminator (in which case
// Null is pushed afterward so every case leaves exactly one value on the
// stack, matching handle_null_return in original_source).
func (c *Compiler) compileCaseBody(cs ast.Case) error {
	if len(cs.Body) == 0 {
		c.cur().WriteOp(bytecode.OpNull)
		return nil
	}
	for i, e := range cs.Body {
		if err := c.compileExpr(e); err != nil {
			return err
		}
		if i < len(cs.Body)-1 {
			c.cur().WriteOp(bytecode.Pop)
		}
	}
	if cs.NullReturn {
		c.cur().WriteOp(bytecode.Pop)
		c.cur().WriteOp(bytecode.OpNull)
	}
	return nil
}
