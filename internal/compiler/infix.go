package compiler

import (
	"ysetl/internal/ast"
	"ysetl/internal/bytecode"
	verrors "ysetl/internal/errors"
	"ysetl/internal/value"
)

func negInt(n int64) value.Value     { return value.NewInt(-n) }
func negFloat(f float64) value.Value { return value.NewFloat(-f) }

// binOpCodes maps every ast.BinOp that compiles to a single plain opcode
// (no operand swap, no short-circuit) directly onto its bytecode opcode.
// GT/GTEQ and the short-circuit logical operators are handled separately in
// compileInfix, below.
var binOpCodes = map[ast.BinOp]bytecode.Op{
	ast.Add:        bytecode.Add,
	ast.Subtract:   bytecode.Subtract,
	ast.Mult:       bytecode.Mult,
	ast.Div:        bytecode.Div,
	ast.IntDiv:     bytecode.IntDiv,
	ast.Mod:        bytecode.Mod,
	ast.Exp:        bytecode.Exp,
	ast.Lt:         bytecode.Lt,
	ast.Lteq:       bytecode.Lteq,
	ast.Eq:         bytecode.Eq,
	ast.Neq:        bytecode.Neq,
	ast.NullCoal:   bytecode.NullCoal,
	ast.TupleStart: bytecode.TupleStart,
	ast.With:       bytecode.With,
	ast.Less:       bytecode.Less,
	ast.Union:      bytecode.Union,
	ast.Inter:      bytecode.Inter,
	ast.In:         bytecode.In,
	ast.Notin:      bytecode.Notin,
	ast.Subset:     bytecode.Subset,
}

// compileInfix follows original_source's emit_binop match: most operators
// compile their operands left-then-right and emit a single opcode. GT and
// GTEQ are the one documented exception (SPEC_FULL.md §9): rather than
// introduce dedicated Gt/Gteq opcodes, the original compiler evaluates the
// operands in swapped (right, left) order and reuses Lt/Lteq — so `a > b`
// and `a >= b` push their operands in the opposite order from every other
// binary operator. That evaluation-order quirk is preserved here rather than
// "fixed", since fixing it would make this compiler's bytecode diverge from
// the spec's worked examples.
func (c *Compiler) compileInfix(n ast.Infix) error {
	switch n.Op {
	case ast.Gt:
		return c.compileSwapped(n.Right, n.Left, bytecode.Lt)
	case ast.Gteq:
		return c.compileSwapped(n.Right, n.Left, bytecode.Lteq)
	case ast.And:
		// a and b  ==  a ? b : false
		return c.compileShortCircuit(n.Left, n.Right, false)
	case ast.Or:
		// a or b  ==  a ? true : b
		return c.compileShortCircuit(n.Left, true, n.Right)
	case ast.Impl:
		// a => b  ==  a ? b : true
		return c.compileShortCircuit(n.Left, n.Right, true)
	case ast.Iff:
		// a <=> b has no short-circuit shape: both sides always evaluate,
		// then a plain structural-equality test (Eq) decides the result.
		if err := c.compileExpr(n.Left); err != nil {
			return err
		}
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.Eq)
		return nil
	}
	op, ok := binOpCodes[n.Op]
	if !ok {
		return verrors.New(verrors.Unsupported, "unsupported binary operator %v", n.Op)
	}
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	c.cur().WriteOp(op)
	return nil
}

func (c *Compiler) compileSwapped(first, second ast.Expr, op bytecode.Op) error {
	if err := c.compileExpr(first); err != nil {
		return err
	}
	if err := c.compileExpr(second); err != nil {
		return err
	}
	c.cur().WriteOp(op)
	return nil
}

// compileShortCircuit emits the common ternary-shaped jump pattern every
// short-circuit logical operator reduces to: evaluate cond; if it's not
// true, jump to the else branch. thenBranch/elseBranch are each either an
// ast.Expr (compiled normally) or a bool (pushed as a True/False literal) —
// exactly one side is a real expression, per the call sites in compileInfix.
// This is the same jump-patch shape compileTernary uses, which is also how
// the opcode table avoids needing a dedicated Dup or jump-if-true
// instruction: the "skip the right operand" path is expressed by jumping
// PAST a pushed literal, never by duplicating the left operand's bytecode
// or its evaluated value.
func (c *Compiler) compileShortCircuit(cond ast.Expr, thenBranch, elseBranch interface{}) error {
	if err := c.compileExpr(cond); err != nil {
		return err
	}
	jntPos := c.cur().Len() + 1
	c.cur().EmitOp(bytecode.JumpNotTrue, placeholder)

	if err := c.compileBranch(thenBranch); err != nil {
		return err
	}
	jmpPos := c.cur().Len() + 1
	c.cur().EmitOp(bytecode.Jump, placeholder)

	elseAddr := uint16(c.cur().Len())
	if err := c.compileBranch(elseBranch); err != nil {
		return err
	}
	endAddr := uint16(c.cur().Len())

	c.cur().OverwriteU16(jntPos, elseAddr)
	c.cur().OverwriteU16(jmpPos, endAddr)
	return nil
}

// compileBranch compiles branch if it is an ast.Expr, or emits a True/False
// literal if it is a bool.
func (c *Compiler) compileBranch(branch interface{}) error {
	switch b := branch.(type) {
	case ast.Expr:
		return c.compileExpr(b)
	case bool:
		if b {
			c.cur().WriteOp(bytecode.OpTrue)
		} else {
			c.cur().WriteOp(bytecode.OpFalse)
		}
		return nil
	default:
		return verrors.New(verrors.Unsupported, "short-circuit branch must be an expression or bool literal")
	}
}

func (c *Compiler) compilePrefix(n ast.Prefix) error {
	switch n.Op {
	case ast.Not:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.Not)
		return nil
	case ast.Negate:
		// Constant-fold negated integer/float literals, matching the
		// original compiler's Prefix handling for Negate.
		switch lit := n.Right.(type) {
		case ast.IntegerLit:
			c.emitConst(c.addConstant(negInt(lit.Value)))
			return nil
		case ast.FloatLit:
			c.emitConst(c.addConstant(negFloat(lit.Value)))
			return nil
		}
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.Negate)
		return nil
	case ast.DynVar:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.DynVar)
		return nil
	case ast.Size:
		if err := c.compileExpr(n.Right); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.Size)
		return nil
	case ast.Id:
		return c.compileExpr(n.Right)
	default:
		return verrors.New(verrors.Unsupported, "unsupported prefix operator %v", n.Op)
	}
}
