// Package compiler walks the AST contract (internal/ast) and emits bytecode
// (internal/bytecode) following spec.md §4.5-4.6: a stack of per-scope
// instruction buffers, a single shared constant pool, and a SymbolRegistry
// for lexical scope resolution. The overall shape — a struct holding the
// in-progress Program plus a type-switch dispatch over AST node kinds —
// follows the teacher's compiler.Compiler, generalized from its per-node
// Visit methods to a single compileExpr switch (the style the corpus's
// `toy` and `paseratti` interpreters use for their own compilers).
package compiler

import (
	"ysetl/internal/ast"
	"ysetl/internal/bytecode"
	verrors "ysetl/internal/errors"
	"ysetl/internal/symbols"
	"ysetl/internal/value"
)

const placeholder = 0xFFFF

// scope is one entry in the instruction-buffer stack: a fresh Program used
// only for its Instructions/Debug fields while this lexical scope is open.
type scope struct {
	prog *bytecode.Program
}

// Compiler holds the state described in spec.md §4.5: a stack of instruction
// buffers (one per lexical scope), a single constants vector shared by the
// whole program, and a SymbolRegistry.
type Compiler struct {
	constants []value.Value
	symbols   *symbols.Registry
	scopes    []*scope
	withDebug bool
}

// New returns a Compiler ready to compile a Program.
func New() *Compiler {
	return &Compiler{
		symbols: symbols.New(),
		scopes:  []*scope{{prog: bytecode.New()}},
	}
}

// WithDebug enables per-instruction DebugInfo recording (line/column/
// function), used only for diagnostics, never by compiled semantics.
func (c *Compiler) WithDebug() *Compiler {
	c.withDebug = true
	c.scopes[0].prog.Debug = []bytecode.DebugInfo{}
	return c
}

// Compile compiles a whole top-level Program: each expression is compiled
// followed by Pop (spec.md §4.5 "Top-level emission"), establishing
// expression-statement semantics where the most recently popped value is the
// program's result.
func Compile(prog ast.Program) (*bytecode.Program, error) {
	c := New()
	return c.CompileProgram(prog)
}

func (c *Compiler) CompileProgram(prog ast.Program) (*bytecode.Program, error) {
	if err := c.compileExprList(prog.Expressions, true); err != nil {
		return nil, err
	}
	return c.finish(), nil
}

func (c *Compiler) finish() *bytecode.Program {
	top := c.scopes[0].prog
	return &bytecode.Program{
		Instructions:    top.Instructions,
		Constants:       c.constants,
		GlobalSlotCount: c.symbols.Size(),
		Debug:           top.Debug,
	}
}

func (c *Compiler) cur() *bytecode.Program {
	return c.scopes[len(c.scopes)-1].prog
}

func (c *Compiler) enterScope() {
	p := bytecode.New()
	if c.withDebug {
		p.Debug = []bytecode.DebugInfo{}
	}
	c.scopes = append(c.scopes, &scope{prog: p})
	c.symbols.EnterScope()
}

// leaveScope pops the instruction-buffer stack and the symbol scope,
// returning the finished scope's instructions and its slot count (params +
// body locals), per spec.md §4.6 step 5.
func (c *Compiler) leaveScope() ([]byte, int) {
	top := c.scopes[len(c.scopes)-1]
	c.scopes = c.scopes[:len(c.scopes)-1]
	size := c.symbols.Size()
	c.symbols.ExitScope()
	return top.prog.Instructions, size
}

func (c *Compiler) addConstant(v value.Value) int {
	c.constants = append(c.constants, v)
	return len(c.constants) - 1
}

func (c *Compiler) emitConst(idx int) {
	c.cur().EmitOp(bytecode.Const, uint16(idx))
}

// compileExprList compiles each expression in order; if withPop is true,
// every expression (including the last) is followed by Pop. It is used for
// the top-level program only: case and function bodies go through
// compileCaseBody/compileFunctionBody in switch.go/function.go, which emit
// their own inter-expression Pops and decide the final one from NullReturn.
func (c *Compiler) compileExprList(exprs []ast.Expr, withPop bool) error {
	for _, e := range exprs {
		if err := c.compileExpr(e); err != nil {
			return err
		}
		if withPop {
			c.cur().WriteOp(bytecode.Pop)
		}
	}
	return nil
}

func (c *Compiler) compileExpr(node ast.Expr) error {
	switch n := node.(type) {
	case ast.NullLit:
		c.cur().WriteOp(bytecode.OpNull)
	case ast.TrueLit:
		c.cur().WriteOp(bytecode.OpTrue)
	case ast.FalseLit:
		c.cur().WriteOp(bytecode.OpFalse)
	case ast.IntegerLit:
		c.emitConst(c.addConstant(value.NewInt(n.Value)))
	case ast.FloatLit:
		c.emitConst(c.addConstant(value.NewFloat(n.Value)))
	case ast.StringLit:
		c.emitConst(c.addConstant(value.NewString(n.Value)))
	case ast.Ident:
		return c.compileIdentNode(n)
	case ast.TupleLiteral:
		return c.compileFormer(n.Former, bytecode.ToTuple, bytecode.ToTupleRn)
	case ast.SetLiteral:
		return c.compileFormer(n.Former, bytecode.ToSet, bytecode.ToSetRn)
	case ast.Infix:
		return c.compileInfix(n)
	case ast.Prefix:
		return c.compilePrefix(n)
	case ast.Postfix:
		return c.compilePostfix(n)
	case ast.Ternary:
		return c.compileTernary(n)
	case ast.Switch:
		return c.compileSwitch(n)
	case ast.Assign:
		return c.compileAssign(n)
	case ast.Function:
		return c.compileFunction(n)
	case ast.Return:
		if err := c.compileExpr(n.Value); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.Return)
	default:
		return verrors.New(verrors.Unsupported, "unsupported AST node %T", node)
	}
	return nil
}

func (c *Compiler) compileIdent(name string) error {
	sym, ok := c.symbols.Lookup(name)
	if !ok {
		return verrors.New(verrors.UndefinedIdent, "'%s' is undefined in current scope", name)
	}
	if sym.Scope == symbols.Global {
		c.cur().EmitOp(bytecode.GetGVar, uint16(sym.Index))
	} else {
		c.cur().EmitOp(bytecode.GetLVar, uint16(sym.Index))
	}
	return nil
}

// compileIdentNode is compileIdent plus DebugInfo recording when the AST
// node carries a source position (SPEC_FULL.md §4.5/§4.6): an identifier
// load is the anchor a source-mapped runtime error would point at, so it's
// the one node shape this compiler bothers attaching debug info to.
func (c *Compiler) compileIdentNode(n ast.Ident) error {
	sym, ok := c.symbols.Lookup(n.Name)
	if !ok {
		return verrors.New(verrors.UndefinedIdent, "'%s' is undefined in current scope", n.Name)
	}
	op := bytecode.GetGVar
	if sym.Scope != symbols.Global {
		op = bytecode.GetLVar
	}
	if n.Pos == nil {
		c.cur().EmitOp(op, uint16(sym.Index))
		return nil
	}
	c.cur().EmitOpWithDebug(op, uint16(sym.Index), bytecode.DebugInfo{
		Line:     n.Pos.Line,
		Column:   n.Pos.Column,
		Function: c.debugFunctionLabel(),
	})
	return nil
}

// debugFunctionLabel names the function a DebugInfo entry belongs to, for
// diagnostics only. The AST carries no function-name field (function
// literals are anonymous; a name, if any, lives on the enclosing
// assignment), so nested scopes are labeled generically rather than
// invented.
func (c *Compiler) debugFunctionLabel() string {
	if len(c.scopes) <= 1 {
		return ""
	}
	return "<function>"
}

func (c *Compiler) compileAssign(n ast.Assign) error {
	if err := c.compileExpr(n.Right); err != nil {
		return err
	}
	ident, ok := n.Left.(ast.IdentLHS)
	if !ok {
		return verrors.New(verrors.InvalidLHS, "assignment target must be a plain identifier")
	}
	sym, err := c.symbols.Register(ident.Name)
	if err != nil {
		return err
	}
	if sym.Scope == symbols.Global {
		c.cur().EmitOp(bytecode.SetGVar, uint16(sym.Index))
	} else {
		c.cur().EmitOp(bytecode.SetLVar, uint16(sym.Index))
	}
	return nil
}

func (c *Compiler) compileFormer(f ast.Former, litOp, rangeOp bytecode.Op) error {
	switch form := f.(type) {
	case ast.LiteralFormer:
		for _, e := range form.Elements {
			if err := c.compileExpr(e); err != nil {
				return err
			}
		}
		c.cur().EmitOp(litOp, uint16(len(form.Elements)))
	case ast.RangeFormer:
		parts := uint16(2)
		if form.Step != nil {
			parts = 3
			if err := c.compileExpr(form.Step); err != nil {
				return err
			}
		}
		if err := c.compileExpr(form.End); err != nil {
			return err
		}
		if err := c.compileExpr(form.Start); err != nil {
			return err
		}
		c.cur().EmitOp(rangeOp, parts)
	default:
		return verrors.New(verrors.Unsupported, "unsupported collection former %T", f)
	}
	return nil
}

func (c *Compiler) compilePostfix(n ast.Postfix) error {
	if err := c.compileExpr(n.Left); err != nil {
		return err
	}
	switch sel := n.Selector.(type) {
	case ast.IndexSelector:
		if err := c.compileExpr(sel.Key); err != nil {
			return err
		}
		c.cur().WriteOp(bytecode.Index)
	case ast.CallSelector:
		for _, a := range sel.Args {
			if err := c.compileExpr(a); err != nil {
				return err
			}
		}
		c.cur().EmitOp(bytecode.Call, uint16(len(sel.Args)))
	default:
		return verrors.New(verrors.Unsupported, "unsupported postfix selector %T", n.Selector)
	}
	return nil
}

func (c *Compiler) compileTernary(n ast.Ternary) error {
	if err := c.compileExpr(n.Cond); err != nil {
		return err
	}
	jntPos := c.cur().Len() + 1
	c.cur().EmitOp(bytecode.JumpNotTrue, placeholder)
	if err := c.compileExpr(n.Then); err != nil {
		return err
	}
	jmpPos := c.cur().Len() + 1
	c.cur().EmitOp(bytecode.Jump, placeholder)
	elseAddr := uint16(c.cur().Len())
	if err := c.compileExpr(n.Else); err != nil {
		return err
	}
	endAddr := uint16(c.cur().Len())
	c.cur().OverwriteU16(jntPos, elseAddr)
	c.cur().OverwriteU16(jmpPos, endAddr)
	return nil
}
