package compiler

import (
	"testing"

	"ysetl/internal/ast"
	"ysetl/internal/bytecode"
	"ysetl/internal/value"
)

func TestScenario1ThreePlusFour(t *testing.T) {
	prog := ast.Program{Expressions: []ast.Expr{
		ast.Infix{Op: ast.Add, Left: ast.IntegerLit{Value: 3}, Right: ast.IntegerLit{Value: 4}},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{byte(bytecode.Const), 0, 0, byte(bytecode.Const), 0, 1, byte(bytecode.Add), byte(bytecode.Pop)}
	if string(p.Instructions) != string(want) {
		t.Fatalf("instructions = %v, want %v", p.Instructions, want)
	}
	if p.Constants[0].Int != 3 || p.Constants[1].Int != 4 {
		t.Fatalf("constants = %v, want [3, 4]", p.Constants)
	}
}

func TestScenario2TernaryAndTrailingStatement(t *testing.T) {
	// "if true ? 1 : 2; 99;" per spec.md §8 scenario 2.
	prog := ast.Program{Expressions: []ast.Expr{
		ast.Ternary{Cond: ast.TrueLit{}, Then: ast.IntegerLit{Value: 1}, Else: ast.IntegerLit{Value: 2}},
		ast.IntegerLit{Value: 99},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		byte(bytecode.OpTrue),
		byte(bytecode.JumpNotTrue), 0x00, 0x0A,
		byte(bytecode.Const), 0x00, 0x00,
		byte(bytecode.Jump), 0x00, 0x0D,
		byte(bytecode.Const), 0x00, 0x01,
		byte(bytecode.Pop),
		byte(bytecode.Const), 0x00, 0x02,
		byte(bytecode.Pop),
	}
	if string(p.Instructions) != string(want) {
		t.Fatalf("instructions = %v, want %v", p.Instructions, want)
	}
	if p.Constants[0].Int != 1 || p.Constants[1].Int != 2 || p.Constants[2].Int != 99 {
		t.Fatalf("constants = %v, want [1, 2, 99]", p.Constants)
	}
}

func TestNegatedLiteralConstantFolds(t *testing.T) {
	// "-1.0 * 2" per spec.md §8 scenario 3.
	prog := ast.Program{Expressions: []ast.Expr{
		ast.Infix{
			Op:    ast.Mult,
			Left:  ast.Prefix{Op: ast.Negate, Right: ast.FloatLit{Value: 1.0}},
			Right: ast.IntegerLit{Value: 2},
		},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	// Folding means no Negate opcode appears; both operands load directly
	// via Const.
	want := []byte{byte(bytecode.Const), 0, 0, byte(bytecode.Const), 0, 1, byte(bytecode.Mult), byte(bytecode.Pop)}
	if string(p.Instructions) != string(want) {
		t.Fatalf("instructions = %v, want %v", p.Instructions, want)
	}
	if p.Constants[0].Flt != -1.0 {
		t.Fatalf("constants[0] = %v, want Float(-1.0)", p.Constants[0])
	}
}

func TestRangeFormerOperandOrder(t *testing.T) {
	// "[1..5]" per spec.md §8 scenario 4: Const(5); Const(1); ToTupleRn 2.
	prog := ast.Program{Expressions: []ast.Expr{
		ast.TupleLiteral{Former: ast.RangeFormer{
			Start: ast.IntegerLit{Value: 1},
			End:   ast.IntegerLit{Value: 5},
		}},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		byte(bytecode.Const), 0, 0, // push end (5)
		byte(bytecode.Const), 0, 1, // push start (1)
		byte(bytecode.ToTupleRn), 0, 2,
		byte(bytecode.Pop),
	}
	if string(p.Instructions) != string(want) {
		t.Fatalf("instructions = %v, want %v", p.Instructions, want)
	}
	if p.Constants[0].Int != 5 || p.Constants[1].Int != 1 {
		t.Fatalf("constants = %v, want [5, 1]", p.Constants)
	}
}

func TestGtSwapsOperandsAndReusesLt(t *testing.T) {
	prog := ast.Program{Expressions: []ast.Expr{
		ast.Infix{Op: ast.Gt, Left: ast.IntegerLit{Value: 1}, Right: ast.IntegerLit{Value: 2}},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	// Right (2) then left (1), then Lt - the documented SPEC_FULL.md §9
	// evaluation-order quirk for GT/GTEQ.
	want := []byte{byte(bytecode.Const), 0, 0, byte(bytecode.Const), 0, 1, byte(bytecode.Lt), byte(bytecode.Pop)}
	if string(p.Instructions) != string(want) {
		t.Fatalf("instructions = %v, want %v", p.Instructions, want)
	}
	if p.Constants[0].Int != 2 || p.Constants[1].Int != 1 {
		t.Fatalf("constants = %v, want [2, 1] (right evaluated first)", p.Constants)
	}
}

func TestUndefinedIdentIsCompileError(t *testing.T) {
	prog := ast.Program{Expressions: []ast.Expr{ast.Ident{Name: "nope"}}}
	if _, err := Compile(prog); err == nil {
		t.Fatal("expected UndefinedIdent error")
	}
}

func TestFunctionCompilation(t *testing.T) {
	// "func() { 1; 2 };" per spec.md §8 scenario 5: body is
	// Const 0; Pop; Const 1; Return.
	prog := ast.Program{Expressions: []ast.Expr{
		ast.Function{Body: []ast.Expr{
			ast.IntegerLit{Value: 1},
			ast.IntegerLit{Value: 2},
		}},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	// The constant pool is shared: the body's integers take slots 0 and 1,
	// the Function constant itself slot 2.
	if len(p.Constants) != 3 {
		t.Fatalf("expected three constants (1, 2, the Function), got %d", len(p.Constants))
	}
	fnVal := p.Constants[2]
	if fnVal.Tag != value.Func {
		t.Fatalf("constant 2 tag = %v, want Func", fnVal.Tag)
	}
	want := []byte{
		byte(bytecode.Const), 0, 0,
		byte(bytecode.Pop),
		byte(bytecode.Const), 0, 1,
		byte(bytecode.Return),
	}
	if string(fnVal.Fn.Code) != string(want) {
		t.Fatalf("function body = %v, want %v", fnVal.Fn.Code, want)
	}
	if fnVal.Fn.RequiredArity != 0 || fnVal.Fn.OptionalArity != 0 {
		t.Fatalf("arity = %d/%d, want 0/0", fnVal.Fn.RequiredArity, fnVal.Fn.OptionalArity)
	}
	if len(fnVal.Fn.Captured) != 0 {
		t.Fatal("Function constant must carry no captured values")
	}
}

func TestSwitchWithoutDefaultYieldsNull(t *testing.T) {
	prog := ast.Program{Expressions: []ast.Expr{
		ast.Switch{
			Input: ast.IntegerLit{Value: 2},
			Cases: []ast.Case{
				{Cond: ast.IntegerLit{Value: 1}, Body: []ast.Expr{ast.StringLit{Value: "a"}}},
			},
		},
	}}
	p, err := Compile(prog)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Instructions) == 0 {
		t.Fatal("expected non-empty instructions")
	}
	// Presence of an OpNull right before PopMatch confirms the
	// no-default fallthrough.
	found := false
	for i := 0; i+1 < len(p.Instructions); i++ {
		if bytecode.Op(p.Instructions[i]) == bytecode.OpNull && bytecode.Op(p.Instructions[i+1]) == bytecode.PopMatch {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Null immediately before PopMatch when no default case is present")
	}
}
