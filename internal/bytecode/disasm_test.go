package bytecode

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	p := New()
	p.EmitOp(Const, 5)
	p.WriteOp(Pop)

	out := Disassemble(p)
	if !strings.Contains(out, "Const") || !strings.Contains(out, "5") {
		t.Fatalf("disassembly missing Const/operand: %q", out)
	}
	if !strings.Contains(out, "Pop") {
		t.Fatalf("disassembly missing Pop: %q", out)
	}
}
