package irdump

import (
	"strings"
	"testing"

	"ysetl/internal/bytecode"
	"ysetl/internal/value"
)

func TestDumpRendersModuleAndNotes(t *testing.T) {
	p := bytecode.New()
	idx := p.AddConstant(value.NewInt(3))
	p.EmitOp(bytecode.Const, uint16(idx))
	idx2 := p.AddConstant(value.NewInt(4))
	p.EmitOp(bytecode.Const, uint16(idx2))
	p.WriteOp(bytecode.Add)
	p.WriteOp(bytecode.Pop)

	out := Dump(p)
	if !strings.Contains(out, "ysetl_main") {
		t.Fatalf("dump missing function name:\n%s", out)
	}
	if !strings.Contains(out, "ysetl_push_i64") {
		t.Fatalf("dump missing placeholder intrinsic:\n%s", out)
	}
	if !strings.Contains(out, "Add") {
		t.Fatalf("dump missing a note for the Add opcode:\n%s", out)
	}
	if !strings.Contains(out, "Pop") {
		t.Fatalf("dump missing a note for the Pop opcode:\n%s", out)
	}
}

func TestDumpSkipsNonIntegerConstants(t *testing.T) {
	p := bytecode.New()
	idx := p.AddConstant(value.NewString("hi"))
	p.EmitOp(bytecode.Const, uint16(idx))
	p.WriteOp(bytecode.Pop)

	out := Dump(p)
	if !strings.Contains(out, "non-Integer constant, skipped") {
		t.Fatalf("dump should note the skipped String constant:\n%s", out)
	}
}

func TestNoopIntrinsicIsDeduped(t *testing.T) {
	p := bytecode.New()
	i1 := p.AddConstant(value.NewInt(1))
	i2 := p.AddConstant(value.NewInt(2))
	p.EmitOp(bytecode.Const, uint16(i1))
	p.EmitOp(bytecode.Const, uint16(i2))
	p.WriteOp(bytecode.Pop)
	p.WriteOp(bytecode.Pop)

	out := Dump(p)
	declareLines := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "declare") && strings.Contains(line, "ysetl_push_i64") {
			declareLines++
		}
	}
	if declareLines != 1 {
		t.Fatalf("expected exactly one declaration of ysetl_push_i64, got %d:\n%s", declareLines, out)
	}
}
