// Package irdump renders a compiled Program as LLVM IR text, purely as a
// diagnostic curiosity (SPEC_FULL.md §4.11) — nothing downstream consumes
// it, and it never participates in compile/run correctness. Coverage is
// best-effort: opcodes with no sensible stack-machine-to-SSA lowering
// become IR comments rather than failing the dump.
package irdump

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"ysetl/internal/bytecode"
	"ysetl/internal/value"
)

// Dump lowers prog's top-level instruction stream into a single LLVM
// function named "ysetl_main". Only Const of an Integer becomes IR: a call
// to the ysetl_push_i64 placeholder. Every other opcode (Add/Subtract/Mult
// and Pop included) becomes a note line appended after the module text;
// function constants' code is not lowered. This is intentionally shallow —
// irdump exists to give llir/llvm a home in this codebase as a diagnostic,
// not to make YSETL a real LLVM front end.
func Dump(prog *bytecode.Program) string {
	m := ir.NewModule()
	fn := m.NewFunc("ysetl_main", types.Void)
	block := fn.NewBlock("entry")

	var notes []string

	i := 0
	for i < len(prog.Instructions) {
		op := bytecode.Op(prog.Instructions[i])
		def, ok := bytecode.Definitions[op]
		if !ok {
			notes = append(notes, fmt.Sprintf("; ip=%d unknown opcode %d", i, op))
			i++
			continue
		}
		switch op {
		case bytecode.Const:
			idx := int(uint16(prog.Instructions[i+1])<<8 | uint16(prog.Instructions[i+2]))
			if idx < len(prog.Constants) && prog.Constants[idx].Tag == value.Integer {
				block.NewCall(noopIntrinsic(m), constant.NewInt(types.I64, prog.Constants[idx].Int))
			} else {
				notes = append(notes, fmt.Sprintf("; ip=%d Const %d (non-Integer constant, skipped)", i, idx))
			}
		case bytecode.Add, bytecode.Subtract, bytecode.Mult:
			notes = append(notes, fmt.Sprintf("; ip=%d %s (modeled as opaque stack op)", i, def.Name))
		case bytecode.Pop:
			notes = append(notes, fmt.Sprintf("; ip=%d Pop", i))
		default:
			notes = append(notes, fmt.Sprintf("; ip=%d %s unsupported by irdump, skipped", i, def.Name))
		}
		i += 1 + def.OperandWidth
	}
	block.NewRet(nil)

	var sb strings.Builder
	sb.WriteString(m.String())
	sb.WriteString("\n; --- per-instruction notes ---\n")
	sb.WriteString(strings.Join(notes, "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// noopIntrinsic declares (once per module) an external function used as a
// placeholder sink for Const-pushed integers, so the dumped IR has
// something to call without irdump inventing real stack-machine semantics
// in LLVM terms.
func noopIntrinsic(m *ir.Module) *ir.Func {
	for _, f := range m.Funcs {
		if f.Name() == "ysetl_push_i64" {
			return f
		}
	}
	f := m.NewFunc("ysetl_push_i64", types.Void, ir.NewParam("v", types.I64))
	return f
}
