package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Program's instructions as human-readable text, one
// line per opcode, in the style of the original source's print_bytes: the
// mnemonic followed by its operand (if any). It never consults the VM and
// exists purely for debugging and the CLI's -v output.
func Disassemble(p *Program) string {
	var sb strings.Builder
	ip := 0
	for ip < len(p.Instructions) {
		op := Op(p.Instructions[ip])
		def, ok := Definitions[op]
		if !ok {
			fmt.Fprintf(&sb, "%04d UNKNOWN(%d)\n", ip, op)
			ip++
			continue
		}
		if def.OperandWidth == 0 {
			fmt.Fprintf(&sb, "%04d %s\n", ip, def.Name)
			ip++
			continue
		}
		operand := uint16(p.Instructions[ip+1])<<8 | uint16(p.Instructions[ip+2])
		fmt.Fprintf(&sb, "%04d %-12s %d\n", ip, def.Name, operand)
		ip += 1 + def.OperandWidth
	}
	return sb.String()
}
