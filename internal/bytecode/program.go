package bytecode

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"ysetl/internal/value"
)

// DebugInfo is optional per-instruction source metadata, attached by the
// compiler purely for diagnostics. The VM's control flow never reads it
// (spec.md's non-goals exclude runtime source-location tracking).
type DebugInfo struct {
	Line     int
	Column   int
	Function string
}

// Program is the bytecode container spec.md §3 calls "Bytecode program":
// a byte stream of instructions, an indexed constant pool, and the number of
// global slots the compiler allocated. It doubles as the compiler's mutable
// instruction buffer during a single scope's emission and as the VM's
// read-only input once compilation finishes.
type Program struct {
	Instructions    []byte
	Constants       []value.Value
	GlobalSlotCount int

	Debug []DebugInfo // parallel to Instructions, by opcode-byte offset; may be nil

	cachedAt int64 // unix seconds; set only by the program cache, never by the compiler
}

// New returns an empty Program ready for emission.
func New() *Program {
	return &Program{}
}

// Len returns the current instruction-buffer length, i.e. the address the
// next emitted opcode will occupy.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// WriteOp appends a single opcode byte with no operand.
func (p *Program) WriteOp(op Op) {
	p.Instructions = append(p.Instructions, byte(op))
	if p.Debug != nil {
		p.Debug = append(p.Debug, DebugInfo{})
	}
}

// WriteOpWithDebug appends an opcode byte, recording debug info for it. The
// first call lazily enables debug tracking for the whole Program.
func (p *Program) WriteOpWithDebug(op Op, d DebugInfo) {
	p.Instructions = append(p.Instructions, byte(op))
	p.padDebugTo(len(p.Instructions) - 1)
	p.Debug = append(p.Debug, d)
}

// WriteU16 appends a big-endian u16 operand.
func (p *Program) WriteU16(v uint16) {
	p.Instructions = append(p.Instructions, byte(v>>8), byte(v))
	if p.Debug != nil {
		p.Debug = append(p.Debug, DebugInfo{}, DebugInfo{})
	}
}

// padDebugTo grows Debug with zero entries up to (but not including) index n,
// so Debug and Instructions stay aligned once debug tracking is in use.
func (p *Program) padDebugTo(n int) {
	for len(p.Debug) < n {
		p.Debug = append(p.Debug, DebugInfo{})
	}
}

// EmitOp appends op followed by a u16 operand in one call.
func (p *Program) EmitOp(op Op, operand uint16) {
	p.WriteOp(op)
	p.WriteU16(operand)
}

// EmitOpWithDebug is EmitOp plus WriteOpWithDebug's debug-info recording,
// for the one instruction shape (GetGVar/GetLVar with a carried operand)
// the compiler attaches source positions to.
func (p *Program) EmitOpWithDebug(op Op, operand uint16, d DebugInfo) {
	p.WriteOpWithDebug(op, d)
	p.WriteU16(operand)
}

// OverwriteU16 patches a previously emitted u16 operand in place, used for
// forward-jump patching once the jump target address is known.
func (p *Program) OverwriteU16(at int, value uint16) {
	p.Instructions[at] = byte(value >> 8)
	p.Instructions[at+1] = byte(value)
}

// AddConstant appends a constant and returns its index.
func (p *Program) AddConstant(v value.Value) int {
	p.Constants = append(p.Constants, v)
	return len(p.Constants) - 1
}

// DebugAt returns the debug info recorded for the instruction at byte offset
// ip, or the zero value if none was recorded.
func (p *Program) DebugAt(ip int) DebugInfo {
	if ip >= 0 && ip < len(p.Debug) {
		return p.Debug[ip]
	}
	return DebugInfo{}
}

// CachedAt returns the unix-seconds timestamp the program cache recorded
// when this Program was stored, or 0 if it was never cached.
func (p *Program) CachedAt() int64 { return p.cachedAt }

// SetCachedAt is called only by the program cache (internal/store).
func (p *Program) SetCachedAt(t int64) { p.cachedAt = t }

// Digest returns a stable content hash over instructions and constants, used
// as the program cache's lookup key (SPEC_FULL.md §4.4/§4.9). It never
// participates in compile/VM correctness.
func (p *Program) Digest() string {
	h, _ := blake2b.New256(nil)
	h.Write(p.Instructions)
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p.Constants)))
	h.Write(lenBuf[:])
	for _, c := range p.Constants {
		fmt.Fprintf(h, "%v|%s\n", c.Tag, c.String())
		if c.Tag == value.Func && c.Fn != nil {
			// String() shows only the arities; hash the body too.
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(c.Fn.Code)))
			h.Write(lenBuf[:])
			h.Write(c.Fn.Code)
			fmt.Fprintf(h, "|%d\n", c.Fn.LocalSlotCount)
		}
	}
	binary.BigEndian.PutUint64(lenBuf[:], uint64(p.GlobalSlotCount))
	h.Write(lenBuf[:])
	sum := h.Sum(nil)
	return fmt.Sprintf("%x", sum)
}
