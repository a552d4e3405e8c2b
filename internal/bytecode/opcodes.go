// Package bytecode defines the wire format produced by the compiler and
// consumed by the virtual machine: opcode byte values, each opcode's operand
// width, and the Program container (instructions, constant pool, global slot
// count). Byte values are canonical per spec.md §4.4 so bytecode produced by
// one build is portable to another.
package bytecode

// Op is a single opcode byte.
type Op byte

const (
	Const    Op = 0
	OpNull   Op = 1
	OpTrue   Op = 2
	OpFalse  Op = 3
	SetGVar  Op = 4
	GetGVar  Op = 5
	ToTuple  Op = 6
	ToSet    Op = 7
	ToTupleRn Op = 8
	ToSetRn  Op = 9
	SetLVar  Op = 10
	GetLVar  Op = 11
	ToFn     Op = 12

	Pop          Op = 20
	PushMatch    Op = 21
	PopMatch     Op = 22
	Jump         Op = 23
	JumpNotTrue  Op = 24
	JumpNotMatch Op = 25

	Index  Op = 100
	Range  Op = 101 // reserved, not emitted by this compiler
	Pick   Op = 102 // reserved, not emitted by this compiler
	Call   Op = 103

	// Binary ops 200-223, in the order the original compiler's emit_binop
	// dispatches them (see original_source/src/compiler/compiler.rs).
	NullCoal   Op = 200
	TupleStart Op = 201
	Exp        Op = 202
	Mult       Op = 203
	Inter      Op = 204
	Div        Op = 205
	Mod        Op = 206
	IntDiv     Op = 207
	Add        Op = 208
	Subtract   Op = 209
	With       Op = 210
	Less       Op = 211
	Union      Op = 212
	In         Op = 213
	Notin      Op = 214
	Subset     Op = 215
	Lt         Op = 216
	Lteq       Op = 217
	Eq         Op = 218
	Neq        Op = 219
	And        Op = 220
	Or         Op = 221
	Impl       Op = 222
	Iff        Op = 223

	DynVar Op = 227 // reserved prefix operator
	Size   Op = 228 // reserved prefix operator
	Negate Op = 226
	Not    Op = 229

	Return Op = 250
)

// Def describes one opcode: its mnemonic and the byte width of its single
// optional operand (0 for opcodes with no operand).
type Def struct {
	Name         string
	OperandWidth int
}

// Definitions is the side table every opcode's operand width is looked up
// in, by the VM (to decode operands), the disassembler, the IR dump and the
// trace server (for mnemonics).
var Definitions = map[Op]Def{
	Const:     {"Const", 2},
	OpNull:    {"Null", 0},
	OpTrue:    {"True", 0},
	OpFalse:   {"False", 0},
	SetGVar:   {"SetGVar", 2},
	GetGVar:   {"GetGVar", 2},
	ToTuple:   {"ToTuple", 2},
	ToSet:     {"ToSet", 2},
	ToTupleRn: {"ToTupleRn", 2},
	ToSetRn:   {"ToSetRn", 2},
	SetLVar:   {"SetLVar", 2},
	GetLVar:   {"GetLVar", 2},
	ToFn:      {"ToFn", 2},

	Pop:          {"Pop", 0},
	PushMatch:    {"PushMatch", 0},
	PopMatch:     {"PopMatch", 0},
	Jump:         {"Jump", 2},
	JumpNotTrue:  {"JumpNotTrue", 2},
	JumpNotMatch: {"JumpNotMatch", 2},

	Index: {"Index", 0},
	Range: {"Range", 0},
	Pick:  {"Pick", 0},
	Call:  {"Call", 2},

	NullCoal:   {"NullCoal", 0},
	TupleStart: {"TupleStart", 0},
	Exp:        {"Exp", 0},
	Mult:       {"Mult", 0},
	Inter:      {"Inter", 0},
	Div:        {"Div", 0},
	Mod:        {"Mod", 0},
	IntDiv:     {"IntDiv", 0},
	Add:        {"Add", 0},
	Subtract:   {"Subtract", 0},
	With:       {"With", 0},
	Less:       {"Less", 0},
	Union:      {"Union", 0},
	In:         {"In", 0},
	Notin:      {"Notin", 0},
	Subset:     {"Subset", 0},
	Lt:         {"Lt", 0},
	Lteq:       {"Lteq", 0},
	Eq:         {"Eq", 0},
	Neq:        {"Neq", 0},
	And:        {"And", 0},
	Or:         {"Or", 0},
	Impl:       {"Impl", 0},
	Iff:        {"Iff", 0},

	DynVar: {"DynVar", 0},
	Size:   {"Size", 0},
	Negate: {"Negate", 0},
	Not:    {"Not", 0},

	Return: {"Return", 0},
}
