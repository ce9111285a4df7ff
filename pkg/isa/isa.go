// Package isa is the static assemblyish instruction set: one descriptor per
// mnemonic, used by the compiler for validation only.
package isa

import "assemblyish/pkg/token"

// Opcodes and in-stream data tags. Tag bytes prefix literal operands in the
// emitted stream; identifier operands are emitted bare.
const (
	OpAdd byte = 1
	OpSub byte = 2
	OpMul byte = 3
	OpDiv byte = 4
	OpPow byte = 5
	OpMod byte = 6
	OpRan byte = 7

	OpSto byte = 65
	OpLod byte = 66

	OpOut  byte = 129
	OpOuts byte = 130

	OpGoto byte = 0b11111001 // label jumps and label declarations
	OpVar  byte = 0b11111010 // variable declarations

	TagString byte = 0b11111101
	TagNumber byte = 0b11111110
)

// GotoMnemonic is the one instruction whose identifier operand resolves
// against the label table instead of the variable table.
const GotoMnemonic = "GOTO"

// Arg describes one positional operand slot.
type Arg struct {
	Kinds    []token.Kind
	Optional bool
}

func (a Arg) allows(k token.Kind) bool {
	for _, kind := range a.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Instruction pairs an opcode with its ordered operand slots. At most the
// trailing slot is optional.
type Instruction struct {
	Opcode byte
	Args   []Arg
}

// Match reports whether the operand tokens fit the instruction's slots:
// no excess operands, every required slot filled, every present operand of
// an allowed kind.
func (in Instruction) Match(args []token.Token) bool {
	if len(args) > len(in.Args) {
		return false
	}
	for i, spec := range in.Args {
		if i == len(args) {
			return spec.Optional
		}
		if !spec.allows(args[i].Kind) {
			return false
		}
	}
	return true
}

func value(kinds ...token.Kind) Arg    { return Arg{Kinds: kinds} }
func optional(kinds ...token.Kind) Arg { return Arg{Kinds: kinds, Optional: true} }

// arith is the shared shape of the arithmetic instructions: one required and
// one optional numeric-or-identifier operand.
func arith(opcode byte) Instruction {
	return Instruction{Opcode: opcode, Args: []Arg{
		value(token.Number, token.Identifier),
		optional(token.Number, token.Identifier),
	}}
}

// instructions is the canonical mnemonic registry.
var instructions = map[string]Instruction{
	"ADD": arith(OpAdd),
	"SUB": arith(OpSub),
	"MUL": arith(OpMul),
	"DIV": arith(OpDiv),
	"POW": arith(OpPow),
	"MOD": arith(OpMod),
	"RAN": arith(OpRan),

	"STO": {Opcode: OpSto, Args: []Arg{
		value(token.Identifier),
		optional(token.Number, token.String, token.Identifier),
	}},
	"LOD": {Opcode: OpLod, Args: []Arg{
		value(token.Identifier),
		optional(token.Number, token.String, token.Identifier),
	}},

	"OUT": {Opcode: OpOut, Args: []Arg{
		optional(token.Number, token.Identifier),
	}},
	"OUTS": {Opcode: OpOuts, Args: []Arg{
		optional(token.String, token.Identifier),
	}},

	GotoMnemonic: {Opcode: OpGoto, Args: []Arg{
		value(token.Identifier),
	}},
}

// Goto and Var validate the tail of ':name' and '.name' declaration
// statements: exactly one identifier.
var (
	Goto = Instruction{Opcode: OpGoto, Args: []Arg{value(token.Identifier)}}
	Var  = Instruction{Opcode: OpVar, Args: []Arg{value(token.Identifier)}}
)

// Lookup returns the descriptor for a mnemonic, if it exists. Mnemonics are
// upper-case; the scanner upper-cases identifiers so lookups use scanned
// values directly.
func Lookup(mnemonic string) (Instruction, bool) {
	in, ok := instructions[mnemonic]
	return in, ok
}

var byOpcode = func() map[byte]string {
	m := make(map[byte]string, len(instructions)+1)
	for name, in := range instructions {
		m[in.Opcode] = name
	}
	m[OpVar] = "VAR"
	return m
}()

// ByOpcode returns the mnemonic and descriptor registered for an opcode.
// OpVar maps to the synthetic "VAR" name and the Var declaration shape;
// OpGoto maps to the GOTO jump descriptor, which label-declare records
// share.
func ByOpcode(op byte) (string, Instruction, bool) {
	name, ok := byOpcode[op]
	if !ok {
		return "", Instruction{}, false
	}
	if op == OpVar {
		return name, Var, true
	}
	return name, instructions[name], true
}
