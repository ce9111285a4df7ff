// Package compiler resolves a token stream against the assemblyish
// instruction set and serializes the result to the flat byte format.
//
// Compilation is two explicit stages: Compile walks the statements once in
// source order, building the symbol tables and an ordered record list, and
// Program.Encode serializes that list afterwards. Identifier operands encode
// with the tables' final contents, which is why the stages never interleave.
package compiler

import (
	"strconv"

	"github.com/rs/zerolog"

	"assemblyish/pkg/isa"
	"assemblyish/pkg/token"
)

// Record is one resolved instruction: an opcode, its operand tokens and the
// source position of the statement's leading token. The symbol tables are
// shared by reference across all records of one compilation, so a record
// always encodes against their final contents.
type Record struct {
	Opcode byte
	Args   []token.Token
	Line   int
	Index  int

	vars   map[string]uint64
	labels map[string]uint64
}

// Program is the output of the resolve stage: the ordered record list plus
// the finished symbol tables.
type Program struct {
	Records   []Record
	Variables map[string]uint64
	Labels    map[string]uint64
}

// Compiler holds the mutable state of a single compilation: the two symbol
// tables and the id counter they share. A Compiler must not be reused across
// compilations; New builds fresh tables every time so separate compilations
// can never alias each other's state.
type Compiler struct {
	vars   map[string]uint64
	labels map[string]uint64
	nextID uint64
	log    zerolog.Logger
}

// New returns a compiler with empty symbol tables. Variable and label ids
// are drawn from one shared counter starting at 1, so an id is never issued
// twice even across the two tables.
func New() *Compiler {
	return &Compiler{
		vars:   make(map[string]uint64),
		labels: make(map[string]uint64),
		nextID: 1,
		log:    zerolog.Nop(),
	}
}

// SetLogger installs a logger used to trace each resolved statement at
// debug level.
func (c *Compiler) SetLogger(log zerolog.Logger) {
	c.log = log
}

// Statements splits a filtered token sequence into statement groups at
// NEWLINE boundaries. Empty spans yield no statement; source order is kept.
func Statements(toks []token.Token) [][]token.Token {
	var stmts [][]token.Token
	var cur []token.Token
	for _, tok := range toks {
		if tok.Kind == token.Newline {
			if len(cur) > 0 {
				stmts = append(stmts, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, tok)
	}
	if len(cur) > 0 {
		stmts = append(stmts, cur)
	}
	return stmts
}

// Compile resolves the token stream in one forward pass. Declarations must
// appear before any statement that references them; the first validation
// failure aborts the whole compilation.
func (c *Compiler) Compile(toks []token.Token) (*Program, error) {
	prog := &Program{Variables: c.vars, Labels: c.labels}

	for _, stmt := range Statements(toks) {
		rec, err := c.resolve(stmt)
		if err != nil {
			return nil, err
		}
		c.log.Debug().
			Uint8("opcode", rec.Opcode).
			Int("line", rec.Line).
			Int("args", len(rec.Args)).
			Msg("resolved statement")
		prog.Records = append(prog.Records, rec)
	}
	return prog, nil
}

func (c *Compiler) resolve(stmt []token.Token) (Record, error) {
	lead := stmt[0]
	switch lead.Kind {
	case token.Identifier:
		return c.resolveInstruction(lead, stmt[1:])
	case token.VarMarker:
		return c.declare(lead, stmt[1:], isa.Var, c.vars, "variable")
	case token.GotoMarker:
		return c.declare(lead, stmt[1:], isa.Goto, c.labels, "label")
	default:
		return Record{}, failf(ErrInvalidLineStart, lead.Line, lead.Index,
			"lines must start with an instruction, variable declaration (.), or label declaration (:)")
	}
}

func (c *Compiler) resolveInstruction(lead token.Token, args []token.Token) (Record, error) {
	in, ok := isa.Lookup(lead.Value)
	if !ok {
		return Record{}, failf(ErrUnknownInstruction, lead.Line, lead.Index,
			"not a valid instruction: %s", lead.Value)
	}
	if !in.Match(args) {
		at := lead
		if len(args) > 0 {
			at = args[0]
		}
		return Record{}, failf(ErrArgumentMismatch, at.Line, at.Index,
			"argument signature of %s doesn't match", lead.Value)
	}

	// Forward references are rejected here, not at encode time: a name must
	// already be in its table when the statement mentioning it is resolved.
	for _, arg := range args {
		if arg.Kind != token.Identifier {
			continue
		}
		if lead.Value == isa.GotoMnemonic {
			if _, declared := c.labels[arg.Value]; !declared {
				return Record{}, failf(ErrUndeclaredSymbol, arg.Line, arg.Index,
					"label %s referenced before declaration", arg.Value)
			}
			continue
		}
		if _, declared := c.vars[arg.Value]; !declared {
			return Record{}, failf(ErrUndeclaredSymbol, arg.Line, arg.Index,
				"variable %s referenced before declaration", arg.Value)
		}
	}

	return c.record(in.Opcode, lead, args), nil
}

// declare handles '.name' and ':name' statements: exactly one identifier,
// not seen before in its table, assigned the next shared id. The emitted
// record carries the id as a synthetic NUMBER immediate.
func (c *Compiler) declare(lead token.Token, args []token.Token, shape isa.Instruction, table map[string]uint64, what string) (Record, error) {
	if !shape.Match(args) {
		at := lead
		if len(args) > 0 {
			at = args[0]
		}
		return Record{}, failf(ErrArgumentMismatch, at.Line, at.Index,
			"%s declaration does not match correct signature", what)
	}

	name := args[0].Value
	if _, exists := table[name]; exists {
		return Record{}, failf(ErrDuplicateSymbol, args[0].Line, args[0].Index,
			"%s %s declared twice", what, name)
	}

	id := c.nextID
	c.nextID++
	table[name] = id

	imm := token.Token{Kind: token.Number, Value: strconv.FormatUint(id, 10)}
	return c.record(shape.Opcode, lead, []token.Token{imm}), nil
}

func (c *Compiler) record(opcode byte, lead token.Token, args []token.Token) Record {
	return Record{
		Opcode: opcode,
		Args:   args,
		Line:   lead.Line,
		Index:  lead.Index,
		vars:   c.vars,
		labels: c.labels,
	}
}
