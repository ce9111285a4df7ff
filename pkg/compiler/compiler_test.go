package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assemblyish/pkg/isa"
	"assemblyish/pkg/lexer"
	"assemblyish/pkg/token"
)

func mustScan(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.Scan(src)
	require.NoError(t, err)
	return toks
}

func compile(t *testing.T, src string) (*Program, error) {
	t.Helper()
	return New().Compile(mustScan(t, src))
}

func TestStatements(t *testing.T) {
	stmts := Statements(mustScan(t, "ADD 1\n\n.x\nOUT\n"))
	require.Len(t, stmts, 3)
	assert.Equal(t, "ADD", stmts[0][0].Value)
	assert.Equal(t, token.VarMarker, stmts[1][0].Kind)
	assert.Equal(t, "OUT", stmts[2][0].Value)
}

func TestStatementsEmptyInput(t *testing.T) {
	assert.Empty(t, Statements(nil))
}

func TestCompileInstruction(t *testing.T) {
	prog, err := compile(t, "ADD 5 10\n")
	require.NoError(t, err)
	require.Len(t, prog.Records, 1)

	rec := prog.Records[0]
	assert.Equal(t, isa.OpAdd, rec.Opcode)
	require.Len(t, rec.Args, 2)
	assert.Equal(t, "5", rec.Args[0].Value)
	assert.Equal(t, "10", rec.Args[1].Value)
}

func TestCompileDeclarationsShareCounter(t *testing.T) {
	prog, err := compile(t, ".a\n.b\n:loop\n")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), prog.Variables["A"])
	assert.Equal(t, uint64(2), prog.Variables["B"])
	assert.Equal(t, uint64(3), prog.Labels["LOOP"])

	// declaration records carry the assigned id as a number immediate
	require.Len(t, prog.Records, 3)
	assert.Equal(t, isa.OpVar, prog.Records[0].Opcode)
	assert.Equal(t, "1", prog.Records[0].Args[0].Value)
	assert.Equal(t, isa.OpGoto, prog.Records[2].Opcode)
	assert.Equal(t, "3", prog.Records[2].Args[0].Value)
}

func TestCompileForwardReferenceRejected(t *testing.T) {
	_, err := compile(t, "STO x 42\n.x\n")
	require.ErrorIs(t, err, ErrUndeclaredSymbol)

	var cErr *Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 1, cErr.Line)
}

func TestCompileGotoUsesLabelTable(t *testing.T) {
	// a declared variable does not satisfy a label reference
	_, err := compile(t, ".loop\nGOTO loop\n")
	require.ErrorIs(t, err, ErrUndeclaredSymbol)

	prog, err := compile(t, ":loop\nGOTO loop\n")
	require.NoError(t, err)
	require.Len(t, prog.Records, 2)
}

func TestCompileGotoUndeclaredEmitsNothing(t *testing.T) {
	prog, err := compile(t, "GOTO nowhere\nOUT\n")
	require.ErrorIs(t, err, ErrUndeclaredSymbol)
	assert.Nil(t, prog)
}

func TestCompileUnknownInstruction(t *testing.T) {
	_, err := compile(t, "FOO 1\n")
	require.ErrorIs(t, err, ErrUnknownInstruction)
}

func TestCompileArgumentMismatch(t *testing.T) {
	for _, src := range []string{
		"ADD\n",
		"ADD 1 2 3\n",
		"STO 5\n",
		"OUT \"hi\"\n",
		".x 1\n",
		":\n",
	} {
		_, err := compile(t, src)
		assert.ErrorIs(t, err, ErrArgumentMismatch, "source %q", src)
	}
}

func TestCompileInvalidLineStart(t *testing.T) {
	for _, src := range []string{"5 5\n", "\"str\"\n"} {
		_, err := compile(t, src)
		assert.ErrorIs(t, err, ErrInvalidLineStart, "source %q", src)
	}
}

func TestCompileDuplicateDeclaration(t *testing.T) {
	_, err := compile(t, ".x\n.x\n")
	require.ErrorIs(t, err, ErrDuplicateSymbol)

	var cErr *Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 2, cErr.Line)

	// the two tables are distinct name spaces: same name is fine
	_, err = compile(t, ".x\n:x\n")
	require.NoError(t, err)
}

func TestCompileErrorCarriesPosition(t *testing.T) {
	_, err := compile(t, "OUT\n\nFOO\n")
	var cErr *Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 3, cErr.Line)
}

func TestCompilerInstancesIndependent(t *testing.T) {
	first, err := New().Compile(mustScan(t, ".x\n"))
	require.NoError(t, err)
	second, err := New().Compile(mustScan(t, ".y\n"))
	require.NoError(t, err)

	// fresh tables and a fresh counter per compilation
	assert.Equal(t, uint64(1), first.Variables["X"])
	assert.Equal(t, uint64(1), second.Variables["Y"])
	assert.NotContains(t, second.Variables, "X")
}

func TestAssembleDeterministic(t *testing.T) {
	src := ".x\n:top\nSTO x \"abc\"\nADD x 2\nGOTO top\nOUTS \"done\"\n"
	a, err := Assemble(src)
	require.NoError(t, err)
	b, err := Assemble(src)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}
