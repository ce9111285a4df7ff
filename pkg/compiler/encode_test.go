package compiler

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assemblyish/pkg/isa"
	"assemblyish/pkg/token"
)

func be8(v uint64) []byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], v)
	return out[:]
}

func taggedNum(v uint64) []byte {
	return append([]byte{isa.TagNumber}, be8(v)...)
}

func taggedStr(s string) []byte {
	out := []byte{isa.TagString}
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(s)))
	out = append(out, count[:]...)
	return append(out, s...)
}

func assemble(t *testing.T, src string) []byte {
	t.Helper()
	code, err := Assemble(src)
	require.NoError(t, err)
	return code
}

func TestEncodeArithmetic(t *testing.T) {
	want := append([]byte{isa.OpAdd}, taggedNum(5)...)
	want = append(want, taggedNum(10)...)
	assert.Equal(t, want, assemble(t, "ADD 5 10\n"))
}

func TestEncodeVariableStore(t *testing.T) {
	// .x declares id 1; the STO reference encodes as a bare 8-byte id
	want := append([]byte{isa.OpVar}, taggedNum(1)...)
	want = append(want, isa.OpSto)
	want = append(want, be8(1)...)
	want = append(want, taggedNum(42)...)
	assert.Equal(t, want, assemble(t, ".x\nSTO x 42\n"))
}

func TestEncodeString(t *testing.T) {
	want := append([]byte{isa.OpOuts}, taggedStr("hi")...)
	assert.Equal(t, want, assemble(t, "OUTS \"hi\"\n"))
}

func TestEncodeGotoLabelID(t *testing.T) {
	// label declare carries a tagged immediate, the jump a bare label id
	want := append([]byte{isa.OpGoto}, taggedNum(1)...)
	want = append(want, isa.OpGoto)
	want = append(want, be8(1)...)
	assert.Equal(t, want, assemble(t, ":loop\nGOTO loop\n"))
}

func TestEncodeBareInstruction(t *testing.T) {
	assert.Equal(t, []byte{isa.OpOut}, assemble(t, "OUT\n"))
}

func TestEncodeHighByteCharacter(t *testing.T) {
	code := assemble(t, "OUTS \"é\"\n")
	want := []byte{isa.OpOuts, isa.TagString, 0, 0, 0, 1, 233}
	assert.Equal(t, want, code)
}

func TestEncodeCharacterOutOfRange(t *testing.T) {
	_, err := Assemble("OUTS \"π\"\n")
	require.ErrorIs(t, err, ErrCharacterOutOfRange)
}

func TestEncodeIntegerBoundary(t *testing.T) {
	// 2^64 passes the strict bound check and encodes as its low 64 bits
	code, err := Assemble("OUT 18446744073709551616\n")
	require.NoError(t, err)
	assert.Equal(t, append([]byte{isa.OpOut}, taggedNum(0)...), code)

	_, err = Assemble("OUT 18446744073709551617\n")
	require.ErrorIs(t, err, ErrIntegerTooLarge)
}

func TestEncodeFailureLeavesNoOutput(t *testing.T) {
	prog := &Program{Records: []Record{
		{Opcode: isa.OpOut, Args: []token.Token{{Kind: token.Number, Value: "1"}}},
		{Opcode: isa.OpOut, Args: []token.Token{{Kind: token.Number, Value: "18446744073709551617"}}},
	}}

	var buf bytes.Buffer
	_, err := prog.WriteTo(&buf)
	require.ErrorIs(t, err, ErrIntegerTooLarge)
	assert.Zero(t, buf.Len())
}
