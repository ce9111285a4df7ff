package compiler

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/big"

	"assemblyish/pkg/isa"
	"assemblyish/pkg/token"
)

// Bound values for literal operands. The checks are strict greater-than, so
// the boundary values themselves are accepted: a string of exactly 2^32
// characters and the integer 2^64 both pass and encode as their truncated
// low bits. Both bounds sit far past anything a realistic program produces.
var (
	maxStringLen = uint64(1) << 32
	maxInteger   = new(big.Int).Lsh(big.NewInt(1), 64)
	lower64      = new(big.Int).Sub(maxInteger, big.NewInt(1))
)

// Encode serializes the resolved program: per record one opcode byte
// followed by the operand encodings, concatenated with no framing. Nothing
// is returned if any operand fails to encode.
func (p *Program) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range p.Records {
		if err := rec.encode(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// WriteTo encodes the program and writes the byte stream in a single write,
// so a failing compilation never leaves a partial file behind.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	code, err := p.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(code)
	return int64(n), err
}

func (r Record) encode(buf *bytes.Buffer) error {
	buf.WriteByte(r.Opcode)

	// Only the first identifier of a label jump resolves against the label
	// table; the jump opcode is shared with label-declare records, but those
	// carry a number immediate and never take this path.
	gotoPending := r.Opcode == isa.OpGoto

	for _, arg := range r.Args {
		switch arg.Kind {
		case token.String:
			if err := r.encodeString(buf, arg.Value); err != nil {
				return err
			}
		case token.Number:
			if err := r.encodeNumber(buf, arg.Value); err != nil {
				return err
			}
		case token.Identifier:
			table := r.vars
			if gotoPending {
				table = r.labels
				gotoPending = false
			}
			id, ok := table[arg.Value]
			if !ok {
				return failf(ErrUndeclaredSymbol, r.Line, r.Index,
					"symbol %s missing from table at encode time", arg.Value)
			}
			var out [8]byte
			binary.BigEndian.PutUint64(out[:], id)
			buf.Write(out[:])
		}
	}
	return nil
}

// encodeString emits the string tag, a 4-byte big-endian character count and
// one byte per character.
func (r Record) encodeString(buf *bytes.Buffer, s string) error {
	chars := []rune(s)
	for _, ch := range chars {
		if ch > 255 {
			return failf(ErrCharacterOutOfRange, r.Line, r.Index,
				"invalid character: %d", ch)
		}
	}
	n := uint64(len(chars))
	if n > maxStringLen {
		return failf(ErrStringTooLong, r.Line, r.Index,
			"string too long (%d > %d)", n, maxStringLen)
	}

	buf.WriteByte(isa.TagString)
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(n))
	buf.Write(count[:])
	for _, ch := range chars {
		buf.WriteByte(byte(ch))
	}
	return nil
}

// encodeNumber emits the number tag and the value as 8 big-endian bytes.
// Values are arbitrary digit strings, so the bound check runs on a big.Int.
func (r Record) encodeNumber(buf *bytes.Buffer, digits string) error {
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return failf(ErrIntegerTooLarge, r.Line, r.Index,
			"not a decimal integer: %s", digits)
	}
	if v.Cmp(maxInteger) > 0 {
		return failf(ErrIntegerTooLarge, r.Line, r.Index,
			"integer too large (%s > %s)", v, maxInteger)
	}

	buf.WriteByte(isa.TagNumber)
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], new(big.Int).And(v, lower64).Uint64())
	buf.Write(out[:])
	return nil
}
