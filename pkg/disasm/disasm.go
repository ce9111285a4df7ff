// Package disasm decodes the flat byte format emitted by the compiler back
// into opcode/operand records. It exists for inspection tooling and for
// round-trip checks over the encoder; it is not an execution engine.
package disasm

import (
	"encoding/binary"
	"fmt"

	"assemblyish/pkg/isa"
	"assemblyish/pkg/token"
)

// Operand is one decoded operand. Str is set for string literals; Num holds
// a number literal's value or a resolved identifier's id, depending on Kind.
type Operand struct {
	Kind token.Kind
	Str  string
	Num  uint64
}

// Inst is one decoded instruction record.
type Inst struct {
	Opcode   byte
	Mnemonic string
	Args     []Operand
}

// Decode walks the byte stream front to back and reconstructs the record
// sequence. Literal operands are self-describing through their tag bytes;
// identifier operands are recognized by their leading zero byte, which no
// opcode or tag shares (ids are small, so the top byte of the 8-byte field
// is always zero).
func Decode(data []byte) ([]Inst, error) {
	var insts []Inst
	pos := 0

	for pos < len(data) {
		opcode := data[pos]
		mnemonic, desc, ok := isa.ByOpcode(opcode)
		if !ok {
			return nil, fmt.Errorf("unknown opcode 0x%02x at offset %d", opcode, pos)
		}
		pos++

		inst := Inst{Opcode: opcode, Mnemonic: mnemonic}
	slots:
		for i, slot := range desc.Args {
			if pos >= len(data) {
				if slot.Optional {
					break
				}
				return nil, fmt.Errorf("%s truncated at offset %d", mnemonic, pos)
			}

			switch data[pos] {
			case isa.TagString:
				op, n, err := decodeString(data[pos:])
				if err != nil {
					return nil, fmt.Errorf("%s at offset %d: %w", mnemonic, pos, err)
				}
				inst.Args = append(inst.Args, op)
				pos += n
			case isa.TagNumber:
				if pos+9 > len(data) {
					return nil, fmt.Errorf("%s number truncated at offset %d", mnemonic, pos)
				}
				inst.Args = append(inst.Args, Operand{
					Kind: token.Number,
					Num:  binary.BigEndian.Uint64(data[pos+1 : pos+9]),
				})
				pos += 9
			case 0x00:
				if pos+8 > len(data) {
					return nil, fmt.Errorf("%s identifier truncated at offset %d", mnemonic, pos)
				}
				inst.Args = append(inst.Args, Operand{
					Kind: token.Identifier,
					Num:  binary.BigEndian.Uint64(data[pos : pos+8]),
				})
				pos += 8
			default:
				// Not a tag and not an identifier field: the byte opens the
				// next record, legal only once the remaining slots are
				// optional.
				if slot.Optional {
					break slots
				}
				return nil, fmt.Errorf("%s missing operand %d at offset %d", mnemonic, i+1, pos)
			}
		}
		insts = append(insts, inst)
	}
	return insts, nil
}

// decodeString reads a tagged string operand and returns it with the number
// of bytes consumed.
func decodeString(data []byte) (Operand, int, error) {
	if len(data) < 5 {
		return Operand{}, 0, fmt.Errorf("string header truncated")
	}
	n := int(binary.BigEndian.Uint32(data[1:5]))
	if len(data) < 5+n {
		return Operand{}, 0, fmt.Errorf("string body truncated (want %d bytes)", n)
	}
	chars := make([]rune, n)
	for i, b := range data[5 : 5+n] {
		chars[i] = rune(b)
	}
	return Operand{Kind: token.String, Str: string(chars)}, 5 + n, nil
}
