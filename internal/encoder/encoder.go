// Package encoder implements Pass E of spec.md §4.E: it packs a
// fully-resolved instruction list into 32-bit machine words. Every word is
// built by OR-combining independent field masks, never by arithmetic
// addition, so that a malformed upstream value can never bleed across a
// field boundary (spec.md §9, "Bit-field composition").
package encoder

import (
	"fmt"

	"github.com/qyon/r32asm/internal/ast"
)

// Field bit positions and masks, spec.md §4.E's field-placement table.
const (
	shiftRd      = 16
	shiftRs1     = 8
	shiftRs2     = 0
	shiftImm8    = 0
	shiftCondRel = 16
	shiftJImm    = 0
	shiftMovImm  = 0
	shiftLwImm   = 8
	shiftSwImm   = 16

	maskByte   = 0xff
	maskShort  = 0xffff
	maskRel11f = 0x07ffffff // applied post-shift; keeps the 11-bit rel field at [26:16]
)

// opFunct is the authoritative op/funct table keyed by mnemonic, the fixed
// upper-bit pattern that identifies an instruction to the hardware.
var opFunct = map[ast.Mnemonic]ast.EncodedWord{
	ast.Add: 0x01000000, ast.Sub: 0x02000000,
	ast.Addi: 0x21000000, ast.Subi: 0x22000000, ast.Slli: 0x24000000,
	ast.Fabs: 0x04000000, ast.Fneg: 0x08000000,
	ast.Fadd: 0x41000000, ast.Fsub: 0x42000000, ast.Fmul: 0x44000000, ast.Fdiv: 0x48000000,
	ast.Ftoi: 0x52000000, ast.Itof: 0x54000000, ast.Fsqrt: 0x58000000,
	ast.Ibeq: 0x80000000, ast.Ibne: 0x88000000, ast.Iblt: 0x90000000, ast.Ible: 0x98000000,
	ast.Fblt: 0xa0000000, ast.Fble: 0xa8000000, ast.Fbps: 0xb0000000, ast.Fbng: 0xb8000000,
	ast.J: 0xc1000000, ast.Jr: 0xc2000000, ast.Call: 0xc4000000,
	ast.Movl: 0x31000000, ast.Movh: 0x32000000,
	ast.Urecv: 0x60000000, ast.Usend: 0xe0000000,
	ast.Lw: 0x61000000, ast.Sw: 0xe1000000,
}

// Encode packs a fully-resolved instruction list into an equal-length word
// vector (spec.md §4.E). resolved must carry no LabelRef and no pseudo
// mnemonic; the earlier passes guarantee this, so a violation here is a
// bug in this program rather than a malformed user program, and is
// reported via panic rather than a diagnostic (spec.md §4.E, "fails only
// via internal assertion").
func Encode(resolved []ast.Instruction) []ast.EncodedWord {
	words := make([]ast.EncodedWord, len(resolved))
	for i, inst := range resolved {
		words[i] = encodeOne(inst)
	}
	return words
}

func encodeOne(inst ast.Instruction) ast.EncodedWord {
	op, ok := opFunct[inst.Mnemonic]
	if !ok {
		panic(fmt.Sprintf("encoder: no op/funct entry for pseudo mnemonic %s reached the encoder", inst.Mnemonic))
	}

	var fields ast.EncodedWord
	switch ast.FamilyOf(inst.Mnemonic) {
	case ast.FamArith3Reg:
		rd, rs1, rs2 := reg(inst, 0), reg(inst, 1), reg(inst, 2)
		fields = field(rd, shiftRd, maskByte) | field(rs1, shiftRs1, maskByte) | field(rs2, shiftRs2, maskByte)

	case ast.FamArithImm:
		rd, rs, imm := reg(inst, 0), reg(inst, 1), imm(inst, 2)
		fields = field(rd, shiftRd, maskByte) | field(rs, shiftRs1, maskByte) | field(imm, shiftImm8, maskByte)

	case ast.FamArithExt:
		rd, rs := reg(inst, 0), reg(inst, 1)
		fields = field(rd, shiftRd, maskByte) | field(rs, shiftRs2, maskByte)

	case ast.FamCondBranch2Reg:
		rs1, rs2, rel := reg(inst, 0), reg(inst, 1), imm(inst, 2)
		fields = field(rs1, shiftRs1, maskByte) | field(rs2, shiftRs2, maskByte) | relField(rel)

	case ast.FamCondBranch1Reg:
		rs, rel := reg(inst, 0), imm(inst, 1)
		fields = field(rs, shiftRs2, maskByte) | relField(rel)

	case ast.FamJump:
		fields = field(imm(inst, 0), shiftJImm, maskShort)

	case ast.FamJr:
		fields = field(reg(inst, 0), shiftRs2, maskByte)

	case ast.FamUrecv:
		fields = field(reg(inst, 0), shiftRd, maskByte)

	case ast.FamMovImm:
		rd, abs := reg(inst, 0), imm(inst, 1)
		fields = field(rd, shiftRd, maskByte) | field(abs, shiftMovImm, maskShort)

	case ast.FamMem:
		switch inst.Mnemonic {
		case ast.Lw:
			rd, rs, off := reg(inst, 0), reg(inst, 1), imm(inst, 2)
			fields = field(rd, shiftRd, maskByte) | field(rs, shiftRs2, maskByte) | field(off, shiftLwImm, maskByte)
		case ast.Sw:
			rs1, rs2, off := reg(inst, 0), reg(inst, 1), imm(inst, 2)
			fields = field(rs1, shiftRs1, maskByte) | field(rs2, shiftRs2, maskByte) | field(off, shiftSwImm, maskByte)
		}
	}

	return fields | op
}

func reg(inst ast.Instruction, pos int) int64 {
	return int64(inst.Operands[pos].Reg.Encode())
}

func imm(inst ast.Instruction, pos int) int64 {
	op := inst.Operands[pos]
	if op.Kind != ast.KindImmediate {
		panic(fmt.Sprintf("encoder: operand %d of %s is not an immediate", pos+1, inst.Mnemonic))
	}
	return op.Imm
}

// field shifts v into position and masks it, the encoder's one and only
// arithmetic-free primitive for every register and unsigned-immediate
// field.
func field(v int64, shift uint, mask ast.EncodedWord) ast.EncodedWord {
	return (ast.EncodedWord(v) << shift) & (mask << shift)
}

// relField packs a signed relative branch offset into the 11-bit field at
// [26:16] (spec.md §4.E: "rel → [23:16] (masked with 0x07ffffff)" — the
// mask is applied post-shift and spans bits [26:16], the 11 bits the
// resolver's ±1024 range requires; see DESIGN.md).
func relField(rel int64) ast.EncodedWord {
	return (ast.EncodedWord(int32(rel)) << shiftCondRel) & maskRel11f
}
