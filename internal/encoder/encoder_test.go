package encoder_test

import (
	"testing"

	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/encoder"
)

func reg(n uint8) ast.Operand { return ast.RegisterRef(ast.Register{Class: ast.RegGeneral, N: n}) }

func TestEncodeArith3Reg(t *testing.T) {
	words := encoder.Encode([]ast.Instruction{
		{Mnemonic: ast.Add, Operands: []ast.Operand{reg(1), reg(2), reg(3)}},
	})
	if want := ast.EncodedWord(0x01010203); words[0] != want {
		t.Errorf("got %#08x, want %#08x", words[0], want)
	}
}

func TestEncodeArithImm(t *testing.T) {
	words := encoder.Encode([]ast.Instruction{
		{Mnemonic: ast.Addi, Operands: []ast.Operand{reg(1), reg(2), ast.Immediate(5)}},
	})
	if want := ast.EncodedWord(0x21010205); words[0] != want {
		t.Errorf("got %#08x, want %#08x", words[0], want)
	}
}

func TestEncodeSelfJump(t *testing.T) {
	words := encoder.Encode([]ast.Instruction{
		{Mnemonic: ast.J, Operands: []ast.Operand{ast.Immediate(0)}},
	})
	if want := ast.EncodedWord(0xc1000000); words[0] != want {
		t.Errorf("got %#08x, want %#08x", words[0], want)
	}
}

func TestEncodeCondBranchSequence(t *testing.T) {
	words := encoder.Encode([]ast.Instruction{
		{Mnemonic: ast.Ibeq, Operands: []ast.Operand{reg(1), reg(2), ast.Immediate(2)}},
		{Mnemonic: ast.Add, Operands: []ast.Operand{reg(1), reg(1), reg(1)}},
		{Mnemonic: ast.Sub, Operands: []ast.Operand{reg(1), reg(1), reg(1)}},
	})
	if want := ast.EncodedWord(0x80020102); words[0] != want {
		t.Errorf("word 0: got %#08x, want %#08x", words[0], want)
	}
	if want := ast.EncodedWord(0x02010101); words[2] != want {
		t.Errorf("word 2: got %#08x, want %#08x", words[2], want)
	}
}

func TestEncodeMovl(t *testing.T) {
	words := encoder.Encode([]ast.Instruction{
		{Mnemonic: ast.Movl, Operands: []ast.Operand{reg(3), ast.Immediate(0x1234)}},
	})
	if want := ast.EncodedWord(0x31031234); words[0] != want {
		t.Errorf("got %#08x, want %#08x", words[0], want)
	}
}

func TestEncodeNegativeRelativeBranch(t *testing.T) {
	words := encoder.Encode([]ast.Instruction{
		{Mnemonic: ast.Iblt, Operands: []ast.Operand{reg(1), reg(2), ast.Immediate(-1)}},
	})
	rel := (words[0] >> 16) & 0x7ff
	if rel != 0x7ff { // -1 in 11-bit two's complement
		t.Errorf("got rel field %#x, want 0x7ff", rel)
	}
}

func TestEncodeOpFunctInjective(t *testing.T) {
	seen := make(map[ast.EncodedWord]ast.Mnemonic)
	mnemonics := []ast.Mnemonic{
		ast.Add, ast.Sub, ast.Fadd, ast.Fsub, ast.Fmul, ast.Fdiv,
		ast.Addi, ast.Subi, ast.Slli, ast.Fabs, ast.Fneg, ast.Fsqrt, ast.Itof, ast.Ftoi,
		ast.Ibeq, ast.Ibne, ast.Iblt, ast.Ible, ast.Fblt, ast.Fble, ast.Fbps, ast.Fbng,
		ast.J, ast.Call, ast.Jr, ast.Movl, ast.Movh, ast.Urecv, ast.Usend, ast.Lw, ast.Sw,
	}
	for _, m := range mnemonics {
		inst := zeroedInstruction(m)
		word := encoder.Encode([]ast.Instruction{inst})[0]
		op := word & 0xff000000
		if other, ok := seen[op]; ok {
			t.Fatalf("op/funct bits %#x shared by %s and %s", op, m, other)
		}
		seen[op] = m
	}
}

// zeroedInstruction builds the minimal well-formed operand list for m so
// Encode never indexes out of range, for the sake of the injectivity test.
func zeroedInstruction(m ast.Mnemonic) ast.Instruction {
	switch ast.FamilyOf(m) {
	case ast.FamArith3Reg:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0), reg(0), reg(0)}}
	case ast.FamArithImm, ast.FamMem:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0), reg(0), ast.Immediate(0)}}
	case ast.FamArithExt:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0), reg(0)}}
	case ast.FamCondBranch2Reg:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0), reg(0), ast.Immediate(0)}}
	case ast.FamCondBranch1Reg:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0), ast.Immediate(0)}}
	case ast.FamJump:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{ast.Immediate(0)}}
	case ast.FamJr:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0)}}
	case ast.FamUrecv:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0)}}
	case ast.FamMovImm:
		return ast.Instruction{Mnemonic: m, Operands: []ast.Operand{reg(0), ast.Immediate(0)}}
	default:
		return ast.Instruction{Mnemonic: m}
	}
}
