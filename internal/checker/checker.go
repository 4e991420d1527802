// Package checker implements Pass C of spec.md §4.C: given the parser's
// output, it validates operand arity, operand kind admissibility, numeric
// ranges, and label existence without mutating anything. It either succeeds
// or returns the first violation as a typed error; there is no accumulation
// (spec.md §7).
package checker

import (
	"fmt"

	"github.com/qyon/r32asm/internal/asmerr"
	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/parser"
)

// kindMask is a bitmask over {register, label, immediate}, giving the
// checker's operand-kind dispatch O(1) lookup and centralizing the
// "must be ..." phrasing (spec.md §9).
type kindMask uint8

const (
	maskR kindMask = 1 << iota
	maskL
	maskI
)

func (m kindMask) allows(k ast.OperandKind) bool {
	switch k {
	case ast.KindRegisterRef:
		return m&maskR != 0
	case ast.KindLabelRef:
		return m&maskL != 0
	case ast.KindImmediate:
		return m&maskI != 0
	default:
		return false
	}
}

// phrase renders the fixed phrase table for InvalidOperandKind messages.
func (m kindMask) phrase() string {
	switch m {
	case maskR:
		return "a register"
	case maskL:
		return "a label"
	case maskI:
		return "an immediate"
	case maskI | maskL:
		return "an immediate or a label"
	case maskR | maskL:
		return "a register or a label"
	default:
		return "a different kind of operand"
	}
}

// shape is the expected per-position kind mask for a mnemonic family
// (spec.md §4.C's admissibility table).
type shape []kindMask

var familyShapes = map[ast.Family]shape{
	ast.FamArith3Reg:      {maskR, maskR, maskR},
	ast.FamArithImm:       {maskR, maskR, maskI},
	ast.FamArithExt:       {maskR, maskR},
	ast.FamCondBranch2Reg: {maskR, maskR, maskL},
	ast.FamCondBranch1Reg: {maskR, maskL},
	ast.FamJump:           {maskL},
	ast.FamJr:             {maskR},
	ast.FamUrecv:          {maskR},
	ast.FamMovImm:         {maskR, maskI | maskL},
	ast.FamMem:            {maskR, maskR, maskI},
}

// writesDestination reports whether a real mnemonic's first operand is a
// destination register, subject to the "substitution to zero register is
// meaningless" check (spec.md §4.C). Sw is deliberately excluded: its first
// operand is a source (rs1), not a destination.
func writesDestination(m ast.Mnemonic) bool {
	switch m {
	case ast.Add, ast.Sub, ast.Fadd, ast.Fsub, ast.Fmul, ast.Fdiv,
		ast.Addi, ast.Subi, ast.Slli,
		ast.Fabs, ast.Fneg, ast.Fsqrt, ast.Itof, ast.Ftoi,
		ast.Movl, ast.Movh, ast.Urecv, ast.Lw:
		return true
	default:
		return false
	}
}

func malformed(kind asmerr.Kind, line, col int, format string, args ...any) error {
	return asmerr.New(kind, line, col, fmt.Sprintf(format, args...))
}

// Check validates every instruction in prog. It never mutates prog.
func Check(prog *parser.Program) error {
	for _, inst := range prog.Instructions {
		if err := checkInstruction(prog, inst); err != nil {
			return err
		}
	}
	return nil
}

func checkInstruction(prog *parser.Program, inst ast.Instruction) error {
	real := ast.RealCounterpart(inst.Mnemonic)
	fam := ast.FamilyOf(inst.Mnemonic)
	sh := familyShapes[fam]

	if len(inst.Operands) != len(sh) {
		return malformed(asmerr.InvalidOperandNum, inst.Line, inst.Column,
			"%s expects %d operand(s), got %d", inst.Mnemonic, len(sh), len(inst.Operands))
	}

	for i, op := range inst.Operands {
		mask := sh[i]
		if !mask.allows(op.Kind) {
			return malformed(asmerr.InvalidOperandKind, inst.Line, inst.Column,
				"%s operand must be %s", asmerr.Ordinal(i+1), mask.phrase())
		}

		switch op.Kind {
		case ast.KindLabelRef:
			if !prog.Labels.Has(op.Label) {
				return malformed(asmerr.LabelNotFound, inst.Line, inst.Column,
					"undefined label %q", op.Label)
			}
		case ast.KindImmediate:
			if err := checkImmediateRange(fam, i, op.Imm, inst); err != nil {
				return err
			}
		}
	}

	if writesDestination(real) && len(inst.Operands) > 0 {
		if rd := inst.Operands[0]; rd.Kind == ast.KindRegisterRef && rd.Reg.Class == ast.RegZero {
			return malformed(asmerr.SubstitutionToZero, inst.Line, inst.Column,
				"substitution to zero register is meaningless")
		}
	}

	return nil
}

func checkImmediateRange(fam ast.Family, pos int, v int64, inst ast.Instruction) error {
	switch fam {
	case ast.FamArithImm, ast.FamMem:
		if v < 0 || v >= 256 {
			return malformed(asmerr.ImmTooLarge, inst.Line, inst.Column,
				"immediate %d out of range [0, 256)", v)
		}
	case ast.FamMovImm:
		if v < 0 || v >= 65536 {
			return malformed(asmerr.ImmTooLarge, inst.Line, inst.Column,
				"immediate %d out of range [0, 65536)", v)
		}
	}
	return nil
}
