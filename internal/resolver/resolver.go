// Package resolver implements Pass D of spec.md §4.D, the hard core of the
// pipeline: it expands pseudo-instructions, computes the post-expansion
// address of every label, and rewrites every LabelRef operand into a
// sign-correct concrete Immediate. It is a two-phase, single-linear-pass
// algorithm (spec.md §9: "a two-phase scheme with interval trees is
// unnecessary" — labels attach only to original source instructions and
// every pseudo expands by a fixed, known delta, so one running counter
// suffices).
package resolver

import (
	"fmt"

	"github.com/qyon/r32asm/internal/asmerr"
	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/parser"
)

const (
	shortBranchRange = 1024    // Cond-branch fields hold a relative offset in [-1024, 1024)
	longJumpRange    = 1 << 15 // J/Call fields hold a relative offset in [-2^15, 2^15)
	movImmRange      = 1 << 16 // Movl/Movh fields hold an absolute value in [0, 2^16)
)

// Result is the resolver's output: a fully-resolved instruction list ready
// for the encoder, plus the AddressMap it computed along the way (exposed
// for diagnostics/tooling, e.g. internal/inspect).
type Result struct {
	Instructions []ast.Instruction
	Addresses    ast.AddressMap
}

// Resolve runs both phases of spec.md §4.D over prog.
func Resolve(prog *parser.Program) (*Result, error) {
	addrs := layout(prog)
	instrs, err := emit(prog.Instructions, addrs)
	if err != nil {
		return nil, err
	}
	return &Result{Instructions: instrs, Addresses: addrs}, nil
}

// layout is Phase 1: a single linear pass computing the post-expansion
// address of every label (spec.md §4.D, "Phase 1 — layout").
func layout(prog *parser.Program) ast.AddressMap {
	addrs := make(ast.AddressMap, len(prog.Labels))
	padding := 0

	for i, inst := range prog.Instructions {
		if inst.Label != "" {
			addrs[inst.Label] = i + padding
		}
		if ast.IsLongBranchPseudo(inst.Mnemonic) {
			padding++
		}
	}

	for extra, canonical := range prog.Aliases {
		addrs[extra] = addrs[canonical]
	}

	end := len(prog.Instructions) + padding
	for _, name := range prog.TrailingLabels {
		addrs[name] = end
	}

	return addrs
}

// emit is Phase 2: a second linear pass that emits zero or more
// fully-resolved instructions per source instruction (spec.md §4.D,
// "Phase 2 — emission").
func emit(source []ast.Instruction, addrs ast.AddressMap) ([]ast.Instruction, error) {
	out := make([]ast.Instruction, 0, len(source))
	pos := 0

	for _, inst := range source {
		switch {
		case ast.IsLongBranchPseudo(inst.Mnemonic):
			expanded, err := expandLongBranch(inst, addrs, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			pos += len(expanded)

		default:
			resolved, err := resolveSimple(inst, addrs, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved)
			pos++
		}
	}

	return out, nil
}

// resolveSimple resolves the single LabelRef operand (if any) carried by a
// non-pseudo instruction and returns it unchanged otherwise. Already-resolved
// input (an Immediate where a branch target would be) passes through
// unmodified, which is what makes the resolver idempotent (spec.md §8).
func resolveSimple(inst ast.Instruction, addrs ast.AddressMap, out int) (ast.Instruction, error) {
	labelPos, kind := labelOperandPosition(inst.Mnemonic)
	if kind == noLabel || labelPos >= len(inst.Operands) || inst.Operands[labelPos].Kind != ast.KindLabelRef {
		return inst, nil
	}

	name := inst.Operands[labelPos].Label
	addr, ok := addrs[name]
	if !ok {
		return ast.Instruction{}, asmerr.New(asmerr.LabelNotFound, inst.Line, inst.Column,
			fmt.Sprintf("undefined label %q", name))
	}

	var value int64
	switch kind {
	case relativeShort:
		value = int64(addr - out)
		if value < -shortBranchRange || value >= shortBranchRange {
			return ast.Instruction{}, tooFar(inst, value)
		}
	case relativeLong:
		value = int64(addr - out)
		if value < -longJumpRange || value >= longJumpRange {
			return ast.Instruction{}, tooFar(inst, value)
		}
	case absolute:
		value = int64(addr)
		if value < 0 || value >= movImmRange {
			return ast.Instruction{}, tooFar(inst, value)
		}
	}

	resolved := inst
	resolved.Operands = append([]ast.Operand(nil), inst.Operands...)
	resolved.Operands[labelPos] = ast.Immediate(value)
	return resolved, nil
}

func tooFar(inst ast.Instruction, value int64) error {
	return asmerr.New(asmerr.LabelTooFar, inst.Line, inst.Column,
		fmt.Sprintf("label offset %d does not fit the encoding field", value))
}

type labelKind int

const (
	noLabel labelKind = iota
	relativeShort
	relativeLong
	absolute
)

// labelOperandPosition returns which operand (if any) carries a label for
// a real (non-pseudo) mnemonic, and how that label resolves to a number.
func labelOperandPosition(m ast.Mnemonic) (pos int, kind labelKind) {
	switch m {
	case ast.Ibeq, ast.Ibne, ast.Iblt, ast.Ible, ast.Fblt, ast.Fble:
		return 2, relativeShort
	case ast.Fbps, ast.Fbng:
		return 1, relativeShort
	case ast.J, ast.Call:
		return 0, relativeLong
	case ast.Movl, ast.Movh:
		return 1, absolute
	default:
		return 0, noLabel
	}
}

// expandLongBranch synthesizes the negated-short-branch + unconditional-J
// pair a long-branch pseudo expands to (spec.md §4.D, §8 property 2).
func expandLongBranch(inst ast.Instruction, addrs ast.AddressMap, out int) ([]ast.Instruction, error) {
	name, labelPos := pseudoLabel(inst)
	addr, ok := addrs[name]
	if !ok {
		return nil, asmerr.New(asmerr.LabelNotFound, inst.Line, inst.Column,
			fmt.Sprintf("undefined label %q", name))
	}
	relative := int64(addr - out)

	negatedMnemonic, swap := ast.NegatedBranch(inst.Mnemonic)

	var negatedOperands []ast.Operand
	switch labelPos {
	case 2: // 2-register family: operands = [rs1, rs2, label]
		if swap {
			negatedOperands = []ast.Operand{inst.Operands[1], inst.Operands[0], ast.Immediate(2)}
		} else {
			negatedOperands = []ast.Operand{inst.Operands[0], inst.Operands[1], ast.Immediate(2)}
		}
	case 1: // 1-register family: operands = [rs, label]
		negatedOperands = []ast.Operand{inst.Operands[0], ast.Immediate(2)}
	}

	negated := ast.Instruction{
		Mnemonic: negatedMnemonic,
		Operands: negatedOperands,
		Line:     inst.Line,
		Column:   inst.Column,
	}

	jRelative := relative - 1
	if jRelative < -longJumpRange || jRelative >= longJumpRange {
		return nil, tooFar(inst, jRelative)
	}
	jump := ast.Instruction{
		Mnemonic: ast.J,
		Operands: []ast.Operand{ast.Immediate(jRelative)},
		Line:     inst.Line,
		Column:   inst.Column,
	}

	return []ast.Instruction{negated, jump}, nil
}

// pseudoLabel returns the label name a long-branch pseudo targets and the
// operand position it occupies in the pseudo's own (real-counterpart-shaped)
// operand list.
func pseudoLabel(inst ast.Instruction) (name string, pos int) {
	switch ast.FamilyOf(inst.Mnemonic) {
	case ast.FamCondBranch1Reg:
		return inst.Operands[1].Label, 1
	default: // FamCondBranch2Reg
		return inst.Operands[2].Label, 2
	}
}
