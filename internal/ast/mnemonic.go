// Package ast defines the core data model of spec.md §3: Register, Mnemonic,
// Operand, Instruction, LabelSet and AddressMap. Every dispatch over
// Mnemonic elsewhere in the pipeline is an exhaustive switch, never a chain
// of string comparisons, so that adding a mnemonic is a compile-time
// failure at every site until updated (spec.md §9, "Mnemonic/Operand as sum
// types").
package ast

// Mnemonic is the closed enumeration of real instructions and
// pseudo-instructions.
type Mnemonic int

const (
	// Arithmetic-3-register
	Add Mnemonic = iota
	Sub
	Fadd
	Fsub
	Fmul
	Fdiv

	// Arithmetic-immediate
	Addi
	Subi
	Slli

	// Arithmetic-extended
	Fabs
	Fneg
	Fsqrt
	Itof
	Ftoi

	// Conditional branches, 2-register
	Ibeq
	Ibne
	Iblt
	Ible
	Fblt
	Fble

	// Conditional branches, 1-register
	Fbps
	Fbng

	// Control transfer
	J
	Call
	Jr

	// Immediate-load
	Movl
	Movh

	// I/O
	Urecv
	Usend

	// Memory
	Lw
	Sw

	// Pseudo: long-range branches
	Libeq
	Libne
	Liblt
	Lible
	Lfblt
	Lfble
	Lfbps
	Lfbng
)

var mnemonicNames = map[Mnemonic]string{
	Add: "add", Sub: "sub", Fadd: "fadd", Fsub: "fsub", Fmul: "fmul", Fdiv: "fdiv",
	Addi: "addi", Subi: "subi", Slli: "slli",
	Fabs: "fabs", Fneg: "fneg", Fsqrt: "fsqrt", Itof: "itof", Ftoi: "ftoi",
	Ibeq: "ibeq", Ibne: "ibne", Iblt: "iblt", Ible: "ible", Fblt: "fblt", Fble: "fble",
	Fbps: "fbps", Fbng: "fbng",
	J: "j", Call: "call", Jr: "jr",
	Movl: "movl", Movh: "movh",
	Urecv: "urecv", Usend: "usend",
	Lw: "lw", Sw: "sw",
	Libeq: "libeq", Libne: "libne", Liblt: "liblt", Lible: "lible",
	Lfblt: "lfblt", Lfble: "lfble", Lfbps: "lfbps", Lfbng: "lfbng",
}

var mnemonicByName map[string]Mnemonic

func init() {
	mnemonicByName = make(map[string]Mnemonic, len(mnemonicNames))
	for m, name := range mnemonicNames {
		mnemonicByName[name] = m
	}
}

func (m Mnemonic) String() string {
	if name, ok := mnemonicNames[m]; ok {
		return name
	}
	return "?"
}

// Lookup resolves a case-folded mnemonic keyword to its Mnemonic, the
// dispatch used by the lexer to classify a Mnemonic token (spec.md §6).
func Lookup(lowercased string) (Mnemonic, bool) {
	m, ok := mnemonicByName[lowercased]
	return m, ok
}

// IsLongBranchPseudo reports whether m is one of the eight pseudo
// long-range branches that the resolver expands (spec.md §3, §4.D).
func IsLongBranchPseudo(m Mnemonic) bool {
	switch m {
	case Libeq, Libne, Liblt, Lible, Lfblt, Lfble, Lfbps, Lfbng:
		return true
	default:
		return false
	}
}

// Family groups mnemonics by operand shape and encoding layout
// (spec.md §4.C and §4.E).
type Family int

const (
	FamArith3Reg Family = iota
	FamArithImm
	FamArithExt
	FamCondBranch2Reg
	FamCondBranch1Reg
	FamJump   // J, Call
	FamJr     // Jr, Usend
	FamUrecv  // rd only
	FamMovImm // Movl, Movh
	FamMem    // Lw, Sw (distinct placement per mnemonic, grouped for admissibility)
)

// FamilyOf returns the operand-shape family for a *real* mnemonic. Pseudo
// long-branches share operand shape with their real counterpart, returned
// by RealCounterpart.
func FamilyOf(m Mnemonic) Family {
	switch m {
	case Add, Sub, Fadd, Fsub, Fmul, Fdiv:
		return FamArith3Reg
	case Addi, Subi, Slli:
		return FamArithImm
	case Fabs, Fneg, Fsqrt, Itof, Ftoi:
		return FamArithExt
	case Ibeq, Ibne, Iblt, Ible, Fblt, Fble:
		return FamCondBranch2Reg
	case Fbps, Fbng:
		return FamCondBranch1Reg
	case J, Call:
		return FamJump
	case Jr, Usend:
		return FamJr
	case Urecv:
		return FamUrecv
	case Movl, Movh:
		return FamMovImm
	case Lw, Sw:
		return FamMem
	default:
		// Pseudo mnemonics: resolve via RealCounterpart first.
		return FamilyOf(RealCounterpart(m))
	}
}

// RealCounterpart returns the real instruction whose operand shape a
// pseudo long-branch shares (spec.md §4.C, "Pseudo long-branches share
// operand shape with their real counterparts").
func RealCounterpart(m Mnemonic) Mnemonic {
	switch m {
	case Libeq:
		return Ibeq
	case Libne:
		return Ibne
	case Liblt:
		return Iblt
	case Lible:
		return Ible
	case Lfblt:
		return Fblt
	case Lfble:
		return Fble
	case Lfbps:
		return Fbps
	case Lfbng:
		return Fbng
	default:
		return m
	}
}

// NegatedBranch implements the resolver's negation table (spec.md §4.D):
// for a long-branch pseudo, the real mnemonic the negated short branch
// should use, and whether operands[0]/operands[1] must be swapped.
func NegatedBranch(pseudo Mnemonic) (negated Mnemonic, swapOperands bool) {
	switch pseudo {
	case Libeq:
		return Ibne, false
	case Libne:
		return Ibeq, false // eq/ne negate each other without an operand swap
	case Liblt:
		return Ible, true
	case Lible:
		return Iblt, true
	case Lfblt:
		return Fble, true
	case Lfble:
		return Fblt, true
	case Lfbps:
		return Fbng, false
	case Lfbng:
		return Fbps, false
	default:
		panic("asm: NegatedBranch called on a non-pseudo mnemonic")
	}
}
