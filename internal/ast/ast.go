package ast

import "github.com/qyon/r32asm/internal/token"

// Register re-exports the tagged register variant so downstream packages
// only need to import ast, not token, for the data model.
type Register = token.Register

const (
	RegGeneral = token.RegGeneral
	RegZero    = token.RegZero
	RegSp      = token.RegSp
	RegFp      = token.RegFp
)

// OperandKind is the tagged variant discriminator for Operand.
type OperandKind int

const (
	KindRegisterRef OperandKind = iota
	KindLabelRef
	KindImmediate
)

// Operand is the tagged variant {RegisterRef, LabelRef, Immediate} from
// spec.md §3. Exactly one field is meaningful, selected by Kind.
type Operand struct {
	Kind  OperandKind
	Reg   Register
	Label string
	Imm   int64
}

func RegisterRef(r Register) Operand { return Operand{Kind: KindRegisterRef, Reg: r} }
func LabelRef(name string) Operand   { return Operand{Kind: KindLabelRef, Label: name} }
func Immediate(v int64) Operand      { return Operand{Kind: KindImmediate, Imm: v} }

// Instruction is a single parsed line of assembly (spec.md §3). Label is the
// symbolic name attached TO this instruction; its position becomes that
// label's address.
type Instruction struct {
	Label    string // "" if this instruction carries no label
	Mnemonic Mnemonic
	Operands []Operand
	Line     int
	Column   int
}

// LabelSet is the set of label names the parser has seen defined. The
// parser records only *that* a label is defined, never its address — the
// resolver is the sole authority over addresses (spec.md §9).
type LabelSet map[string]struct{}

func NewLabelSet() LabelSet { return make(LabelSet) }

func (s LabelSet) Add(name string)      { s[name] = struct{}{} }
func (s LabelSet) Has(name string) bool { _, ok := s[name]; return ok }

// AddressMap maps a label name to its final, post-expansion instruction
// index, computed solely by the resolver (spec.md §3, §4.D).
type AddressMap map[string]int

// EncodedWord is a fully packed 32-bit instruction word (spec.md §3).
type EncodedWord = uint32
