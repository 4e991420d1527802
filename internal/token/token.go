// Package token defines the token stream contract between the lexer and
// the parser (see spec.md §6, "Token source").
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Eof Kind = iota
	Newline
	Colon
	Comma
	Semicolon
	Mnemonic
	Register
	Digit
	Label
)

var kindNames = map[Kind]string{
	Eof:       "EOF",
	Newline:   "NEWLINE",
	Colon:     "COLON",
	Comma:     "COMMA",
	Semicolon: "SEMICOLON",
	Mnemonic:  "MNEMONIC",
	Register:  "REGISTER",
	Digit:     "DIGIT",
	Label:     "LABEL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit with its source position. Exactly one of
// the payload fields is meaningful, selected by Kind:
//
//	Mnemonic -> Text holds the canonical (lower-case) mnemonic spelling
//	Register -> Reg holds the decoded register
//	Digit    -> Num holds the parsed signed value
//	Label    -> Text holds the raw identifier spelling
type Token struct {
	Kind   Kind
	Text   string
	Num    int64
	Reg    Register
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Kind {
	case Digit:
		return fmt.Sprintf("%s(%d) at %d:%d", t.Kind, t.Num, t.Line, t.Column)
	case Register:
		return fmt.Sprintf("%s(%s) at %d:%d", t.Kind, t.Reg, t.Line, t.Column)
	case Mnemonic, Label:
		return fmt.Sprintf("%s(%q) at %d:%d", t.Kind, t.Text, t.Line, t.Column)
	default:
		return fmt.Sprintf("%s at %d:%d", t.Kind, t.Line, t.Column)
	}
}

// RegisterClass distinguishes the named registers from the general file.
type RegisterClass int

const (
	RegGeneral RegisterClass = iota
	RegZero
	RegSp
	RegFp
)

// Register is the tagged register variant from spec.md §3.
type Register struct {
	Class RegisterClass
	N     uint8 // meaningful only when Class == RegGeneral, 0..=252
}

func (r Register) String() string {
	switch r.Class {
	case RegZero:
		return "zero"
	case RegSp:
		return "sp"
	case RegFp:
		return "fp"
	default:
		return fmt.Sprintf("r%d", r.N)
	}
}

// Encode returns the 8-bit hardware encoding for the register (spec.md §3).
func (r Register) Encode() uint8 {
	switch r.Class {
	case RegZero:
		return 255
	case RegFp:
		return 254
	case RegSp:
		return 253
	default:
		return r.N
	}
}
