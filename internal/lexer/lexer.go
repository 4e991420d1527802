// Package lexer implements the token source described as an external
// collaborator in spec.md §6: it yields a lazy sequence of (token, line,
// column) triples. The character-level tokenization rules are fixed by
// spec.md §6: rN identifiers become general registers, zero/sp/fp (any
// case) become the named registers, a case-insensitive match against the
// mnemonic table becomes a Mnemonic token, decimal/0x/0b literals all
// become Digit, and anything else is a Label.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/qyon/r32asm/internal/asmerr"
	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/token"
)

// Lexer tokenizes assembly source one rune at a time, in the style of
// _examples/lookbusy1344-arm_emulator/parser/lexer.go's Lexer, but
// re-targeted at this ISA's flatter token set.
type Lexer struct {
	input  string
	pos    int
	line   int
	column int
	ch     rune
}

// New creates a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = rune(l.input[l.pos])
	}
	l.pos++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return rune(l.input[l.pos])
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

// Next returns the next token from the input, or a *asmerr.Diagnostic of
// kind Lexical on a malformed token or unrecognized character. Per
// spec.md §6 the token kinds are closed to Mnemonic, Register, Digit,
// Label, Colon, Comma, Semicolon, Newline and Eof — there is no comment
// syntax at this layer.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()

	line, col := l.line, l.column

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.Eof, Line: line, Column: col}, nil

	case l.ch == '\n':
		l.line++
		l.column = 0
		l.readChar()
		return token.Token{Kind: token.Newline, Line: line, Column: col}, nil

	case l.ch == ':':
		l.readChar()
		return token.Token{Kind: token.Colon, Line: line, Column: col}, nil

	case l.ch == ',':
		l.readChar()
		return token.Token{Kind: token.Comma, Line: line, Column: col}, nil

	case l.ch == ';':
		l.readChar()
		return token.Token{Kind: token.Semicolon, Line: line, Column: col}, nil

	case l.ch == '-' && unicode.IsDigit(l.peekChar()):
		return l.readNumber(line, col)

	case unicode.IsDigit(l.ch):
		return l.readNumber(line, col)

	case isIdentStart(l.ch):
		return l.readIdentifier(line, col)

	default:
		bad := l.ch
		l.readChar()
		return token.Token{}, asmerr.New(asmerr.Lexical, line, col,
			fmt.Sprintf("unrecognized character %q", bad))
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func (l *Lexer) readIdentifier(line, col int) (token.Token, error) {
	start := l.pos - 1
	for isIdentChar(l.ch) {
		l.readChar()
	}
	text := l.input[start : l.pos-1]
	lower := strings.ToLower(text)

	switch lower {
	case "zero":
		return token.Token{Kind: token.Register, Reg: token.Register{Class: token.RegZero}, Line: line, Column: col}, nil
	case "sp":
		return token.Token{Kind: token.Register, Reg: token.Register{Class: token.RegSp}, Line: line, Column: col}, nil
	case "fp":
		return token.Token{Kind: token.Register, Reg: token.Register{Class: token.RegFp}, Line: line, Column: col}, nil
	}

	if len(lower) >= 2 && lower[0] == 'r' && isAllDigits(lower[1:]) {
		n, err := strconv.ParseUint(lower[1:], 10, 16)
		if err == nil && n <= 252 {
			return token.Token{Kind: token.Register, Reg: token.Register{Class: token.RegGeneral, N: uint8(n)}, Line: line, Column: col}, nil
		}
	}

	if _, ok := ast.Lookup(lower); ok {
		return token.Token{Kind: token.Mnemonic, Text: lower, Line: line, Column: col}, nil
	}

	return token.Token{Kind: token.Label, Text: text, Line: line, Column: col}, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (l *Lexer) readNumber(line, col int) (token.Token, error) {
	start := l.pos - 1
	neg := false
	if l.ch == '-' {
		neg = true
		l.readChar()
	}

	base := 10
	digitsStart := l.pos - 1
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		base = 16
		digitsStart = l.pos - 1
		for isHexDigit(l.ch) {
			l.readChar()
		}
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		base = 2
		digitsStart = l.pos - 1
		for l.ch == '0' || l.ch == '1' {
			l.readChar()
		}
	} else {
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}

	digits := l.input[digitsStart : l.pos-1]
	if digits == "" {
		return token.Token{}, asmerr.New(asmerr.Lexical, line, col,
			fmt.Sprintf("malformed numeric literal %q", l.input[start:l.pos-1]))
	}

	val, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return token.Token{}, asmerr.New(asmerr.Lexical, line, col,
			fmt.Sprintf("malformed numeric literal %q", l.input[start:l.pos-1]))
	}
	if neg {
		val = -val
	}

	return token.Token{Kind: token.Digit, Num: val, Line: line, Column: col}, nil
}

func isHexDigit(ch rune) bool {
	return unicode.IsDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
