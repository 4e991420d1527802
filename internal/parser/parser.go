// Package parser implements Pass B of spec.md §4.B: it groups a flat token
// stream into a labeled instruction list and the set of defined labels. It
// performs no semantic validation — that is Pass C's job (package checker)
// — and it never computes an address; addresses are the resolver's sole
// responsibility (spec.md §9).
package parser

import (
	"fmt"

	"github.com/qyon/r32asm/internal/asmerr"
	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/token"
)

// TokenSource is the external collaborator from spec.md §6: a lazy sequence
// of (token, line, column) triples.
type TokenSource interface {
	Next() (token.Token, error)
}

// Program is the parser's full output: the labeled instruction list plus
// everything needed to resolve labels that don't live on an Instruction's
// single Label field.
type Program struct {
	Instructions []ast.Instruction
	Labels       ast.LabelSet

	// Aliases maps an extra label name to the canonical label carried by
	// the Instruction it shares an address with. The grammar's
	// "(LABEL COLON NEWLINE*)? instr" only reserves one Label slot per
	// Instruction (spec.md §3); when source code stacks multiple label
	// definitions immediately before one instruction, every label but the
	// last becomes an alias of it (see DESIGN.md).
	Aliases map[string]string

	// TrailingLabels holds labels defined at the very end of the source
	// with no following instruction — legal per spec.md §9's first open
	// question. They resolve to the address one past the last emitted
	// word (see DESIGN.md for the chosen semantics).
	TrailingLabels []string
}

// Parser is a recursive-descent parser over a TokenSource, following the
// grammar in spec.md §4.B.
type Parser struct {
	src     TokenSource
	cur     token.Token
	peek    token.Token
	primed  bool
	defined map[string]int // not populated; redefinition is detected through Program.Labels
}

// New creates a Parser over src.
func New(src TokenSource) *Parser {
	return &Parser{src: src, defined: make(map[string]int)}
}

func (p *Parser) prime() error {
	if p.primed {
		return nil
	}
	var err error
	p.cur, err = p.src.Next()
	if err != nil {
		return err
	}
	p.peek, err = p.src.Next()
	if err != nil {
		return err
	}
	p.primed = true
	return nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	if p.cur.Kind == token.Eof {
		// Keep yielding EOF once the stream is exhausted.
		p.peek = p.cur
		return nil
	}
	next, err := p.src.Next()
	if err != nil {
		return err
	}
	p.peek = next
	return nil
}

func malformed(line, col int, format string, args ...any) error {
	return asmerr.New(asmerr.MalformedSentence, line, col, fmt.Sprintf(format, args...))
}

// Parse consumes the entire token stream and returns the labeled
// instruction list and label set, or the first grammar violation
// encountered (spec.md §4.B).
func (p *Parser) Parse() (*Program, error) {
	if err := p.prime(); err != nil {
		return nil, err
	}

	prog := &Program{
		Labels:  ast.NewLabelSet(),
		Aliases: make(map[string]string),
	}

	var pending []token.Token // pending label tokens awaiting an instruction

	for {
		switch p.cur.Kind {
		case token.Eof:
			if len(pending) > 0 {
				for _, lbl := range pending {
					prog.TrailingLabels = append(prog.TrailingLabels, lbl.Text)
				}
			}
			return prog, nil

		case token.Newline:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue

		case token.Semicolon:
			if len(pending) > 0 {
				return nil, malformed(p.cur.Line, p.cur.Column,
					"expected an instruction after a label, found ';'")
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue

		case token.Label:
			if p.peek.Kind != token.Colon {
				return nil, malformed(p.cur.Line, p.cur.Column,
					"expected ':' after label %q", p.cur.Text)
			}
			if err := p.defineLabel(prog, p.cur); err != nil {
				return nil, err
			}
			pending = append(pending, p.cur)
			if err := p.advance(); err != nil { // consume LABEL
				return nil, err
			}
			if err := p.advance(); err != nil { // consume COLON
				return nil, err
			}
			for p.cur.Kind == token.Newline {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			continue

		case token.Mnemonic:
			inst, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			if len(pending) > 0 {
				inst.Label = pending[len(pending)-1].Text
				for _, extra := range pending[:len(pending)-1] {
					prog.Aliases[extra.Text] = inst.Label
				}
				pending = nil
			}
			prog.Instructions = append(prog.Instructions, inst)

			if err := p.expectTerminator(); err != nil {
				return nil, err
			}
			continue

		default:
			return nil, malformed(p.cur.Line, p.cur.Column,
				"expected a label or instruction, found %s", p.cur.Kind)
		}
	}
}

func (p *Parser) defineLabel(prog *Program, lbl token.Token) error {
	if prog.Labels.Has(lbl.Text) {
		return malformed(lbl.Line, lbl.Column, "label %q redefined", lbl.Text)
	}
	prog.Labels.Add(lbl.Text)
	return nil
}

// parseInstruction parses "MNEMONIC operand (COMMA operand)*".
func (p *Parser) parseInstruction() (ast.Instruction, error) {
	mn, ok := ast.Lookup(p.cur.Text)
	if !ok {
		return ast.Instruction{}, malformed(p.cur.Line, p.cur.Column,
			"unknown mnemonic %q", p.cur.Text)
	}
	inst := ast.Instruction{Mnemonic: mn, Line: p.cur.Line, Column: p.cur.Column}
	if err := p.advance(); err != nil {
		return ast.Instruction{}, err
	}

	op, err := p.parseOperand()
	if err != nil {
		return ast.Instruction{}, err
	}
	inst.Operands = append(inst.Operands, op)

	for p.cur.Kind == token.Comma {
		if err := p.advance(); err != nil {
			return ast.Instruction{}, err
		}
		op, err := p.parseOperand()
		if err != nil {
			return ast.Instruction{}, err
		}
		inst.Operands = append(inst.Operands, op)
	}

	return inst, nil
}

func (p *Parser) parseOperand() (ast.Operand, error) {
	switch p.cur.Kind {
	case token.Register:
		reg := p.cur.Reg
		if err := p.advance(); err != nil {
			return ast.Operand{}, err
		}
		return ast.RegisterRef(reg), nil
	case token.Digit:
		v := p.cur.Num
		if err := p.advance(); err != nil {
			return ast.Operand{}, err
		}
		return ast.Immediate(v), nil
	case token.Label:
		name := p.cur.Text
		if err := p.advance(); err != nil {
			return ast.Operand{}, err
		}
		return ast.LabelRef(name), nil
	default:
		return ast.Operand{}, malformed(p.cur.Line, p.cur.Column,
			"expected an operand, found %s", p.cur.Kind)
	}
}

func (p *Parser) expectTerminator() error {
	switch p.cur.Kind {
	case token.Newline, token.Semicolon, token.Eof:
		if p.cur.Kind != token.Eof {
			return p.advance()
		}
		return nil
	default:
		return malformed(p.cur.Line, p.cur.Column,
			"expected end of instruction, found %s", p.cur.Kind)
	}
}
