package parser_test

import (
	"testing"

	"github.com/qyon/r32asm/internal/lexer"
	"github.com/qyon/r32asm/internal/parser"
	"github.com/qyon/r32asm/internal/token"
)

func parse(t *testing.T, src string) *parser.Program {
	t.Helper()
	l := lexer.New(src)
	prog, err := parser.New(l).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

func TestParseSimpleProgram(t *testing.T) {
	prog := parse(t, "add r1, r2, r3\nsub r1, r1, r1\n")
	if len(prog.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(prog.Instructions))
	}
}

func TestParseLabelAttachesToFollowingInstruction(t *testing.T) {
	prog := parse(t, "loop: j loop\n")
	if !prog.Labels.Has("loop") {
		t.Fatal("expected label 'loop' to be recorded")
	}
	if prog.Instructions[0].Label != "loop" {
		t.Errorf("expected instruction to carry label 'loop', got %q", prog.Instructions[0].Label)
	}
}

func TestParseStackedLabelsProduceAliases(t *testing.T) {
	prog := parse(t, "a:\nb:\nadd r1, r1, r1\n")
	if prog.Instructions[0].Label != "b" {
		t.Fatalf("expected last stacked label 'b' to attach, got %q", prog.Instructions[0].Label)
	}
	if prog.Aliases["a"] != "b" {
		t.Errorf("expected 'a' aliased to 'b', got %q", prog.Aliases["a"])
	}
}

func TestParseTrailingLabelHasNoInstruction(t *testing.T) {
	prog := parse(t, "add r1, r1, r1\nend:\n")
	if len(prog.TrailingLabels) != 1 || prog.TrailingLabels[0] != "end" {
		t.Fatalf("expected trailing label 'end', got %v", prog.TrailingLabels)
	}
}

func TestParseRedefinedLabelFails(t *testing.T) {
	l := lexer.New("a: add r1, r1, r1\na: add r1, r1, r1\n")
	if _, err := parser.New(l).Parse(); err == nil {
		t.Fatal("expected a redefinition error")
	}
}

func TestParseSemicolonSeparatesInstructions(t *testing.T) {
	prog := parse(t, "add r1, r1, r1; sub r1, r1, r1\n")
	if len(prog.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(prog.Instructions))
	}
}

func TestParseUnknownMnemonicFails(t *testing.T) {
	l := lexer.New("bogus r1, r1, r1\n")
	if _, err := parser.New(l).Parse(); err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

// sliceSource lets tests feed a fixed token.Token list without a real lexer.
type sliceSource struct {
	toks []token.Token
	i    int
}

func (s *sliceSource) Next() (token.Token, error) {
	if s.i >= len(s.toks) {
		return token.Token{Kind: token.Eof}, nil
	}
	tok := s.toks[s.i]
	s.i++
	return tok, nil
}

func TestParseOperandKindsFromTokenStream(t *testing.T) {
	src := &sliceSource{toks: []token.Token{
		{Kind: token.Mnemonic, Text: "lw"},
		{Kind: token.Register, Reg: token.Register{Class: token.RegGeneral, N: 1}},
		{Kind: token.Comma},
		{Kind: token.Register, Reg: token.Register{Class: token.RegGeneral, N: 2}},
		{Kind: token.Comma},
		{Kind: token.Digit, Num: 4},
		{Kind: token.Eof},
	}}
	prog, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Instructions[0].Operands) != 3 {
		t.Fatalf("expected 3 operands, got %d", len(prog.Instructions[0].Operands))
	}
}
