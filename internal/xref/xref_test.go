package xref_test

import (
	"testing"

	"github.com/qyon/r32asm/internal/lexer"
	"github.com/qyon/r32asm/internal/parser"
	"github.com/qyon/r32asm/internal/xref"
)

func TestBuildTracksDefinitionAndReferences(t *testing.T) {
	prog, err := parser.New(lexer.New("loop: add r1, r1, r1\nj loop\n")).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	symbols := xref.Build(prog)
	if len(symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(symbols))
	}
	sym := symbols[0]
	if sym.Name != "loop" {
		t.Errorf("expected symbol 'loop', got %q", sym.Name)
	}
	if len(sym.References) != 1 {
		t.Errorf("expected 1 reference, got %d", len(sym.References))
	}
}
