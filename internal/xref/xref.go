// Package xref builds a cross-reference table of label definitions and
// uses, adapted from the teacher's tools.XRefGenerator/Symbol shape and
// re-targeted at this ISA's one kind of symbol: a label. It backs the
// interactive inspector's symbol view (internal/inspect).
package xref

import (
	"sort"

	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/parser"
)

// Reference is a single use of a label at a source position.
type Reference struct {
	Line   int
	Column int
}

// Symbol is a label together with where it is defined and every place it
// is referenced.
type Symbol struct {
	Name       string
	Definition Reference
	References []Reference
}

// Build returns, sorted by name, a Symbol for every label attached to an
// instruction and for every alias of such a label. Labels in
// prog.TrailingLabels have no instruction to take a position from and are
// omitted, so their references are not counted either.
func Build(prog *parser.Program) []*Symbol {
	symbols := make(map[string]*Symbol, len(prog.Labels))

	for _, inst := range prog.Instructions {
		if inst.Label != "" {
			symbols[inst.Label] = &Symbol{
				Name:       inst.Label,
				Definition: Reference{Line: inst.Line, Column: inst.Column},
			}
		}
	}
	for extra, canonical := range prog.Aliases {
		if def, ok := symbols[canonical]; ok {
			symbols[extra] = &Symbol{Name: extra, Definition: def.Definition}
		}
	}

	for _, inst := range prog.Instructions {
		for _, op := range inst.Operands {
			if op.Kind != ast.KindLabelRef {
				continue
			}
			sym, ok := symbols[op.Label]
			if !ok {
				continue
			}
			sym.References = append(sym.References, Reference{Line: inst.Line, Column: inst.Column})
		}
	}

	list := make([]*Symbol, 0, len(symbols))
	for _, sym := range symbols {
		list = append(list, sym)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
