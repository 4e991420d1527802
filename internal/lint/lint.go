// Package lint implements the assembler's non-fatal diagnostics (spec.md
// §10.1), adapted from the teacher's tools.Linter/LintIssue shape. Unlike
// the checker, lint never fails a build: its findings are reported to
// stderr and never change the emitted words or the process exit code.
package lint

import (
	"fmt"
	"sort"

	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/parser"
)

// Level is a lint finding's severity. The assembler currently only raises
// Warning-level findings; Level exists so future lint rules (e.g.
// unreachable code after an unconditional J) have somewhere to live
// without a breaking change.
type Level int

const (
	Warning Level = iota
	Info
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Issue is a single lint finding.
type Issue struct {
	Level   Level
	Line    int
	Column  int
	Message string
	Code    string
}

func (i *Issue) String() string {
	return fmt.Sprintf("line %d:%d: %s: %s [%s]", i.Line, i.Column, i.Level, i.Message, i.Code)
}

// Options controls which lint rules run.
type Options struct {
	WarnUnusedLabels bool
}

// Lint analyzes prog and returns every finding, sorted by source position.
// It never mutates prog and never returns an error: lint failures are
// findings, not diagnostics (spec.md §10.1).
func Lint(prog *parser.Program, opts Options) []*Issue {
	var issues []*Issue

	if opts.WarnUnusedLabels {
		issues = append(issues, unusedLabels(prog)...)
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Column < issues[j].Column
	})
	return issues
}

func unusedLabels(prog *parser.Program) []*Issue {
	referenced := make(map[string]bool, len(prog.Labels))
	for _, inst := range prog.Instructions {
		for _, op := range inst.Operands {
			if op.Kind == ast.KindLabelRef {
				referenced[op.Label] = true
			}
		}
	}
	defined := make(map[string]ast.Instruction, len(prog.Labels))
	for _, inst := range prog.Instructions {
		if inst.Label != "" {
			defined[inst.Label] = inst
		}
	}

	var issues []*Issue
	for name, inst := range defined {
		if referenced[name] {
			continue
		}
		aliasOf := false
		for extra, canonical := range prog.Aliases {
			if canonical == name && referenced[extra] {
				aliasOf = true
				break
			}
		}
		if aliasOf {
			continue
		}
		issues = append(issues, &Issue{
			Level:   Warning,
			Line:    inst.Line,
			Column:  inst.Column,
			Message: fmt.Sprintf("label %q is never referenced", name),
			Code:    "UNUSED_LABEL",
		})
	}
	return issues
}
