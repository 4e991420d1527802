package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/parser"
	"github.com/qyon/r32asm/internal/resolver"
)

func r(n uint8) ast.Operand { return ast.RegisterRef(ast.Register{Class: ast.RegGeneral, N: n}) }

func TestResolveSelfJump(t *testing.T) {
	prog := &parser.Program{
		Labels: ast.LabelSet{"L": struct{}{}},
		Instructions: []ast.Instruction{
			{Label: "L", Mnemonic: ast.J, Operands: []ast.Operand{ast.LabelRef("L")}},
		},
	}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1)

	got := res.Instructions[0].Operands[0]
	assert.Equal(t, ast.KindImmediate, got.Kind)
	assert.EqualValues(t, 0, got.Imm, "self-jump relative offset should be 0")
}

func TestResolveCondBranchRelative(t *testing.T) {
	prog := &parser.Program{
		Labels: ast.LabelSet{"L": struct{}{}},
		Instructions: []ast.Instruction{
			{Mnemonic: ast.Ibeq, Operands: []ast.Operand{r(1), r(2), ast.LabelRef("L")}},
			{Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}},
			{Label: "L", Mnemonic: ast.Sub, Operands: []ast.Operand{r(1), r(1), r(1)}},
		},
	}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)

	rel := res.Instructions[0].Operands[2]
	assert.Equal(t, ast.KindImmediate, rel.Kind)
	assert.EqualValues(t, 2, rel.Imm)
}

func TestResolveLongBranchExpandsToTwoWords(t *testing.T) {
	instrs := []ast.Instruction{
		{Mnemonic: ast.Liblt, Operands: []ast.Operand{r(1), r(2), ast.LabelRef("L")}},
	}
	for i := 0; i < 1024; i++ {
		instrs = append(instrs, ast.Instruction{Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}})
	}
	instrs = append(instrs, ast.Instruction{Label: "L", Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}})

	prog := &parser.Program{
		Labels:       ast.LabelSet{"L": struct{}{}},
		Instructions: instrs,
	}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1026, "a pseudo long-branch plus 1024 filler plus the label's own instruction")

	negated := res.Instructions[0]
	assert.Equal(t, ast.Ible, negated.Mnemonic, "Liblt negates to Ible")
	assert.EqualValues(t, 2, negated.Operands[0].Reg.N, "negated branch swaps operands[0]/[1]")
	assert.EqualValues(t, 1, negated.Operands[1].Reg.N)
	assert.EqualValues(t, 2, negated.Operands[2].Imm, "negated branch always targets relative +2")

	jump := res.Instructions[1]
	assert.Equal(t, ast.J, jump.Mnemonic)
}

func TestResolveMovlAbsolute(t *testing.T) {
	prog := &parser.Program{
		Labels: ast.LabelSet{"L": struct{}{}},
		Instructions: []ast.Instruction{
			{Mnemonic: ast.Movl, Operands: []ast.Operand{r(3), ast.LabelRef("L")}},
			{Label: "L", Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}},
		},
	}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)

	abs := res.Instructions[0].Operands[1]
	assert.Equal(t, ast.KindImmediate, abs.Kind)
	assert.EqualValues(t, 1, abs.Imm)
}

func TestResolveAliasBindsToSameAddress(t *testing.T) {
	prog := &parser.Program{
		Labels:  ast.LabelSet{"a": struct{}{}, "b": struct{}{}},
		Aliases: map[string]string{"a": "b"},
		Instructions: []ast.Instruction{
			{Label: "b", Mnemonic: ast.J, Operands: []ast.Operand{ast.LabelRef("a")}},
		},
	}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)
	assert.Equal(t, res.Addresses["b"], res.Addresses["a"], "an alias must share its canonical label's address")
}

func TestResolveTrailingLabel(t *testing.T) {
	prog := &parser.Program{
		Labels:         ast.LabelSet{"end": struct{}{}},
		TrailingLabels: []string{"end"},
		Instructions: []ast.Instruction{
			{Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}},
		},
	}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Addresses["end"], "a trailing label resolves one past the last emitted word")
}

func TestResolveIsIdempotentOnAlreadyResolvedInput(t *testing.T) {
	resolved := []ast.Instruction{
		{Mnemonic: ast.Ibeq, Operands: []ast.Operand{r(1), r(2), ast.Immediate(2)}},
		{Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}},
	}
	prog := &parser.Program{Labels: ast.NewLabelSet(), Instructions: resolved}

	res, err := resolver.Resolve(prog)
	require.NoError(t, err)
	assert.Equal(t, resolved, res.Instructions, "re-resolving already-resolved input must be a no-op")
}

func TestResolveLabelTooFarForJ(t *testing.T) {
	instrs := []ast.Instruction{
		{Mnemonic: ast.J, Operands: []ast.Operand{ast.LabelRef("far")}},
	}
	for i := 0; i < 1<<15+1; i++ {
		instrs = append(instrs, ast.Instruction{Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}})
	}
	instrs = append(instrs, ast.Instruction{Label: "far", Mnemonic: ast.Add, Operands: []ast.Operand{r(1), r(1), r(1)}})

	prog := &parser.Program{
		Labels:       ast.LabelSet{"far": struct{}{}},
		Instructions: instrs,
	}

	_, err := resolver.Resolve(prog)
	require.Error(t, err)
}
