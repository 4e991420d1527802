// Package inspect implements the -inspect flag's interactive viewer
// (spec.md §10.2): a read-only tcell/tview table over the resolved
// AddressMap and the emitted words, adapted from the teacher's
// debugger.TUI. Unlike the teacher's debugger, there is nothing to step —
// assembly already finished by the time this window opens — so the whole
// surface is a single scrollable table plus a status line.
package inspect

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/qyon/r32asm/internal/ast"
	"github.com/qyon/r32asm/internal/parser"
	"github.com/qyon/r32asm/internal/xref"
)

// Row is one label bound to its resolved address, encoded word and the
// number of places in the source it was referenced from (internal/xref).
type Row struct {
	Label  string
	Addr   int
	Word   ast.EncodedWord
	RefCnt int
}

// Rows builds the sorted table data Show renders, from the parser's
// program (for cross-reference counts), a resolver AddressMap and the
// final encoded word vector.
func Rows(prog *parser.Program, addrs ast.AddressMap, words []ast.EncodedWord) []Row {
	refCounts := make(map[string]int, len(addrs))
	for _, sym := range xref.Build(prog) {
		refCounts[sym.Name] = len(sym.References)
	}

	rows := make([]Row, 0, len(addrs))
	for name, addr := range addrs {
		var word ast.EncodedWord
		if addr >= 0 && addr < len(words) {
			word = words[addr]
		}
		rows = append(rows, Row{Label: name, Addr: addr, Word: word, RefCnt: refCounts[name]})
	}
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Addr < rows[j-1].Addr; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return rows
}

// Show opens a blocking full-screen table of rows. It returns when the
// user quits (Ctrl-C or 'q'); the caller resumes its normal exit path
// afterward (spec.md §10.2: quitting still writes hex to stdout).
func Show(rows []Row) error {
	app := tview.NewApplication()

	table := tview.NewTable().SetBorders(false).SetSelectable(true, false)
	table.SetBorder(true).SetTitle(" Resolved addresses ")

	headers := []string{"Label", "Address", "Word", "Refs"}
	for col, h := range headers {
		table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	for i, row := range rows {
		r := i + 1
		table.SetCell(r, 0, tview.NewTableCell(row.Label))
		table.SetCell(r, 1, tview.NewTableCell(fmt.Sprintf("%d", row.Addr)))
		table.SetCell(r, 2, tview.NewTableCell(fmt.Sprintf("%#08x", row.Word)))
		table.SetCell(r, 3, tview.NewTableCell(fmt.Sprintf("%d", row.RefCnt)))
	}

	status := tview.NewTextView().SetText("q or Ctrl-C to quit")
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(table, 0, 1, true).
		AddItem(status, 1, 0, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyCtrlC:
			app.Stop()
			return nil
		case event.Rune() == 'q':
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(layout, true).SetFocus(table).Run()
}
