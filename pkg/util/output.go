package util

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
)

// SetOutput points pterm's prefix printers, tables and plain prints at w.
// The prefix printers copy pterm's default writer when the package loads,
// so pterm.SetDefaultOutput alone does not reach them. The returned func
// puts the previous writers back.
func SetOutput(w io.Writer) (restore func()) {
	printers := []*pterm.PrefixPrinter{
		&pterm.Info, &pterm.Warning, &pterm.Success, &pterm.Error, &pterm.Fatal, &pterm.Debug,
	}
	prev := lo.Map(printers, func(p *pterm.PrefixPrinter, _ int) io.Writer { return p.Writer })
	prevTable := pterm.DefaultTable.Writer

	for _, p := range printers {
		p.Writer = w
	}
	pterm.DefaultTable.Writer = w
	pterm.SetDefaultOutput(w)

	return func() {
		for i, p := range printers {
			p.Writer = prev[i]
		}
		pterm.DefaultTable.Writer = prevTable
		pterm.SetDefaultOutput(os.Stdout)
	}
}
