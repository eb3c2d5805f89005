// Package table renders tabular CLI output.
package table

import "github.com/pterm/pterm"

// PrintTableNoPad renders data as a table without blank lines around it.
// When hasHeader is true the first row is styled as a header.
func PrintTableNoPad(data pterm.TableData, hasHeader bool) {
	if len(data) == 0 {
		return
	}
	printer := pterm.DefaultTable.WithData(data)
	if hasHeader {
		printer = printer.WithHasHeader()
	}
	_ = printer.Render()
}
