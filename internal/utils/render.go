package utils

import (
	"fmt"

	"github.com/pterm/pterm"
)

// RenderTable prints a header row plus data rows as a boxed pterm table.
func RenderTable(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render(); err != nil {
		pterm.Error.Printfln("failed to render table: %v", err)
	}
}

// Money formats an amount for table cells.
func Money(amount float64) string {
	return fmt.Sprintf("%.0f RWF", amount)
}
