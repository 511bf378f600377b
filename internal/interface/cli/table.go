package cli

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// renderTable prints a bordered ASCII table with the given headers and rows.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
