package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable writes a rounded table with the given header and rows.
func RenderTable(writer io.Writer, header []string, rows [][]string) {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(writer)
	tableWriter.AppendHeader(toRow(header))
	for _, row := range rows {
		tableWriter.AppendRow(toRow(row))
	}
	tableWriter.SetStyle(table.StyleRounded)
	tableWriter.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, 0, len(cells))
	for _, cell := range cells {
		row = append(row, cell)
	}
	return row
}
