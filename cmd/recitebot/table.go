package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// proseWidth is where descriptions and check details wrap.
const proseWidth = 56

// column describes one table column. Width 0 leaves the column unbounded.
type column struct {
	header string
	align  text.Align
	width  int
}

func textColumn(header string) column {
	return column{header: header, align: text.AlignLeft}
}

// countColumn right-aligns numbers such as chapter indexes and review counts.
func countColumn(header string) column {
	return column{header: header, align: text.AlignRight}
}

func proseColumn(header string) column {
	return column{header: header, align: text.AlignLeft, width: proseWidth}
}

// renderTable draws rows in the rounded style used by every listing. Short
// rows are padded; cells beyond the column count are dropped.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.header
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       col.align,
			AlignHeader: text.AlignLeft,
		}
		if col.width > 0 {
			configs[i].WidthMax = col.width
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
