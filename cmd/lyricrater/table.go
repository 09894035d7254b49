package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"lyricrater/internal/dataset"
	"lyricrater/internal/labeler"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const reasonColumnWidth = 48

type columnSpec struct {
	header   string
	align    columnAlignment
	widthMax int
}

func renderTable(columns []columnSpec, rows [][]string) string {
	count := len(columns)
	if count == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, count)
	for i, col := range columns {
		header[i] = col.header
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, count)
		for i := 0; i < count; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, count)
	for i, col := range columns {
		align := text.AlignLeft
		if col.align == alignRight {
			align = text.AlignRight
		}
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
		if col.widthMax > 0 {
			cfg.WidthMax = col.widthMax
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderResultsTable shows the labeled rows with lyrics collapsed to a single
// preview line of at most previewChars runes.
func renderResultsTable(t *dataset.Table, previewChars int) string {
	columns := []columnSpec{
		{header: "#", align: alignRight},
		{header: labeler.ColumnTitle},
		{header: labeler.ColumnLyric},
		{header: labeler.ColumnPredicted},
	}
	withReason := t.ColumnIndex(labeler.ColumnReason) >= 0
	if withReason {
		columns = append(columns, columnSpec{header: labeler.ColumnReason, widthMax: reasonColumnWidth})
	}
	rows := make([][]string, 0, t.Len())
	for i := range t.Rows {
		row := []string{
			strconv.Itoa(i + 1),
			t.Cell(i, labeler.ColumnTitle),
			previewLyric(t.Cell(i, labeler.ColumnLyric), previewChars),
			t.Cell(i, labeler.ColumnPredicted),
		}
		if withReason {
			row = append(row, t.Cell(i, labeler.ColumnReason))
		}
		rows = append(rows, row)
	}
	return renderTable(columns, rows)
}

func previewLyric(lyric string, limit int) string {
	flat := strings.Join(strings.Fields(lyric), " ")
	if limit <= 0 {
		return flat
	}
	return text.Snip(flat, limit, "...")
}
