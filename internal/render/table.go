// Package render formats documents and knowledge bases for the terminal and for output files.
package render

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = ".."

// Column is one fixed-width, left-aligned table column.
type Column struct {
	Header string
	Width  int
	// MaxLen, when positive, cuts longer cells to MaxLen-2 runes followed by "..".
	MaxLen int
}

// Table lays out rows on fixed column widths. Widths and lengths count runes.
type Table struct {
	Columns []Column
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{Columns: columns}
}

// Header renders the header line.
func (t *Table) Header() string {
	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = col.Header
	}
	return t.line(cells, false)
}

// Row renders one row. Missing cells are blank; extra cells are ignored.
func (t *Table) Row(cells ...string) string {
	return t.line(cells, true)
}

func (t *Table) line(cells []string, truncate bool) string {
	var b strings.Builder
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteByte(' ')
		}
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if truncate {
			cell = Truncate(cell, col.MaxLen)
		}
		b.WriteString(Pad(cell, col.Width))
	}
	return strings.TrimRight(b.String(), " ")
}

// Truncate shortens s to maxLen-2 runes plus ".." when it is longer than maxLen runes.
// A non-positive maxLen leaves s untouched.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	keep := maxLen - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(s)[:keep]) + ellipsis
}

// Pad left-aligns s in a field of width runes. Longer strings are returned unchanged.
func Pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// Rule returns a horizontal rule of n copies of ch.
func Rule(ch string, n int) string {
	return strings.Repeat(ch, n)
}
