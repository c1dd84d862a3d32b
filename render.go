// render.go
package main

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const columnSeparator = " | "

// columnWidths returns, per column, the widest of the header and body cells
// measured in runes.
func columnWidths(t *Table) []int {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}
	return widths
}

func pad(s string, width int) string {
	diff := width - utf8.RuneCountInString(s)
	if diff <= 0 {
		return s
	}
	return s + strings.Repeat(" ", diff)
}

// formatRow left-justifies every cell but the last, which is left as is so
// lines carry no trailing spaces.
func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			padded[i] = cell
			continue
		}
		padded[i] = pad(cell, widths[i])
	}
	return strings.Join(padded, columnSeparator)
}

// FormatTable renders t as aligned text: header, dash separator, body rows.
func FormatTable(t *Table) string {
	widths := columnWidths(t)

	var sb strings.Builder
	sb.WriteString(formatRow(t.Header, widths))
	sb.WriteByte('\n')

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}
	sb.WriteString(strings.Join(dashes, columnSeparator))
	sb.WriteByte('\n')

	for _, row := range t.Rows {
		sb.WriteString(formatRow(row, widths))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func RenderTable(w io.Writer, t *Table) error {
	_, err := io.WriteString(w, FormatTable(t))
	return err
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	"~", `\~`,
)

// markdownTable writes t as a pipe table with the column letters above the
// header names, the way a sheet labels its columns.
func markdownTable(t *Table) []byte {
	var sb strings.Builder
	writeLine := func(cells []string) {
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(markdownEscaper.Replace(c))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	letters := append([]string{"#"}, t.ColumnLetters()...)
	writeLine(letters)
	sep := make([]string, len(letters))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("|" + strings.Join(sep, "|") + "|\n")
	writeLine(append([]string{"1"}, t.Header...))
	for j, row := range t.Rows {
		writeLine(append([]string{strconv.Itoa(CellAddressFor(j, 0).Row)}, row...))
	}
	return []byte(sb.String())
}

// TableHTML renders t as an HTML table for the web view.
func TableHTML(t *Table) string {
	p := parser.NewWithExtensions(parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	return string(markdown.ToHTML(markdownTable(t), p, renderer))
}
