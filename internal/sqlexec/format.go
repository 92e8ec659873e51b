package sqlexec

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const cellPadding = 2

// FormatTable lays rows out under a header. Every cell is centred in a field
// two columns wider than the widest value of its column and followed by '|';
// the rule under the header uses '-' and '+'.
func FormatTable(cols []string, records [][]string) []string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, rec := range records {
		for i := range cols {
			if i < len(rec) {
				widths[i] = max(widths[i], runewidth.StringWidth(rec[i]))
			}
		}
	}

	out := make([]string, 0, len(records)+2)
	out = append(out, formatRow(cols, widths))

	var rule strings.Builder
	for _, w := range widths {
		rule.WriteString(strings.Repeat("-", w+cellPadding))
		rule.WriteByte('+')
	}
	out = append(out, rule.String())

	for _, rec := range records {
		out = append(out, formatRow(rec, widths))
	}
	return out
}

func formatRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(center(cell, w+cellPadding))
		b.WriteByte('|')
	}
	return b.String()
}

// center pads s to width, putting the odd column on the right.
func center(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
