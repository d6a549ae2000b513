package grid

import "strings"

// ParseClipboard splits clipboard text into rows of tab-separated fields.
// CRLF line endings are accepted and the trailing newline spreadsheets add
// after the last row is ignored. Empty input yields no rows.
func ParseClipboard(text string) [][]string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && strings.TrimSuffix(lines[len(lines)-1], "\r") == "" {
		lines = lines[:len(lines)-1]
	}
	out := make([][]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Split(strings.TrimSuffix(line, "\r"), "\t")
	}
	return out
}

// blockSize returns the height and the width of the widest row.
func blockSize(block [][]string) (int, int) {
	width := 0
	for _, r := range block {
		if len(r) > width {
			width = len(r)
		}
	}
	return len(block), width
}

// Paste overlays block onto t anchored at at, growing t first when the block
// reaches past its bounds. Cells outside the block keep their values.
func Paste(t Table, at Cell, block [][]string) Table {
	if len(block) == 0 {
		return t
	}
	h, w := blockSize(block)
	out := t.Grow(at.Row+h, at.Col+w)
	for dy, r := range block {
		for dx, v := range r {
			out[at.Row+dy][at.Col+dx] = v
		}
	}
	return out
}
