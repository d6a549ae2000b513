package grid

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("238"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	editStyle     = lipgloss.NewStyle().Underline(true)
)

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// View renders the visible window of the table. Row 0 is the header row and
// carries no row number.
func (m Model) View() string {
	t := m.state.Table
	lastRow := min(t.Rows(), m.scrollY+m.visibleRows())
	lastCol := min(t.Cols(), m.scrollX+m.visibleCols())

	var b strings.Builder
	for y := m.scrollY; y < lastRow; y++ {
		label := ""
		if y > 0 {
			label = strconv.Itoa(y)
		}
		b.WriteString(labelStyle.Render(runewidth.FillLeft(label, rowLabelWidth-1)))
		b.WriteByte(' ')
		for x := m.scrollX; x < lastCol; x++ {
			if x > m.scrollX {
				b.WriteByte(' ')
			}
			b.WriteString(m.renderCell(Cell{Row: y, Col: x}))
		}
		if y < lastRow-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderCell(c Cell) string {
	selected := c == m.state.Selected
	if selected && m.state.Editing {
		return editStyle.Width(m.cellWidth).MaxWidth(m.cellWidth).Render(m.input.View())
	}
	v := flatten.Replace(m.state.Table.Value(c))
	text := runewidth.FillRight(runewidth.Truncate(v, m.cellWidth, "…"), m.cellWidth)
	switch {
	case selected && m.focused:
		return focusStyle.Render(text)
	case selected:
		return selectedStyle.Render(text)
	case c.Row == 0:
		return headerStyle.Render(text)
	default:
		return cellStyle.Render(text)
	}
}
