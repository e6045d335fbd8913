package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// BarChart renders values as vertical bars height rows tall, scaled so
// that ceiling fills a column. colorFor picks each column's colour.
func BarChart(values []float64, height int, ceiling float64, colorFor func(float64) lipgloss.Color) string {
	if height < 1 || len(values) == 0 {
		return ""
	}
	if ceiling <= 0 {
		ceiling = 1
	}
	styles := make([]lipgloss.Style, len(values))
	for i, v := range values {
		styles[i] = lipgloss.NewStyle().Foreground(colorFor(v))
	}

	rows := make([]string, 0, height)
	for r := height - 1; r >= 0; r-- {
		var sb strings.Builder
		for i, v := range values {
			sb.WriteString(styles[i].Render(string(cell(v/ceiling*float64(height), r))))
		}
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "\n")
}

// cell is the glyph for row r (0 at the bottom) of a column filled to level rows.
func cell(level float64, r int) rune {
	fill := level - float64(r)
	switch {
	case fill >= 1:
		return blocks[len(blocks)-1]
	case fill <= 0:
		return blocks[0]
	default:
		return blocks[int(fill*float64(len(blocks)-1))]
	}
}
