package console

import (
	"strings"

	"github.com/wfrun/wfrun/pkg/logger"
)

var tableLog = logger.New("console:table")

// RenderTable renders headers and rows as an aligned plain-text table.
// Column widths are computed from the widest cell; headers are bold.
func RenderTable(headers []string, rows [][]string) string {
	tableLog.Printf("Rendering table: columns=%d, rows=%d", len(headers), len(rows))

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(formatRow(headers, widths)))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(formatRow(row, widths))
		b.WriteString("\n")
	}
	return b.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := len(cell)
		if i < len(widths) {
			width = widths[i]
		}
		// Last column is not padded to avoid trailing spaces.
		if i == len(cells)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = cell + strings.Repeat(" ", width-len(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
