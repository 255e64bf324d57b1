package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/vietdv277/sshdash/pkg/types"
)

const (
	maxCellWidth = 24
	minCellWidth = 4
)

// cellStyler picks the style of a body cell
type cellStyler func(col int) lipgloss.Style

// renderBox draws headers and rows in a rounded box table
func renderBox(headers []string, rows [][]string, widths []int, style cellStyler) string {
	var sb strings.Builder

	border := func(left, mid, right string) {
		sb.WriteString(BorderStyle.Render(left))
		for i, w := range widths {
			sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
			if i < len(widths)-1 {
				sb.WriteString(BorderStyle.Render(mid))
			}
		}
		sb.WriteString(BorderStyle.Render(right))
		sb.WriteString("\n")
	}

	// Top border
	border(TopLeft, TopT, TopRight)

	// Header row
	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range headers {
		sb.WriteString(HeaderStyle.Render(" " + padRight(h, widths[i]) + " "))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	// Header separator
	border(LeftT, Cross, RightT)

	// Data rows
	for _, row := range rows {
		sb.WriteString(BorderStyle.Render(Vertical))
		for i := range widths {
			var value string
			if i < len(row) {
				value = row[i]
			}
			sb.WriteString(style(i).Render(" " + padRight(value, widths[i]) + " "))
			sb.WriteString(BorderStyle.Render(Vertical))
		}
		sb.WriteString("\n")
	}

	// Bottom border
	border(BottomLeft, BottomT, BottomRight)

	return sb.String()
}

// fitWidths sizes each column to its widest cell, capped, then shrinks the
// widest columns until the table fits in maxWidth. maxWidth <= 0 means
// unbounded.
func fitWidths(headers []string, rows [][]string, maxWidth int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], minCellWidth), maxCellWidth)
	}
	if maxWidth <= 0 {
		return widths
	}

	// Each column costs its width plus two spaces and one border
	available := maxWidth - 1 - 3*len(widths)
	for {
		total, widest := 0, 0
		for i, w := range widths {
			total += w
			if w > widths[widest] {
				widest = i
			}
		}
		if total <= available || widths[widest] <= minCellWidth {
			return widths
		}
		widths[widest]--
	}
}

// recordRows returns the raw cells of rows [offset, offset+limit)
func recordRows(t *types.LogTable, offset, limit int) [][]string {
	end := t.Len()
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	if offset > end {
		offset = end
	}
	rows := make([][]string, 0, end-offset)
	for _, r := range t.Rows[offset:end] {
		rows = append(rows, r.Fields)
	}
	return rows
}

// RenderRecordTable renders a window of the table's rows, all columns
func RenderRecordTable(t *types.LogTable, offset, limit, maxWidth int) string {
	rows := recordRows(t, offset, limit)
	widths := fitWidths(t.Columns, rows, maxWidth)
	return renderBox(t.Columns, rows, widths, func(col int) lipgloss.Style {
		return columnStyle(t.Columns[col])
	})
}

// PrintRecordTable prints up to limit rows (all when limit <= 0) with a
// row-count caption
func PrintRecordTable(w io.Writer, t *types.LogTable, limit int) {
	fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("Showing %d rows", t.Len())))
	if t.Empty() {
		fmt.Fprintln(w, MutedStyle.Render("  No rows"))
		return
	}
	fmt.Fprint(w, RenderRecordTable(t, 0, limit, 0))
	if limit > 0 && t.Len() > limit {
		fmt.Fprintln(w, HintStyle.Render(fmt.Sprintf("  ... %d more rows (use --limit 0 to show all)", t.Len()-limit)))
	}
}

// PrintTopIPsTable prints the source IP ranking as a box table
func PrintTopIPsTable(w io.Writer, series []types.IPCount) {
	fmt.Fprintln(w, TitleStyle.Render("Top Aggressive IPs"))
	if len(series) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("  No IP data available."))
		return
	}

	headers := []string{"#", "IP Source", "Events"}
	rows := make([][]string, len(series))
	for i, s := range series {
		rows[i] = []string{fmt.Sprintf("%d", i+1), s.IP, fmt.Sprintf("%d", s.Count)}
	}
	widths := fitWidths(headers, rows, 0)
	fmt.Fprint(w, renderBox(headers, rows, widths, func(col int) lipgloss.Style {
		switch col {
		case 1:
			return IPStyle
		case 2:
			return BarStyle
		default:
			return MutedStyle
		}
	}))
}

// PrintHourlyTable prints one line per hourly bucket
func PrintHourlyTable(w io.Writer, series []types.HourBucket) {
	if len(series) == 0 {
		fmt.Fprintln(w, WarningStyle.Render("  "+NoTimeDataMessage))
		return
	}

	headers := []string{"Hour", "Events"}
	rows := make([][]string, len(series))
	for i, b := range series {
		rows[i] = []string{b.Start.Format(hourLayout), fmt.Sprintf("%d", b.Count)}
	}
	widths := fitWidths(headers, rows, 0)
	fmt.Fprint(w, renderBox(headers, rows, widths, func(col int) lipgloss.Style {
		if col == 0 {
			return TimestampStyle
		}
		return LineStyle
	}))
}
