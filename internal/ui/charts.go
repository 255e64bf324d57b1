package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/vietdv277/sshdash/internal/analytics"
	"github.com/vietdv277/sshdash/pkg/types"
)

// Messages shown in place of charts
const (
	EmptyResultMessage = "No entries match the selected filters. Please adjust your selection."
	NoIPDataMessage    = "No IP data available."
	NoTimeDataMessage  = "Time data invalid or missing."
)

const hourLayout = "2006-01-02 15:00"

// blockLevels are the eighth-height blocks used by the timeline columns
var blockLevels = []rune(" ▁▂▃▄▅▆▇█")

// RenderMetrics renders the three key metrics as cards side by side
func RenderMetrics(m types.Metrics, width int) string {
	cards := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Total Events", fmt.Sprintf("%d", m.TotalEvents), HeaderStyle},
		{"Unique IPs", fmt.Sprintf("%d", m.UniqueIPs), IPStyle},
		{"Top Target User", m.TopTargetUser, UserStyle},
	}

	// Border and padding take 4 columns per card
	cardWidth := max(width/len(cards)-4, 14)
	rendered := make([]string, len(cards))
	for i, c := range cards {
		body := MutedStyle.Render(c.label) + "\n" + c.style.Bold(true).Render(runewidth.Truncate(c.value, cardWidth, "..."))
		rendered[i] = CardStyle.Width(cardWidth).Render(body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// RenderTopIPsChart renders the ranking as horizontal bars
func RenderTopIPsChart(series []types.IPCount, width int) string {
	if len(series) == 0 {
		return MutedStyle.Render(NoIPDataMessage)
	}

	labelWidth, countWidth, peak := 0, 0, 0
	for _, s := range series {
		labelWidth = max(labelWidth, runewidth.StringWidth(s.IP))
		countWidth = max(countWidth, len(fmt.Sprintf("%d", s.Count)))
		peak = max(peak, s.Count)
	}
	labelWidth = min(labelWidth, 39)
	barWidth := max(width-labelWidth-countWidth-2, 4)

	lines := make([]string, len(series))
	for i, s := range series {
		n := barWidth * s.Count / peak
		if n == 0 && s.Count > 0 {
			n = 1
		}
		lines[i] = IPStyle.Render(padRight(s.IP, labelWidth)) + " " +
			BarStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", barWidth-n) + " " +
			HeaderStyle.Render(padLeft(fmt.Sprintf("%d", s.Count), countWidth))
	}
	return strings.Join(lines, "\n")
}

// compressSeries merges consecutive buckets so at most cols columns remain.
// It returns the column totals and how many hours each column spans.
func compressSeries(series []types.HourBucket, cols int) ([]int, int) {
	step := 1
	if cols > 0 && len(series) > cols {
		step = (len(series) + cols - 1) / cols
	}
	values := make([]int, 0, (len(series)+step-1)/step)
	for i := 0; i < len(series); i += step {
		sum := 0
		for _, b := range series[i:min(i+step, len(series))] {
			sum += b.Count
		}
		values = append(values, sum)
	}
	return values, step
}

// RenderTimelineChart renders hourly counts as a column chart of the given
// plot height
func RenderTimelineChart(series []types.HourBucket, width, height int) string {
	if len(series) == 0 {
		return WarningStyle.Render(NoTimeDataMessage)
	}
	height = max(height, 2)

	// A merged column never exceeds the series total, so reserving its width
	// for the axis keeps the chart within width.
	total := 0
	for _, b := range series {
		total += b.Count
	}
	values, step := compressSeries(series, max(width-len(strconv.Itoa(total))-2, 1))
	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	axisWidth := len(strconv.Itoa(peak))

	var sb strings.Builder
	for row := height - 1; row >= 0; row-- {
		label := ""
		switch row {
		case height - 1:
			label = strconv.Itoa(peak)
		case 0:
			label = "0"
		}
		sb.WriteString(MutedStyle.Render(padLeft(label, axisWidth)))
		sb.WriteString(BorderStyle.Render(Vertical))

		var line strings.Builder
		for _, v := range values {
			level := 0
			if peak > 0 {
				level = v*height*8/peak - row*8
			}
			switch {
			case level >= 8:
				line.WriteRune(blockLevels[8])
			case level <= 0:
				line.WriteRune(' ')
			default:
				line.WriteRune(blockLevels[level])
			}
		}
		sb.WriteString(LineStyle.Render(line.String()))
		sb.WriteString("\n")
	}

	first := series[0].Start.Format(hourLayout)
	last := series[len(series)-1].Start.Format(hourLayout)
	axis := strings.Repeat(" ", axisWidth) + BorderStyle.Render(BottomLeft+strings.Repeat(Horizontal, len(values)))
	sb.WriteString(axis + "\n")
	caption := fmt.Sprintf("%s → %s", first, last)
	if step > 1 {
		caption += fmt.Sprintf("  (1 column = %dh)", step)
	}
	sb.WriteString(HintStyle.Render(strings.Repeat(" ", axisWidth+1) + caption))
	return sb.String()
}

// PrintReport prints metrics and both charts for a non-interactive summary
func PrintReport(w io.Writer, r analytics.Report, width int) {
	if r.Empty {
		fmt.Fprintln(w, WarningStyle.Render("⚠ "+EmptyResultMessage))
		return
	}

	fmt.Fprintln(w, TitleStyle.Render("Key Metrics"))
	fmt.Fprintln(w, RenderMetrics(r.Metrics, width))
	fmt.Fprintln(w)

	PrintTopIPsTable(w, r.TopIPs)
	fmt.Fprintln(w)

	fmt.Fprintln(w, TitleStyle.Render("Attack Frequency Over Time"))
	fmt.Fprintln(w, RenderTimelineChart(r.Hourly, width, 8))
	if peak, ok := analytics.PeakHour(r.Hourly); ok {
		fmt.Fprintf(w, "%s %s (%d events)\n", MutedStyle.Render("Peak hour:"), peak.Start.Format(hourLayout), peak.Count)
	}
}
