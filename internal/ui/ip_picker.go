package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const pickerHeight = 10

// ipPicker is the multi-select popup for source IPs. Toggles are staged in
// a copy of the selection and only handed back on enter.
type ipPicker struct {
	options  []string
	filtered []string
	selected map[string]bool
	cursor   int
	offset   int // for scrolling
	search   string
}

func newIPPicker(options []string, selected map[string]bool) ipPicker {
	staged := make(map[string]bool, len(selected))
	for ip, on := range selected {
		if on {
			staged[ip] = true
		}
	}
	return ipPicker{
		options:  options,
		filtered: options,
		selected: staged,
	}
}

// update handles one key. done reports that the popup closed; apply reports
// whether the staged selection should replace the current one.
func (p ipPicker) update(msg tea.KeyMsg) (next ipPicker, done, apply bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return p, true, true

	case tea.KeyEsc, tea.KeyCtrlC:
		return p, true, false

	case tea.KeyUp:
		if p.cursor > 0 {
			p.cursor--
			if p.cursor < p.offset {
				p.offset = p.cursor
			}
		}

	case tea.KeyDown:
		if p.cursor < len(p.filtered)-1 {
			p.cursor++
			if p.cursor >= p.offset+pickerHeight {
				p.offset = p.cursor - pickerHeight + 1
			}
		}

	case tea.KeySpace:
		if len(p.filtered) > 0 {
			ip := p.filtered[p.cursor]
			if p.selected[ip] {
				delete(p.selected, ip)
			} else {
				p.selected[ip] = true
			}
		}

	case tea.KeyCtrlU:
		p.selected = make(map[string]bool)

	case tea.KeyBackspace:
		if len(p.search) > 0 {
			p.search = p.search[:len(p.search)-1]
			p.filterOptions()
		}

	case tea.KeyRunes:
		p.search += string(msg.Runes)
		p.filterOptions()
	}

	return p, false, false
}

// filterOptions narrows the list to IPs containing the search text
func (p *ipPicker) filterOptions() {
	if p.search == "" {
		p.filtered = p.options
	} else {
		p.filtered = nil
		for _, ip := range p.options {
			if strings.Contains(ip, p.search) {
				p.filtered = append(p.filtered, ip)
			}
		}
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = max(len(p.filtered)-1, 0)
	}
	p.offset = 0
}

func (p ipPicker) view(width int) string {
	var sb strings.Builder
	w := min(max(width-2, 30), 60)

	line := func(text string, render func(...string) string) {
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(render(padRight(text, w)))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString("\n")
	}

	sb.WriteString(BorderStyle.Render(TopLeft + strings.Repeat(Horizontal, w) + TopRight))
	sb.WriteString("\n")
	line(" Select IPs (empty = all)", TitleStyle.Render)
	line(" > "+p.search, IPStyle.Render)
	sb.WriteString(BorderStyle.Render(LeftT + strings.Repeat(Horizontal, w) + RightT))
	sb.WriteString("\n")

	visibleEnd := min(p.offset+pickerHeight, len(p.filtered))
	for i := p.offset; i < visibleEnd; i++ {
		ip := p.filtered[i]
		cursor := "   "
		if i == p.cursor {
			cursor = " > "
		}
		box := "[ ] "
		render := PlainStyle.Render
		if p.selected[ip] {
			box = "[x] "
			render = SuccessStyle.Render
		}
		line(cursor+box+ip, render)
	}
	if len(p.filtered) == 0 {
		line("   No matching IPs", MutedStyle.Render)
	}
	for i := max(visibleEnd-p.offset, 1); i < pickerHeight; i++ {
		line("", PlainStyle.Render)
	}

	sb.WriteString(BorderStyle.Render(BottomLeft + strings.Repeat(Horizontal, w) + BottomRight))
	sb.WriteString("\n")

	countInfo := fmt.Sprintf("  %d selected, %d/%d shown", len(p.selected), len(p.filtered), len(p.options))
	hints := "[Space:toggle] [Ctrl+U:clear] [Enter:apply] [Esc:cancel]"
	padding := w + 2 - runewidth.StringWidth(countInfo) - runewidth.StringWidth(hints)
	sb.WriteString(countInfo)
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	} else {
		sb.WriteString("\n  ")
	}
	sb.WriteString(HintStyle.Render(hints))
	sb.WriteString("\n")

	return sb.String()
}
