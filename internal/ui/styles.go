package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/vietdv277/sshdash/pkg/types"
)

// Box drawing characters
const (
	TopLeft     = "╭"
	TopRight    = "╮"
	BottomLeft  = "╰"
	BottomRight = "╯"
	Horizontal  = "─"
	Vertical    = "│"
	LeftT       = "├"
	RightT      = "┤"
	TopT        = "┬"
	BottomT     = "┴"
	Cross       = "┼"
)

// Color palette
const (
	ColorBorder    = "240"
	ColorHeader    = "252"
	ColorTitle     = "81"
	ColorTimestamp = "245"
	ColorEvent     = "214"
	ColorIP        = "81"
	ColorUser      = "252"
	ColorBar       = "203"
	ColorLine      = "75"
	ColorSuccess   = "82"
	ColorWarning   = "214"
	ColorError     = "196"
	ColorMuted     = "240"
	ColorHint      = "245"
)

// Shared styles
var (
	BorderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))
	HeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorHeader))
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorTitle))
	TimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTimestamp))
	EventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorEvent))
	IPStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorIP))
	UserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorUser))
	BarStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBar))
	LineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLine))
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	MutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
	PlainStyle     = lipgloss.NewStyle()

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)
	ActiveTabStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color(ColorTitle))
	InactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
)

// columnStyle picks the cell style for a dataset column
func columnStyle(column string) lipgloss.Style {
	switch column {
	case types.ColumnTimestamp:
		return TimestampStyle
	case types.ColumnEventID:
		return EventStyle
	case types.ColumnSourceIP:
		return IPStyle
	case types.ColumnTargetUser:
		return UserStyle
	default:
		return PlainStyle
	}
}

// padRight pads a string to the specified display width using runewidth
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw > width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// padLeft right-aligns s within width
func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw > width {
		return runewidth.Truncate(s, width, "...")
	}
	return strings.Repeat(" ", width-sw) + s
}
