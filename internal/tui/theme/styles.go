package theme

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// BorderUnified is the square box used around panels
var BorderUnified = lipgloss.Border{
	Top:         "─",
	Bottom:      "─",
	Left:        "│",
	Right:       "│",
	TopLeft:     "┌",
	TopRight:    "┐",
	BottomLeft:  "└",
	BottomRight: "┘",
}

// PanelStyle is the bordered box around the preview pane
func PanelStyle(width, height int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(BorderUnified).
		BorderForeground(lipgloss.Color(ColorBrightBlue)).
		Padding(0, 1).
		Foreground(lipgloss.Color(ColorWhite))
}

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightGreen))
}

func BreadcrumbStyle(current bool) lipgloss.Style {
	if current {
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorBrightCyan))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightBlack))
}

func SectionHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightCyan))
}

func SecondaryTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		Italic(true)
}

func FooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightBlack))
}

func LoadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightYellow))
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightRed))
}

// DialogStyle is the floating confirmation box. An empty borderColor uses
// the primary accent.
func DialogStyle(width int, borderColor string) lipgloss.Style {
	if borderColor == "" {
		borderColor = ColorBrightBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Background(lipgloss.Color(ColorPanelBg)).
		Foreground(lipgloss.Color(ColorWhite)).
		Padding(1, 3).
		Width(width)
}

func PromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true)
}

// PageLinkStyle styles one element of the page bar
func PageLinkStyle(current bool) lipgloss.Style {
	if current {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(ColorBrightYellow)).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightCyan)).
		Padding(0, 1)
}

// TableStyles are the listing table styles
func TableStyles() table.Styles {
	return table.Styles{
		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(ColorBrightCyan)).
			BorderBottom(true).
			Bold(true).
			Foreground(lipgloss.Color(ColorBrightCyan)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWhite)).
			Background(lipgloss.Color(ColorSelectionBg)).
			Bold(true),
		Cell: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWhite)),
	}
}

// URLStyle renders a share URL
func URLStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlue)).
		Underline(true)
}

// Hyperlink wraps text in an OSC 8 hyperlink to url
func Hyperlink(text, url string) string {
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}
