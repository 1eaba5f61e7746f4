package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/fretmastery/internal/formatter"
	"github.com/desertthunder/fretmastery/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// difficulty colours average ratings from easy (green) to hard (red), indexed by rating-1.
var difficulty = [models.MaxRating]lipgloss.Style{
	NewBold("#04B575"),
	NewBold("#9ACD32"),
	NewBold("#FFD700"),
	NewBold("#FFA500"),
	NewBold("#FF4500"),
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	board lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		board: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
	}
}

// renderRating colours an average rating by how hard it is, leaving "-" plain.
func renderRating(avg *float64) string {
	text := formatter.Rating(avg)
	if avg == nil {
		return styles.help.Render(text)
	}
	i := int(*avg+0.5) - 1
	i = max(0, min(i, len(difficulty)-1))
	return difficulty[i].Render(text)
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
