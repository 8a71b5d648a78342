// Package overlay draws a box over an already rendered screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Center places box in the middle of base, a width×height screen. Styled
// text on both sides is cut on display columns, so escape sequences survive.
func Center(base, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	boxWidth := 0
	for _, l := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}
	if boxWidth > width || len(boxLines) > height {
		return base
	}
	return Place(base, box, (width-boxWidth)/2, (height-len(boxLines))/2, width)
}

// Place draws box with its top-left corner at column x, row y of base.
// Rows of base shorter than width are padded before cutting.
func Place(base, box string, x, y, width int) string {
	baseLines := strings.Split(base, "\n")
	boxLines := strings.Split(box, "\n")

	for i, boxLine := range boxLines {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		line := baseLines[row]
		if w := ansi.StringWidth(line); w < width {
			line += strings.Repeat(" ", width-w)
		}
		end := min(x+ansi.StringWidth(boxLine), width)

		out := ansi.Cut(line, 0, x) + ansi.Truncate(boxLine, width-x, "")
		if end < width {
			out += ansi.Cut(line, end, width)
		}
		baseLines[row] = out
	}
	return strings.Join(baseLines, "\n")
}
