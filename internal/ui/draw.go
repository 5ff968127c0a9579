package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// noLimit lets drawText use as many cells as the text needs.
const noLimit = -1

// drawText draws text starting at x and returns the number of cells used.
func drawText(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) int {
	used := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if maxWidth != noLimit && used+w > maxWidth {
			break
		}
		s.SetContent(x+used, y, r, nil, style)
		used += w
	}
	return used
}

// drawTextWithHighlight draws text with the runes at positions in highlightStyle.
func drawTextWithHighlight(s tcell.Screen, x, y, maxWidth int, style, highlightStyle tcell.Style, text string, positions []int) int {
	highlight := make(map[int]bool, len(positions))
	for _, pos := range positions {
		highlight[pos] = true
	}

	used := 0
	for i, r := range []rune(text) {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if maxWidth != noLimit && used+w > maxWidth {
			break
		}
		charStyle := style
		if highlight[i] {
			charStyle = highlightStyle
		}
		s.SetContent(x+used, y, r, nil, charStyle)
		used += w
	}
	return used
}

func fillLine(s tcell.Screen, x, y, width int, style tcell.Style) {
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
}

// truncate shortens text to fit width cells, marking the cut with "...".
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
