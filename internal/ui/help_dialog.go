package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var helpContent = []string{
	"",
	"Navigation:",
	"  j / k         Move down/up",
	"  Ctrl+F / B    Page down/up",
	"  g / G         Go to top/bottom",
	"  Tab           Switch between episodes and queue",
	"",
	"Playback:",
	"  Enter         Play the visible list from the selected episode",
	"  p             Play only the selected episode",
	"  Space         Pause/resume",
	"  n / b         Next/previous episode in the queue",
	"  l             Toggle loop",
	"  s             Toggle shuffle",
	"  c             Clear the queue",
	"",
	"Search:",
	"  /             Filter episodes by title or members",
	"  Enter         Keep the filter",
	"  Esc           Drop the filter",
	"",
	"Other:",
	"  ?             Show this help dialog",
	"  q             Quit",
	"",
}

// HelpDialog lists the key bindings.
type HelpDialog struct {
	visible      bool
	scrollOffset int
	visibleLines int
}

func NewHelpDialog() *HelpDialog {
	return &HelpDialog{}
}

func (h *HelpDialog) Show() {
	h.visible = true
	h.scrollOffset = 0
}

func (h *HelpDialog) Hide() {
	h.visible = false
}

func (h *HelpDialog) IsVisible() bool {
	return h.visible
}

func (h *HelpDialog) Draw(s tcell.Screen) {
	if !h.visible {
		return
	}

	w, screenHeight := s.Size()

	contentWidth := 0
	for _, line := range helpContent {
		if lw := runewidth.StringWidth(line); lw > contentWidth {
			contentWidth = lw
		}
	}
	dialogWidth := contentWidth + 4
	if dialogWidth > w-4 {
		dialogWidth = w - 4
	}
	if dialogWidth < 40 {
		dialogWidth = 40
	}
	dialogHeight := len(helpContent) + 5
	if dialogHeight > screenHeight-2 {
		dialogHeight = screenHeight - 2
	}
	if dialogHeight < 6 {
		dialogHeight = 6
	}

	startX := (w - dialogWidth) / 2
	startY := (screenHeight - dialogHeight) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	style := tcell.StyleDefault.Background(ColorBlue7).Foreground(ColorBright)
	drawBox(s, startX, startY, dialogWidth, dialogHeight, style)

	title := "Help - Keybindings"
	drawText(s, startX+(dialogWidth-len(title))/2, startY+1, noLimit, style.Foreground(ColorYellow).Bold(true), title)

	h.visibleLines = dialogHeight - 5
	h.clampScroll()
	for i := 0; i < h.visibleLines && h.scrollOffset+i < len(helpContent); i++ {
		drawText(s, startX+2, startY+2+i, max(0, dialogWidth-4), style, helpContent[h.scrollOffset+i])
	}

	footer := "Press Esc or ? to close"
	if h.maxScroll() > 0 {
		footer = "j/k to scroll, Esc or ? to close"
	}
	drawText(s, startX+(dialogWidth-len(footer))/2, startY+dialogHeight-2, noLimit, style.Foreground(ColorDimmed), footer)
}

// HandleKey consumes every key while the dialog is visible.
func (h *HelpDialog) HandleKey(ev *tcell.EventKey) bool {
	if !h.visible {
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		h.Hide()
	case tcell.KeyUp:
		h.scrollOffset--
	case tcell.KeyDown:
		h.scrollOffset++
	case tcell.KeyRune:
		switch ev.Rune() {
		case '?', 'q':
			h.Hide()
		case 'j':
			h.scrollOffset++
		case 'k':
			h.scrollOffset--
		case 'g':
			h.scrollOffset = 0
		case 'G':
			h.scrollOffset = h.maxScroll()
		}
	}
	h.clampScroll()
	return true
}

func (h *HelpDialog) maxScroll() int {
	visible := h.visibleLines
	if visible <= 0 {
		visible = len(helpContent)
	}
	if m := len(helpContent) - visible; m > 0 {
		return m
	}
	return 0
}

func (h *HelpDialog) clampScroll() {
	if h.scrollOffset > h.maxScroll() {
		h.scrollOffset = h.maxScroll()
	}
	if h.scrollOffset < 0 {
		h.scrollOffset = 0
	}
}
