package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// ConfirmationDialog asks a yes/no question on top of the current view.
type ConfirmationDialog struct {
	visible bool
	title   string
	message string
	onYes   func()
	onNo    func()
}

func NewConfirmationDialog() *ConfirmationDialog {
	return &ConfirmationDialog{}
}

func (c *ConfirmationDialog) Show(title, message string, onYes, onNo func()) {
	c.visible = true
	c.title = title
	c.message = message
	c.onYes = onYes
	c.onNo = onNo
}

func (c *ConfirmationDialog) Hide() {
	c.visible = false
	c.title = ""
	c.message = ""
	c.onYes = nil
	c.onNo = nil
}

func (c *ConfirmationDialog) IsVisible() bool {
	return c.visible
}

func (c *ConfirmationDialog) Draw(s tcell.Screen) {
	if !c.visible {
		return
	}

	w, h := s.Size()
	dialogWidth, dialogHeight := 50, 8
	if dialogWidth > w {
		dialogWidth = w
	}
	if dialogHeight > h {
		dialogHeight = h
	}
	startX := (w - dialogWidth) / 2
	startY := (h - dialogHeight) / 2

	style := tcell.StyleDefault.Background(ColorRed1).Foreground(ColorBright)
	drawBox(s, startX, startY, dialogWidth, dialogHeight, style)

	titleStyle := style.Foreground(ColorYellow).Bold(true)
	titleX := startX + (dialogWidth-runewidth.StringWidth(c.title))/2
	if titleX < startX+2 {
		titleX = startX + 2
	}
	drawText(s, titleX, startY+1, max(0, dialogWidth-4), titleStyle, c.title)

	for i, line := range wrapText(c.message, dialogWidth-4) {
		if 3+i >= dialogHeight-2 {
			break
		}
		drawText(s, startX+2, startY+3+i, max(0, dialogWidth-4), style, line)
	}

	buttonStyle := style.Bold(true)
	buttonsY := startY + dialogHeight - 2
	drawText(s, startX+dialogWidth/2-6, buttonsY, noLimit, buttonStyle, "[Y]es")
	drawText(s, startX+dialogWidth/2+2, buttonsY, noLimit, buttonStyle, "[N]o")
}

// HandleKey consumes every key while the dialog is visible.
func (c *ConfirmationDialog) HandleKey(ev *tcell.EventKey) bool {
	if !c.visible {
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		c.answer(c.onNo)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'y', 'Y':
			c.answer(c.onYes)
		case 'n', 'N':
			c.answer(c.onNo)
		}
	}
	return true
}

func (c *ConfirmationDialog) answer(fn func()) {
	c.Hide()
	if fn != nil {
		fn()
	}
}

// drawBox fills a bordered rectangle.
func drawBox(s tcell.Screen, x, y, width, height int, style tcell.Style) {
	if width < 2 || height < 2 {
		return
	}
	for row := y; row < y+height; row++ {
		fillLine(s, x, row, width, style)
	}
	for col := x + 1; col < x+width-1; col++ {
		s.SetContent(col, y, '─', nil, style)
		s.SetContent(col, y+height-1, '─', nil, style)
	}
	for row := y + 1; row < y+height-1; row++ {
		s.SetContent(x, row, '│', nil, style)
		s.SetContent(x+width-1, row, '│', nil, style)
	}
	s.SetContent(x, y, '┌', nil, style)
	s.SetContent(x+width-1, y, '┐', nil, style)
	s.SetContent(x, y+height-1, '└', nil, style)
	s.SetContent(x+width-1, y+height-1, '┘', nil, style)
}

// wrapText breaks text on spaces so each line fits in width cells. Words
// longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		if lineWidth > 0 && lineWidth+1+wordWidth > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		for wordWidth > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			lines = append(lines, head)
			word = word[len(head):]
			wordWidth = runewidth.StringWidth(word)
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += wordWidth
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
