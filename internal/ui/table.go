package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// TableColumn defines a column in the table
type TableColumn struct {
	Title      string
	Width      int     // 0 means flexible width
	MinWidth   int     // Minimum width for flexible columns
	MaxWidth   int     // Maximum width for flexible columns (0 = no limit)
	FlexWeight float64 // Share of the remaining space
	Align      Alignment
}

// Alignment specifies text alignment within a cell
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// TableRow represents a single row of data
type TableRow interface {
	// Cell returns the content for a column
	Cell(column int) string
	// CellStyle returns a style override for a cell, or nil for the default
	CellStyle(column int, selected bool) *tcell.Style
	// Highlights returns rune positions to highlight in a cell
	Highlights(column int) []int
}

// Table is a scrollable, selectable table widget.
type Table struct {
	columns      []TableColumn
	rows         []TableRow
	selectedIdx  int
	scrollOffset int

	x, y          int
	width, height int
	showHeader    bool

	selectionIndicator string

	headerStyle    tcell.Style
	defaultStyle   tcell.Style
	selectedStyle  tcell.Style
	highlightStyle tcell.Style

	columnWidths []int
}

func NewTable() *Table {
	return &Table{
		showHeader:         true,
		selectionIndicator: "> ",
		headerStyle:        baseStyle().Bold(true).Foreground(ColorHeader),
		defaultStyle:       baseStyle(),
		selectedStyle:      baseStyle().Background(ColorSelection).Foreground(ColorBright),
		highlightStyle:     baseStyle().Foreground(ColorHighlight).Bold(true),
	}
}

func (t *Table) SetColumns(columns []TableColumn) {
	t.columns = columns
	t.calculateColumnWidths()
}

// SetRows replaces the rows, keeping the selection in range.
func (t *Table) SetRows(rows []TableRow) {
	t.rows = rows
	t.adjustSelection()
}

func (t *Table) SetBounds(x, y, width, height int) {
	t.x, t.y = x, y
	if width != t.width || height != t.height {
		t.width, t.height = width, height
		t.calculateColumnWidths()
		t.ensureVisible()
	}
}

func (t *Table) RowCount() int {
	return len(t.rows)
}

func (t *Table) SelectedIndex() int {
	return t.selectedIdx
}

func (t *Table) SelectedRow() TableRow {
	if t.selectedIdx >= 0 && t.selectedIdx < len(t.rows) {
		return t.rows[t.selectedIdx]
	}
	return nil
}

// Select moves the selection to idx if it is in range.
func (t *Table) Select(idx int) bool {
	if idx < 0 || idx >= len(t.rows) || idx == t.selectedIdx {
		return false
	}
	t.selectedIdx = idx
	t.ensureVisible()
	return true
}

func (t *Table) SelectNext() bool {
	return t.Select(t.selectedIdx + 1)
}

func (t *Table) SelectPrevious() bool {
	return t.Select(t.selectedIdx - 1)
}

func (t *Table) SelectFirst() bool {
	return t.Select(0)
}

func (t *Table) SelectLast() bool {
	return t.Select(len(t.rows) - 1)
}

func (t *Table) PageDown() bool {
	target := t.selectedIdx + t.pageSize()
	if target >= len(t.rows) {
		target = len(t.rows) - 1
	}
	return t.Select(target)
}

func (t *Table) PageUp() bool {
	target := t.selectedIdx - t.pageSize()
	if target < 0 {
		target = 0
	}
	return t.Select(target)
}

// HandleNavigation applies the shared list movement keys.
func (t *Table) HandleNavigation(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyDown:
		return t.SelectNext()
	case tcell.KeyUp:
		return t.SelectPrevious()
	case tcell.KeyCtrlF, tcell.KeyPgDn:
		return t.PageDown()
	case tcell.KeyCtrlB, tcell.KeyPgUp:
		return t.PageUp()
	case tcell.KeyHome:
		return t.SelectFirst()
	case tcell.KeyEnd:
		return t.SelectLast()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			return t.SelectNext()
		case 'k':
			return t.SelectPrevious()
		case 'g':
			return t.SelectFirst()
		case 'G':
			return t.SelectLast()
		}
	}
	return false
}

func (t *Table) Draw(s tcell.Screen) {
	if t.width <= 0 || t.height <= 0 {
		return
	}

	for row := 0; row < t.height; row++ {
		fillLine(s, t.x, t.y+row, t.width, t.defaultStyle)
	}

	currentY := t.y
	if t.showHeader {
		t.drawHeader(s, currentY)
		currentY++
	}

	visible := t.visibleHeight()
	for i := 0; i < visible && i+t.scrollOffset < len(t.rows); i++ {
		idx := i + t.scrollOffset
		t.drawRow(s, currentY+i, t.rows[idx], idx == t.selectedIdx)
	}
}

// ScrollInfo reports the visible row range, one-based, and the row count.
func (t *Table) ScrollInfo() (first, last, total int) {
	total = len(t.rows)
	if total == 0 {
		return 0, 0, 0
	}
	first = t.scrollOffset + 1
	last = t.scrollOffset + t.visibleHeight()
	if last > total {
		last = total
	}
	return first, last, total
}

func (t *Table) visibleHeight() int {
	height := t.height
	if t.showHeader {
		height--
	}
	if height < 0 {
		return 0
	}
	return height
}

func (t *Table) pageSize() int {
	size := t.visibleHeight() - 1
	if size < 1 {
		return 1
	}
	return size
}

// ensureVisible centers the selection where the row count allows.
func (t *Table) ensureVisible() {
	visible := t.visibleHeight()
	if visible <= 0 {
		return
	}

	target := t.selectedIdx - visible/2
	maxOffset := len(t.rows) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}

	switch {
	case target < 0:
		t.scrollOffset = 0
	case target > maxOffset:
		t.scrollOffset = maxOffset
	default:
		t.scrollOffset = target
	}
}

func (t *Table) adjustSelection() {
	if len(t.rows) == 0 {
		t.selectedIdx = 0
		t.scrollOffset = 0
		return
	}
	if t.selectedIdx >= len(t.rows) {
		t.selectedIdx = len(t.rows) - 1
	}
	if t.selectedIdx < 0 {
		t.selectedIdx = 0
	}
	t.ensureVisible()
}

func (t *Table) calculateColumnWidths() {
	t.columnWidths = make([]int, len(t.columns))
	if len(t.columns) == 0 || t.width <= 0 {
		return
	}

	indicatorWidth := runewidth.StringWidth(t.selectionIndicator)
	padding := len(t.columns) - 1

	fixed := indicatorWidth + padding
	totalWeight := 0.0
	for i, col := range t.columns {
		if col.Width > 0 {
			t.columnWidths[i] = col.Width
			fixed += col.Width
			continue
		}
		if col.FlexWeight > 0 {
			totalWeight += col.FlexWeight
		} else {
			totalWeight += 1.0
		}
	}

	available := t.width - fixed
	for i, col := range t.columns {
		if col.Width > 0 {
			continue
		}
		weight := col.FlexWeight
		if weight <= 0 {
			weight = 1.0
		}
		width := 0
		if available > 0 {
			width = int(float64(available) * weight / totalWeight)
		}
		if col.MinWidth > 0 && width < col.MinWidth {
			width = col.MinWidth
		}
		if col.MaxWidth > 0 && width > col.MaxWidth {
			width = col.MaxWidth
		}
		t.columnWidths[i] = width
	}
}

func (t *Table) drawHeader(s tcell.Screen, y int) {
	x := t.x + runewidth.StringWidth(t.selectionIndicator)
	for i, col := range t.columns {
		if i > 0 {
			x++
		}
		if col.Title != "" {
			t.drawCell(s, x, y, t.columnWidths[i], col.Title, t.headerStyle, nil, col.Align)
		}
		x += t.columnWidths[i]
	}
}

func (t *Table) drawRow(s tcell.Screen, y int, row TableRow, selected bool) {
	rowStyle := t.defaultStyle
	if selected {
		rowStyle = t.selectedStyle
		fillLine(s, t.x, y, t.width, rowStyle)
	}

	indicator := strings.Repeat(" ", runewidth.StringWidth(t.selectionIndicator))
	if selected {
		indicator = t.selectionIndicator
	}
	x := t.x + drawText(s, t.x, y, noLimit, rowStyle, indicator)

	for i, col := range t.columns {
		if i > 0 {
			x++
		}
		style := rowStyle
		if cellStyle := row.CellStyle(i, selected); cellStyle != nil {
			style = *cellStyle
		}
		t.drawCell(s, x, y, t.columnWidths[i], row.Cell(i), style, row.Highlights(i), col.Align)
		x += t.columnWidths[i]
	}
}

func (t *Table) drawCell(s tcell.Screen, x, y, width int, text string, style tcell.Style, highlights []int, align Alignment) {
	if width <= 0 {
		return
	}

	display := truncate(text, width)
	textWidth := runewidth.StringWidth(display)
	switch align {
	case AlignCenter:
		x += (width - textWidth) / 2
	case AlignRight:
		x += width - textWidth
	}

	if len(highlights) == 0 {
		drawText(s, x, y, width, style, display)
		return
	}
	highlightStyle := t.highlightStyle
	if _, bg, _ := style.Decompose(); bg == ColorSelection {
		highlightStyle = style.Foreground(ColorBgDark).Background(ColorHighlight).Bold(true)
	}
	drawTextWithHighlight(s, x, y, width, style, highlightStyle, display, highlights)
}
