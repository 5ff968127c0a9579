package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/csams/podcastr/internal/models"
	"github.com/csams/podcastr/internal/playerstate"
)

const (
	queueColPosition = iota
	queueColMarker
	queueColTitle
	queueColMembers
	queueColDuration
)

// QueueView shows the player's queue with the current episode marked.
type QueueView struct {
	table *Table
	state playerstate.PlayerState
}

type queueRow struct {
	position int
	episode  models.Episode
	current  bool
	playing  bool
}

func (r queueRow) Cell(column int) string {
	switch column {
	case queueColPosition:
		return fmt.Sprintf("%d", r.position+1)
	case queueColMarker:
		switch {
		case !r.current:
			return ""
		case r.playing:
			return GlyphPlaying
		default:
			return GlyphPaused
		}
	case queueColTitle:
		return r.episode.Title
	case queueColMembers:
		return r.episode.Members
	case queueColDuration:
		if r.episode.Duration == 0 {
			return ""
		}
		return formatDuration(r.episode.Duration)
	}
	return ""
}

func (r queueRow) CellStyle(column int, selected bool) *tcell.Style {
	if !r.current || selected {
		return nil
	}
	color := ColorPaused
	if r.playing {
		color = ColorPlaying
	}
	style := baseStyle().Foreground(color)
	return &style
}

func (r queueRow) Highlights(int) []int {
	return nil
}

func NewQueueView() *QueueView {
	v := &QueueView{table: NewTable()}
	v.table.SetColumns([]TableColumn{
		{Title: "#", Width: 4, Align: AlignRight},
		{Width: 1},
		{Title: "Episode", MinWidth: 20, FlexWeight: 0.6},
		{Title: "Members", MinWidth: 10, FlexWeight: 0.4},
		{Title: "Duration", Width: 8, Align: AlignRight},
	})
	return v
}

// SetState rebuilds the rows from a snapshot. When the queue itself was
// replaced the selection jumps to the current episode.
func (v *QueueView) SetState(st playerstate.PlayerState) {
	replaced := !sameQueue(v.state.Queue, st.Queue)
	v.state = st

	rows := make([]TableRow, len(st.Queue))
	for i, ep := range st.Queue {
		rows[i] = queueRow{
			position: i,
			episode:  ep,
			current:  i == st.CurrentIndex,
			playing:  st.IsPlaying,
		}
	}
	v.table.SetRows(rows)

	if replaced && st.Current() != nil {
		v.table.Select(st.CurrentIndex)
	}
}

func sameQueue(a, b []models.Episode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].URL != b[i].URL {
			return false
		}
	}
	return true
}

func (v *QueueView) Queue() []models.Episode {
	return v.state.Queue
}

func (v *QueueView) SelectedIndex() int {
	return v.table.SelectedIndex()
}

func (v *QueueView) Selected() (models.Episode, bool) {
	row, ok := v.table.SelectedRow().(queueRow)
	if !ok {
		return models.Episode{}, false
	}
	return row.episode, true
}

func (v *QueueView) Title() string {
	return fmt.Sprintf("Queue (%d)", len(v.state.Queue))
}

func (v *QueueView) ScrollInfo() (int, int, int) {
	return v.table.ScrollInfo()
}

func (v *QueueView) HandleKey(ev *tcell.EventKey) bool {
	return v.table.HandleNavigation(ev)
}

func (v *QueueView) Draw(s tcell.Screen, x, y, width, height int) {
	v.table.SetBounds(x, y, width, height)
	v.table.Draw(s)

	if len(v.state.Queue) == 0 && height > 2 {
		drawText(s, x+2, y+2, max(0, width-2), baseStyle().Foreground(ColorDimmed),
			"The queue is empty. Press enter on an episode to start playing.")
	}
}
