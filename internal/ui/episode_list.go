package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/csams/podcastr/internal/models"
)

const (
	episodeColMarker = iota
	episodeColTitle
	episodeColMembers
	episodeColDate
	episodeColDuration
)

// EpisodeListView shows the feed's episodes, optionally narrowed by a search.
type EpisodeListView struct {
	table      *Table
	podcast    *models.Podcast
	search     *SearchState
	visible    []models.Episode
	currentURL string
}

type episodeRow struct {
	episode models.Episode
	match   MatchResult
	current bool
}

func (r episodeRow) Cell(column int) string {
	switch column {
	case episodeColMarker:
		if r.current {
			return GlyphCurrent
		}
		return ""
	case episodeColTitle:
		return r.episode.Title
	case episodeColMembers:
		return r.episode.Members
	case episodeColDate:
		if r.episode.PublishDate.IsZero() {
			return ""
		}
		return r.episode.PublishDate.Format("2006-01-02")
	case episodeColDuration:
		if r.episode.Duration == 0 {
			return ""
		}
		return formatDuration(r.episode.Duration)
	}
	return ""
}

func (r episodeRow) CellStyle(column int, selected bool) *tcell.Style {
	if !r.current || selected {
		return nil
	}
	if column == episodeColMarker || column == episodeColTitle {
		style := baseStyle().Foreground(ColorPlaying)
		return &style
	}
	return nil
}

func (r episodeRow) Highlights(column int) []int {
	switch {
	case column == episodeColTitle && r.match.Field == MatchTitle:
		return r.match.Positions
	case column == episodeColMembers && r.match.Field == MatchMembers:
		return r.match.Positions
	}
	return nil
}

func NewEpisodeListView(minScore int) *EpisodeListView {
	v := &EpisodeListView{
		table:  NewTable(),
		search: NewSearchState(),
	}
	v.search.SetMinScore(minScore)
	v.table.SetColumns([]TableColumn{
		{Width: 1},
		{Title: "Title", MinWidth: 20, FlexWeight: 0.6},
		{Title: "Members", MinWidth: 10, FlexWeight: 0.4},
		{Title: "Date", Width: 10},
		{Title: "Duration", Width: 8, Align: AlignRight},
	})
	return v
}

func (v *EpisodeListView) SetPodcast(podcast *models.Podcast) {
	v.podcast = podcast
	v.table.SelectFirst()
	v.ApplyFilter()
}

func (v *EpisodeListView) Podcast() *models.Podcast {
	return v.podcast
}

func (v *EpisodeListView) Search() *SearchState {
	return v.search
}

// SetCurrentURL marks the episode with url as the one loaded in the player.
func (v *EpisodeListView) SetCurrentURL(url string) {
	if url == v.currentURL {
		return
	}
	v.currentURL = url
	v.refresh()
}

// ApplyFilter recomputes the visible episodes from the search query. The
// feed order is kept.
func (v *EpisodeListView) ApplyFilter() {
	v.refresh()
	if v.search.Active() {
		v.table.SelectFirst()
	}
}

func (v *EpisodeListView) refresh() {
	v.visible = nil
	var rows []TableRow
	if v.podcast != nil {
		for _, ep := range v.podcast.Episodes {
			ok, match := v.search.MatchEpisode(ep.Title, ep.Members)
			if !ok {
				continue
			}
			v.visible = append(v.visible, ep)
			rows = append(rows, episodeRow{
				episode: ep,
				match:   match,
				current: v.currentURL != "" && ep.URL == v.currentURL,
			})
		}
	}
	v.table.SetRows(rows)
}

// Visible returns the episodes currently shown, in display order.
func (v *EpisodeListView) Visible() []models.Episode {
	return v.visible
}

func (v *EpisodeListView) SelectedIndex() int {
	return v.table.SelectedIndex()
}

func (v *EpisodeListView) Selected() (models.Episode, bool) {
	row, ok := v.table.SelectedRow().(episodeRow)
	if !ok {
		return models.Episode{}, false
	}
	return row.episode, true
}

func (v *EpisodeListView) Title() string {
	if v.search.Active() {
		return fmt.Sprintf("Episodes (%d/%d)", len(v.visible), v.total())
	}
	return fmt.Sprintf("Episodes (%d)", v.total())
}

func (v *EpisodeListView) total() int {
	if v.podcast == nil {
		return 0
	}
	return len(v.podcast.Episodes)
}

func (v *EpisodeListView) ScrollInfo() (int, int, int) {
	return v.table.ScrollInfo()
}

func (v *EpisodeListView) HandleKey(ev *tcell.EventKey) bool {
	return v.table.HandleNavigation(ev)
}

func (v *EpisodeListView) Draw(s tcell.Screen, x, y, width, height int) {
	v.table.SetBounds(x, y, width, height)
	v.table.Draw(s)

	if len(v.visible) == 0 && height > 2 {
		msg := "This feed has no episodes"
		if v.search.Active() {
			msg = fmt.Sprintf("No episodes match %q", v.search.Query())
		}
		drawText(s, x+2, y+2, max(0, width-2), baseStyle().Foreground(ColorDimmed), msg)
	}
}
