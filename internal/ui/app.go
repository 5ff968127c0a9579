package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	zlog "github.com/rs/zerolog/log"

	"github.com/csams/podcastr/internal/config"
	"github.com/csams/podcastr/internal/header"
	"github.com/csams/podcastr/internal/models"
	"github.com/csams/podcastr/internal/player"
	"github.com/csams/podcastr/internal/playerstate"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

type View interface {
	Draw(s tcell.Screen, x, y, width, height int)
	HandleKey(ev *tcell.EventKey) bool
	Title() string
	ScrollInfo() (first, last, total int)
}

// Options are the collaborators an App renders and drives.
type Options struct {
	Store   *playerstate.Store
	Header  *header.Header
	Podcast *models.Podcast
	// Progress is optional; without it the player bar shows no position.
	Progress <-chan player.Progress
	Config   config.UIConfig
}

// stateChanged carries a store snapshot onto the event loop.
type stateChanged struct {
	state playerstate.PlayerState
}

type quitRequest struct{}

// App is the terminal front end. All fields are owned by the event loop;
// other goroutines reach it through screen.PostEvent.
type App struct {
	screen     tcell.Screen
	store      *playerstate.Store
	header     *header.Header
	progressCh <-chan player.Progress
	cfg        config.UIConfig

	mode          Mode
	currentView   View
	episodes      *EpisodeListView
	queue         *QueueView
	helpDialog    *HelpDialog
	confirmDialog *ConfirmationDialog

	state         playerstate.PlayerState
	progress      player.Progress
	progressURL   string
	statusMessage string
	statusIsError bool
	quitting      bool
}

func NewApp(screen tcell.Screen, opts Options) *App {
	a := &App{
		screen:        screen,
		store:         opts.Store,
		header:        opts.Header,
		progressCh:    opts.Progress,
		cfg:           opts.Config,
		episodes:      NewEpisodeListView(opts.Config.SearchMinScore),
		queue:         NewQueueView(),
		helpDialog:    NewHelpDialog(),
		confirmDialog: NewConfirmationDialog(),
	}
	a.episodes.SetPodcast(opts.Podcast)
	a.currentView = a.episodes
	a.setState(a.store.Snapshot())
	return a
}

// Run owns the terminal until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.screen.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize screen")
	}
	defer a.screen.Fini()

	a.screen.SetStyle(baseStyle())
	a.screen.Clear()

	subID := a.store.Subscribe(a.onStateChange)
	defer a.store.Unsubscribe(subID)
	a.setState(a.store.Snapshot())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.forwardProgress(ctx)
	go func() {
		<-ctx.Done()
		a.screen.PostEvent(tcell.NewEventInterrupt(quitRequest{}))
	}()

	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if a.handleEvent(ev) {
			zlog.Info().Msg("ui event loop finished")
			return nil
		}
	}
}

// onStateChange runs on whichever goroutine mutated the store.
func (a *App) onStateChange(st playerstate.PlayerState) {
	if err := a.screen.PostEvent(tcell.NewEventInterrupt(stateChanged{state: st})); err != nil {
		zlog.Warn().Err(err).Uint64("version", st.Version).Msg("dropped player state update")
	}
}

func (a *App) forwardProgress(ctx context.Context) {
	if a.progressCh == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-a.progressCh:
			if !ok {
				return
			}
			a.screen.PostEvent(tcell.NewEventInterrupt(p))
		}
	}
}

// handleEvent processes one event and reports whether the app should exit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.draw()
	case *tcell.EventKey:
		if a.handleKey(ev) {
			a.draw()
		}
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case stateChanged:
			a.setState(data.state)
			a.draw()
		case player.Progress:
			a.progress = data
			a.draw()
		case quitRequest:
			a.quitting = true
		}
	}
	return a.quitting
}

// setState adopts a snapshot unless a newer one was already applied.
func (a *App) setState(st playerstate.PlayerState) {
	if st.Version < a.state.Version {
		return
	}
	a.state = st

	url := ""
	if current := st.Current(); current != nil {
		url = current.URL
	}
	if url != a.progressURL {
		a.progress = player.Progress{}
		a.progressURL = url
	}
	a.episodes.SetCurrentURL(url)
	a.queue.SetState(st)
}

func (a *App) refreshState() {
	a.setState(a.store.Snapshot())
}

func (a *App) setStatus(msg string, isError bool) {
	a.statusMessage = msg
	a.statusIsError = isError
}

// handleKey reports whether the screen needs redrawing.
func (a *App) handleKey(ev *tcell.EventKey) bool {
	if a.helpDialog.IsVisible() {
		return a.helpDialog.HandleKey(ev)
	}
	if a.confirmDialog.IsVisible() {
		return a.confirmDialog.HandleKey(ev)
	}
	if a.mode == ModeSearch {
		return a.handleSearchKey(ev)
	}

	a.setStatus("", false)

	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.quitting = true
		return false
	case tcell.KeyTab, tcell.KeyBacktab:
		a.switchView()
		return true
	case tcell.KeyEnter:
		a.playFromSelection()
		a.refreshState()
		return true
	case tcell.KeyEscape:
		if a.currentView == a.episodes && a.episodes.Search().Active() {
			a.episodes.Search().Clear()
			a.episodes.ApplyFilter()
			return true
		}
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.quitting = true
			return false
		case '?':
			a.helpDialog.Show()
			return true
		case '/':
			a.currentView = a.episodes
			a.mode = ModeSearch
			return true
		case 'p':
			a.playSelected()
		case ' ':
			a.store.TogglePlay()
		case 'n':
			a.store.PlayNext()
		case 'b':
			a.store.PlayPrevious()
		case 'l':
			a.store.ToggleLoop()
		case 's':
			a.store.ToggleShuffle()
		case 'c':
			a.confirmClear()
		default:
			return a.currentView.HandleKey(ev)
		}
		a.refreshState()
		return true
	}

	return a.currentView.HandleKey(ev)
}

func (a *App) handleSearchKey(ev *tcell.EventKey) bool {
	search := a.episodes.Search()
	switch ev.Key() {
	case tcell.KeyEscape:
		search.Clear()
		a.mode = ModeNormal
	case tcell.KeyEnter:
		a.mode = ModeNormal
		return true
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyPgUp, tcell.KeyPgDn:
		return a.episodes.HandleKey(ev)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		search.DeleteChar()
	case tcell.KeyDelete:
		search.DeleteCharForward()
	case tcell.KeyLeft:
		search.MoveCursorLeft()
		return true
	case tcell.KeyRight:
		search.MoveCursorRight()
		return true
	case tcell.KeyCtrlA:
		search.MoveCursorStart()
		return true
	case tcell.KeyCtrlE:
		search.MoveCursorEnd()
		return true
	case tcell.KeyCtrlK:
		search.DeleteToEnd()
	case tcell.KeyCtrlW:
		search.DeleteWord()
	case tcell.KeyRune:
		search.InsertChar(ev.Rune())
	default:
		return false
	}
	a.episodes.ApplyFilter()
	return true
}

func (a *App) switchView() {
	if a.currentView == a.episodes {
		a.currentView = a.queue
	} else {
		a.currentView = a.episodes
	}
}

// playFromSelection queues everything the current view shows and starts at
// the selected row.
func (a *App) playFromSelection() {
	var list []models.Episode
	var index int
	if a.currentView == a.queue {
		list, index = a.queue.Queue(), a.queue.SelectedIndex()
	} else {
		list, index = a.episodes.Visible(), a.episodes.SelectedIndex()
	}
	if len(list) == 0 {
		a.setStatus("Nothing to play", false)
		return
	}
	if err := a.store.PlayList(list, index); err != nil {
		a.setStatus(fmt.Sprintf("Cannot start at episode %d: %v", index+1, err), true)
	}
}

func (a *App) playSelected() {
	var episode models.Episode
	var ok bool
	if a.currentView == a.queue {
		episode, ok = a.queue.Selected()
	} else {
		episode, ok = a.episodes.Selected()
	}
	if !ok {
		a.setStatus("Nothing to play", false)
		return
	}
	a.store.Play(episode)
}

func (a *App) confirmClear() {
	if len(a.state.Queue) == 0 {
		a.setStatus("The queue is already empty", false)
		return
	}
	if a.cfg.SkipClearConfirm {
		a.clearQueue()
		return
	}
	a.confirmDialog.Show(
		"Clear Queue",
		fmt.Sprintf("Remove all %d episodes from the queue and stop playback?", len(a.state.Queue)),
		func() {
			a.clearQueue()
			a.refreshState()
		},
		nil,
	)
}

func (a *App) clearQueue() {
	a.store.ClearPlayerState()
	a.store.SetPlayingState(false)
	a.setStatus("Queue cleared", false)
}

func (a *App) draw() {
	w, h := a.screen.Size()
	for y := 0; y < h; y++ {
		fillLine(a.screen, 0, y, w, baseStyle())
	}

	a.drawHeaderBar(w)
	a.drawTabs(w)
	if contentHeight := h - 4; contentHeight > 0 {
		a.currentView.Draw(a.screen, 0, 2, w, contentHeight)
	}
	if h >= 4 {
		a.drawPlayerBar(w, h-2)
	}
	a.drawStatusLine(w, h-1)

	a.helpDialog.Draw(a.screen)
	a.confirmDialog.Draw(a.screen)

	a.screen.Show()
}

func (a *App) drawHeaderBar(w int) {
	style := barStyle()
	fillLine(a.screen, 0, 0, w, style)

	x := 1 + drawText(a.screen, 1, 0, noLimit, style.Foreground(ColorBrand).Bold(true), header.Brand)
	x += 2
	date := a.header.Date()
	dateWidth := runewidth.StringWidth(date)
	drawText(a.screen, x, 0, max(0, w-x-dateWidth-3), style.Foreground(ColorDimmed), a.header.Tagline())
	drawText(a.screen, w-dateWidth-1, 0, noLimit, style, date)
}

func (a *App) drawTabs(w int) {
	x := 1
	for _, view := range []View{a.episodes, a.queue} {
		style := baseStyle().Foreground(ColorDimmed)
		if view == a.currentView {
			style = baseStyle().Foreground(ColorActive).Bold(true).Underline(true)
		}
		x += drawText(a.screen, x, 1, noLimit, style, view.Title()) + 3
	}

	if podcast := a.episodes.Podcast(); podcast != nil && x < w {
		title := truncate(podcast.Title, w-x-1)
		drawText(a.screen, w-runewidth.StringWidth(title)-1, 1, noLimit, baseStyle().Foreground(ColorHeader), title)
	}
}

func (a *App) drawPlayerBar(w, y int) {
	style := barStyle()
	fillLine(a.screen, 0, y, w, style)

	glyph, text, flags := playerBarText(a.state, a.progress)
	glyphStyle := style.Foreground(ColorDimmed)
	switch glyph {
	case GlyphPlaying:
		glyphStyle = style.Foreground(ColorPlaying)
	case GlyphPaused:
		glyphStyle = style.Foreground(ColorPaused)
	}

	x := 1 + drawText(a.screen, 1, y, noLimit, glyphStyle, glyph) + 1
	flagsWidth := runewidth.StringWidth(flags)
	drawText(a.screen, x, y, noLimit, style, truncate(text, w-x-flagsWidth-2))
	drawText(a.screen, w-flagsWidth-1, y, noLimit, style.Foreground(ColorActive), flags)
}

// playerBarText describes the playback state: a state glyph, the current
// episode and the position, queue and transport indicators.
func playerBarText(st playerstate.PlayerState, progress player.Progress) (glyph, text, flags string) {
	var parts []string

	current := st.Current()
	switch {
	case current == nil:
		glyph = GlyphStopped
		text = "Nothing playing"
	case st.IsPlaying:
		glyph = GlyphPlaying
	default:
		glyph = GlyphPaused
	}

	if current != nil {
		text = current.Title
		if current.Members != "" {
			text += " · " + current.Members
		}

		duration := progress.Duration
		if duration == 0 {
			duration = current.Duration
		}
		position := formatDuration(progress.Position)
		if duration > 0 {
			position += "/" + formatDuration(duration)
		}
		parts = append(parts, position, fmt.Sprintf("%d/%d", st.CurrentIndex+1, len(st.Queue)))
	}

	if st.IsLooping {
		parts = append(parts, "[loop]")
	}
	if st.IsShuffling {
		parts = append(parts, "[shuffle]")
	}

	prev, next := " ", " "
	if st.HasPrevious() {
		prev = GlyphPrevious
	}
	if st.HasNext() {
		next = GlyphNext
	}
	parts = append(parts, prev+next)

	return glyph, text, strings.Join(parts, " ")
}

func (a *App) drawStatusLine(w, y int) {
	if y < 0 {
		return
	}
	style := barStyle()
	fillLine(a.screen, 0, y, w, style)

	var left string
	switch {
	case a.mode == ModeSearch:
		left = "/" + a.episodes.Search().Query()
	case a.currentView == a.episodes && a.episodes.Search().Active():
		left = "NORMAL  filter: " + a.episodes.Search().Query()
	default:
		left = "NORMAL"
	}
	x := drawText(a.screen, 0, y, noLimit, style, left)

	if a.mode == ModeSearch {
		search := a.episodes.Search()
		query := []rune(search.Query())
		cursorX := 1 + runewidth.StringWidth(string(query[:search.CursorPos()]))
		cursor := ' '
		if search.CursorPos() < len(query) {
			cursor = query[search.CursorPos()]
		}
		a.screen.SetContent(cursorX, y, cursor, nil, style.Reverse(true))
	}

	right := "? help"
	if first, last, total := a.currentView.ScrollInfo(); total > 0 {
		right = fmt.Sprintf("%d-%d/%d  ? help", first, last, total)
	}
	rightWidth := runewidth.StringWidth(right)
	drawText(a.screen, w-rightWidth-1, y, noLimit, style.Foreground(ColorDimmed), right)

	if a.statusMessage != "" {
		msgStyle := style.Foreground(ColorYellow)
		if a.statusIsError {
			msgStyle = style.Foreground(ColorError)
		}
		drawText(a.screen, x+2, y, max(0, w-x-rightWidth-5), msgStyle, a.statusMessage)
	}
}
