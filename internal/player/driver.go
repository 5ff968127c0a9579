package player

import (
	"context"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/csams/podcastr/internal/playerstate"
)

// Backend is the audio surface the driver controls.
type Backend interface {
	Play(url string) error
	Pause() error
	Resume() error
	Stop() error
	SetLoop(loop bool) error
	// Ended fires when an episode plays to its end.
	Ended() <-chan struct{}
}

// Driver keeps a Backend in step with the player state and reports episode
// completion back to the store.
type Driver struct {
	store   *playerstate.Store
	backend Backend

	mu          sync.Mutex
	subID       string
	loadedURL   string
	playing     bool
	looping     bool
	lastVersion uint64
}

func NewDriver(store *playerstate.Store, backend Backend) *Driver {
	return &Driver{store: store, backend: backend}
}

// Run subscribes to the store and handles completions until ctx is done.
func (d *Driver) Run(ctx context.Context) {
	d.mu.Lock()
	d.subID = d.store.Subscribe(d.apply)
	d.mu.Unlock()
	defer d.store.Unsubscribe(d.subID)

	d.sync(d.store.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.backend.Ended():
			d.handleEnded()
		}
	}
}

func (d *Driver) apply(st playerstate.PlayerState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if st.Version < d.lastVersion {
		return
	}
	d.applyLocked(st)
}

func (d *Driver) sync(st playerstate.PlayerState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyLocked(st)
}

func (d *Driver) applyLocked(st playerstate.PlayerState) {
	d.lastVersion = st.Version

	if st.IsLooping != d.looping {
		if err := d.backend.SetLoop(st.IsLooping); err != nil {
			zlog.Error().Err(err).Bool("loop", st.IsLooping).Msg("failed to set loop")
		}
		d.looping = st.IsLooping
	}

	url := ""
	if current := st.Current(); current != nil {
		url = current.URL
	}

	switch {
	case url == "":
		if d.loadedURL != "" {
			if err := d.backend.Stop(); err != nil {
				zlog.Error().Err(err).Msg("failed to stop playback")
			}
		}
		d.loadedURL = ""
		d.playing = false

	case url != d.loadedURL:
		if err := d.backend.Play(url); err != nil {
			zlog.Error().Err(err).Str("url", url).Msg("failed to play episode")
			return
		}
		d.loadedURL = url
		d.playing = true
		if !st.IsPlaying {
			d.pauseLocked()
		}

	case st.IsPlaying != d.playing:
		if st.IsPlaying {
			if err := d.backend.Resume(); err != nil {
				zlog.Error().Err(err).Msg("failed to resume")
				return
			}
			d.playing = true
		} else {
			d.pauseLocked()
		}
	}
}

func (d *Driver) pauseLocked() {
	if err := d.backend.Pause(); err != nil {
		zlog.Error().Err(err).Msg("failed to pause")
		return
	}
	d.playing = false
}

// handleEnded advances the queue when an episode finishes: the next episode
// if there is one, otherwise the queue is cleared and playback stops.
func (d *Driver) handleEnded() {
	d.mu.Lock()
	// the backend is idle now, so the same URL must be loaded again
	d.loadedURL = ""
	d.playing = false
	d.mu.Unlock()

	st := d.store.Snapshot()
	zlog.Info().Int("index", st.CurrentIndex).Bool("has_next", st.HasNext()).Msg("episode finished")

	switch {
	case st.IsLooping:
		d.sync(d.store.Snapshot())
	case st.HasNext():
		d.store.PlayNext()
		if !d.store.Snapshot().IsPlaying {
			d.store.SetPlayingState(true)
		}
	default:
		d.store.ClearPlayerState()
		d.store.SetPlayingState(false)
	}
}
