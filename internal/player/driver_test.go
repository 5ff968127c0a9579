package player

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csams/podcastr/internal/models"
	"github.com/csams/podcastr/internal/playerstate"
)

type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	playErr error
	ended   chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{ended: make(chan struct{}, 1)}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeBackend) Play(url string) error {
	f.record("play " + url)
	return f.playErr
}

func (f *fakeBackend) Pause() error  { f.record("pause"); return nil }
func (f *fakeBackend) Resume() error { f.record("resume"); return nil }
func (f *fakeBackend) Stop() error   { f.record("stop"); return nil }

func (f *fakeBackend) SetLoop(loop bool) error {
	f.record(fmt.Sprintf("loop %t", loop))
	return nil
}

func (f *fakeBackend) Ended() <-chan struct{} { return f.ended }

func queue(n int) []models.Episode {
	list := make([]models.Episode, n)
	for i := range list {
		list[i] = models.Episode{Title: fmt.Sprintf("Episode %d", i), URL: fmt.Sprintf("u%d", i)}
	}
	return list
}

func newAttachedDriver(opts ...playerstate.Option) (*playerstate.Store, *fakeBackend, *Driver) {
	store := playerstate.NewStore(opts...)
	backend := newFakeBackend()
	d := NewDriver(store, backend)
	d.subID = store.Subscribe(d.apply)
	return store, backend, d
}

func TestDriver_PlayLoadsCurrentEpisode(t *testing.T) {
	store, backend, _ := newAttachedDriver()

	require.NoError(t, store.PlayList(queue(3), 1))
	assert.Equal(t, []string{"play u1"}, backend.Calls())
}

func TestDriver_TogglePlayPausesAndResumes(t *testing.T) {
	store, backend, _ := newAttachedDriver()
	store.Play(queue(1)[0])
	backend.Reset()

	store.TogglePlay()
	store.TogglePlay()
	assert.Equal(t, []string{"pause", "resume"}, backend.Calls())
}

func TestDriver_NextAndPreviousSwitchEpisodes(t *testing.T) {
	store, backend, _ := newAttachedDriver()
	require.NoError(t, store.PlayList(queue(3), 0))
	backend.Reset()

	store.PlayNext()
	store.PlayNext()
	store.PlayNext()
	store.PlayPrevious()
	assert.Equal(t, []string{"play u1", "play u2", "play u1"}, backend.Calls())
}

func TestDriver_LoadWhilePausedStaysPaused(t *testing.T) {
	store, backend, _ := newAttachedDriver()
	require.NoError(t, store.PlayList(queue(2), 0))
	store.TogglePlay()
	backend.Reset()

	store.PlayNext()
	assert.Equal(t, []string{"play u1", "pause"}, backend.Calls())
}

func TestDriver_ToggleLoop(t *testing.T) {
	store, backend, _ := newAttachedDriver()

	store.ToggleLoop()
	store.ToggleShuffle()
	store.ToggleLoop()
	assert.Equal(t, []string{"loop true", "loop false"}, backend.Calls())
}

func TestDriver_ClearStops(t *testing.T) {
	store, backend, _ := newAttachedDriver()
	store.Play(queue(1)[0])
	backend.Reset()

	store.ClearPlayerState()
	store.ClearPlayerState()
	assert.Equal(t, []string{"stop"}, backend.Calls())
}

func TestDriver_PlayFailureIsRetriedOnNextChange(t *testing.T) {
	store, backend, _ := newAttachedDriver()
	backend.playErr = errors.New("socket gone")

	store.Play(queue(1)[0])
	backend.playErr = nil
	store.ToggleLoop()

	assert.Equal(t, []string{"play u0", "loop true", "play u0"}, backend.Calls())
}

func TestDriver_EndedAdvancesQueue(t *testing.T) {
	store, backend, d := newAttachedDriver()
	require.NoError(t, store.PlayList(queue(2), 0))
	backend.Reset()

	d.handleEnded()

	st := store.Snapshot()
	assert.Equal(t, 1, st.CurrentIndex)
	assert.True(t, st.IsPlaying)
	assert.Equal(t, []string{"play u1"}, backend.Calls())
}

func TestDriver_EndedAtLastEpisodeClearsQueue(t *testing.T) {
	store, backend, d := newAttachedDriver()
	require.NoError(t, store.PlayList(queue(2), 1))
	backend.Reset()

	d.handleEnded()

	st := store.Snapshot()
	assert.Empty(t, st.Queue)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.False(t, st.IsPlaying)
	assert.Empty(t, backend.Calls(), "mpv is already idle after end of file")
}

func TestDriver_EndedWhileShufflingReloadsSameIndex(t *testing.T) {
	store, backend, d := newAttachedDriver(playerstate.WithRand(constRand(0)))
	require.NoError(t, store.PlayList(queue(3), 0))
	store.ToggleShuffle()
	backend.Reset()

	d.handleEnded()

	assert.Equal(t, 0, store.Snapshot().CurrentIndex)
	assert.Equal(t, []string{"play u0"}, backend.Calls())
}

func TestDriver_EndedWhileLoopingReplays(t *testing.T) {
	store, backend, d := newAttachedDriver()
	store.Play(queue(1)[0])
	store.ToggleLoop()
	backend.Reset()

	d.handleEnded()

	assert.Equal(t, []string{"play u0"}, backend.Calls())
	assert.Len(t, store.Snapshot().Queue, 1)
}

func TestDriver_IgnoresStaleSnapshots(t *testing.T) {
	store, backend, d := newAttachedDriver()
	require.NoError(t, store.PlayList(queue(2), 1))
	backend.Reset()

	d.apply(playerstate.PlayerState{Queue: queue(2), CurrentIndex: 0, IsPlaying: true, Version: 0})
	assert.Empty(t, backend.Calls())
}

func TestDriver_RunHandlesEndedAndUnsubscribes(t *testing.T) {
	store := playerstate.NewStore()
	backend := newFakeBackend()
	d := NewDriver(store, backend)
	require.NoError(t, store.PlayList(queue(2), 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(backend.Calls()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "play u0", backend.Calls()[0])

	backend.ended <- struct{}{}
	require.Eventually(t, func() bool {
		return store.Snapshot().CurrentIndex == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, store.SubscriberCount())
}

type constRand int

func (c constRand) Intn(n int) int { return int(c) % n }
