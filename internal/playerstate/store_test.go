package playerstate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csams/podcastr/internal/models"
)

// fixedRand returns the queued values in order, then repeats the last one.
type fixedRand struct {
	values []int
	calls  []int
}

func (r *fixedRand) Intn(n int) int {
	r.calls = append(r.calls, n)
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v % n
}

func episodes(n int) []models.Episode {
	list := make([]models.Episode, n)
	for i := range list {
		list[i] = models.Episode{
			ID:    fmt.Sprintf("ep-%d", i),
			Title: fmt.Sprintf("Episode %d", i),
			URL:   fmt.Sprintf("https://example.com/%d.mp3", i),
		}
	}
	return list
}

func TestNewStore_Empty(t *testing.T) {
	s := NewStore()
	st := s.Snapshot()

	assert.Empty(t, st.Queue)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.False(t, st.IsPlaying)
	assert.False(t, st.IsLooping)
	assert.False(t, st.IsShuffling)
	assert.Nil(t, st.Current())
	assert.False(t, st.HasNext())
	assert.False(t, st.HasPrevious())
}

func TestStore_Play(t *testing.T) {
	s := NewStore()
	s.PlayList(episodes(4), 2)

	ep := models.Episode{Title: "Solo", URL: "https://example.com/solo.mp3"}
	s.Play(ep)

	st := s.Snapshot()
	assert.Equal(t, []models.Episode{ep}, st.Queue)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.True(t, st.IsPlaying)
	require.NotNil(t, st.Current())
	assert.Equal(t, "Solo", st.Current().Title)
}

func TestStore_PlayList(t *testing.T) {
	list := episodes(5)
	for i := range list {
		t.Run(fmt.Sprintf("index %d", i), func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.PlayList(list, i))

			st := s.Snapshot()
			assert.Equal(t, list, st.Queue)
			assert.Equal(t, i, st.CurrentIndex)
			assert.True(t, st.IsPlaying)
		})
	}
}

func TestStore_PlayListCopiesInput(t *testing.T) {
	list := episodes(3)
	s := NewStore()
	require.NoError(t, s.PlayList(list, 0))

	list[0].Title = "mutated"
	assert.Equal(t, "Episode 0", s.Snapshot().Queue[0].Title)
}

func TestStore_Toggles(t *testing.T) {
	s := NewStore()

	s.ToggleLoop()
	assert.True(t, s.Snapshot().IsLooping)
	s.ToggleLoop()
	assert.False(t, s.Snapshot().IsLooping)

	s.ToggleShuffle()
	assert.True(t, s.Snapshot().IsShuffling)
	s.ToggleShuffle()
	assert.False(t, s.Snapshot().IsShuffling)

	s.TogglePlay()
	assert.True(t, s.Snapshot().IsPlaying)
	s.TogglePlay()
	assert.False(t, s.Snapshot().IsPlaying)
}

func TestStore_SetPlayingState(t *testing.T) {
	s := NewStore()
	s.Play(episodes(1)[0])

	s.SetPlayingState(false)
	assert.False(t, s.Snapshot().IsPlaying)
	s.SetPlayingState(false)
	assert.False(t, s.Snapshot().IsPlaying)
	s.SetPlayingState(true)
	assert.True(t, s.Snapshot().IsPlaying)
}

func TestStore_PlayNextSequential(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.PlayList(episodes(3), 0))
	assert.True(t, s.Snapshot().HasNext())

	s.PlayNext()
	s.PlayNext()
	st := s.Snapshot()
	assert.Equal(t, 2, st.CurrentIndex)
	assert.False(t, st.HasNext())

	s.PlayNext()
	assert.Equal(t, 2, s.Snapshot().CurrentIndex)
}

func TestStore_PlayNextShuffling(t *testing.T) {
	rng := &fixedRand{values: []int{3, 3, 0, 4}}
	s := NewStore(WithRand(rng))
	require.NoError(t, s.PlayList(episodes(5), 4))
	s.ToggleShuffle()

	// shuffling has a next episode even at the end of the queue
	assert.True(t, s.Snapshot().HasNext())

	want := []int{3, 3, 0, 4}
	for _, w := range want {
		s.PlayNext()
		assert.Equal(t, w, s.Snapshot().CurrentIndex)
	}
	for _, n := range rng.calls {
		assert.Equal(t, 5, n)
	}
}

func TestStore_PlayNextShufflingStaysInRange(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.PlayList(episodes(5), 0))
	s.ToggleShuffle()

	for i := 0; i < 500; i++ {
		s.PlayNext()
		st := s.Snapshot()
		require.GreaterOrEqual(t, st.CurrentIndex, 0)
		require.Less(t, st.CurrentIndex, 5)
		require.True(t, st.HasNext())
	}
}

func TestStore_PlayNextShufflingEmptyQueue(t *testing.T) {
	rng := &fixedRand{values: []int{0}}
	s := NewStore(WithRand(rng))
	s.ToggleShuffle()
	before := s.Snapshot()

	s.PlayNext()
	assert.Equal(t, before, s.Snapshot())
	assert.Empty(t, rng.calls)
}

func TestStore_PlayPrevious(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.PlayList(episodes(3), 0))
	before := s.Snapshot()

	s.PlayPrevious()
	assert.Equal(t, before, s.Snapshot())

	require.NoError(t, s.PlayList(episodes(3), 2))
	s.PlayPrevious()
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)
	assert.True(t, s.Snapshot().HasPrevious())
	s.PlayPrevious()
	assert.Equal(t, 0, s.Snapshot().CurrentIndex)
	assert.False(t, s.Snapshot().HasPrevious())
}

func TestStore_ClearPlayerState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Store)
	}{
		{"empty store", func(*Store) {}},
		{"mid queue", func(s *Store) { _ = s.PlayList(episodes(4), 3) }},
		{"single episode", func(s *Store) { s.Play(episodes(1)[0]) }},
		{"shuffling and looping", func(s *Store) {
			_ = s.PlayList(episodes(2), 1)
			s.ToggleShuffle()
			s.ToggleLoop()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			tt.setup(s)
			flags := s.Snapshot()

			s.ClearPlayerState()
			st := s.Snapshot()
			assert.Empty(t, st.Queue)
			assert.Equal(t, 0, st.CurrentIndex)
			assert.Nil(t, st.Current())
			assert.Equal(t, flags.IsLooping, st.IsLooping)
			assert.Equal(t, flags.IsShuffling, st.IsShuffling)
		})
	}
}

func TestStore_IndexPolicies(t *testing.T) {
	tests := []struct {
		name      string
		policy    IndexPolicy
		length    int
		index     int
		wantIndex int
		wantErr   bool
	}{
		{"unchecked keeps past end", PolicyUnchecked, 3, 7, 7, false},
		{"unchecked keeps negative", PolicyUnchecked, 3, -1, -1, false},
		{"clamp past end", PolicyClamp, 3, 7, 2, false},
		{"clamp negative", PolicyClamp, 3, -4, 0, false},
		{"clamp in range", PolicyClamp, 3, 1, 1, false},
		{"clamp empty", PolicyClamp, 0, 5, 0, false},
		{"wrap past end", PolicyWrap, 3, 7, 1, false},
		{"wrap negative", PolicyWrap, 3, -1, 2, false},
		{"wrap empty", PolicyWrap, 0, 5, 0, false},
		{"reject past end", PolicyReject, 3, 3, 0, true},
		{"reject negative", PolicyReject, 3, -1, 0, true},
		{"reject empty", PolicyReject, 0, 0, 0, true},
		{"reject in range", PolicyReject, 3, 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(WithIndexPolicy(tt.policy))
			err := s.PlayList(episodes(tt.length), tt.index)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIndexOutOfRange)
				assert.Equal(t, uint64(0), s.Snapshot().Version)
				assert.False(t, s.Snapshot().IsPlaying)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIndex, s.Snapshot().CurrentIndex)
		})
	}
}

func TestStore_UncheckedIndexHasNoCurrent(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.PlayList(episodes(2), 5))

	st := s.Snapshot()
	assert.Nil(t, st.Current())
	assert.True(t, st.HasPrevious())
	assert.False(t, st.HasNext())
}

func TestStore_SubscribeReceivesEverySnapshot(t *testing.T) {
	s := NewStore()
	var got []PlayerState
	s.Subscribe(func(st PlayerState) { got = append(got, st) })

	s.Play(episodes(1)[0])
	s.TogglePlay()
	s.ToggleLoop()

	require.Len(t, got, 3)
	assert.True(t, got[0].IsPlaying)
	assert.False(t, got[1].IsPlaying)
	assert.True(t, got[2].IsLooping)
	for i, st := range got {
		assert.Equal(t, uint64(i+1), st.Version)
	}
	assert.Equal(t, got[2], s.Snapshot())
}

func TestStore_NoOpsDoNotNotify(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.PlayList(episodes(2), 1))

	calls := 0
	s.Subscribe(func(PlayerState) { calls++ })

	s.PlayNext()
	s.PlayNext()
	assert.Equal(t, 0, calls)

	s.PlayPrevious()
	s.PlayPrevious()
	assert.Equal(t, 1, calls)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()
	var a, b int
	idA := s.Subscribe(func(PlayerState) { a++ })
	s.Subscribe(func(PlayerState) { b++ })
	assert.Equal(t, 2, s.SubscriberCount())

	s.TogglePlay()
	s.Unsubscribe(idA)
	s.Unsubscribe("unknown")
	s.TogglePlay()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, s.SubscriberCount())
}

func TestStore_ListenerMayCallBack(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(st PlayerState) {
		// stop at the end of a sequential queue
		if !st.HasNext() && st.IsPlaying && !st.IsEmpty() {
			s.SetPlayingState(false)
		}
	})

	require.NoError(t, s.PlayList(episodes(2), 1))
	assert.False(t, s.Snapshot().IsPlaying)
}

func TestStore_ListenersCalledInSubscriptionOrder(t *testing.T) {
	s := NewStore()
	var order []string
	for _, name := range []string{"header", "list", "bar"} {
		name := name
		s.Subscribe(func(PlayerState) { order = append(order, name) })
	}

	s.ToggleShuffle()
	assert.Equal(t, []string{"header", "list", "bar"}, order)
}

func TestParseIndexPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    IndexPolicy
		wantErr bool
	}{
		{"", PolicyUnchecked, false},
		{"unchecked", PolicyUnchecked, false},
		{"Clamp", PolicyClamp, false},
		{" wrap ", PolicyWrap, false},
		{"reject", PolicyReject, false},
		{"bounce", PolicyUnchecked, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIndexPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) IndexPolicy {
	t.Helper()
	p, err := ParseIndexPolicy(s)
	require.NoError(t, err)
	return p
}
