package playerstate

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/csams/podcastr/internal/models"
)

// Listener receives every snapshot published by the store.
type Listener func(PlayerState)

// RandSource picks the shuffle index. Intn must return a value in [0, n).
type RandSource interface {
	Intn(n int) int
}

// Option configures a Store.
type Option func(*Store)

// WithRand replaces the shuffle source.
func WithRand(r RandSource) Option {
	return func(s *Store) {
		s.rng = r
	}
}

// WithIndexPolicy sets how PlayList treats an out-of-range start index.
func WithIndexPolicy(p IndexPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

type subscription struct {
	id       string
	listener Listener
}

// Store owns the playback state. Mutators replace the snapshot and notify
// listeners synchronously on the calling goroutine, outside the lock.
type Store struct {
	mu     sync.Mutex
	state  PlayerState
	policy IndexPolicy
	rng    RandSource

	subsMu sync.RWMutex
	subs   []subscription
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: PlayerState{Queue: []models.Episode{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = newSeededRand()
	}
	return s
}

func newSeededRand() *rand.Rand {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Policy returns the configured index policy.
func (s *Store) Policy() IndexPolicy {
	return s.policy
}

// Snapshot returns the current state. The queue slice must not be modified.
func (s *Store) Snapshot() PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener and returns its subscription ID.
func (s *Store) Subscribe(l Listener) string {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := uuid.New().String()
	s.subs = append(s.subs, subscription{id: id, listener: l})
	return id
}

// Unsubscribe removes a listener. Unknown IDs are ignored.
func (s *Store) Unsubscribe(id string) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of registered listeners.
func (s *Store) SubscriberCount() int {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	return len(s.subs)
}

// update applies fn to a copy of the state. If fn reports a change the copy
// becomes the new snapshot and is published.
func (s *Store) update(op string, fn func(*PlayerState) bool) {
	s.mu.Lock()
	next := s.state
	if !fn(&next) {
		s.mu.Unlock()
		return
	}
	next.Version = s.state.Version + 1
	s.state = next
	s.mu.Unlock()

	zlog.Debug().
		Str("op", op).
		Int("index", next.CurrentIndex).
		Int("queue", len(next.Queue)).
		Bool("playing", next.IsPlaying).
		Bool("looping", next.IsLooping).
		Bool("shuffling", next.IsShuffling).
		Uint64("version", next.Version).
		Msg("player state changed")

	s.publish(next)
}

func (s *Store) publish(state PlayerState) {
	s.subsMu.RLock()
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.listener
	}
	s.subsMu.RUnlock()

	for _, l := range listeners {
		l(state)
	}
}

// Play replaces the queue with a single episode and starts playing it.
func (s *Store) Play(episode models.Episode) {
	s.update("play", func(st *PlayerState) bool {
		st.Queue = []models.Episode{episode}
		st.CurrentIndex = 0
		st.IsPlaying = true
		return true
	})
}

// PlayList replaces the queue with a copy of list and starts playing at
// index. The index is resolved by the store's IndexPolicy; only PolicyReject
// returns an error, in which case the state is left untouched.
func (s *Store) PlayList(list []models.Episode, index int) error {
	resolved, err := s.policy.resolve(index, len(list))
	if err != nil {
		zlog.Warn().Err(err).Int("index", index).Int("length", len(list)).Msg("play list rejected")
		return err
	}

	queue := make([]models.Episode, len(list))
	copy(queue, list)

	s.update("play_list", func(st *PlayerState) bool {
		st.Queue = queue
		st.CurrentIndex = resolved
		st.IsPlaying = true
		return true
	})
	return nil
}

// TogglePlay flips between playing and paused.
func (s *Store) TogglePlay() {
	s.update("toggle_play", func(st *PlayerState) bool {
		st.IsPlaying = !st.IsPlaying
		return true
	})
}

// ToggleLoop flips looping of the current episode.
func (s *Store) ToggleLoop() {
	s.update("toggle_loop", func(st *PlayerState) bool {
		st.IsLooping = !st.IsLooping
		return true
	})
}

// ToggleShuffle flips shuffled advancing.
func (s *Store) ToggleShuffle() {
	s.update("toggle_shuffle", func(st *PlayerState) bool {
		st.IsShuffling = !st.IsShuffling
		return true
	})
}

// SetPlayingState sets the playing flag. The audio surface calls it when an
// episode finishes.
func (s *Store) SetPlayingState(playing bool) {
	s.update("set_playing_state", func(st *PlayerState) bool {
		st.IsPlaying = playing
		return true
	})
}

// PlayNext advances the queue. While shuffling any index may be chosen,
// including the current one.
func (s *Store) PlayNext() {
	s.update("play_next", func(st *PlayerState) bool {
		if st.IsShuffling {
			if len(st.Queue) == 0 {
				return false
			}
			st.CurrentIndex = s.rng.Intn(len(st.Queue))
			return true
		}
		if !st.HasNext() {
			return false
		}
		st.CurrentIndex++
		return true
	})
}

// PlayPrevious steps back one episode when possible.
func (s *Store) PlayPrevious() {
	s.update("play_previous", func(st *PlayerState) bool {
		if !st.HasPrevious() {
			return false
		}
		st.CurrentIndex--
		return true
	})
}

// ClearPlayerState empties the queue. The transport flags are kept.
func (s *Store) ClearPlayerState() {
	s.update("clear", func(st *PlayerState) bool {
		st.Queue = []models.Episode{}
		st.CurrentIndex = 0
		return true
	})
}
