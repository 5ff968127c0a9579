// Package playerstate holds the shared playback state: the episode queue and
// the transport flags, published to subscribers after every change.
package playerstate

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/csams/podcastr/internal/models"
)

// PlayerState is an immutable snapshot of the store.
type PlayerState struct {
	Queue        []models.Episode
	CurrentIndex int
	IsPlaying    bool
	IsLooping    bool
	IsShuffling  bool

	// Version increases by one with every published change.
	Version uint64
}

// HasNext reports whether PlayNext would move. Shuffling always has a next
// episode.
func (s PlayerState) HasNext() bool {
	return s.IsShuffling || s.CurrentIndex+1 < len(s.Queue)
}

// HasPrevious reports whether PlayPrevious would move.
func (s PlayerState) HasPrevious() bool {
	return s.CurrentIndex > 0
}

// Current returns the episode at CurrentIndex, or nil when the queue is empty
// or the index does not point into it.
func (s PlayerState) Current() *models.Episode {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Queue) {
		return nil
	}
	return &s.Queue[s.CurrentIndex]
}

// IsEmpty returns true if the queue has no episodes.
func (s PlayerState) IsEmpty() bool {
	return len(s.Queue) == 0
}

// IndexPolicy decides what PlayList does with a start index outside the list.
type IndexPolicy int

const (
	PolicyUnchecked IndexPolicy = iota // Store the index as given
	PolicyClamp                        // Clamp into [0, len-1]
	PolicyWrap                         // Wrap modulo len
	PolicyReject                       // Return ErrIndexOutOfRange
)

var ErrIndexOutOfRange = errors.New("episode index out of range")

// String returns the configuration name of the policy.
func (p IndexPolicy) String() string {
	switch p {
	case PolicyClamp:
		return "clamp"
	case PolicyWrap:
		return "wrap"
	case PolicyReject:
		return "reject"
	default:
		return "unchecked"
	}
}

// ParseIndexPolicy converts a configuration name to an IndexPolicy.
func ParseIndexPolicy(s string) (IndexPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unchecked":
		return PolicyUnchecked, nil
	case "clamp":
		return PolicyClamp, nil
	case "wrap":
		return PolicyWrap, nil
	case "reject":
		return PolicyReject, nil
	default:
		return PolicyUnchecked, errors.Newf("unknown index policy %q", s)
	}
}

// resolve maps a requested start index onto the list according to the policy.
func (p IndexPolicy) resolve(index, length int) (int, error) {
	switch p {
	case PolicyClamp:
		if length == 0 || index < 0 {
			return 0, nil
		}
		if index >= length {
			return length - 1, nil
		}
		return index, nil
	case PolicyWrap:
		if length == 0 {
			return 0, nil
		}
		return ((index % length) + length) % length, nil
	case PolicyReject:
		if index < 0 || index >= length {
			return 0, errors.Wrapf(ErrIndexOutOfRange, "index %d, queue length %d", index, length)
		}
		return index, nil
	default:
		return index, nil
	}
}
