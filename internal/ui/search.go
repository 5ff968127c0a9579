package ui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Score threshold constants (raw fzf scores)
const (
	ScoreThresholdStrict     = 70
	ScoreThresholdNormal     = 50
	ScoreThresholdPermissive = 30
	ScoreThresholdNone       = 0
)

// MatchField names the episode field a query matched.
type MatchField int

const (
	MatchNone MatchField = iota
	MatchTitle
	MatchMembers
)

// MatchResult contains a match score and rune positions for highlighting.
// A negative score means no match.
type MatchResult struct {
	Score     int
	Positions []int
	Field     MatchField
}

var initAlgo sync.Once

// SearchState holds the search query being edited and its matching options.
type SearchState struct {
	query         []rune
	cursorPos     int
	caseSensitive bool
	minScore      int
	slab          *util.Slab
}

func NewSearchState() *SearchState {
	initAlgo.Do(func() {
		algo.Init("default")
	})
	return &SearchState{
		minScore: ScoreThresholdNormal,
		slab:     util.MakeSlab(16384, 1024),
	}
}

func (s *SearchState) Query() string {
	return string(s.query)
}

func (s *SearchState) CursorPos() int {
	return s.cursorPos
}

func (s *SearchState) Active() bool {
	return len(s.query) > 0
}

func (s *SearchState) SetQuery(query string) {
	s.query = []rune(query)
	s.cursorPos = len(s.query)
}

func (s *SearchState) Clear() {
	s.query = nil
	s.cursorPos = 0
}

// SetMinScore sets the minimum score threshold; 0 accepts any match.
func (s *SearchState) SetMinScore(score int) {
	s.minScore = score
}

func (s *SearchState) MinScore() int {
	return s.minScore
}

func (s *SearchState) InsertChar(ch rune) {
	s.query = append(s.query[:s.cursorPos], append([]rune{ch}, s.query[s.cursorPos:]...)...)
	s.cursorPos++
}

// DeleteChar deletes the character before the cursor (backspace)
func (s *SearchState) DeleteChar() {
	if s.cursorPos > 0 {
		s.query = append(s.query[:s.cursorPos-1], s.query[s.cursorPos:]...)
		s.cursorPos--
	}
}

// DeleteCharForward deletes the character at the cursor (delete)
func (s *SearchState) DeleteCharForward() {
	if s.cursorPos < len(s.query) {
		s.query = append(s.query[:s.cursorPos], s.query[s.cursorPos+1:]...)
	}
}

func (s *SearchState) MoveCursorLeft() {
	if s.cursorPos > 0 {
		s.cursorPos--
	}
}

func (s *SearchState) MoveCursorRight() {
	if s.cursorPos < len(s.query) {
		s.cursorPos++
	}
}

// MoveCursorStart moves cursor to start (Ctrl+A)
func (s *SearchState) MoveCursorStart() {
	s.cursorPos = 0
}

// MoveCursorEnd moves cursor to end (Ctrl+E)
func (s *SearchState) MoveCursorEnd() {
	s.cursorPos = len(s.query)
}

// DeleteToEnd deletes from cursor to end (Ctrl+K)
func (s *SearchState) DeleteToEnd() {
	s.query = s.query[:s.cursorPos]
}

// DeleteWord deletes the word before cursor (Ctrl+W)
func (s *SearchState) DeleteWord() {
	if s.cursorPos == 0 {
		return
	}

	start := s.cursorPos
	for start > 0 && s.query[start-1] == ' ' {
		start--
	}
	for start > 0 && s.query[start-1] != ' ' {
		start--
	}

	s.query = append(s.query[:start], s.query[s.cursorPos:]...)
	s.cursorPos = start
}

// Match scores text against the query. An empty query matches everything
// with score 0.
func (s *SearchState) Match(text string) MatchResult {
	if len(s.query) == 0 {
		return MatchResult{}
	}

	searchText := text
	pattern := s.query
	if !s.caseSensitive {
		searchText = strings.ToLower(text)
		pattern = []rune(strings.ToLower(string(s.query)))
	}

	chars := util.ToChars([]byte(searchText))
	result, positions := algo.FuzzyMatchV2(s.caseSensitive, false, true, &chars, pattern, true, s.slab)
	if result.Start < 0 {
		return MatchResult{Score: -1}
	}

	var matchPositions []int
	if positions != nil {
		matchPositions = make([]int, len(*positions))
		copy(matchPositions, *positions)
	}
	return MatchResult{Score: result.Score, Positions: matchPositions}
}

func (s *SearchState) accepts(r MatchResult) bool {
	return r.Score >= 0 && (s.minScore == 0 || r.Score >= s.minScore)
}

// MatchEpisode tries the title first and then the members line.
func (s *SearchState) MatchEpisode(title, members string) (bool, MatchResult) {
	if len(s.query) == 0 {
		return true, MatchResult{}
	}

	if r := s.Match(title); s.accepts(r) {
		r.Field = MatchTitle
		return true, r
	}
	if members != "" {
		if r := s.Match(members); s.accepts(r) {
			r.Field = MatchMembers
			return true, r
		}
	}
	return false, MatchResult{Score: -1}
}
