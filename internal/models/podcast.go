package models

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Podcast is the catalog of episodes the player browses. It is built from a
// feed file at startup and never written back.
type Podcast struct {
	Title       string
	Description string
	Source      string
	ImageURL    string
	Author      string
	Episodes    []Episode
	LoadedAt    time.Time
}

type Episode struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Members     string        `json:"members"`
	Thumbnail   string        `json:"thumbnail"`
	Duration    time.Duration `json:"duration"`
	URL         string        `json:"url"`
	Description string        `json:"description,omitempty"`
	PublishDate time.Time     `json:"publishDate"`
}

// GenerateEpisodeID creates a unique ID for an episode based on the feed source, episode URL, and publish date
func GenerateEpisodeID(source, episodeURL string, publishDate time.Time) string {
	h := sha256.New()
	h.Write([]byte(source + episodeURL + publishDate.Format(time.RFC3339)))
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// GenerateID generates an ID for this episode using the feed it was read from
func (e *Episode) GenerateID(source string) {
	e.ID = GenerateEpisodeID(source, e.URL, e.PublishDate)
}

// DurationSeconds returns the episode length in whole seconds.
func (e Episode) DurationSeconds() int {
	return int(e.Duration / time.Second)
}

// FindEpisode returns the index of the episode with the given ID, or -1.
func (p *Podcast) FindEpisode(id string) int {
	for i := range p.Episodes {
		if p.Episodes[i].ID == id {
			return i
		}
	}
	return -1
}
