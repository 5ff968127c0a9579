package feed

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/csams/podcastr/internal/models"
)

type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title       string      `xml:"title"`
	Description string      `xml:"description"`
	Link        string      `xml:"link"`
	Author      string      `xml:"author"`
	ITunesImage ITunesImage `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd image"`
	Image       Image       `xml:"image"`
	Items       []Item      `xml:"item"`
}

type ITunesImage struct {
	Href string `xml:"href,attr"`
}

type Image struct {
	URL  string `xml:"url"`
	Href string `xml:"href,attr"`
}

// Item fields without a namespace match both the plain RSS element and its
// itunes: counterpart.
type Item struct {
	Title       string      `xml:"title"`
	Description string      `xml:"description"`
	Author      string      `xml:"author"`
	ITunesImage ITunesImage `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd image"`
	Image       Image       `xml:"image"`
	Enclosure   Enclosure   `xml:"enclosure"`
	PubDate     string      `xml:"pubDate"`
	Duration    string      `xml:"duration"`
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

var ErrNoEpisodes = errors.New("feed has no playable episodes")

// ParseFile reads a podcast feed from disk.
func ParseFile(path string) (*models.Podcast, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open feed")
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse decodes an RSS feed. source identifies the feed and seeds episode IDs.
// Items without an enclosure URL are skipped.
func Parse(r io.Reader, source string) (*models.Podcast, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read feed")
	}

	var rss RSS
	if err := xml.Unmarshal(data, &rss); err != nil {
		return nil, errors.Wrap(err, "failed to parse RSS")
	}

	imageURL := firstNonEmpty(rss.Channel.ITunesImage.Href, rss.Channel.Image.URL, rss.Channel.Image.Href)

	podcast := &models.Podcast{
		Title:       strings.TrimSpace(rss.Channel.Title),
		Description: strings.TrimSpace(rss.Channel.Description),
		Source:      source,
		ImageURL:    imageURL,
		Author:      strings.TrimSpace(rss.Channel.Author),
		LoadedAt:    time.Now(),
		Episodes:    make([]models.Episode, 0, len(rss.Channel.Items)),
	}

	for _, item := range rss.Channel.Items {
		if item.Enclosure.URL == "" {
			continue
		}

		episode := models.Episode{
			Title:       strings.TrimSpace(item.Title),
			Members:     firstNonEmpty(strings.TrimSpace(item.Author), podcast.Author),
			Thumbnail:   firstNonEmpty(item.ITunesImage.Href, item.Image.Href, item.Image.URL, imageURL),
			Duration:    parseDuration(item.Duration),
			URL:         item.Enclosure.URL,
			Description: strings.TrimSpace(item.Description),
		}

		if pubDate, err := parseRFC2822Date(item.PubDate); err == nil {
			episode.PublishDate = pubDate
		}

		episode.GenerateID(source)
		podcast.Episodes = append(podcast.Episodes, episode)
	}

	if len(podcast.Episodes) == 0 {
		return podcast, errors.Wrapf(ErrNoEpisodes, "source %s", source)
	}

	return podcast, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseRFC2822Date(dateStr string) (time.Time, error) {
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
	}

	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf("unable to parse date: %s", dateStr)
}

// parseDuration converts plain seconds, MM:SS or HH:MM:SS into a duration
func parseDuration(duration string) time.Duration {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(duration); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if strings.Contains(duration, ":") {
		return parseTimeFormatDuration(duration)
	}

	return 0
}

func parseTimeFormatDuration(timeStr string) time.Duration {
	parts := strings.Split(timeStr, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	var total time.Duration
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	for i := range parts {
		n, err := strconv.Atoi(parts[len(parts)-1-i])
		if err != nil || n < 0 {
			return 0
		}
		total += time.Duration(n) * units[i]
	}
	return total
}
