// Package header renders the branding line shown above every view: the
// application name, a tagline and today's date in the configured locale.
package header

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
)

const Brand = "Podcastr"

// Header formats the date line from an injectable clock.
type Header struct {
	now    func() time.Time
	locale Locale
}

// New creates a header. A nil clock means time.Now.
func New(locale Locale, now func() time.Time) *Header {
	if now == nil {
		now = time.Now
	}
	return &Header{now: now, locale: locale}
}

// Date returns the current date, e.g. "seg, 5 Janeiro".
func (h *Header) Date() string {
	return Format(h.now(), h.locale)
}

// Tagline returns the localized tagline.
func (h *Header) Tagline() string {
	return h.locale.Tagline
}

// Locale returns the locale the header renders with.
func (h *Header) Locale() Locale {
	return h.locale
}

// Format renders abbreviated weekday, day of month and month name.
func Format(t time.Time, locale Locale) string {
	month := cases.Title(locale.Tag).String(locale.Months[t.Month()-1])
	return fmt.Sprintf("%s, %d %s", locale.Weekdays[t.Weekday()], t.Day(), month)
}
