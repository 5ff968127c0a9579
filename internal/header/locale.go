package header

import (
	"golang.org/x/text/language"
)

// Locale carries the names needed to render the header date and tagline.
type Locale struct {
	Tag      language.Tag
	Weekdays [7]string  // abbreviated, indexed by time.Weekday
	Months   [12]string // full, indexed by time.Month - 1
	Tagline  string
}

var (
	Portuguese = Locale{
		Tag:      language.Portuguese,
		Weekdays: [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
		Months: [12]string{
			"janeiro", "fevereiro", "março", "abril", "maio", "junho",
			"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
		},
		Tagline: "O melhor para você ouvir, sempre",
	}

	English = Locale{
		Tag:      language.English,
		Weekdays: [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"},
		Months: [12]string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
		Tagline: "The best for you to listen to, always",
	}

	Spanish = Locale{
		Tag:      language.Spanish,
		Weekdays: [7]string{"do", "lu", "ma", "mi", "ju", "vi", "sá"},
		Months: [12]string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		},
		Tagline: "Lo mejor para escuchar, siempre",
	}
)

// supported is ordered for the matcher; the first entry is the fallback.
var supported = []Locale{Portuguese, English, Spanish}

var matcher = language.NewMatcher(func() []language.Tag {
	tags := make([]language.Tag, len(supported))
	for i, l := range supported {
		tags[i] = l.Tag
	}
	return tags
}())

// LookupLocale returns the supported locale closest to the BCP 47 tag.
// Unparseable or unsupported tags get Portuguese.
func LookupLocale(tag string) Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return Portuguese
	}
	_, index, confidence := matcher.Match(t)
	if confidence == language.No {
		return Portuguese
	}
	return supported[index]
}
