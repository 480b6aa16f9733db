// AngelaMos | 2026
// chicago.go

package citation

import (
	"strings"
)

const (
	chicagoMaxListed    = 10
	chicagoTruncateTo   = 7
	chicagoInTextListed = 3
)

func chicagoAuthors(names []personName) string {
	if len(names) == 0 {
		return ""
	}

	items := make([]string, 0, len(names))
	items = append(items, names[0].inverted())
	for _, n := range names[1:] {
		items = append(items, n.natural())
	}

	if len(items) > chicagoMaxListed {
		return strings.Join(items[:chicagoTruncateTo], ", ") + ", et al"
	}
	return joinSeries(items, "and", true, true)
}

// chicagoFull: Smith, John, and Jane Doe. 2023. "Title." Journal 5 (2): 100-115.
// This is the author-date variant; the in-text form has no comma before the year.
// Anonymous works lead with the title and put the date after it.
func chicagoFull(s *Source) string {
	var parts []string

	date := sentence(yearOr(s, "n.d."))
	if authors := chicagoAuthors(s.names()); authors != "" {
		parts = append(parts, sentence(authors), date, quotedTitle(s.title(), "."))
	} else {
		parts = append(parts, quotedTitle(s.title(), "."), date)
	}

	if s.Journal != "" {
		venue := s.Journal
		if s.Volume != "" {
			venue += " " + s.Volume
		}
		if s.Issue != "" {
			venue += " (" + s.Issue + ")"
		}
		if s.Pages != "" {
			venue += ": " + s.Pages
		}
		parts = append(parts, sentence(venue))
	}

	if doi := s.doiURL(); doi != "" {
		parts = append(parts, doi+".")
	} else if s.URL != "" {
		parts = append(parts, s.URL+".")
	}

	return strings.Join(parts, " ")
}

// chicagoInText: (Smith 2023), (Smith and Doe 2023), (Smith, Doe, and Lee 2023), (Smith et al. 2023).
func chicagoInText(s *Source, _ int) string {
	year := yearOr(s, "n.d.")
	names := s.names()

	var who string
	switch {
	case len(names) == 0:
		who = s.shortTitle()
	case len(names) <= chicagoInTextListed:
		who = joinSeries(surnames(names), "and", true, false)
	default:
		who = names[0].family + " et al."
	}

	return "(" + who + " " + year + ")"
}
