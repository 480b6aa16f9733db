// AngelaMos | 2026
// apa.go

package citation

import (
	"strings"
)

const apaMaxListed = 20

func apaAuthors(names []personName) string {
	items := make([]string, len(names))
	for i, n := range names {
		items[i] = n.familyInitials(", ", true)
	}

	if len(items) > apaMaxListed {
		return strings.Join(items[:apaMaxListed-1], ", ") + ", . . . " + items[len(items)-1]
	}
	return joinSeries(items, "&", true, true)
}

// apaFull: Smith, J., & Doe, J. (2023). Title. Journal, 5(2), 100-115. https://doi.org/x
func apaFull(s *Source) string {
	var b strings.Builder

	names := s.names()
	date := "(" + yearOr(s, "n.d.") + ")."

	if len(names) > 0 {
		b.WriteString(sentence(apaAuthors(names)))
		b.WriteString(" " + date)
		b.WriteString(" " + sentence(s.title()))
	} else {
		b.WriteString(sentence(s.title()))
		b.WriteString(" " + date)
	}

	if s.Journal != "" {
		venue := s.Journal
		if vi := volumeIssue(s); vi != "" {
			venue += ", " + vi
		}
		if s.Pages != "" {
			venue += ", " + s.Pages
		}
		b.WriteString(" " + sentence(venue))
	}

	if doi := s.doiURL(); doi != "" {
		b.WriteString(" " + doi)
	} else if s.URL != "" {
		b.WriteString(" " + s.URL)
	}

	return b.String()
}

// apaInText: (Smith, 2023), (Smith & Doe, 2023), (Smith et al., 2023).
func apaInText(s *Source, _ int) string {
	year := yearOr(s, "n.d.")
	names := s.names()

	var who string
	switch len(names) {
	case 0:
		who = s.shortTitle()
	case 1:
		who = names[0].family
	case 2:
		who = names[0].family + " & " + names[1].family
	default:
		who = names[0].family + " et al."
	}

	return "(" + who + ", " + year + ")"
}
