// AngelaMos | 2026
// mla.go

package citation

import (
	"strconv"
	"strings"
)

func mlaAuthors(names []personName) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0].inverted()
	case 2:
		return names[0].inverted() + ", and " + names[1].natural()
	}
	return names[0].inverted() + ", et al"
}

func quotedTitle(title, trailing string) string {
	if endsWithPunct(title) {
		return "\"" + title + "\""
	}
	return "\"" + title + trailing + "\""
}

// mlaFull: Smith, John, and Jane Doe. "Title." Journal, vol. 5, no. 2, 2023, pp. 100-115.
func mlaFull(s *Source) string {
	var parts []string

	if authors := mlaAuthors(s.names()); authors != "" {
		parts = append(parts, sentence(authors))
	}
	parts = append(parts, quotedTitle(s.title(), "."))

	var container []string
	if s.Journal != "" {
		container = append(container, s.Journal)
	}
	if s.Volume != "" {
		container = append(container, "vol. "+s.Volume)
	}
	if s.Issue != "" {
		container = append(container, "no. "+s.Issue)
	}
	if s.Year > 0 {
		container = append(container, strconv.Itoa(s.Year))
	}
	if s.Pages != "" {
		prefix := "p. "
		if isPageRange(s.Pages) {
			prefix = "pp. "
		}
		container = append(container, prefix+s.Pages)
	}
	if doi := s.doiURL(); doi != "" {
		container = append(container, doi)
	} else if s.URL != "" {
		container = append(container, s.URL)
	}

	if len(container) > 0 {
		parts = append(parts, sentence(strings.Join(container, ", ")))
	}

	return strings.Join(parts, " ")
}

// mlaInText: (Smith), (Smith and Doe), (Smith et al.).
func mlaInText(s *Source, _ int) string {
	names := s.names()

	switch len(names) {
	case 0:
		return "(" + s.shortTitle() + ")"
	case 1:
		return "(" + names[0].family + ")"
	case 2:
		return "(" + names[0].family + " and " + names[1].family + ")"
	}
	return "(" + names[0].family + " et al.)"
}
