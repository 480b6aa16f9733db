// AngelaMos | 2026
// harvard.go

package citation

import (
	"strings"
)

const harvardEtAlFrom = 4

func harvardAuthors(names []personName) string {
	if len(names) >= harvardEtAlFrom {
		return names[0].familyInitials(", ", true) + " et al."
	}

	items := make([]string, len(names))
	for i, n := range names {
		items[i] = n.familyInitials(", ", true)
	}
	return joinSeries(items, "and", false, false)
}

// harvardFull: Smith, J. and Doe, J. (2023) 'Title', Journal, 5(2), pp. 100-115.
func harvardFull(s *Source) string {
	var b strings.Builder

	date := "(" + yearOr(s, "n.d.") + ")"
	if authors := harvardAuthors(s.names()); authors != "" {
		b.WriteString(authors + " " + date + " '" + s.title() + "'")
	} else {
		b.WriteString("'" + s.title() + "' " + date)
	}

	if s.Journal != "" {
		b.WriteString(", " + s.Journal)
	}
	if vi := volumeIssue(s); vi != "" {
		b.WriteString(", " + vi)
	}
	if s.Pages != "" {
		prefix := "p. "
		if isPageRange(s.Pages) {
			prefix = "pp. "
		}
		b.WriteString(", " + prefix + s.Pages)
	}
	b.WriteString(".")

	if doi := s.doiURL(); doi != "" {
		b.WriteString(" Available at: " + doi + ".")
	} else if s.URL != "" {
		b.WriteString(" Available at: " + s.URL + ".")
	}

	return b.String()
}

// harvardInText: (Smith, 2023), (Smith and Doe, 2023), (Smith, Doe and Lee, 2023), (Smith et al., 2023).
func harvardInText(s *Source, _ int) string {
	year := yearOr(s, "n.d.")
	names := s.names()

	var who string
	switch {
	case len(names) == 0:
		who = s.shortTitle()
	case len(names) >= harvardEtAlFrom:
		who = names[0].family + " et al."
	default:
		who = joinSeries(surnames(names), "and", false, false)
	}

	return "(" + who + ", " + year + ")"
}
