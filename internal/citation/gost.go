// AngelaMos | 2026
// gost.go

package citation

import (
	"strconv"
	"strings"
)

const (
	gostMaxListed   = 3
	gostSeparator   = ". – "
	gostEtAl        = "и др."
	gostJournalMark = " // "
)

func gostAuthors(names []personName) string {
	listed := names
	if len(listed) > gostMaxListed {
		listed = listed[:gostMaxListed]
	}

	items := make([]string, len(listed))
	for i, n := range listed {
		items[i] = n.familyInitials(" ", true)
	}

	out := strings.Join(items, ", ")
	if len(names) > gostMaxListed {
		out += " " + gostEtAl
	}
	return out
}

// gostFull: Smith J., Doe J. Title // Journal. – 2023. – Т. 5, № 2. – С. 100-115.
func gostFull(s *Source) string {
	var b strings.Builder

	if authors := gostAuthors(s.names()); authors != "" {
		b.WriteString(authors + " ")
	}
	b.WriteString(strings.TrimRight(s.title(), "."))

	if s.Journal != "" {
		b.WriteString(gostJournalMark + strings.TrimRight(s.Journal, "."))
	}

	var segments []string
	if s.Year > 0 {
		segments = append(segments, strconv.Itoa(s.Year))
	}

	var vi []string
	if s.Volume != "" {
		vi = append(vi, "Т. "+s.Volume)
	}
	if s.Issue != "" {
		vi = append(vi, "№ "+s.Issue)
	}
	if len(vi) > 0 {
		segments = append(segments, strings.Join(vi, ", "))
	}

	if s.Pages != "" {
		segments = append(segments, "С. "+s.Pages)
	}
	if doi := s.bareDOI(); doi != "" {
		segments = append(segments, "DOI: "+doi)
	} else if s.URL != "" {
		segments = append(segments, "URL: "+s.URL)
	}

	for _, seg := range segments {
		b.WriteString(gostSeparator + seg)
	}
	b.WriteString(".")

	return b.String()
}

// gostInText: [Smith, 2023], [Smith, Doe, 2023], [Smith и др., 2023].
func gostInText(s *Source, _ int) string {
	names := s.names()

	var who string
	switch {
	case len(names) == 0:
		who = s.shortTitle()
	case len(names) > gostMaxListed:
		who = names[0].family + " " + gostEtAl
	default:
		who = strings.Join(surnames(names), ", ")
	}

	if s.Year > 0 {
		return "[" + who + ", " + strconv.Itoa(s.Year) + "]"
	}
	return "[" + who + "]"
}
