// AngelaMos | 2026
// numbered.go

package citation

import (
	"strconv"
	"strings"
)

const (
	ieeeEtAlFrom        = 7
	vancouverMaxListed  = 6
	vancouverEtAlMarker = "et al"
	ieeeDOIPrefix       = "doi: "
	vancouverDOIPrefix  = "doi:"
)

func ieeeAuthors(names []personName) string {
	if len(names) >= ieeeEtAlFrom {
		return names[0].initialsFamily() + " et al."
	}

	items := make([]string, len(names))
	for i, n := range names {
		items[i] = n.initialsFamily()
	}
	return joinSeries(items, "and", true, false)
}

// ieeeFull: J. Smith and J. Doe, "Title," Journal, vol. 5, no. 2, pp. 100-115, 2023.
func ieeeFull(s *Source) string {
	parts := make([]string, 0, 8)

	if authors := ieeeAuthors(s.names()); authors != "" {
		parts = append(parts, authors)
	}

	rest := []string{}
	if s.Journal != "" {
		rest = append(rest, s.Journal)
	}
	if s.Volume != "" {
		rest = append(rest, "vol. "+s.Volume)
	}
	if s.Issue != "" {
		rest = append(rest, "no. "+s.Issue)
	}
	if s.Pages != "" {
		prefix := "p. "
		if isPageRange(s.Pages) {
			prefix = "pp. "
		}
		rest = append(rest, prefix+s.Pages)
	}
	if s.Year > 0 {
		rest = append(rest, strconv.Itoa(s.Year))
	}
	if doi := s.bareDOI(); doi != "" {
		rest = append(rest, ieeeDOIPrefix+doi)
	}

	if len(rest) == 0 {
		parts = append(parts, quotedTitle(s.title(), "."))
		return strings.Join(parts, ", ")
	}

	parts = append(parts, quotedTitle(s.title(), ","))
	head := strings.Join(parts, ", ")

	return head + " " + sentence(strings.Join(rest, ", "))
}

func ieeeInText(_ *Source, index int) string {
	return "[" + strconv.Itoa(index) + "]"
}

func vancouverAuthors(names []personName) string {
	listed := names
	if len(listed) > vancouverMaxListed {
		listed = listed[:vancouverMaxListed]
	}

	items := make([]string, len(listed))
	for i, n := range listed {
		items[i] = n.familyInitials(" ", false)
	}

	out := strings.Join(items, ", ")
	if len(names) > vancouverMaxListed {
		out += ", " + vancouverEtAlMarker
	}
	return out
}

// vancouverFull: Smith J, Doe J. Title. Journal. 2023;5(2):100-115.
func vancouverFull(s *Source) string {
	var parts []string

	if authors := vancouverAuthors(s.names()); authors != "" {
		parts = append(parts, sentence(authors))
	}
	parts = append(parts, sentence(s.title()))

	if s.Journal != "" {
		parts = append(parts, sentence(s.Journal))
	}

	var date string
	if s.Year > 0 {
		date = strconv.Itoa(s.Year)
	}
	if s.Volume != "" || s.Issue != "" {
		if date != "" {
			date += ";"
		}
		date += volumeIssue(s)
	}
	if s.Pages != "" {
		if date != "" {
			date += ":"
		}
		date += s.Pages
	}
	if date != "" {
		parts = append(parts, date+".")
	}

	if doi := s.bareDOI(); doi != "" {
		parts = append(parts, vancouverDOIPrefix+doi)
	} else if s.URL != "" {
		parts = append(parts, "Available from: "+s.URL)
	}

	return strings.Join(parts, " ")
}

func vancouverInText(_ *Source, index int) string {
	return "(" + strconv.Itoa(index) + ")"
}
