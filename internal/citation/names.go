// AngelaMos | 2026
// names.go

package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type personName struct {
	family string
	given  []string
}

var familyParticles = map[string]bool{
	"van": true, "von": true, "de": true, "da": true, "del": true,
	"der": true, "di": true, "la": true, "le": true, "du": true,
}

// parseName accepts "Given Family" and "Family, Given" spellings.
func parseName(full string) personName {
	full = strings.Join(strings.Fields(full), " ")
	if full == "" {
		return personName{}
	}

	if family, given, ok := strings.Cut(full, ","); ok {
		return personName{
			family: strings.TrimSpace(family),
			given:  strings.Fields(given),
		}
	}

	parts := strings.Fields(full)
	if len(parts) == 1 {
		return personName{family: parts[0]}
	}

	idx := len(parts) - 1
	for idx > 1 && familyParticles[strings.ToLower(parts[idx-1])] {
		idx--
	}

	return personName{
		family: strings.Join(parts[idx:], " "),
		given:  parts[:idx],
	}
}

func (n personName) natural() string {
	if len(n.given) == 0 {
		return n.family
	}
	return strings.Join(n.given, " ") + " " + n.family
}

func (n personName) inverted() string {
	if len(n.given) == 0 {
		return n.family
	}
	return n.family + ", " + strings.Join(n.given, " ")
}

// initials renders "J. R." when dotted, "JR" otherwise. Hyphenated given
// names keep their hyphen: "J.-P.".
func (n personName) initials(dotted bool) string {
	words := make([]string, 0, len(n.given))
	for _, g := range n.given {
		parts := strings.Split(g, "-")
		letters := make([]string, 0, len(parts))
		for _, p := range parts {
			r, _ := utf8.DecodeRuneInString(p)
			if r == utf8.RuneError {
				continue
			}
			l := string(unicode.ToUpper(r))
			if dotted {
				l += "."
			}
			letters = append(letters, l)
		}
		if len(letters) > 0 {
			words = append(words, strings.Join(letters, "-"))
		}
	}

	if dotted {
		return strings.Join(words, " ")
	}
	return strings.Join(words, "")
}

// familyInitials renders "Smith, J." (sep ", ") or "Smith J." (sep " ").
func (n personName) familyInitials(sep string, dotted bool) string {
	in := n.initials(dotted)
	if in == "" {
		return n.family
	}
	return n.family + sep + in
}

func (n personName) initialsFamily() string {
	in := n.initials(true)
	if in == "" {
		return n.family
	}
	return in + " " + n.family
}

func surnames(names []personName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.family
	}
	return out
}

// joinSeries joins items as "a, b, and c". serialComma puts a comma before
// the conjunction in lists of three or more; pairComma does so for pairs.
func joinSeries(items []string, conj string, serialComma, pairComma bool) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		if pairComma {
			return items[0] + ", " + conj + " " + items[1]
		}
		return items[0] + " " + conj + " " + items[1]
	}

	head := strings.Join(items[:len(items)-1], ", ")
	if serialComma {
		return head + ", " + conj + " " + items[len(items)-1]
	}
	return head + " " + conj + " " + items[len(items)-1]
}

func endsWithPunct(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r == '.' || r == '?' || r == '!'
}

// sentence terminates s with a period unless it already ends in punctuation.
func sentence(s string) string {
	if s == "" || endsWithPunct(s) {
		return s
	}
	return s + "."
}
