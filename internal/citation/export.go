// AngelaMos | 2026
// export.go

package citation

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type ExportFormat string

const (
	FormatBibTeX ExportFormat = "bibtex"
	FormatRIS    ExportFormat = "ris"
	FormatXLSX   ExportFormat = "xlsx"
)

var bibtexEntryTypes = map[SourceType]string{
	TypeArticle:    "article",
	TypeBook:       "book",
	TypeConference: "inproceedings",
	TypeThesis:     "phdthesis",
	TypeWebsite:    "misc",
	TypeOther:      "misc",
}

// bibtexVenueField names the field that carries Source.Journal per type.
var bibtexVenueField = map[SourceType]string{
	TypeArticle:    "journal",
	TypeBook:       "publisher",
	TypeConference: "booktitle",
	TypeThesis:     "school",
	TypeWebsite:    "howpublished",
	TypeOther:      "howpublished",
}

var risTypeCodes = map[SourceType]string{
	TypeArticle:    "JOUR",
	TypeBook:       "BOOK",
	TypeWebsite:    "ELEC",
	TypeConference: "CONF",
	TypeThesis:     "THES",
	TypeOther:      "GEN",
}

var risVenueTag = map[SourceType]string{
	TypeArticle:    "JO",
	TypeBook:       "PB",
	TypeConference: "T2",
	TypeThesis:     "PB",
	TypeWebsite:    "T2",
	TypeOther:      "T2",
}

var bibtexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
)

// ExportBibTeX renders one @type{key, ...} entry per source. Fields are
// emitted only when present and citation keys are unique within the export.
func ExportBibTeX(sources []Source) (string, error) {
	keys := newKeyAllocator()
	entries := make([]string, 0, len(sources))

	for i := range sources {
		src := &sources[i]
		if err := src.Validate(); err != nil {
			return "", indexed(err, i+1)
		}

		kind := src.Kind()
		fields := [][2]string{}
		add := func(name, value string) {
			if value != "" {
				fields = append(fields, [2]string{name, value})
			}
		}

		add("author", bibtexEscaper.Replace(strings.Join(trimmed(src.Authors), " and ")))
		add("title", bibtexEscaper.Replace(src.title()))
		add(bibtexVenueField[kind], bibtexEscaper.Replace(src.Journal))
		if src.Year > 0 {
			add("year", strconv.Itoa(src.Year))
		}
		add("volume", bibtexEscaper.Replace(src.Volume))
		add("number", bibtexEscaper.Replace(src.Issue))
		add("pages", bibtexPages(src.Pages))
		add("doi", src.bareDOI())
		add("url", src.URL)

		var b strings.Builder
		b.WriteString("@" + bibtexEntryTypes[kind] + "{" + keys.next(src, i+1) + ",\n")
		for j, f := range fields {
			b.WriteString("  " + f[0] + " = {" + f[1] + "}")
			if j < len(fields)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString("}")

		entries = append(entries, b.String())
	}

	if len(entries) == 0 {
		return "", nil
	}
	return strings.Join(entries, "\n\n") + "\n", nil
}

// ExportRIS renders TY ... ER records. The output ends with the final
// "ER  - " tag and no trailing newline.
func ExportRIS(sources []Source) (string, error) {
	records := make([]string, 0, len(sources))

	for i := range sources {
		src := &sources[i]
		if err := src.Validate(); err != nil {
			return "", indexed(err, i+1)
		}

		kind := src.Kind()
		lines := []string{risLine("TY", risTypeCodes[kind])}
		for _, a := range trimmed(src.Authors) {
			lines = append(lines, risLine("AU", a))
		}
		lines = append(lines, risLine("TI", src.title()))
		if src.Journal != "" {
			lines = append(lines, risLine(risVenueTag[kind], src.Journal))
		}
		if src.Year > 0 {
			lines = append(lines, risLine("PY", strconv.Itoa(src.Year)))
		}
		if src.Volume != "" {
			lines = append(lines, risLine("VL", src.Volume))
		}
		if src.Issue != "" {
			lines = append(lines, risLine("IS", src.Issue))
		}
		if start, end := splitPages(src.Pages); start != "" {
			lines = append(lines, risLine("SP", start))
			if end != "" {
				lines = append(lines, risLine("EP", end))
			}
		}
		if doi := src.bareDOI(); doi != "" {
			lines = append(lines, risLine("DO", doi))
		}
		if src.URL != "" {
			lines = append(lines, risLine("UR", src.URL))
		}
		lines = append(lines, "ER  - ")

		records = append(records, strings.Join(lines, "\n"))
	}

	return strings.Join(records, "\n\n"), nil
}

func risLine(tag, value string) string {
	return tag + "  - " + value
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitPages(pages string) (string, string) {
	pages = strings.TrimSpace(pages)
	if pages == "" {
		return "", ""
	}

	idx := strings.IndexFunc(pages, func(r rune) bool {
		return r == '-' || r == '–' || r == '—'
	})
	if idx < 0 {
		return pages, ""
	}

	start := strings.TrimSpace(pages[:idx])
	end := strings.TrimSpace(strings.TrimLeft(pages[idx:], "-–—"))
	return start, end
}

func bibtexPages(pages string) string {
	start, end := splitPages(pages)
	if end == "" {
		return start
	}
	return start + "--" + end
}

func indexed(err error, index int) error {
	var malformed *MalformedSourceError
	if errors.As(err, &malformed) {
		malformed.Index = index
	}
	return err
}

type keyAllocator struct {
	used map[string]bool
}

func newKeyAllocator() *keyAllocator {
	return &keyAllocator{used: make(map[string]bool)}
}

var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "on": true, "of": true,
	"in": true, "for": true, "and": true, "to": true,
}

// next builds surname+year+first significant title word, folded to ASCII,
// and suffixes b, c, ..., z, aa, ab, ... on collisions.
func (k *keyAllocator) next(src *Source, position int) string {
	var base string

	if names := src.names(); len(names) > 0 {
		base = asciiKey(names[0].family)
	}
	if src.Year > 0 {
		base += strconv.Itoa(src.Year)
	}
	for _, w := range strings.Fields(src.Title) {
		word := asciiKey(w)
		if word != "" && !titleStopWords[word] {
			base += word
			break
		}
	}

	if base == "" || !unicode.IsLetter(rune(base[0])) {
		base = "ref" + strconv.Itoa(position) + base
	}

	key := base
	for n := 2; k.used[key]; n++ {
		key = base + letterSuffix(n)
	}
	k.used[key] = true

	return key
}

// letterSuffix maps 2, 3, ..., 26, 27, 28 to b, c, ..., z, aa, ab in
// bijective base 26, so suffixes stay within a-z.
func letterSuffix(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// asciiKey strips diacritics and keeps ASCII letters and digits. The chain is
// stateful, so each call builds its own.
func asciiKey(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
