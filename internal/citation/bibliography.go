// AngelaMos | 2026
// bibliography.go

package citation

import (
	"strconv"
	"strings"
)

// GenerateBibliography renders a heading followed by one entry per source in
// the order given. Numbered styles prefix entries with their position.
func GenerateBibliography(sources []Source, style Style, opts ...Option) (string, error) {
	citations, err := FormatAll(sources, style)
	if err != nil {
		return "", err
	}

	o := buildOptions(opts)
	heading := o.title
	if heading == "" {
		heading = style.heading()
	}

	entries := make([]string, 0, len(citations)+1)
	entries = append(entries, heading)

	for i, c := range citations {
		entries = append(entries, entryPrefix(style, i+1)+c.Formatted)
	}

	return strings.Join(entries, "\n\n"), nil
}

// FormatAll formats every source, numbering in-text markers by position.
func FormatAll(sources []Source, style Style) ([]Citation, error) {
	if _, ok := renderers[style]; !ok {
		return nil, ErrUnknownStyle
	}

	out := make([]Citation, 0, len(sources))
	for i, src := range sources {
		c, err := Format(src, style, WithIndex(i+1))
		if err != nil {
			return nil, indexed(err, i+1)
		}
		out = append(out, c)
	}

	return out, nil
}

func entryPrefix(style Style, n int) string {
	switch style {
	case StyleIEEE:
		return "[" + strconv.Itoa(n) + "] "
	case StyleVancouver:
		return strconv.Itoa(n) + ". "
	}
	return ""
}
