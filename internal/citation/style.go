// AngelaMos | 2026
// style.go

package citation

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownStyle = errors.New("unknown citation style")

type Style string

const (
	StyleAPA7      Style = "apa7"
	StyleMLA9      Style = "mla9"
	StyleChicago   Style = "chicago"
	StyleHarvard   Style = "harvard"
	StyleGOST      Style = "gost"
	StyleIEEE      Style = "ieee"
	StyleVancouver Style = "vancouver"
)

type StyleInfo struct {
	ID          Style  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

var styleInfos = []StyleInfo{
	{
		ID:          StyleAPA7,
		Name:        "APA 7th Edition",
		Description: "Author-date style of the American Psychological Association, common in social sciences.",
		Example:     "Smith, J., & Doe, J. (2023). Title. Journal, 5(2), 100-115.",
	},
	{
		ID:          StyleMLA9,
		Name:        "MLA 9th Edition",
		Description: "Modern Language Association style for humanities, author-page in-text citations.",
		Example:     `Smith, John, and Jane Doe. "Title." Journal, vol. 5, no. 2, 2023, pp. 100-115.`,
	},
	{
		ID:          StyleChicago,
		Name:        "Chicago (Author-Date)",
		Description: "Chicago Manual of Style author-date system used in sciences and history.",
		Example:     `Smith, John, and Jane Doe. 2023. "Title." Journal 5 (2): 100-115.`,
	},
	{
		ID:          StyleHarvard,
		Name:        "Harvard",
		Description: "Generic author-date referencing widely used by UK and Australian universities.",
		Example:     "Smith, J. and Doe, J. (2023) 'Title', Journal, 5(2), pp. 100-115.",
	},
	{
		ID:          StyleGOST,
		Name:        "ГОСТ Р 7.0.5-2008",
		Description: "Russian national bibliographic standard with // journal separator.",
		Example:     "Smith J., Doe J. Title // Journal. – 2023. – Т. 5, № 2. – С. 100-115.",
	},
	{
		ID:          StyleIEEE,
		Name:        "IEEE",
		Description: "Numbered style of the Institute of Electrical and Electronics Engineers.",
		Example:     `J. Smith and J. Doe, "Title," Journal, vol. 5, no. 2, pp. 100-115, 2023.`,
	},
	{
		ID:          StyleVancouver,
		Name:        "Vancouver",
		Description: "Numbered style used in medicine and biomedical sciences.",
		Example:     "Smith J, Doe J. Title. Journal. 2023;5(2):100-115.",
	},
}

// Styles lists every supported style in display order.
func Styles() []StyleInfo {
	out := make([]StyleInfo, len(styleInfos))
	copy(out, styleInfos)
	return out
}

func ParseStyle(s string) (Style, error) {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := renderers[style]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
	return style, nil
}

// Numbered reports whether in-text markers are bibliography positions.
func (s Style) Numbered() bool {
	return s == StyleIEEE || s == StyleVancouver
}

func (s Style) String() string {
	return string(s)
}

func (s Style) heading() string {
	switch s {
	case StyleMLA9:
		return "Works Cited"
	case StyleChicago:
		return "Bibliography"
	case StyleGOST:
		return "Список литературы"
	}
	return "References"
}
