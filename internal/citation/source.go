// AngelaMos | 2026
// source.go

package citation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/science-ai/backend/internal/core"
)

type SourceType string

const (
	TypeArticle    SourceType = "article"
	TypeBook       SourceType = "book"
	TypeWebsite    SourceType = "website"
	TypeConference SourceType = "conference"
	TypeThesis     SourceType = "thesis"
	TypeOther      SourceType = "other"
)

// Source is one bibliographic reference. Year 0 means the year is unknown.
type Source struct {
	ID            string     `json:"id,omitempty"            yaml:"id,omitempty"`
	Title         string     `json:"title"                   yaml:"title"                   validate:"max=1000"`
	Authors       []string   `json:"authors,omitempty"       yaml:"authors,omitempty"       validate:"max=500,dive,max=300"`
	Year          int        `json:"year,omitempty"          yaml:"year,omitempty"          validate:"min=0,max=9999"`
	Journal       string     `json:"journal,omitempty"       yaml:"journal,omitempty"       validate:"max=500"`
	Volume        string     `json:"volume,omitempty"        yaml:"volume,omitempty"        validate:"max=50"`
	Issue         string     `json:"issue,omitempty"         yaml:"issue,omitempty"         validate:"max=50"`
	Pages         string     `json:"pages,omitempty"         yaml:"pages,omitempty"         validate:"max=50"`
	DOI           string     `json:"doi,omitempty"           yaml:"doi,omitempty"           validate:"max=255"`
	URL           string     `json:"url,omitempty"           yaml:"url,omitempty"           validate:"max=2048"`
	CitationCount int        `json:"citationCount,omitempty" yaml:"citationCount,omitempty" validate:"min=0"`
	Type          SourceType `json:"type,omitempty"          yaml:"type,omitempty"          validate:"omitempty,oneof=article book website conference thesis other"`
}

// MalformedSourceError reports a source missing a field every style needs.
type MalformedSourceError struct {
	Index int
	Field string
}

func (e *MalformedSourceError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("malformed source #%d: %s is required", e.Index, e.Field)
	}
	return fmt.Sprintf("malformed source: %s is required", e.Field)
}

func (e *MalformedSourceError) Unwrap() error {
	return core.ErrInvalidInput
}

func (s *Source) Validate() error {
	if !strings.ContainsFunc(s.Title, isWordRune) {
		return &MalformedSourceError{Field: "title"}
	}
	return nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Kind defaults an empty type to article and folds unknown tags into other.
func (s *Source) Kind() SourceType {
	switch s.Type {
	case "":
		return TypeArticle
	case TypeArticle, TypeBook, TypeWebsite, TypeConference, TypeThesis:
		return s.Type
	}
	return TypeOther
}

func (s *Source) names() []personName {
	out := make([]personName, 0, len(s.Authors))
	for _, a := range s.Authors {
		if n := parseName(a); n.family != "" {
			out = append(out, n)
		}
	}
	return out
}

func (s *Source) title() string {
	return strings.Join(strings.Fields(s.Title), " ")
}

// shortTitle stands in for the author in in-text markers of anonymous works.
// Punctuation-only words are skipped, so it is never empty for a valid source.
func (s *Source) shortTitle() string {
	var words []string
	for _, w := range strings.Fields(s.Title) {
		if strings.ContainsFunc(w, isWordRune) {
			words = append(words, w)
		}
	}
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,:;")
}

func (s *Source) doiURL() string {
	doi := strings.TrimSpace(s.DOI)
	if doi == "" {
		return ""
	}
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return "https://doi.org/" + doi
}

func (s *Source) bareDOI() string {
	return strings.TrimPrefix(s.doiURL(), "https://doi.org/")
}
