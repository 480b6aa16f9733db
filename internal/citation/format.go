// AngelaMos | 2026
// format.go

package citation

import (
	"strconv"
)

// Citation is a rendered source. It is derived on demand and never stored.
type Citation struct {
	Formatted string `json:"formatted"`
	InText    string `json:"inText"`
	Style     Style  `json:"style"`
	Source    Source `json:"source"`
}

type renderer struct {
	full   func(s *Source) string
	inText func(s *Source, index int) string
}

var renderers = map[Style]renderer{
	StyleAPA7:      {full: apaFull, inText: apaInText},
	StyleMLA9:      {full: mlaFull, inText: mlaInText},
	StyleChicago:   {full: chicagoFull, inText: chicagoInText},
	StyleHarvard:   {full: harvardFull, inText: harvardInText},
	StyleGOST:      {full: gostFull, inText: gostInText},
	StyleIEEE:      {full: ieeeFull, inText: ieeeInText},
	StyleVancouver: {full: vancouverFull, inText: vancouverInText},
}

type formatOptions struct {
	index int
	title string
}

type Option func(*formatOptions)

// WithIndex sets the bibliography position used by numbered styles for their
// in-text marker. Positions start at 1, which is also the default.
func WithIndex(n int) Option {
	return func(o *formatOptions) {
		if n >= 1 {
			o.index = n
		}
	}
}

// WithTitle overrides the bibliography heading.
func WithTitle(title string) Option {
	return func(o *formatOptions) {
		o.title = title
	}
}

func buildOptions(opts []Option) formatOptions {
	o := formatOptions{index: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Format renders source under style. Optional fields that are empty are
// left out rather than rendered as placeholders.
func Format(source Source, style Style, opts ...Option) (Citation, error) {
	r, ok := renderers[style]
	if !ok {
		return Citation{}, ErrUnknownStyle
	}

	if err := source.Validate(); err != nil {
		return Citation{}, err
	}

	o := buildOptions(opts)

	return Citation{
		Formatted: r.full(&source),
		InText:    r.inText(&source, o.index),
		Style:     style,
		Source:    source,
	}, nil
}

func yearOr(s *Source, fallback string) string {
	if s.Year > 0 {
		return strconv.Itoa(s.Year)
	}
	return fallback
}

// volumeIssue renders "5(2)", "5" or "(2)".
func volumeIssue(s *Source) string {
	out := s.Volume
	if s.Issue != "" {
		out += "(" + s.Issue + ")"
	}
	return out
}

func isPageRange(pages string) bool {
	for _, r := range pages {
		if r == '-' || r == '–' || r == '—' {
			return true
		}
	}
	return false
}
