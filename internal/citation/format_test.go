// AngelaMos | 2026
// format_test.go

package citation

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/science-ai/backend/internal/core"
)

func sampleSource() Source {
	return Source{
		Title:   "Machine Learning in Education",
		Authors: []string{"John Smith", "Jane Doe"},
		Year:    2023,
		Journal: "Nature Education",
		Volume:  "5",
		Issue:   "2",
		Pages:   "100-115",
		DOI:     "10.1234/test.2023",
	}
}

func TestFormat_SampleSourceAllStyles(t *testing.T) {
	tests := []struct {
		style     Style
		formatted string
		inText    string
	}{
		{
			style:     StyleAPA7,
			formatted: "Smith, J., & Doe, J. (2023). Machine Learning in Education. Nature Education, 5(2), 100-115. https://doi.org/10.1234/test.2023",
			inText:    "(Smith & Doe, 2023)",
		},
		{
			style:     StyleMLA9,
			formatted: `Smith, John, and Jane Doe. "Machine Learning in Education." Nature Education, vol. 5, no. 2, 2023, pp. 100-115, https://doi.org/10.1234/test.2023.`,
			inText:    "(Smith and Doe)",
		},
		{
			style:     StyleChicago,
			formatted: `Smith, John, and Jane Doe. 2023. "Machine Learning in Education." Nature Education 5 (2): 100-115. https://doi.org/10.1234/test.2023.`,
			inText:    "(Smith and Doe 2023)",
		},
		{
			style:     StyleHarvard,
			formatted: "Smith, J. and Doe, J. (2023) 'Machine Learning in Education', Nature Education, 5(2), pp. 100-115. Available at: https://doi.org/10.1234/test.2023.",
			inText:    "(Smith and Doe, 2023)",
		},
		{
			style:     StyleGOST,
			formatted: "Smith J., Doe J. Machine Learning in Education // Nature Education. – 2023. – Т. 5, № 2. – С. 100-115. – DOI: 10.1234/test.2023.",
			inText:    "[Smith, Doe, 2023]",
		},
		{
			style:     StyleIEEE,
			formatted: `J. Smith and J. Doe, "Machine Learning in Education," Nature Education, vol. 5, no. 2, pp. 100-115, 2023, doi: 10.1234/test.2023.`,
			inText:    "[1]",
		},
		{
			style:     StyleVancouver,
			formatted: "Smith J, Doe J. Machine Learning in Education. Nature Education. 2023;5(2):100-115. doi:10.1234/test.2023",
			inText:    "(1)",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			c, err := Format(sampleSource(), tt.style)
			require.NoError(t, err)

			assert.Equal(t, tt.formatted, c.Formatted)
			assert.Equal(t, tt.inText, c.InText)
			assert.Equal(t, tt.style, c.Style)
		})
	}
}

func TestFormat_APAContainsCoreFields(t *testing.T) {
	c, err := Format(sampleSource(), StyleAPA7)
	require.NoError(t, err)

	assert.Contains(t, c.Formatted, "(2023)")
	assert.Contains(t, c.Formatted, "Machine Learning in Education")
	assert.Contains(t, c.Formatted, "Nature Education")
	assert.Contains(t, c.Formatted, "https://doi.org/10.1234/test.2023")
}

func TestFormat_GOSTMarkers(t *testing.T) {
	c, err := Format(sampleSource(), StyleGOST)
	require.NoError(t, err)

	assert.Contains(t, c.Formatted, "Т. 5")
	assert.Contains(t, c.Formatted, "№ 2")
	assert.Contains(t, c.Formatted, "С. 100-115")
	assert.True(t, strings.HasSuffix(c.InText, "2023]"))
}

func TestFormat_MLASingleAuthor(t *testing.T) {
	src := sampleSource()
	src.Authors = []string{"Albert Einstein"}

	c, err := Format(src, StyleMLA9)
	require.NoError(t, err)

	assert.Equal(t, "(Einstein)", c.InText)
	assert.True(t, strings.HasPrefix(c.Formatted, "Einstein, Albert."))
}

func TestFormat_EveryStyleIsUsable(t *testing.T) {
	for _, info := range Styles() {
		t.Run(string(info.ID), func(t *testing.T) {
			c, err := Format(sampleSource(), info.ID)
			require.NoError(t, err)

			assert.Greater(t, len(c.Formatted), 10)
			assert.NotEmpty(t, c.InText)
			assert.NotContains(t, c.Formatted, "undefined")
		})
	}
}

func TestFormat_MissingOptionalFields(t *testing.T) {
	src := Source{Title: "Notes on Graphs"}

	for _, info := range Styles() {
		t.Run(string(info.ID), func(t *testing.T) {
			c, err := Format(src, info.ID)
			require.NoError(t, err)

			assert.Contains(t, c.Formatted, "Notes on Graphs")
			for _, junk := range []string{"undefined", "null", "vol. ,", "()", "pp. ."} {
				assert.NotContains(t, c.Formatted, junk)
			}
		})
	}

	apa, err := Format(src, StyleAPA7)
	require.NoError(t, err)
	assert.Equal(t, "Notes on Graphs. (n.d.).", apa.Formatted)
	assert.Equal(t, "(Notes on Graphs, n.d.)", apa.InText)
}

func TestFormat_AuthorCountRules(t *testing.T) {
	three := sampleSource()
	three.Authors = []string{"John Smith", "Jane Doe", "Li Wei"}

	four := sampleSource()
	four.Authors = []string{"Anna Alpha", "Ben Beta", "Cara Gamma", "Dan Delta"}

	tests := []struct {
		name   string
		source Source
		style  Style
		inText string
	}{
		{"apa three", three, StyleAPA7, "(Smith et al., 2023)"},
		{"mla three", three, StyleMLA9, "(Smith et al.)"},
		{"chicago three", three, StyleChicago, "(Smith, Doe, and Wei 2023)"},
		{"chicago four", four, StyleChicago, "(Alpha et al. 2023)"},
		{"harvard three", three, StyleHarvard, "(Smith, Doe and Wei, 2023)"},
		{"harvard four", four, StyleHarvard, "(Alpha et al., 2023)"},
		{"gost three", three, StyleGOST, "[Smith, Doe, Wei, 2023]"},
		{"gost four", four, StyleGOST, "[Alpha и др., 2023]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Format(tt.source, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.inText, c.InText)
		})
	}
}

func TestFormat_LongAuthorLists(t *testing.T) {
	authors := make([]string, 21)
	for i := range authors {
		authors[i] = "Given Author" + string(rune('A'+i))
	}
	src := sampleSource()
	src.Authors = authors

	apa, err := Format(src, StyleAPA7)
	require.NoError(t, err)
	assert.Contains(t, apa.Formatted, ", . . . AuthorU, G.")
	assert.NotContains(t, apa.Formatted, "AuthorT,")

	ieee, err := Format(src, StyleIEEE)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ieee.Formatted, "G. AuthorA et al., "))

	vancouver, err := Format(src, StyleVancouver)
	require.NoError(t, err)
	assert.Contains(t, vancouver.Formatted, "AuthorF G, et al.")

	gost, err := Format(src, StyleGOST)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gost.Formatted, "AuthorA G., AuthorB G., AuthorC G. и др. "))
}

func TestFormat_NumberedStylesUseIndex(t *testing.T) {
	ieee, err := Format(sampleSource(), StyleIEEE, WithIndex(4))
	require.NoError(t, err)
	assert.Equal(t, "[4]", ieee.InText)

	vancouver, err := Format(sampleSource(), StyleVancouver, WithIndex(12))
	require.NoError(t, err)
	assert.Equal(t, "(12)", vancouver.InText)

	ignored, err := Format(sampleSource(), StyleIEEE, WithIndex(0))
	require.NoError(t, err)
	assert.Equal(t, "[1]", ignored.InText)
}

func TestFormat_DOINormalization(t *testing.T) {
	for _, doi := range []string{
		"10.1234/test.2023",
		"https://doi.org/10.1234/test.2023",
		"doi:10.1234/test.2023",
	} {
		src := sampleSource()
		src.DOI = doi

		c, err := Format(src, StyleAPA7)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(c.Formatted, " https://doi.org/10.1234/test.2023"), doi)
	}
}

func TestFormat_URLFallback(t *testing.T) {
	src := sampleSource()
	src.DOI = ""
	src.URL = "https://example.org/paper"

	apa, err := Format(src, StyleAPA7)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(apa.Formatted, " https://example.org/paper"))

	gost, err := Format(src, StyleGOST)
	require.NoError(t, err)
	assert.Contains(t, gost.Formatted, "URL: https://example.org/paper")
}

func TestFormat_MalformedSource(t *testing.T) {
	_, err := Format(Source{Title: "   ", Authors: []string{"John Smith"}}, StyleAPA7)
	require.Error(t, err)

	var malformed *MalformedSourceError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "title", malformed.Field)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
	assert.Equal(t, "malformed source: title is required", err.Error())
}

func TestFormat_UnknownStyle(t *testing.T) {
	_, err := Format(sampleSource(), Style("turabian"))
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestFormat_ReturnsSourceCopy(t *testing.T) {
	src := sampleSource()

	c, err := Format(src, StyleHarvard)
	require.NoError(t, err)

	if diff := cmp.Diff(src, c.Source); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStyle(t *testing.T) {
	got, err := ParseStyle(" APA7 ")
	require.NoError(t, err)
	assert.Equal(t, StyleAPA7, got)

	_, err = ParseStyle("turabian")
	assert.ErrorIs(t, err, ErrUnknownStyle)
}

func TestStyles_Catalog(t *testing.T) {
	var ids []Style
	for _, info := range Styles() {
		ids = append(ids, info.ID)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Example)
	}

	want := []Style{
		StyleAPA7, StyleMLA9, StyleChicago, StyleHarvard,
		StyleGOST, StyleIEEE, StyleVancouver,
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("style catalog mismatch (-want +got):\n%s", diff)
	}

	list := Styles()
	list[0].Name = "changed"
	assert.Equal(t, "APA 7th Edition", Styles()[0].Name)
}

func TestStyle_Numbered(t *testing.T) {
	assert.True(t, StyleIEEE.Numbered())
	assert.True(t, StyleVancouver.Numbered())
	assert.False(t, StyleAPA7.Numbered())
	assert.False(t, StyleGOST.Numbered())
}

func TestSource_Kind(t *testing.T) {
	assert.Equal(t, TypeArticle, (&Source{}).Kind())
	assert.Equal(t, TypeBook, (&Source{Type: TypeBook}).Kind())
	assert.Equal(t, TypeOther, (&Source{Type: "podcast"}).Kind())
}

func TestFormat_ChicagoMissingYearOrAuthors(t *testing.T) {
	tests := []struct {
		name      string
		source    Source
		formatted string
		inText    string
	}{
		{
			name:      "no year",
			source:    Source{Title: "Deep Learning", Authors: []string{"John Smith"}, Journal: "Nature"},
			formatted: `Smith, John. n.d. "Deep Learning." Nature.`,
			inText:    "(Smith n.d.)",
		},
		{
			name:      "no authors",
			source:    Source{Title: "Deep Learning", Year: 2020, Journal: "Nature"},
			formatted: `"Deep Learning." 2020. Nature.`,
			inText:    "(Deep Learning 2020)",
		},
		{
			name:      "no authors and no year",
			source:    Source{Title: "Deep Learning"},
			formatted: `"Deep Learning." n.d.`,
			inText:    "(Deep Learning n.d.)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Format(tt.source, StyleChicago)
			require.NoError(t, err)

			assert.Equal(t, tt.formatted, c.Formatted)
			assert.Equal(t, tt.inText, c.InText)
			assert.NotContains(t, c.Formatted, "..")
		})
	}
}

func TestFormat_RejectsTitleWithoutWords(t *testing.T) {
	for _, title := range []string{"...", " - ", "?!"} {
		for _, info := range Styles() {
			_, err := Format(Source{Title: title, Year: 2020}, info.ID)

			var malformed *MalformedSourceError
			require.True(t, errors.As(err, &malformed), "title %q style %s", title, info.ID)
			assert.Equal(t, "title", malformed.Field)
		}
	}
}

func TestFormat_AnonymousInTextSkipsPunctuationWords(t *testing.T) {
	src := Source{Title: "... Graph Theory Today", Year: 2021}

	for _, info := range Styles() {
		if info.ID.Numbered() {
			continue
		}
		t.Run(string(info.ID), func(t *testing.T) {
			c, err := Format(src, info.ID)
			require.NoError(t, err)

			assert.Contains(t, c.InText, "Graph Theory")
			for _, empty := range []string{"()", "[]", "(,"} {
				assert.NotContains(t, c.InText, empty)
			}
		})
	}
}
