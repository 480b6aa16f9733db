// AngelaMos | 2026
// export_test.go

package citation

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportBibTeX_Sample(t *testing.T) {
	out, err := ExportBibTeX([]Source{sampleSource()})
	require.NoError(t, err)

	assert.Contains(t, out, "@article{")
	assert.Contains(t, out, "author = {John Smith and Jane Doe}")
	assert.Contains(t, out, "year = {2023}")
	assert.Contains(t, out, "doi = {10.1234/test.2023}")

	want := "@article{smith2023machine,\n" +
		"  author = {John Smith and Jane Doe},\n" +
		"  title = {Machine Learning in Education},\n" +
		"  journal = {Nature Education},\n" +
		"  year = {2023},\n" +
		"  volume = {5},\n" +
		"  number = {2},\n" +
		"  pages = {100--115},\n" +
		"  doi = {10.1234/test.2023}\n" +
		"}\n"
	assert.Equal(t, want, out)
}

func TestExportBibTeX_EntryTypesAndVenues(t *testing.T) {
	book := Source{Title: "Deep Learning", Authors: []string{"Ian Goodfellow"}, Year: 2016, Journal: "MIT Press", Type: TypeBook}
	conf := Source{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, Year: 2017, Journal: "NeurIPS", Type: TypeConference}
	thesis := Source{Title: "On Graphs", Authors: []string{"Ada Lovelace"}, Year: 1843, Journal: "Somerville College", Type: TypeThesis}

	out, err := ExportBibTeX([]Source{book, conf, thesis})
	require.NoError(t, err)

	assert.Contains(t, out, "@book{goodfellow2016deep,")
	assert.Contains(t, out, "publisher = {MIT Press}")
	assert.Contains(t, out, "@inproceedings{vaswani2017attention,")
	assert.Contains(t, out, "booktitle = {NeurIPS}")
	assert.Contains(t, out, "@phdthesis{lovelace1843graphs,")
	assert.Contains(t, out, "school = {Somerville College}")
	assert.Equal(t, 3, strings.Count(out, "\n}\n"))
}

func TestExportBibTeX_EscapesAndOmitsEmptyFields(t *testing.T) {
	src := Source{Title: "Profit & Loss in 100% of Cases", Authors: []string{"Jo_Ann Smith"}}

	out, err := ExportBibTeX([]Source{src})
	require.NoError(t, err)

	assert.Contains(t, out, `title = {Profit \& Loss in 100\% of Cases}`)
	assert.Contains(t, out, `author = {Jo\_Ann Smith}`)
	assert.NotContains(t, out, "year =")
	assert.NotContains(t, out, "journal =")
	assert.NotContains(t, out, "doi =")
}

func TestExportBibTeX_CiteKeys(t *testing.T) {
	accented := Source{Title: "Análisis de datos", Authors: []string{"José Núñez"}, Year: 2020}
	cyrillic := Source{Title: "Исследование"}

	out, err := ExportBibTeX([]Source{sampleSource(), sampleSource(), sampleSource(), accented, cyrillic})
	require.NoError(t, err)

	assert.Contains(t, out, "@article{smith2023machine,")
	assert.Contains(t, out, "@article{smith2023machineb,")
	assert.Contains(t, out, "@article{smith2023machinec,")
	assert.Contains(t, out, "@article{nunez2020analisis,")
	assert.Contains(t, out, "@article{ref5,")
}

func TestExportBibTeX_Empty(t *testing.T) {
	out, err := ExportBibTeX(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExportRIS_Sample(t *testing.T) {
	out, err := ExportRIS([]Source{sampleSource()})
	require.NoError(t, err)

	for _, tag := range []string{"TY  - JOUR", "AU  - John Smith", "AU  - Jane Doe", "PY  - 2023"} {
		assert.Contains(t, out, tag)
	}
	assert.True(t, strings.HasSuffix(out, "ER  - "))

	want := strings.Join([]string{
		"TY  - JOUR",
		"AU  - John Smith",
		"AU  - Jane Doe",
		"TI  - Machine Learning in Education",
		"JO  - Nature Education",
		"PY  - 2023",
		"VL  - 5",
		"IS  - 2",
		"SP  - 100",
		"EP  - 115",
		"DO  - 10.1234/test.2023",
		"ER  - ",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestExportRIS_MultipleRecords(t *testing.T) {
	web := Source{Title: "Go Memory Model", URL: "https://go.dev/ref/mem", Type: TypeWebsite, Pages: "7"}

	out, err := ExportRIS([]Source{sampleSource(), web})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "TY  - "))
	assert.Equal(t, 2, strings.Count(out, "ER  - "))
	assert.Contains(t, out, "ER  - \n\nTY  - ELEC")
	assert.Contains(t, out, "UR  - https://go.dev/ref/mem")
	assert.Contains(t, out, "SP  - 7")
	assert.NotContains(t, out, "EP  - \n")
	assert.True(t, strings.HasSuffix(out, "ER  - "))
}

func TestExport_MalformedSourceIsIndexed(t *testing.T) {
	sources := []Source{sampleSource(), {Authors: []string{"No Title"}}}

	for name, export := range map[string]func([]Source) (string, error){
		"bibtex": ExportBibTeX,
		"ris":    ExportRIS,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := export(sources)
			require.Error(t, err)

			var malformed *MalformedSourceError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, 2, malformed.Index)
			assert.Equal(t, "malformed source #2: title is required", err.Error())
		})
	}
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
	}{
		{"100-115", "100", "115"},
		{"100–115", "100", "115"},
		{" 12 ", "12", ""},
		{"", "", ""},
		{"e1234", "e1234", ""},
	}

	for _, tt := range tests {
		start, end := splitPages(tt.in)
		assert.Equal(t, tt.start, start, tt.in)
		assert.Equal(t, tt.end, end, tt.in)
	}
}

func TestWriteXLSX(t *testing.T) {
	web := Source{Title: "Go Memory Model", URL: "https://go.dev/ref/mem", Type: TypeWebsite, CitationCount: 42}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []Source{sampleSource(), web}, StyleIEEE))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, xlsxHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "Machine Learning in Education", first[1])
	assert.Equal(t, "John Smith; Jane Doe", first[2])
	assert.Equal(t, "2023", first[3])
	assert.Equal(t, "10.1234/test.2023", first[8])
	assert.Equal(t, "article", first[10])
	assert.Contains(t, first[12], `"Machine Learning in Education,"`)
	assert.Equal(t, "[1]", first[13])

	second := rows[2]
	assert.Equal(t, "", second[3])
	assert.Equal(t, "website", second[10])
	assert.Equal(t, "42", second[11])
	assert.Equal(t, "[2]", second[13])
}

func TestWriteXLSX_RejectsMalformed(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf, []Source{{}}, StyleAPA7)

	var malformed *MalformedSourceError
	assert.True(t, errors.As(err, &malformed))
	assert.Zero(t, buf.Len())
}

func TestExportBibTeX_ManyCollidingKeysStayBalanced(t *testing.T) {
	sources := make([]Source, 30)
	for i := range sources {
		sources[i] = sampleSource()
	}

	out, err := ExportBibTeX(sources)
	require.NoError(t, err)

	assert.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"))
	assert.Contains(t, out, "@article{smith2023machinez,")
	assert.Contains(t, out, "@article{smith2023machineaa,")
	assert.Contains(t, out, "@article{smith2023machinead,")

	seen := map[string]bool{}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "@article{") {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(line, "@article{"), ",")
		assert.Regexp(t, `^[a-z0-9]+$`, key)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
	assert.Len(t, seen, 30)
}

func TestLetterSuffix(t *testing.T) {
	for n, want := range map[int]string{2: "b", 26: "z", 27: "aa", 28: "ab", 52: "az", 53: "ba"} {
		assert.Equal(t, want, letterSuffix(n))
	}
}
