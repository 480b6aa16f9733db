// AngelaMos | 2026
// handler_test.go

package citation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fakeRecorder struct {
	citations map[string]int
	exports   []string
}

func (f *fakeRecorder) RecordCitation(_ context.Context, style string, count int) {
	f.citations[style] += count
}

func (f *fakeRecorder) RecordExport(_ context.Context, format string) {
	f.exports = append(f.exports, format)
}

func passThrough(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T) (*fakeRecorder, http.Handler) {
	t.Helper()

	rec := &fakeRecorder{citations: map[string]int{}}
	r := chi.NewRouter()
	NewHandler(rec).RegisterRoutes(r, passThrough, passThrough, passThrough)

	return rec, r
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandler_ListStyles(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/citations/styles", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var styles []StyleInfo
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &styles))
	assert.Len(t, styles, 7)
	assert.Equal(t, StyleAPA7, styles[0].ID)
}

func TestHandler_Format(t *testing.T) {
	recorder, router := newTestRouter(t)

	rec := post(t, router, "/citations/format", FormatRequest{Source: sampleSource(), Style: "gost"})
	require.Equal(t, http.StatusOK, rec.Code)

	var c Citation
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &c))
	assert.Equal(t, "[Smith, Doe, 2023]", c.InText)
	assert.Contains(t, c.Formatted, "Т. 5, № 2")
	assert.Equal(t, 1, recorder.citations["gost"])
}

func TestHandler_FormatErrors(t *testing.T) {
	_, router := newTestRouter(t)

	tests := []struct {
		name    string
		body    any
		status  int
		code    string
		message string
	}{
		{"unknown style", FormatRequest{Source: sampleSource(), Style: "turabian"}, http.StatusBadRequest, "BAD_REQUEST", "unknown citation style"},
		{"missing style", FormatRequest{Source: sampleSource()}, http.StatusBadRequest, "BAD_REQUEST", "Style"},
		{"missing title", FormatRequest{Source: Source{Authors: []string{"A B"}}, Style: "apa7"}, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required"},
		{"punctuation title", FormatRequest{Source: Source{Title: "..."}, Style: "mla9"}, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required"},
		{"bad type", FormatRequest{Source: Source{Title: "x", Type: "podcast"}, Style: "apa7"}, http.StatusBadRequest, "BAD_REQUEST", "Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, "/citations/format", tt.body)
			require.Equal(t, tt.status, rec.Code)

			env := decodeEnvelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Contains(t, env.Error.Message, tt.message)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/citations/format", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Bibliography(t *testing.T) {
	recorder, router := newTestRouter(t)

	rec := post(t, router, "/citations/bibliography", BibliographyRequest{
		Sources: []Source{sampleSource(), secondSource()},
		Style:   "ieee",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got BibliographyResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, 2, got.Count)
	assert.Less(t, strings.Index(got.Text, "[1]"), strings.Index(got.Text, "[2]"))
	assert.Equal(t, 2, recorder.citations["ieee"])

	rec = post(t, router, "/citations/bibliography", BibliographyRequest{Style: "ieee"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ExportBibTeX(t *testing.T) {
	recorder, router := newTestRouter(t)

	rec := post(t, router, "/citations/export", ExportRequest{Sources: []Source{sampleSource()}, Format: "bibtex"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/x-bibtex"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "references.bib")
	assert.Contains(t, rec.Body.String(), "@article{smith2023machine,")
	assert.Equal(t, []string{"bibtex"}, recorder.exports)
}

func TestHandler_ExportRIS(t *testing.T) {
	_, router := newTestRouter(t)

	rec := post(t, router, "/citations/export", ExportRequest{Sources: []Source{sampleSource()}, Format: "ris"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/x-research-info-systems"))
	assert.True(t, strings.HasSuffix(rec.Body.String(), "ER  - "))
}

func TestHandler_ExportXLSX(t *testing.T) {
	_, router := newTestRouter(t)

	rec := post(t, router, "/citations/export", ExportRequest{
		Sources: []Source{sampleSource()},
		Format:  "xlsx",
		Style:   "mla9",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "(Smith and Doe)", rows[1][13])
}

func TestHandler_ExportRejectsUnknownFormat(t *testing.T) {
	recorder, router := newTestRouter(t)

	rec := post(t, router, "/citations/export", ExportRequest{Sources: []Source{sampleSource()}, Format: "pdf"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, recorder.exports)
}

func TestHandler_Insert(t *testing.T) {
	_, router := newTestRouter(t)

	rec := post(t, router, "/citations/insert", InsertRequest{
		Text:     "This is important.",
		Position: 17,
		Source:   sampleSource(),
		Style:    "ieee",
		Index:    3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got InsertResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, "This is important[3].", got.Text)
	assert.Equal(t, "[3]", got.Citation.InText)
}

func TestHandler_RouteMiddleware(t *testing.T) {
	var seen []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := chi.NewRouter()
	NewHandler(nil).RegisterRoutes(r, mark("auth"), mark("optional"), mark("export"))

	tests := []struct {
		method string
		path   string
		body   any
		want   []string
	}{
		{http.MethodGet, "/citations/styles", nil, []string{"optional"}},
		{http.MethodPost, "/citations/format", FormatRequest{Source: sampleSource(), Style: "apa7"}, []string{"auth"}},
		{http.MethodPost, "/citations/export", ExportRequest{Sources: []Source{sampleSource()}, Format: "ris"}, []string{"auth", "export"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			seen = nil

			raw, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader(raw))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestHandler_MalformedSourceDetails(t *testing.T) {
	_, router := newTestRouter(t)

	rec := post(t, router, "/citations/bibliography", BibliographyRequest{
		Sources: []Source{sampleSource(), {Title: " "}},
		Style:   "apa7",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var env struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "title", env.Error.Details["field"])
	assert.InDelta(t, 2, env.Error.Details["index"], 0)
}
