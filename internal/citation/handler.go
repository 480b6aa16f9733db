// AngelaMos | 2026
// handler.go

package citation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/science-ai/backend/internal/core"
)

// Recorder receives citation events. core.Metrics satisfies it.
type Recorder interface {
	RecordCitation(ctx context.Context, style string, count int)
	RecordExport(ctx context.Context, format string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCitation(context.Context, string, int) {}
func (nopRecorder) RecordExport(context.Context, string)        {}

type Handler struct {
	recorder  Recorder
	validator *validator.Validate
}

func NewHandler(recorder Recorder) *Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Handler{
		recorder:  recorder,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the citation API. The style catalogue is readable
// without a token; exportLimiter runs after authenticator on /export.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
	exportLimiter func(http.Handler) http.Handler,
) {
	r.Route("/citations", func(r chi.Router) {
		r.With(optionalAuth).Get("/styles", h.ListStyles)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/format", h.Format)
			r.Post("/bibliography", h.Bibliography)
			r.With(exportLimiter).Post("/export", h.Export)
			r.Post("/insert", h.Insert)
		})
	})
}

func (h *Handler) ListStyles(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, Styles())
}

func (h *Handler) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !h.decode(w, r, &req) {
		return
	}

	style, err := ParseStyle(req.Style)
	if err != nil {
		h.writeError(w, err)
		return
	}

	c, err := Format(req.Source, style, WithIndex(req.Index))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.recorder.RecordCitation(r.Context(), style.String(), 1)
	core.OK(w, c)
}

func (h *Handler) Bibliography(w http.ResponseWriter, r *http.Request) {
	var req BibliographyRequest
	if !h.decode(w, r, &req) {
		return
	}

	style, err := ParseStyle(req.Style)
	if err != nil {
		h.writeError(w, err)
		return
	}

	text, err := GenerateBibliography(req.Sources, style, WithTitle(req.Title))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.recorder.RecordCitation(r.Context(), style.String(), len(req.Sources))
	core.OK(w, BibliographyResponse{Style: style, Count: len(req.Sources), Text: text})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	var (
		body        []byte
		contentType string
		filename    string
	)

	switch ExportFormat(req.Format) {
	case FormatBibTeX:
		out, err := ExportBibTeX(req.Sources)
		if err != nil {
			h.writeError(w, err)
			return
		}
		body, contentType, filename = []byte(out), "application/x-bibtex; charset=utf-8", "references.bib"
	case FormatRIS:
		out, err := ExportRIS(req.Sources)
		if err != nil {
			h.writeError(w, err)
			return
		}
		body, contentType, filename = []byte(out), "application/x-research-info-systems; charset=utf-8", "references.ris"
	case FormatXLSX:
		style := StyleAPA7
		if req.Style != "" {
			parsed, err := ParseStyle(req.Style)
			if err != nil {
				h.writeError(w, err)
				return
			}
			style = parsed
		}
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, req.Sources, style); err != nil {
			h.writeError(w, err)
			return
		}
		body = buf.Bytes()
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = "references.xlsx"
	default:
		core.BadRequest(w, "format must be one of [bibtex ris xlsx]")
		return
	}

	h.recorder.RecordExport(r.Context(), req.Format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body) //nolint:errcheck // best-effort response write
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if !h.decode(w, r, &req) {
		return
	}

	style, err := ParseStyle(req.Style)
	if err != nil {
		h.writeError(w, err)
		return
	}

	c, err := Format(req.Source, style, WithIndex(req.Index))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.recorder.RecordCitation(r.Context(), style.String(), 1)
	core.OK(w, InsertResponse{
		Text:     InsertCitation(req.Text, req.Position, c),
		Citation: c,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var malformed *MalformedSourceError
	switch {
	case errors.As(err, &malformed):
		appErr := core.ValidationError(malformed.Error())
		appErr.Details = map[string]any{"index": malformed.Index, "field": malformed.Field}
		core.JSONError(w, appErr)
	case errors.Is(err, ErrUnknownStyle):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
