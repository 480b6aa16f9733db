// AngelaMos | 2026
// handler.go

package usage

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/science-ai/backend/internal/core"
	"github.com/science-ai/backend/internal/middleware"
)

type Handler struct {
	limiter   *Limiter
	validator *validator.Validate
}

func NewHandler(limiter *Limiter) *Handler {
	return &Handler{
		limiter:   limiter,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/usage", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetUsage)
		r.Get("/limits", h.GetLimits)
		r.Get("/check/{counter}", h.Check)
		r.Post("/sync", h.Sync)
		r.Post("/increment", h.Increment)
		r.Post("/consume", h.Consume)
		r.Post("/reset-daily", h.ResetDue)
		r.Post("/reset-monthly", h.ResetDue)
	})
}

// RegisterAdminRoutes registers operator endpoints that bypass the lazy
// reset schedule.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/usage", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/{userID}", h.GetUserUsage)
		r.Post("/{userID}/reset-daily", h.forceReset(ResetDaily))
		r.Post("/{userID}/reset-monthly", h.forceReset(ResetMonthly))
	})
}

// RequireQuota refuses the request with 429 once the caller has exhausted
// counter under their plan. It is meant for the generation endpoints that
// spend quota (chat, images, presentations), which wrap their handlers with
// it; the routes registered here only read and record usage.
func (h *Handler) RequireQuota(counter Counter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := middleware.GetUserID(r.Context())

			res, err := h.limiter.CheckLimit(r.Context(), userID, counter.String())
			if err != nil {
				h.writeError(w, err)
				return
			}

			if !res.Allowed {
				core.JSONError(w, core.QuotaExceededError(
					"usage limit reached for "+counter.String(),
					res,
				))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	h.writeUsage(w, r, middleware.GetUserID(r.Context()))
}

func (h *Handler) GetUserUsage(w http.ResponseWriter, r *http.Request) {
	h.writeUsage(w, r, chi.URLParam(r, "userID"))
}

func (h *Handler) writeUsage(w http.ResponseWriter, r *http.Request, userID string) {
	u, err := h.limiter.GetUsage(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToUsageResponse(u, h.limiter.Limits(u.PlanOrFree())))
}

func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	u, err := h.limiter.GetUsage(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	plan := u.PlanOrFree()
	core.OK(w, LimitsResponse{Plan: plan, Limits: h.limiter.Limits(plan)})
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	res, err := h.limiter.CheckLimit(r.Context(), userID, chi.URLParam(r, "counter"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, res)
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	raw, ok := body["increments"]
	trimmed := bytes.TrimSpace(raw)
	if !ok || len(trimmed) == 0 || trimmed[0] != '{' {
		core.BadRequest(w, "increments must be an object")
		return
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var increments map[string]any
	if err := dec.Decode(&increments); err != nil {
		core.BadRequest(w, "increments must be an object")
		return
	}

	res, err := h.limiter.Sync(r.Context(), userID, increments)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, BatchResponse{
		Applied: res.Applied,
		Skipped: res.Skipped,
		Usage:   ToUsageResponse(res.Usage, h.limiter.Limits(res.Usage.PlanOrFree())),
	})
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req IncrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}

	res, err := h.limiter.Increment(r.Context(), userID, req.Field, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, res)
}

func (h *Handler) Consume(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}

	res, err := h.limiter.CheckAndConsume(r.Context(), userID, req.Counter, amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if !res.Allowed {
		core.JSONError(w, core.QuotaExceededError(
			"usage limit reached for "+res.Counter.String(),
			res,
		))
		return
	}

	core.OK(w, res)
}

// ResetDue serves both self-service reset routes. They only apply a reset
// the calendar already makes due, so repeating them is harmless.
func (h *Handler) ResetDue(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	u, kind, err := h.limiter.ResetIfDue(r.Context(), userID, h.limiter.now())
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ResetResponse{
		Message: resetMessage(kind, false),
		Reset:   kind,
		Usage:   ToUsageResponse(u, h.limiter.Limits(u.PlanOrFree())),
	})
}

func (h *Handler) forceReset(kind ResetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.limiter.ForceReset(r.Context(), chi.URLParam(r, "userID"), kind)
		if err != nil {
			h.writeError(w, err)
			return
		}

		core.OK(w, ResetResponse{
			Message: resetMessage(kind, true),
			Reset:   kind,
			Usage:   ToUsageResponse(u, h.limiter.Limits(u.PlanOrFree())),
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
