// AngelaMos | 2026
// handler.go

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/science-ai/backend/internal/core"
	"github.com/science-ai/backend/internal/middleware"
)

type SessionResponse struct {
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	Plan      string    `json:"plan,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Handler struct {
	revocations RevocationList
}

func NewHandler(revocations RevocationList) *Handler {
	return &Handler{revocations: revocations}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/me", h.GetMe)
		r.Post("/logout", h.Logout)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	core.OK(w, SessionResponse{
		UserID:    claims.UserID,
		Role:      claims.Role,
		Plan:      claims.Plan,
		ExpiresAt: claims.ExpiresAt,
	})
}

// Logout revokes the bearer token used for this request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	if claims.TokenID == "" {
		core.BadRequest(w, "token cannot be revoked")
		return
	}

	if err := h.revocations.Revoke(r.Context(), claims.TokenID, claims.ExpiresAt); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
