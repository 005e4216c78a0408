package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/detail"
	"github.com/starford/mannaz/internal/search"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(sc *search.Controller, dc *detail.Controller, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(sc, dc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Search state and input.
	r.Get("/search", h.GetSearch)
	r.Put("/search/query", h.SetQuery)
	r.Post("/search/next", h.NextSearchPage)
	r.Post("/search/prev", h.PrevSearchPage)

	// Profile selection and detail state.
	r.Post("/profiles/{username}/activate", h.ActivateProfile)
	r.Get("/profile", h.GetProfile)
	r.Delete("/profile", h.CloseProfile)

	// Strength filter and pagination.
	r.Put("/profile/strengths/filter", h.SetStrengthFilter)
	r.Post("/profile/strengths/next", h.NextStrengthPage)
	r.Post("/profile/strengths/prev", h.PrevStrengthPage)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
