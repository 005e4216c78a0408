package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mannaz/internal/detail"
	"github.com/starford/mannaz/internal/search"
)

// Handler holds API route handlers over the two controllers.
type Handler struct {
	search *search.Controller
	detail *detail.Controller
}

// NewHandler creates a new Handler.
func NewHandler(sc *search.Controller, dc *detail.Controller) *Handler {
	return &Handler{search: sc, detail: dc}
}

// GetSearch handles GET /search and returns the search snapshot.
func (h *Handler) GetSearch(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSearchState(h.search.Snapshot()))
}

// SetQuery handles PUT /search/query. The text is stored immediately;
// the search itself fires after the debounce window, so the returned
// snapshot may not yet carry results.
func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.search.SetQuery(req.Text)
	writeJSON(w, http.StatusAccepted, toSearchState(h.search.Snapshot()))
}

// NextSearchPage handles POST /search/next.
func (h *Handler) NextSearchPage(w http.ResponseWriter, _ *http.Request) {
	h.search.NextPage()
	writeJSON(w, http.StatusOK, toSearchState(h.search.Snapshot()))
}

// PrevSearchPage handles POST /search/prev.
func (h *Handler) PrevSearchPage(w http.ResponseWriter, _ *http.Request) {
	h.search.PrevPage()
	writeJSON(w, http.StatusOK, toSearchState(h.search.Snapshot()))
}

// ActivateProfile handles POST /profiles/{username}/activate.
func (h *Handler) ActivateProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if decoded, err := url.PathUnescape(username); err == nil {
		username = decoded
	}
	if username == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("username is required"))
		return
	}
	h.search.Select(username)
	writeJSON(w, http.StatusAccepted, toProfileState(h.detail.Snapshot()))
}

// GetProfile handles GET /profile and returns the detail snapshot.
func (h *Handler) GetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toProfileState(h.detail.Snapshot()))
}

// CloseProfile handles DELETE /profile. The detail cache survives.
func (h *Handler) CloseProfile(w http.ResponseWriter, _ *http.Request) {
	h.detail.Deselect()
	writeJSON(w, http.StatusOK, toProfileState(h.detail.Snapshot()))
}

// SetStrengthFilter handles PUT /profile/strengths/filter.
func (h *Handler) SetStrengthFilter(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.detail.SetStrengthFilter(req.Text)
	writeJSON(w, http.StatusAccepted, toProfileState(h.detail.Snapshot()))
}

// NextStrengthPage handles POST /profile/strengths/next.
func (h *Handler) NextStrengthPage(w http.ResponseWriter, _ *http.Request) {
	h.detail.NextStrengthPage()
	writeJSON(w, http.StatusOK, toProfileState(h.detail.Snapshot()))
}

// PrevStrengthPage handles POST /profile/strengths/prev.
func (h *Handler) PrevStrengthPage(w http.ResponseWriter, _ *http.Request) {
	h.detail.PrevStrengthPage()
	writeJSON(w, http.StatusOK, toProfileState(h.detail.Snapshot()))
}
