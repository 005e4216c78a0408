// Package testutil provides shared test helpers: profile fixtures and a
// fake directory server.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/mannaz/internal/directory"
)

// Summaries generates n profile summaries with usernames user1..userN.
func Summaries(n int) []directory.ProfileSummary {
	out := make([]directory.ProfileSummary, n)
	for i := range out {
		out[i] = directory.ProfileSummary{
			Username: fmt.Sprintf("user%d", i+1),
			Name:     fmt.Sprintf("User %d", i+1),
			Headline: "Software Developer",
		}
	}
	return out
}

// SampleProfile builds a full profile fixture for the given username,
// with a linkedin link, a mixed strengths list, and two experiences
// (one without an end month).
func SampleProfile(username string) *directory.ProfileDetail {
	start := time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.August, 1, 0, 0, 0, 0, time.UTC)
	return &directory.ProfileDetail{
		Username: username,
		Name:     "Sample Person",
		Headline: "Engineer",
		Contact:  directory.ContactInfo{Email: username + "@example.com"},
		Links: []directory.Link{
			{Name: "github", Address: "https://github.com/" + username},
			{Name: "linkedin", Address: "https://linkedin.com/in/" + username},
		},
		Strengths: []directory.Strength{
			{Name: "Node.js", Proficiency: "expert"},
			{Name: "React Native", Proficiency: "proficient"},
			{Name: "Go", Proficiency: "master"},
			{Name: "PostgreSQL", Proficiency: "proficient"},
		},
		Experiences: []directory.Experience{
			{Name: "Backend Engineer", Organization: "Acme", Location: "Berlin", StartMonth: &start, EndMonth: &end},
			{Name: "Staff Engineer", Organization: "Initech", Remote: true, StartMonth: &end},
		},
	}
}

// DirectoryServer starts a fake directory on httptest serving the search
// and fetch endpoints from the given fixtures. It is shut down via
// t.Cleanup.
func DirectoryServer(t *testing.T, summaries []directory.ProfileSummary, profiles map[string]*directory.ProfileDetail) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/people/_search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": summaries})
	})
	mux.HandleFunc("GET /api/genome/", func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimPrefix(r.URL.Path, "/api/genome/")
		p, ok := profiles[username]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
