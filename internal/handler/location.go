package handler

import (
	"net/http"
	"strings"

	"github.com/openhaul/planner/backend/internal/routing"
)

// defaultSearchLimit is the result count when ?limit= is absent or
// malformed. The routing client clamps whatever arrives to its own
// provider maximum.
const defaultSearchLimit = 5

// locationSearchResponse wraps geocoding results.
type locationSearchResponse struct {
	Data []routing.SearchResult `json:"data"`
}

// SearchLocations handles GET /locations/search?q=&limit=. An empty
// query returns an empty result set without calling the provider.
func (s *Server) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := defaultSearchLimit
	if n := queryInt(r, "limit"); n != nil && *n >= 1 {
		limit = *n
	}

	results, err := s.locations.SearchLocations(r.Context(), query, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if results == nil {
		results = []routing.SearchResult{}
	}
	writeJSON(w, http.StatusOK, locationSearchResponse{Data: results})
}
