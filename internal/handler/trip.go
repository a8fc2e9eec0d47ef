package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/openhaul/planner/backend/internal/domain"
	appmw "github.com/openhaul/planner/backend/internal/middleware"
)

// tripStatusRequest is the body for PATCH /trips/{tripID}/status.
type tripStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// tripListResponse wraps the trip list with its pagination echo.
type tripListResponse struct {
	Data       []domain.Trip     `json:"data"`
	Pagination paginationSummary `json:"pagination"`
}

type paginationSummary struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// PlanTrip handles POST /trips: synchronous planning, full itinerary in
// the response.
func (s *Server) PlanTrip(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTripRequest(w, r)
	if !ok {
		return
	}

	trip, err := s.trips.PlanTrip(r.Context(), appmw.UserIDFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// ListTrips handles GET /trips with ?page= and ?limit= parameters
// (defaults: page=1, limit=20, max limit 100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)
	trips, err := s.trips.List(r.Context(), appmw.UserIDFrom(r.Context()), params)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripListResponse{
		Data: trips,
		Pagination: paginationSummary{
			Page:  params.Page,
			Limit: params.Limit,
			Count: len(trips),
		},
	})
}

// queryInt parses an optional integer query parameter, returning nil when
// absent or malformed.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), appmw.UserIDFrom(r.Context()), tripID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTripStatus handles PATCH /trips/{tripID}/status.
func (s *Server) UpdateTripStatus(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}

	var body tripStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
		return
	}

	trip, err := s.trips.UpdateStatus(r.Context(), appmw.UserIDFrom(r.Context()), tripID, body.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), appmw.UserIDFrom(r.Context()), tripID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeTripRequest decodes and validates a planning payload. The bool
// reports success; on failure the response has already been written.
func (s *Server) decodeTripRequest(w http.ResponseWriter, r *http.Request) (domain.TripRequest, bool) {
	var req domain.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return domain.TripRequest{}, false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
		return domain.TripRequest{}, false
	}
	return req, true
}

// validationMessage flattens a validator error into a single message
// naming the first offending field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Namespace()
	}
	return "invalid request payload"
}
