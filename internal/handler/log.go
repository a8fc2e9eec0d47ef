package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openhaul/planner/backend/internal/domain"
	appmw "github.com/openhaul/planner/backend/internal/middleware"
)

// upsertLogRequest is the body for PUT /trips/{tripID}/logs/{dayNumber}.
// The day's segments are always replaced wholesale; omitting a segment
// deletes it.
type upsertLogRequest struct {
	LogDate            string                `json:"log_date,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	TotalDistanceMiles *float64              `json:"total_distance_miles,omitempty"`
	Segments           []domain.SegmentInput `json:"segments" validate:"required,min=1"`
}

// logListResponse wraps a trip's logs.
type logListResponse struct {
	Data []domain.DriverLog `json:"data"`
}

// UpsertLog handles PUT /trips/{tripID}/logs/{dayNumber}.
func (s *Server) UpsertLog(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	dayNumber, err := strconv.Atoi(chi.URLParam(r, "dayNumber"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "day_number must be 1 or greater")
		return
	}

	var body upsertLogRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
		return
	}

	var logDate time.Time
	if body.LogDate != "" {
		logDate, err = time.Parse("2006-01-02", body.LogDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "log_date must be formatted as YYYY-MM-DD")
			return
		}
	}

	log, err := s.logs.Upsert(r.Context(), appmw.UserIDFrom(r.Context()), domain.LogInput{
		TripID:             tripID,
		DayNumber:          dayNumber,
		LogDate:            logDate,
		Notes:              body.Notes,
		TotalDistanceMiles: body.TotalDistanceMiles,
		Segments:           body.Segments,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// ListLogs handles GET /trips/{tripID}/logs.
func (s *Server) ListLogs(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripID")
	if !ok {
		return
	}
	logs, err := s.logs.ListByTrip(r.Context(), appmw.UserIDFrom(r.Context()), tripID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logListResponse{Data: logs})
}

// DeleteLog handles DELETE /logs/{logID}. Deleting a log that does not
// exist returns 404; deleting someone else's log returns 403.
func (s *Server) DeleteLog(w http.ResponseWriter, r *http.Request) {
	logID, ok := pathUUID(w, r, "logID")
	if !ok {
		return
	}
	deleted, err := s.logs.Delete(r.Context(), appmw.UserIDFrom(r.Context()), logID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not_found", "log not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
