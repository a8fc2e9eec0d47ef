package handler

import (
	"net/http"

	appmw "github.com/openhaul/planner/backend/internal/middleware"
)

// EnqueueJob handles POST /jobs: asynchronous trip planning. The
// response is the PENDING job record; clients poll GET /jobs/{jobID}
// until it reaches SUCCESS or FAILED.
func (s *Server) EnqueueJob(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTripRequest(w, r)
	if !ok {
		return
	}

	job, err := s.jobs.Enqueue(r.Context(), appmw.UserIDFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /jobs/{jobID}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(w, r, "jobID")
	if !ok {
		return
	}
	job, err := s.jobs.GetByID(r.Context(), appmw.UserIDFrom(r.Context()), jobID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
