package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/openhaul/planner/backend/internal/domain"
	appmw "github.com/openhaul/planner/backend/internal/middleware"
)

// csvHeaders defines the column names written as the first row of any
// CSV export.
var csvHeaders = []string{
	"trip_id", "trip_status", "start_address", "dropoff_address",
	"total_miles", "total_hours",
	"day_number", "log_date",
	"total_off_duty_minutes", "total_sleeper_minutes",
	"total_driving_minutes", "total_on_duty_minutes",
	"total_distance_miles", "notes",
}

// GetExport handles GET /export: a flat table of the caller's trips and
// driver logs, one row per log. Use ?format=csv for CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context(), appmw.UserIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// writeCSV streams rows as text/csv with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trip-export.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(exportRowToCSVRecord(row))
	}
	cw.Flush()
}

// exportRowToCSVRecord encodes one export row as a flat string slice in
// csvHeaders order. Trips without logs carry zero log fields, encoded as
// empty strings for readability.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	record := []string{
		r.TripID,
		r.TripStatus,
		r.StartAddress,
		r.DropoffAddress,
		formatFloat(r.TotalMiles),
		formatFloat(r.TotalHours),
	}
	if r.LogDate == "" {
		return append(record, "", "", "", "", "", "", "", "")
	}
	return append(record,
		strconv.Itoa(r.DayNumber),
		r.LogDate,
		strconv.Itoa(r.TotalOffDutyMinutes),
		strconv.Itoa(r.TotalSleeperMinutes),
		strconv.Itoa(r.TotalDrivingMinutes),
		strconv.Itoa(r.TotalOnDutyMinutes),
		formatFloat(r.TotalDistanceMiles),
		r.Notes,
	)
}

// formatFloat renders a float without trailing zeros.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
