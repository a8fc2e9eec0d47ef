package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openhaul/planner/backend/internal/domain"
	"github.com/openhaul/planner/backend/internal/repo"
)

// exportPageSize is how many trips each page of the export scan pulls.
const exportPageSize = 100

// ExportService assembles a flat export of a user's trips and driver logs.
type ExportService struct {
	trips repo.TripRepo
	logs  repo.LogRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, logs repo.LogRepo) *ExportService {
	return &ExportService{trips: trips, logs: logs}
}

// Export returns one ExportRow per driver log across all of the user's
// trips. Trips with no logs contribute one row with zero log fields so
// every trip appears in the report. Rows follow the trip listing order
// (most recent trip first), logs within a trip by day number.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}

	for page := 1; ; page++ {
		trips, err := s.trips.List(ctx, userID, domain.PaginationParams{Page: page, Limit: exportPageSize})
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		if len(trips) == 0 {
			break
		}

		for _, trip := range trips {
			logs, err := s.logs.ListByTripID(ctx, trip.ID)
			if err != nil {
				return nil, fmt.Errorf("service.ExportService.Export: %w", err)
			}

			base := domain.ExportRow{
				TripID:         trip.ID.String(),
				TripStatus:     string(trip.Status),
				StartAddress:   trip.StartLocation.Address,
				DropoffAddress: trip.DropoffLocation.Address,
				TotalMiles:     trip.TotalMiles,
				TotalHours:     trip.TotalHours,
			}

			if len(logs) == 0 {
				rows = append(rows, base)
				continue
			}
			for _, log := range logs {
				row := base
				row.DayNumber = log.DayNumber
				row.LogDate = log.LogDate.Format("2006-01-02")
				row.TotalOffDutyMinutes = log.TotalOffDutyMinutes
				row.TotalSleeperMinutes = log.TotalSleeperMinutes
				row.TotalDrivingMinutes = log.TotalDrivingMinutes
				row.TotalOnDutyMinutes = log.TotalOnDutyMinutes
				row.TotalDistanceMiles = log.TotalDistanceMiles
				row.Notes = log.Notes
				rows = append(rows, row)
			}
		}

		if len(trips) < exportPageSize {
			break
		}
	}

	return rows, nil
}
