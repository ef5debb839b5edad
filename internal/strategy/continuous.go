package strategy

import (
	"github.com/jyasuu/ticket-master/internal/domain"
)

// ContinuousRandom prefers a run of adjacent seats within one row. The first
// row scanned left to right that yields a long-enough run wins; if no row
// does, it falls back to Random over the whole grid.
type ContinuousRandom struct{}

func (ContinuousRandom) Reserve(area *domain.AreaStatus, req domain.ReserveSeat) domain.ReservationResult {
	if area.AvailableSeats < req.NumOfSeats {
		return insufficient(req, area.AvailableSeats)
	}

	for _, row := range area.Seats {
		run := make([]domain.Seat, 0, req.NumOfSeats)
		for _, cell := range row {
			if !cell.IsAvailable {
				run = run[:0]
				continue
			}
			run = append(run, domain.Seat{Row: cell.Row, Col: cell.Col})
			if len(run) == req.NumOfSeats {
				return domain.SuccessResult(req.ReservationID, run)
			}
		}
	}

	return Random{}.Reserve(area, req)
}
