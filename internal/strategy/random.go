package strategy

import (
	"fmt"
	"math/rand/v2"

	"github.com/jyasuu/ticket-master/internal/domain"
)

// Random samples the requested number of seats uniformly, without
// replacement, from every available cell in the grid.
type Random struct{}

func (Random) Reserve(area *domain.AreaStatus, req domain.ReserveSeat) domain.ReservationResult {
	if area.AvailableSeats < req.NumOfSeats {
		return insufficient(req, area.AvailableSeats)
	}

	pool := availableSeats(area)

	selected := make([]domain.Seat, 0, req.NumOfSeats)
	for len(selected) < req.NumOfSeats && len(pool) > 0 {
		i := rand.IntN(len(pool))
		selected = append(selected, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}

	// The pre-check makes this unreachable unless AvailableSeats disagrees
	// with the grid.
	if len(selected) < req.NumOfSeats {
		return domain.FailedResult(req.ReservationID, domain.CodeInsufficientSeats,
			"could not allocate enough seats")
	}
	return domain.SuccessResult(req.ReservationID, selected)
}

func availableSeats(area *domain.AreaStatus) []domain.Seat {
	pool := make([]domain.Seat, 0, area.AvailableSeats)
	for _, row := range area.Seats {
		for _, cell := range row {
			if cell.IsAvailable {
				pool = append(pool, domain.Seat{Row: cell.Row, Col: cell.Col})
			}
		}
	}
	return pool
}

func insufficient(req domain.ReserveSeat, available int) domain.ReservationResult {
	return domain.FailedResult(req.ReservationID, domain.CodeInsufficientSeats,
		fmt.Sprintf("not enough seats available: requested %d, available %d", req.NumOfSeats, available))
}
