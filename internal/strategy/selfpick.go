package strategy

import (
	"fmt"

	"github.com/jyasuu/ticket-master/internal/domain"
)

// SelfPick allocates exactly the seats the caller asked for, or fails on the
// first seat that is out of bounds or already taken.
type SelfPick struct{}

func (SelfPick) Reserve(area *domain.AreaStatus, req domain.ReserveSeat) domain.ReservationResult {
	for _, seat := range req.Seats {
		if !area.InBounds(seat) {
			return domain.FailedResult(req.ReservationID, domain.CodeInvalidArgument,
				fmt.Sprintf("seat out of bounds: row %d, col %d", seat.Row, seat.Col))
		}
		if !area.IsAvailable(seat) {
			return domain.FailedResult(req.ReservationID, domain.CodeSeatNotAvailable,
				fmt.Sprintf("seat not available: row %d, col %d", seat.Row, seat.Col))
		}
	}
	return domain.SuccessResult(req.ReservationID, req.Seats)
}
