// Package strategy implements the seat selection algorithms. A strategy is a
// pure function over the grid it is given: it decides which seats to
// allocate but never marks them taken, so the same algorithms can be tested
// against synthetic grids. The area owner applies the returned seats.
package strategy

import (
	"github.com/jyasuu/ticket-master/internal/domain"
)

type Strategy interface {
	Reserve(area *domain.AreaStatus, req domain.ReserveSeat) domain.ReservationResult
}

// ForType resolves the strategy for a request tag. The set is closed: an
// unknown tag means the request is invalid, not that a strategy is missing.
func ForType(t domain.ReservationType) (Strategy, bool) {
	switch t {
	case domain.ReservationSelfPick:
		return SelfPick{}, true
	case domain.ReservationRandom:
		return Random{}, true
	case domain.ReservationContinuousRandom:
		return ContinuousRandom{}, true
	default:
		return nil, false
	}
}
