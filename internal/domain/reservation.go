package domain

// CreateReservation is the user-facing command that starts a reservation
// attempt. Keyed by reservation id.
type CreateReservation struct {
	ReservationID   string          `json:"reservation_id"`
	UserID          string          `json:"user_id"`
	EventID         string          `json:"event_id"`
	AreaID          string          `json:"area_id"`
	NumOfSeats      int             `json:"num_of_seats"`
	ReservationType ReservationType `json:"reservation_type"`
	Seats           []Seat          `json:"seats,omitempty"`
}

// ReservationState is the reservation lifecycle. Processing resolves to
// Reserved or Failed; Paid and Cancelled are set by collaborators downstream
// and no transition leaves Failed.
type ReservationState string

const (
	StateProcessing ReservationState = "PROCESSING"
	StateReserved   ReservationState = "RESERVED"
	StateFailed     ReservationState = "FAILED"
	StatePaid       ReservationState = "PAID"
	StateCancelled  ReservationState = "CANCELLED"
)

// Reservation is the orchestrator-owned record of one reservation attempt.
type Reservation struct {
	ReservationID   string           `json:"reservation_id"`
	UserID          string           `json:"user_id"`
	EventID         string           `json:"event_id"`
	AreaID          string           `json:"area_id"`
	NumOfSeats      int              `json:"num_of_seats"`
	ReservationType ReservationType  `json:"reservation_type"`
	Seats           []Seat           `json:"seats,omitempty"`
	State           ReservationState `json:"state"`
	FailedReason    string           `json:"failed_reason,omitempty"`
}

// NewReservation builds the initial Processing record for a create command.
func NewReservation(cmd CreateReservation) Reservation {
	return Reservation{
		ReservationID:   cmd.ReservationID,
		UserID:          cmd.UserID,
		EventID:         cmd.EventID,
		AreaID:          cmd.AreaID,
		NumOfSeats:      cmd.NumOfSeats,
		ReservationType: cmd.ReservationType,
		Seats:           cmd.Seats,
		State:           StateProcessing,
	}
}

// Outcome is the terminal result of an allocation attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// ReservationResult reports the outcome of one ReserveSeat command. Keyed by
// reservation id. Seats is empty on failure.
type ReservationResult struct {
	ReservationID string    `json:"reservation_id"`
	Result        Outcome   `json:"result"`
	ErrorCode     ErrorCode `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Seats         []Seat    `json:"seats,omitempty"`
}

// SuccessResult builds a successful allocation result.
func SuccessResult(reservationID string, seats []Seat) ReservationResult {
	return ReservationResult{
		ReservationID: reservationID,
		Result:        OutcomeSuccess,
		Seats:         seats,
	}
}

// FailedResult builds a failed allocation result with a business error code.
func FailedResult(reservationID string, code ErrorCode, message string) ReservationResult {
	return ReservationResult{
		ReservationID: reservationID,
		Result:        OutcomeFailed,
		ErrorCode:     code,
		ErrorMessage:  message,
	}
}

// ApplyResult moves a Processing reservation to its terminal state.
func (r *Reservation) ApplyResult(result ReservationResult) {
	switch result.Result {
	case OutcomeSuccess:
		r.State = StateReserved
		r.Seats = result.Seats
	case OutcomeFailed:
		r.State = StateFailed
		r.FailedReason = result.ErrorMessage
	}
}
