package domain

import "time"

// Area describes one block of seats within an event. Immutable after the
// event is created.
type Area struct {
	AreaID   string `json:"area_id"`
	Price    int    `json:"price"`
	RowCount int    `json:"row_count"`
	ColCount int    `json:"col_count"`
}

// CreateEvent is the command that declares an event and its seat areas.
type CreateEvent struct {
	Artist                 string    `json:"artist"`
	EventName              string    `json:"event_name"`
	ReservationOpeningTime time.Time `json:"reservation_opening_time"`
	ReservationClosingTime time.Time `json:"reservation_closing_time"`
	EventStartTime         time.Time `json:"event_start_time"`
	EventEndTime           time.Time `json:"event_end_time"`
	Areas                  []Area    `json:"areas"`
}

// Seat is a coordinate within an area's grid.
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// SeatStatus is one cell of the seat grid.
type SeatStatus struct {
	Row         int  `json:"row"`
	Col         int  `json:"col"`
	IsAvailable bool `json:"is_available"`
}

// AreaStatus is the authoritative seat state for one event area. Exactly one
// consumer owns the record for a given EventAreaKey; AvailableSeats is kept
// equal to the number of available cells on every mutation.
type AreaStatus struct {
	EventID        string         `json:"event_id"`
	AreaID         string         `json:"area_id"`
	Price          int            `json:"price"`
	RowCount       int            `json:"row_count"`
	ColCount       int            `json:"col_count"`
	AvailableSeats int            `json:"available_seats"`
	Seats          [][]SeatStatus `json:"seats"`
}

// NewAreaStatus seeds a fully available grid for an area.
func NewAreaStatus(eventID string, area Area) AreaStatus {
	seats := make([][]SeatStatus, area.RowCount)
	for row := range seats {
		cells := make([]SeatStatus, area.ColCount)
		for col := range cells {
			cells[col] = SeatStatus{Row: row, Col: col, IsAvailable: true}
		}
		seats[row] = cells
	}
	return AreaStatus{
		EventID:        eventID,
		AreaID:         area.AreaID,
		Price:          area.Price,
		RowCount:       area.RowCount,
		ColCount:       area.ColCount,
		AvailableSeats: area.RowCount * area.ColCount,
		Seats:          seats,
	}
}

// InBounds reports whether the seat coordinate falls inside the grid.
func (a *AreaStatus) InBounds(seat Seat) bool {
	return seat.Row >= 0 && seat.Row < a.RowCount && seat.Col >= 0 && seat.Col < a.ColCount
}

// IsAvailable reports whether an in-bounds seat is still free.
func (a *AreaStatus) IsAvailable(seat Seat) bool {
	return a.Seats[seat.Row][seat.Col].IsAvailable
}

// ApplySeats marks the given seats taken and decrements AvailableSeats in the
// same step. Callers must only pass seats a strategy returned for this grid.
func (a *AreaStatus) ApplySeats(seats []Seat) {
	for _, seat := range seats {
		a.Seats[seat.Row][seat.Col].IsAvailable = false
	}
	a.AvailableSeats -= len(seats)
}

// CountAvailable recounts available cells. AvailableSeats must always agree
// with this; it exists so tests and recovery checks can verify the invariant.
func (a *AreaStatus) CountAvailable() int {
	n := 0
	for _, row := range a.Seats {
		for _, cell := range row {
			if cell.IsAvailable {
				n++
			}
		}
	}
	return n
}

// ReservationType selects the seat allocation strategy for a request. The
// set is closed; unknown tags are rejected as a validation failure.
type ReservationType string

const (
	ReservationSelfPick         ReservationType = "SELF_PICK"
	ReservationRandom           ReservationType = "RANDOM"
	ReservationContinuousRandom ReservationType = "CONTINUOUS_RANDOM"
)

// ReserveSeat asks the area owner to allocate seats. Keyed by EventAreaKey.
type ReserveSeat struct {
	ReservationID   string          `json:"reservation_id"`
	EventID         string          `json:"event_id"`
	AreaID          string          `json:"area_id"`
	NumOfSeats      int             `json:"num_of_seats"`
	ReservationType ReservationType `json:"reservation_type"`
	Seats           []Seat          `json:"seats,omitempty"`
}
