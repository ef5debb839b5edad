package domain

// Topic names. A message's key decides its partition, so every producer of a
// topic must derive the key the same way; see EventAreaKey.
const (
	TopicCreateEvent       = "command.event.create_event"
	TopicReserveSeat       = "command.event.reserve_seat"
	TopicReservationResult = "response.reservation.result"
	TopicAreaStatus        = "state.event.area_status"
	TopicCreateReservation = "command.reservation.create_reservation"
	TopicUserReservation   = "state.user.reservation"
)

// Logical state store tables. Each maps to one physical store rooted under
// the configured state directory.
const (
	TableAreaStatus      = "area-status"
	TableAllocations     = "allocations"
	TableReservations    = "reservations"
	TableAreaStatusCache = "area-status-cache"
	TableReservationView = "reservation-view"
)

// EventAreaKey builds the partitioning key for a seat area. All seat
// mutations for one area must carry this exact key so the broker routes them
// to a single consumer.
func EventAreaKey(eventID, areaID string) string {
	return eventID + "#" + areaID
}
