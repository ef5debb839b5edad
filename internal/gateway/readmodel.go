package gateway

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/store"
)

// ReadModel projects the state topics into the gateway's local query stores.
// The authoritative stores belong to the services that own the partitions;
// the gateway follows the log instead of reaching into them, so its answers
// are eventually consistent by construction.
type ReadModel struct {
	reservations store.Store[domain.Reservation]
	areas        store.Store[domain.AreaStatus]
}

func NewReadModel(reservations store.Store[domain.Reservation], areas store.Store[domain.AreaStatus]) *ReadModel {
	return &ReadModel{reservations: reservations, areas: areas}
}

func (m *ReadModel) Register(runner *broker.Runner, userReservations, areaStatuses broker.Fetcher) {
	runner.Subscribe(domain.TopicUserReservation, userReservations, m.HandleUserReservation)
	runner.Subscribe(domain.TopicAreaStatus, areaStatuses, m.HandleAreaStatus)
}

func (m *ReadModel) HandleUserReservation(ctx context.Context, msg broker.Message) error {
	id := string(msg.Key)
	if id == "" {
		return errors.New("user reservation message has no key")
	}
	var reservation domain.Reservation
	if err := broker.Decode(msg, &reservation); err != nil {
		return err
	}
	return m.reservations.Put(id, reservation)
}

func (m *ReadModel) HandleAreaStatus(ctx context.Context, msg broker.Message) error {
	key := string(msg.Key)
	if key == "" {
		return errors.New("area status message has no key")
	}
	var status domain.AreaStatus
	if err := broker.Decode(msg, &status); err != nil {
		return err
	}
	return m.areas.Put(key, status)
}
