// Package orchestrator implements the reservation orchestrator service. It
// owns the per-reservation lifecycle record and drives the two-phase
// exchange with the area authority: persist a Processing record, hand off a
// reserve command keyed by event#area, and finalize the record when the
// allocation result arrives.
package orchestrator

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/resilience"
	"github.com/jyasuu/ticket-master/internal/store"
)

type Service struct {
	reservations store.Store[domain.Reservation]
	statusCache  store.Store[domain.AreaStatus]
	producer     broker.Sender
	log          observability.Logger
}

func New(
	reservations store.Store[domain.Reservation],
	statusCache store.Store[domain.AreaStatus],
	producer broker.Sender,
	log observability.Logger,
) *Service {
	return &Service{
		reservations: reservations,
		statusCache:  statusCache,
		producer:     producer,
		log:          log,
	}
}

func (s *Service) Register(runner *broker.Runner, creations, results, statuses broker.Fetcher) {
	runner.Subscribe(domain.TopicCreateReservation, creations, s.HandleCreateReservation)
	runner.Subscribe(domain.TopicReservationResult, results, s.HandleReservationResult)
	runner.Subscribe(domain.TopicAreaStatus, statuses, s.HandleAreaStatus)
}

// HandleCreateReservation persists the Processing record and hands the
// allocation off to the area authority. The hand-off crosses partition
// ownership, so it is choreographed record by record rather than wrapped in
// a transaction: a crash in between replays this command, and the authority
// deduplicates by reservation id.
func (s *Service) HandleCreateReservation(ctx context.Context, msg broker.Message) error {
	reservationID := string(msg.Key)
	if reservationID == "" {
		return errors.New("create_reservation message has no key")
	}

	var cmd domain.CreateReservation
	if err := broker.Decode(msg, &cmd); err != nil {
		return err
	}

	reservation := domain.NewReservation(cmd)
	if err := s.putReservation(ctx, reservationID, reservation); err != nil {
		return err
	}

	reserve := domain.ReserveSeat{
		ReservationID:   reservation.ReservationID,
		EventID:         reservation.EventID,
		AreaID:          reservation.AreaID,
		NumOfSeats:      reservation.NumOfSeats,
		ReservationType: reservation.ReservationType,
		Seats:           reservation.Seats,
	}
	areaKey := domain.EventAreaKey(reservation.EventID, reservation.AreaID)
	if err := s.producer.Send(ctx, domain.TopicReserveSeat, areaKey, reserve); err != nil {
		return err
	}

	s.log.WithField("reservation_id", reservationID).WithField("area", areaKey).Info("reservation created")
	return nil
}

// HandleReservationResult finalizes the reservation record and republishes
// it on the user-facing topic. A result for an unknown reservation is logged
// and dropped; committing it is safe because replaying it would change
// nothing.
func (s *Service) HandleReservationResult(ctx context.Context, msg broker.Message) error {
	reservationID := string(msg.Key)
	if reservationID == "" {
		return errors.New("reservation_result message has no key")
	}

	var result domain.ReservationResult
	if err := broker.Decode(msg, &result); err != nil {
		return err
	}

	reservation, ok, err := s.reservations.Get(reservationID)
	if err != nil {
		return errors.Wrapf(err, "load reservation %q", reservationID)
	}
	if !ok {
		s.log.WithField("reservation_id", reservationID).Warn("result for unknown reservation, ignoring")
		return nil
	}

	reservation.ApplyResult(result)
	if err := s.putReservation(ctx, reservationID, reservation); err != nil {
		return err
	}

	if err := s.producer.Send(ctx, domain.TopicUserReservation, reservationID, reservation); err != nil {
		return err
	}

	s.log.WithField("reservation_id", reservationID).WithField("state", reservation.State).Info("reservation finalized")
	return nil
}

// HandleAreaStatus upserts a status broadcast into the read-side cache. The
// cache is not authoritative; entries carry a TTL so it stays bounded.
func (s *Service) HandleAreaStatus(ctx context.Context, msg broker.Message) error {
	areaKey := string(msg.Key)
	if areaKey == "" {
		return errors.New("area_status message has no key")
	}

	var status domain.AreaStatus
	if err := broker.Decode(msg, &status); err != nil {
		return err
	}
	return s.statusCache.Put(areaKey, status)
}

func (s *Service) putReservation(ctx context.Context, id string, r domain.Reservation) error {
	return resilience.Retry(ctx, s.log, resilience.StoreRetry(), "put reservation", func(context.Context) error {
		return s.reservations.Put(id, r)
	})
}
