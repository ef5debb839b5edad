// Package authority implements the area authority service: the single
// writer for each event area's seat grid. Correctness of "no double
// booking" rests on the broker routing every message for one area key to
// this service's one consumer, which handles one message at a time.
package authority

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/resilience"
	"github.com/jyasuu/ticket-master/internal/store"
	"github.com/jyasuu/ticket-master/internal/strategy"
)

type Service struct {
	areas    store.Store[domain.AreaStatus]
	results  store.Store[domain.ReservationResult]
	producer broker.Sender
	log      observability.Logger
}

func New(
	areas store.Store[domain.AreaStatus],
	results store.Store[domain.ReservationResult],
	producer broker.Sender,
	log observability.Logger,
) *Service {
	return &Service{areas: areas, results: results, producer: producer, log: log}
}

// Register wires the service's topics into the runner.
func (s *Service) Register(runner *broker.Runner, createEvents, reserveSeats broker.Fetcher) {
	runner.Subscribe(domain.TopicCreateEvent, createEvents, s.HandleCreateEvent)
	runner.Subscribe(domain.TopicReserveSeat, reserveSeats, s.HandleReserveSeat)
}

// HandleCreateEvent seeds one fully available grid per declared area,
// persists each under its event#area key and broadcasts it.
func (s *Service) HandleCreateEvent(ctx context.Context, msg broker.Message) error {
	eventID := string(msg.Key)
	if eventID == "" {
		return errors.New("create_event message has no key")
	}

	var cmd domain.CreateEvent
	if err := broker.Decode(msg, &cmd); err != nil {
		return err
	}

	s.log.WithField("event_id", eventID).WithField("areas", len(cmd.Areas)).Info("creating event")

	for _, area := range cmd.Areas {
		status := domain.NewAreaStatus(eventID, area)
		key := domain.EventAreaKey(eventID, area.AreaID)

		if err := s.putArea(ctx, key, status); err != nil {
			return err
		}
		if err := s.producer.Send(ctx, domain.TopicAreaStatus, key, status); err != nil {
			return err
		}
	}
	return nil
}

// HandleReserveSeat runs one allocation attempt to completion: load the
// grid, dispatch the strategy, apply and persist a successful allocation,
// and always emit a result keyed by the reservation id.
func (s *Service) HandleReserveSeat(ctx context.Context, msg broker.Message) error {
	areaKey := string(msg.Key)
	if areaKey == "" {
		return errors.New("reserve_seat message has no key")
	}

	var req domain.ReserveSeat
	if err := broker.Decode(msg, &req); err != nil {
		return err
	}

	log := s.log.WithField("reservation_id", req.ReservationID).WithField("area", areaKey)

	// A redelivered command must not mutate the grid twice. The recorded
	// result of the first delivery is re-emitted instead.
	if prior, ok, err := s.results.Get(req.ReservationID); err != nil {
		return err
	} else if ok {
		log.Warn("duplicate reserve_seat command, re-emitting recorded result")
		return s.producer.Send(ctx, domain.TopicReservationResult, req.ReservationID, prior)
	}

	result, updated, err := s.allocate(areaKey, req)
	if err != nil {
		// Store I/O failure: surface it so the offset stays uncommitted and
		// the command is replayed.
		return err
	}

	if updated != nil {
		if err := s.putArea(ctx, areaKey, *updated); err != nil {
			return err
		}
		if err := s.producer.Send(ctx, domain.TopicAreaStatus, areaKey, *updated); err != nil {
			return err
		}
		observability.SeatsAllocated.Add(float64(len(result.Seats)))
	}
	if result.Result == domain.OutcomeFailed {
		observability.AllocationFailures.WithLabelValues(string(result.ErrorCode)).Inc()
	}

	if err := s.results.Put(req.ReservationID, result); err != nil {
		return err
	}

	log.WithField("result", result.Result).Info("seat reservation processed")
	return s.producer.Send(ctx, domain.TopicReservationResult, req.ReservationID, result)
}

// allocate computes the result for a request and, on success, the updated
// grid to persist. It performs no I/O beyond the initial load.
func (s *Service) allocate(areaKey string, req domain.ReserveSeat) (domain.ReservationResult, *domain.AreaStatus, error) {
	area, ok, err := s.areas.Get(areaKey)
	if err != nil {
		return domain.ReservationResult{}, nil, errors.Wrapf(err, "load area status %q", areaKey)
	}
	if !ok {
		return domain.FailedResult(req.ReservationID, domain.CodeInvalidEventArea, "unknown event area: "+areaKey), nil, nil
	}

	strat, ok := strategy.ForType(req.ReservationType)
	if !ok {
		return domain.FailedResult(req.ReservationID, domain.CodeInvalidArgument,
			"unknown reservation type: "+string(req.ReservationType)), nil, nil
	}

	result := strat.Reserve(&area, req)
	if result.Result != domain.OutcomeSuccess {
		return result, nil, nil
	}

	area.ApplySeats(result.Seats)
	return result, &area, nil
}

func (s *Service) putArea(ctx context.Context, key string, status domain.AreaStatus) error {
	return resilience.Retry(ctx, s.log, resilience.StoreRetry(), "put area status", func(context.Context) error {
		return s.areas.Put(key, status)
	})
}
