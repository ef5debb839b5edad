package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jyasuu/ticket-master/internal/authority"
	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/gateway"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/orchestrator"
	"github.com/jyasuu/ticket-master/internal/store"
)

// bus is a synchronous in-process stand-in for the partitioned log. Messages
// are delivered one at a time in publish order, which matches the ordering
// guarantee the services rely on for a single key.
type bus struct {
	handlers map[string][]broker.Handler
	queue    []broker.Message
	offsets  map[string]int64
}

func newBus() *bus {
	return &bus{handlers: map[string][]broker.Handler{}, offsets: map[string]int64{}}
}

func (b *bus) Send(_ context.Context, topic, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	offset := b.offsets[topic]
	b.offsets[topic] = offset + 1
	b.queue = append(b.queue, broker.Message{Topic: topic, Offset: offset, Key: []byte(key), Value: data})
	return nil
}

func (b *bus) subscribe(topic string, h broker.Handler) {
	b.handlers[topic] = append(b.handlers[topic], h)
}

// drain delivers queued messages, including any published while handling,
// until the system is quiescent.
func (b *bus) drain(t *testing.T, ctx context.Context) {
	t.Helper()
	for len(b.queue) > 0 {
		msg := b.queue[0]
		b.queue = b.queue[1:]
		for _, h := range b.handlers[msg.Topic] {
			if err := h(ctx, msg); err != nil {
				t.Fatalf("handler on %s: %v", msg.Topic, err)
			}
		}
	}
}

type memoryResponseCache struct {
	entries map[string]gateway.Response
}

func (c *memoryResponseCache) Get(_ context.Context, key string) (*gateway.Response, error) {
	resp, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (c *memoryResponseCache) Set(_ context.Context, key string, resp gateway.Response) error {
	c.entries[key] = resp
	return nil
}

type system struct {
	bus    *bus
	router chi.Router
}

// newSystem wires the three services against one bus and durable stores, the
// way the deployed processes are wired against the broker.
func newSystem(t *testing.T) *system {
	t.Helper()
	log := observability.NewLogger()
	stateDir := t.TempDir()

	areas, err := store.OpenBadger[domain.AreaStatus](stateDir, domain.TableAreaStatus)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { areas.Close() })
	allocations, err := store.OpenBadger[domain.ReservationResult](stateDir, domain.TableAllocations)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { allocations.Close() })
	reservations, err := store.OpenBadger[domain.Reservation](stateDir, domain.TableReservations)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { reservations.Close() })

	statusCache := store.NewMemory[domain.AreaStatus]()
	viewReservations := store.NewMemory[domain.Reservation]()
	viewAreas := store.NewMemory[domain.AreaStatus]()

	b := newBus()

	auth := authority.New(areas, allocations, b, log)
	b.subscribe(domain.TopicCreateEvent, auth.HandleCreateEvent)
	b.subscribe(domain.TopicReserveSeat, auth.HandleReserveSeat)

	orch := orchestrator.New(reservations, statusCache, b, log)
	b.subscribe(domain.TopicCreateReservation, orch.HandleCreateReservation)
	b.subscribe(domain.TopicReservationResult, orch.HandleReservationResult)
	b.subscribe(domain.TopicAreaStatus, orch.HandleAreaStatus)

	view := gateway.NewReadModel(viewReservations, viewAreas)
	b.subscribe(domain.TopicUserReservation, view.HandleUserReservation)
	b.subscribe(domain.TopicAreaStatus, view.HandleAreaStatus)

	handlers := gateway.NewHandlers(b, viewReservations, viewAreas, &memoryResponseCache{entries: map[string]gateway.Response{}}, nil, log)
	router := chi.NewRouter()
	router.Post("/v1/events", handlers.CreateEvent)
	router.Post("/v1/reservations", handlers.CreateReservation)
	router.Get("/v1/reservations/{id}", handlers.GetReservation)
	router.Get("/v1/events/{event}/areas/{area}", handlers.GetAreaStatus)

	return &system{bus: b, router: router}
}

func (s *system) post(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", target+body)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *system) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *system) reserve(t *testing.T, ctx context.Context, body string) domain.Reservation {
	t.Helper()
	rec := s.post(t, "/v1/reservations", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create reservation: %d %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		ReservationID string `json:"reservation_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatal(err)
	}
	s.bus.drain(t, ctx)

	rec = s.get(t, "/v1/reservations/"+accepted.ReservationID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get reservation: %d %s", rec.Code, rec.Body.String())
	}
	var reservation domain.Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &reservation); err != nil {
		t.Fatal(err)
	}
	return reservation
}

func (s *system) availableSeats(t *testing.T, event, area string) int {
	t.Helper()
	rec := s.get(t, "/v1/events/"+event+"/areas/"+area)
	if rec.Code != http.StatusOK {
		t.Fatalf("get area: %d %s", rec.Code, rec.Body.String())
	}
	var status domain.AreaStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	return status.AvailableSeats
}

func TestReservationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newSystem(t)

	rec := s.post(t, "/v1/events", `{
		"event_name": "summer-fest",
		"artist": "The Load Testers",
		"areas": [{"area_id": "A", "price": 120, "row_count": 2, "col_count": 2}]
	}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create event: %d %s", rec.Code, rec.Body.String())
	}
	s.bus.drain(t, ctx)

	if got := s.availableSeats(t, "summer-fest", "A"); got != 4 {
		t.Fatalf("freshly created area has %d available, want 4", got)
	}

	// Asking for more seats than the area holds fails and leaves it intact.
	oversized := s.reserve(t, ctx, `{
		"user_id": "u-1", "event_id": "summer-fest", "area_id": "A",
		"num_of_seats": 5, "reservation_type": "RANDOM"
	}`)
	if oversized.State != domain.StateFailed {
		t.Fatalf("oversized reservation = %+v, want Failed", oversized)
	}
	if got := s.availableSeats(t, "summer-fest", "A"); got != 4 {
		t.Fatalf("area changed after failed reservation: %d available", got)
	}

	// A two-seat random reservation succeeds end to end.
	reserved := s.reserve(t, ctx, `{
		"user_id": "u-2", "event_id": "summer-fest", "area_id": "A",
		"num_of_seats": 2, "reservation_type": "RANDOM"
	}`)
	if reserved.State != domain.StateReserved || len(reserved.Seats) != 2 {
		t.Fatalf("reservation = %+v, want Reserved with 2 seats", reserved)
	}
	if got := s.availableSeats(t, "summer-fest", "A"); got != 2 {
		t.Fatalf("area has %d available after allocation, want 2", got)
	}

	// Self-picking one of the taken seats fails with a reason.
	seat, _ := json.Marshal(reserved.Seats[0])
	contested := s.reserve(t, ctx, `{
		"user_id": "u-3", "event_id": "summer-fest", "area_id": "A",
		"num_of_seats": 1, "reservation_type": "SELF_PICK",
		"seats": [`+string(seat)+`]
	}`)
	if contested.State != domain.StateFailed || contested.FailedReason == "" {
		t.Fatalf("contested reservation = %+v, want Failed with reason", contested)
	}
	if got := s.availableSeats(t, "summer-fest", "A"); got != 2 {
		t.Fatalf("area changed after contested reservation: %d available", got)
	}
}

func TestReservationAgainstUnknownArea(t *testing.T) {
	ctx := context.Background()
	s := newSystem(t)

	failed := s.reserve(t, ctx, `{
		"user_id": "u-1", "event_id": "no-such-event", "area_id": "A",
		"num_of_seats": 1, "reservation_type": "RANDOM"
	}`)
	if failed.State != domain.StateFailed {
		t.Fatalf("reservation = %+v, want Failed", failed)
	}
}

func TestContinuousReservationsDrainTheArea(t *testing.T) {
	ctx := context.Background()
	s := newSystem(t)

	rec := s.post(t, "/v1/events", `{
		"event_name": "club-night",
		"areas": [{"area_id": "F", "price": 80, "row_count": 1, "col_count": 4}]
	}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create event: %d", rec.Code)
	}
	s.bus.drain(t, ctx)

	for _, user := range []string{"u-1", "u-2"} {
		got := s.reserve(t, ctx, `{
			"user_id": "`+user+`", "event_id": "club-night", "area_id": "F",
			"num_of_seats": 2, "reservation_type": "CONTINUOUS_RANDOM"
		}`)
		if got.State != domain.StateReserved {
			t.Fatalf("reservation for %s = %+v, want Reserved", user, got)
		}
	}
	if got := s.availableSeats(t, "club-night", "F"); got != 0 {
		t.Fatalf("area has %d available after draining, want 0", got)
	}

	sold := s.reserve(t, ctx, `{
		"user_id": "u-1", "event_id": "club-night", "area_id": "F",
		"num_of_seats": 1, "reservation_type": "CONTINUOUS_RANDOM"
	}`)
	if sold.State != domain.StateFailed {
		t.Fatalf("reservation on sold-out area = %+v, want Failed", sold)
	}
}
