package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/store"
)

type sentMessage struct {
	Topic string
	Key   string
	Value any
}

type captureSender struct {
	sent []sentMessage
}

func (s *captureSender) Send(_ context.Context, topic, key string, value any) error {
	s.sent = append(s.sent, sentMessage{Topic: topic, Key: key, Value: value})
	return nil
}

type memoryResponseCache struct {
	entries map[string]Response
}

func newMemoryResponseCache() *memoryResponseCache {
	return &memoryResponseCache{entries: map[string]Response{}}
}

func (c *memoryResponseCache) Get(_ context.Context, key string) (*Response, error) {
	resp, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (c *memoryResponseCache) Set(_ context.Context, key string, resp Response) error {
	c.entries[key] = resp
	return nil
}

type fixture struct {
	handlers     *Handlers
	producer     *captureSender
	reservations *store.MemoryStore[domain.Reservation]
	areas        *store.MemoryStore[domain.AreaStatus]
	idemp        *memoryResponseCache
	router       chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		producer:     &captureSender{},
		reservations: store.NewMemory[domain.Reservation](),
		areas:        store.NewMemory[domain.AreaStatus](),
		idemp:        newMemoryResponseCache(),
	}
	f.handlers = NewHandlers(f.producer, f.reservations, f.areas, f.idemp, nil, observability.NewLogger())

	r := chi.NewRouter()
	r.Post("/v1/events", f.handlers.CreateEvent)
	r.Post("/v1/reservations", f.handlers.CreateReservation)
	r.Get("/v1/reservations/{id}", f.handlers.GetReservation)
	r.Get("/v1/events/{event}/areas/{area}", f.handlers.GetAreaStatus)
	r.Get("/v1/healthz", f.handlers.Healthz)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateEventAccepted(t *testing.T) {
	f := newFixture(t)

	body := `{
		"artist": "The Testers",
		"event_name": "grand-opening",
		"areas": [{"area_id": "A", "price": 100, "row_count": 2, "col_count": 3}]
	}`
	rec := f.do(t, http.MethodPost, "/v1/events", body, nil)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if len(f.producer.sent) != 1 {
		t.Fatalf("sent %d commands, want 1", len(f.producer.sent))
	}
	sent := f.producer.sent[0]
	if sent.Topic != domain.TopicCreateEvent || sent.Key != "grand-opening" {
		t.Errorf("command sent on %q key %q", sent.Topic, sent.Key)
	}
	cmd := sent.Value.(domain.CreateEvent)
	if len(cmd.Areas) != 1 || cmd.Areas[0].AreaID != "A" {
		t.Errorf("command = %+v", cmd)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"missing name":  `{"areas": [{"area_id": "A", "row_count": 1, "col_count": 1}]}`,
		"no areas":      `{"event_name": "x", "areas": []}`,
		"zero rows":     `{"event_name": "x", "areas": [{"area_id": "A", "row_count": 0, "col_count": 1}]}`,
		"empty area id": `{"event_name": "x", "areas": [{"row_count": 1, "col_count": 1}]}`,
		"bad json":      `{`,
	}
	for name, body := range cases {
		rec := f.do(t, http.MethodPost, "/v1/events", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
	if len(f.producer.sent) != 0 {
		t.Error("rejected requests must not emit commands")
	}
}

func TestCreateReservationAccepted(t *testing.T) {
	f := newFixture(t)

	body := `{
		"user_id": "u-1",
		"event_id": "ev-1",
		"area_id": "A",
		"num_of_seats": 2,
		"reservation_type": "RANDOM"
	}`
	rec := f.do(t, http.MethodPost, "/v1/reservations", body, map[string]string{
		"Idempotency-Key": "0123456789abcdef",
	})

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ReservationID string `json:"reservation_id"`
		State         string `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReservationID == "" || resp.State != string(domain.StateProcessing) {
		t.Errorf("response = %+v", resp)
	}

	if len(f.producer.sent) != 1 {
		t.Fatalf("sent %d commands, want 1", len(f.producer.sent))
	}
	sent := f.producer.sent[0]
	if sent.Topic != domain.TopicCreateReservation || sent.Key != resp.ReservationID {
		t.Errorf("command sent on %q key %q, want key %q", sent.Topic, sent.Key, resp.ReservationID)
	}
}

func TestCreateReservationReplaysIdempotentResponse(t *testing.T) {
	f := newFixture(t)

	body := `{"user_id": "u-1", "event_id": "ev-1", "area_id": "A", "num_of_seats": 1, "reservation_type": "RANDOM"}`
	headers := map[string]string{"Idempotency-Key": "0123456789abcdef"}

	first := f.do(t, http.MethodPost, "/v1/reservations", body, headers)
	second := f.do(t, http.MethodPost, "/v1/reservations", body, headers)

	if second.Code != http.StatusAccepted {
		t.Fatalf("replayed status = %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
	if len(f.producer.sent) != 1 {
		t.Errorf("retried POST emitted %d commands, want 1", len(f.producer.sent))
	}
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]string{
		"missing user":  `{"event_id": "ev-1", "area_id": "A", "num_of_seats": 1, "reservation_type": "RANDOM"}`,
		"zero seats":    `{"user_id": "u", "event_id": "ev-1", "area_id": "A", "num_of_seats": 0, "reservation_type": "RANDOM"}`,
		"unknown type":  `{"user_id": "u", "event_id": "ev-1", "area_id": "A", "num_of_seats": 1, "reservation_type": "LOTTERY"}`,
		"empty payload": `{}`,
	}
	for name, body := range cases {
		rec := f.do(t, http.MethodPost, "/v1/reservations", body, map[string]string{"Idempotency-Key": name + "-0123456789abcdef"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
	if len(f.producer.sent) != 0 {
		t.Error("rejected requests must not emit commands")
	}
}

func TestGetReservation(t *testing.T) {
	f := newFixture(t)
	_ = f.reservations.Put("r-1", domain.Reservation{
		ReservationID: "r-1",
		UserID:        "u-1",
		State:         domain.StateReserved,
		Seats:         []domain.Seat{{Row: 0, Col: 1}},
	})

	rec := f.do(t, http.MethodGet, "/v1/reservations/r-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != domain.StateReserved || len(got.Seats) != 1 {
		t.Errorf("reservation = %+v", got)
	}

	if rec := f.do(t, http.MethodGet, "/v1/reservations/ghost", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestGetAreaStatus(t *testing.T) {
	f := newFixture(t)
	status := domain.NewAreaStatus("ev-1", domain.Area{AreaID: "A", RowCount: 2, ColCount: 2})
	_ = f.areas.Put(domain.EventAreaKey("ev-1", "A"), status)

	rec := f.do(t, http.MethodGet, "/v1/events/ev-1/areas/A", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.AreaStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AvailableSeats != 4 {
		t.Errorf("available = %d, want 4", got.AvailableSeats)
	}

	if rec := f.do(t, http.MethodGet, "/v1/events/ev-1/areas/ZZ", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown area status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/v1/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
