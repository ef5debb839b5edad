// Package gateway is the HTTP front end. It translates validated user input
// into commands on the log and answers queries from its own read-side
// stores, which trail the log; read-after-write is explicitly not
// guaranteed.
package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jyasuu/ticket-master/internal/adapters/mongo"
	"github.com/jyasuu/ticket-master/internal/broker"
	"github.com/jyasuu/ticket-master/internal/domain"
	"github.com/jyasuu/ticket-master/internal/observability"
	"github.com/jyasuu/ticket-master/internal/store"
)

type Handlers struct {
	producer     broker.Sender
	reservations store.Store[domain.Reservation]
	areas        store.Store[domain.AreaStatus]
	idemp        ResponseCache
	audit        *mongo.AuditLogger
	log          observability.Logger
}

func NewHandlers(
	producer broker.Sender,
	reservations store.Store[domain.Reservation],
	areas store.Store[domain.AreaStatus],
	idemp ResponseCache,
	audit *mongo.AuditLogger,
	log observability.Logger,
) *Handlers {
	return &Handlers{
		producer:     producer,
		reservations: reservations,
		areas:        areas,
		idemp:        idemp,
		audit:        audit,
		log:          log,
	}
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Artist                 string        `json:"artist"`
		EventName              string        `json:"event_name"`
		ReservationOpeningTime time.Time     `json:"reservation_opening_time"`
		ReservationClosingTime time.Time     `json:"reservation_closing_time"`
		EventStartTime         time.Time     `json:"event_start_time"`
		EventEndTime           time.Time     `json:"event_end_time"`
		Areas                  []domain.Area `json:"areas"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.EventName == "" || len(req.Areas) == 0 {
		http.Error(w, "event_name and areas are required", http.StatusBadRequest)
		return
	}
	for _, area := range req.Areas {
		if area.AreaID == "" || area.RowCount <= 0 || area.ColCount <= 0 {
			http.Error(w, "area needs an id and positive row/col counts", http.StatusBadRequest)
			return
		}
	}

	cmd := domain.CreateEvent{
		Artist:                 req.Artist,
		EventName:              req.EventName,
		ReservationOpeningTime: req.ReservationOpeningTime,
		ReservationClosingTime: req.ReservationClosingTime,
		EventStartTime:         req.EventStartTime,
		EventEndTime:           req.EventEndTime,
		Areas:                  req.Areas,
	}
	if err := h.producer.Send(r.Context(), domain.TopicCreateEvent, req.EventName, cmd); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if h.audit != nil {
		h.audit.LogCommand(r.Context(), "event.create", req.EventName, map[string]interface{}{
			"artist": req.Artist,
			"areas":  len(req.Areas),
		})
	}

	resp := map[string]interface{}{"event_id": req.EventName}
	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write(data)
}

func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		UserID          string                 `json:"user_id"`
		EventID         string                 `json:"event_id"`
		AreaID          string                 `json:"area_id"`
		NumOfSeats      int                    `json:"num_of_seats"`
		ReservationType domain.ReservationType `json:"reservation_type"`
		Seats           []domain.Seat          `json:"seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.EventID == "" || req.AreaID == "" {
		http.Error(w, "user_id, event_id and area_id are required", http.StatusBadRequest)
		return
	}
	if req.NumOfSeats <= 0 && req.ReservationType != domain.ReservationSelfPick {
		http.Error(w, "num_of_seats must be positive", http.StatusBadRequest)
		return
	}
	if _, ok := knownReservationType(req.ReservationType); !ok {
		http.Error(w, "unknown reservation_type", http.StatusBadRequest)
		return
	}

	reservationID := uuid.New().String()
	cmd := domain.CreateReservation{
		ReservationID:   reservationID,
		UserID:          req.UserID,
		EventID:         req.EventID,
		AreaID:          req.AreaID,
		NumOfSeats:      req.NumOfSeats,
		ReservationType: req.ReservationType,
		Seats:           req.Seats,
	}
	if err := h.producer.Send(r.Context(), domain.TopicCreateReservation, reservationID, cmd); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if h.audit != nil {
		h.audit.LogCommand(r.Context(), "reservation.create", req.UserID, map[string]interface{}{
			"reservation_id": reservationID,
			"event_id":       req.EventID,
			"area_id":        req.AreaID,
			"num_of_seats":   req.NumOfSeats,
		})
	}

	resp := map[string]interface{}{
		"reservation_id": reservationID,
		"state":          domain.StateProcessing,
	}
	data, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	w.Write(data)

	h.idemp.Set(r.Context(), key, Response{Status: http.StatusAccepted, Result: data})
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	reservation, ok, err := h.reservations.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "reservation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reservation)
}

func (h *Handlers) GetAreaStatus(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	areaID := chi.URLParam(r, "area")

	status, ok, err := h.areas.Get(domain.EventAreaKey(eventID, areaID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "area not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func knownReservationType(t domain.ReservationType) (domain.ReservationType, bool) {
	switch t {
	case domain.ReservationSelfPick, domain.ReservationRandom, domain.ReservationContinuousRandom:
		return t, true
	default:
		return t, false
	}
}
