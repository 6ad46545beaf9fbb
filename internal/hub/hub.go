// Package hub tracks the set of currently connected observers and fans
// domain events out to them. Delivery is best-effort: an observer that is
// slow, dead, or connects after an event simply misses it. There is no retry,
// acknowledgment, or durability, and the connected set is process-local.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// EventNewProblem is the only event type currently broadcast. Votes,
// comments, and resolutions do not notify observers.
const EventNewProblem = "newProblem"

// Event is the envelope serialized to observers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Observer is an opaque handle for a connected client. Send delivers one
// serialized event; Alive reports whether the handle can still accept
// deliveries. Implementations must be safe for concurrent use.
type Observer interface {
	Send(msg []byte) error
	Alive() bool
}

var (
	// observersConnected gauges the current number of registered observers.
	observersConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_observers_connected",
			Help: "Current number of registered event observers.",
		},
	)

	// broadcastsTotal counts broadcast invocations by event type.
	broadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_total",
			Help: "Total number of event broadcasts.",
		},
		[]string{"type"},
	)

	// deliveriesTotal counts per-observer delivery outcomes.
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_deliveries_total",
			Help: "Total number of per-observer delivery attempts by outcome.",
		},
		[]string{"outcome"}, // delivered | skipped | failed
	)
)

func init() {
	prometheus.MustRegister(observersConnected, broadcastsTotal, deliveriesTotal)
}

// Hub maintains the live observer set. The zero value is not usable; call New.
type Hub struct {
	mu        sync.Mutex
	observers map[Observer]struct{}
}

// New returns an empty hub.
func New() *Hub {
	return &Hub{observers: make(map[Observer]struct{})}
}

// Register adds an observer to the live set. Registering an observer that is
// already present is a no-op.
func (h *Hub) Register(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[o]; ok {
		return
	}
	h.observers[o] = struct{}{}
	observersConnected.Set(float64(len(h.observers)))
}

// Unregister removes an observer. It is idempotent; removing an unknown
// observer is a no-op. An observer removed while a broadcast is in flight
// simply receives no further events.
func (h *Hub) Unregister(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[o]; !ok {
		return
	}
	delete(h.observers, o)
	observersConnected.Set(float64(len(h.observers)))
}

// Len returns the current number of registered observers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Broadcast serializes the event once and attempts delivery to every
// currently registered, currently live observer. Send failures and dead
// observers are skipped silently. The observer set is snapshotted under the
// lock so that concurrent register/unregister calls never race the fan-out.
func (h *Hub) Broadcast(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("event serialization failed")
		return
	}
	broadcastsTotal.WithLabelValues(ev.Type).Inc()

	h.mu.Lock()
	targets := make([]Observer, 0, len(h.observers))
	for o := range h.observers {
		targets = append(targets, o)
	}
	h.mu.Unlock()

	for _, o := range targets {
		if !o.Alive() {
			deliveriesTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if err := o.Send(payload); err != nil {
			deliveriesTotal.WithLabelValues("failed").Inc()
			log.Debug().Err(err).Str("type", ev.Type).Msg("observer delivery failed")
			continue
		}
		deliveriesTotal.WithLabelValues("delivered").Inc()
	}
}
