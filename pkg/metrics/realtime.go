package metrics

import "github.com/prometheus/client_golang/prometheus"

// RealtimeMetrics tracks websocket hub activity.
type RealtimeMetrics struct {
	clients    prometheus.Gauge
	rooms      prometheus.Gauge
	broadcasts *prometheus.CounterVec
	dropped    prometheus.Counter
}

// NewRealtimeMetrics registers the hub metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	clients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_clients_connected",
		Help: "Websocket clients currently connected.",
	})
	rooms := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_rooms_active",
		Help: "Deal rooms with at least one member.",
	})
	broadcasts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_broadcasts_total",
		Help: "Events broadcast to deal rooms, by event name.",
	}, []string{"event"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_messages_dropped_total",
		Help: "Events dropped because a client send buffer was full.",
	})
	reg.MustRegister(clients, rooms, broadcasts, dropped)
	return &RealtimeMetrics{
		clients:    clients,
		rooms:      rooms,
		broadcasts: broadcasts,
		dropped:    dropped,
	}
}

// SetClients records the current connected-client count.
func (r *RealtimeMetrics) SetClients(n int) {
	if r == nil || r.clients == nil {
		return
	}
	r.clients.Set(float64(n))
}

// SetRooms records the current active-room count.
func (r *RealtimeMetrics) SetRooms(n int) {
	if r == nil || r.rooms == nil {
		return
	}
	r.rooms.Set(float64(n))
}

// IncBroadcast counts one fan-out of the named event.
func (r *RealtimeMetrics) IncBroadcast(event string) {
	if r == nil || r.broadcasts == nil {
		return
	}
	r.broadcasts.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncDropped counts one event discarded due to backpressure.
func (r *RealtimeMetrics) IncDropped() {
	if r == nil || r.dropped == nil {
		return
	}
	r.dropped.Inc()
}
